package service

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Nurdhuha/website-ukim/pkg/jobs"
	"github.com/Nurdhuha/website-ukim/pkg/media"
	"github.com/Nurdhuha/website-ukim/pkg/storage"
)

// SweepJobType tags queue jobs that remove unreferenced uploads.
const SweepJobType = "upload-sweep"

type sweepStorage interface {
	ListOlderThan(age time.Duration) ([]storage.StoredFile, error)
	Delete(filename string) error
}

type contentBodyLister interface {
	ListBodies(ctx context.Context) ([]types.JSONText, error)
}

// UploadSweeperConfig tunes the orphan sweep.
type UploadSweeperConfig struct {
	PublicPath  string
	GracePeriod time.Duration
	Schedule    string
	Metrics     *MetricsService
}

// UploadSweeper removes uploaded files that no content body references once
// they are older than the grace period.
type UploadSweeper struct {
	storage sweepStorage
	bodies  contentBodyLister
	logger  *zap.Logger
	cfg     UploadSweeperConfig
	pattern *regexp.Regexp

	queue *jobs.Queue
	cron  *cron.Cron
}

// NewUploadSweeper constructs a sweeper.
func NewUploadSweeper(storage sweepStorage, bodies contentBodyLister, logger *zap.Logger, cfg UploadSweeperConfig) *UploadSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = "/uploads"
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 24 * time.Hour
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}
	prefix := strings.TrimRight(cfg.PublicPath, "/") + "/"
	return &UploadSweeper{
		storage: storage,
		bodies:  bodies,
		logger:  logger,
		cfg:     cfg,
		pattern: regexp.MustCompile(regexp.QuoteMeta(prefix) + `([A-Za-z0-9._\-/]+)`),
	}
}

// Start schedules sweeps on the configured cron schedule. Ticks share one job ID,
// so a tick arriving while a sweep is pending is dropped.
func (s *UploadSweeper) Start(ctx context.Context) error {
	s.queue = jobs.NewQueue("upload-sweeper", func(ctx context.Context, job jobs.Job) error {
		_, err := s.Sweep(ctx)
		return err
	}, jobs.QueueConfig{Workers: 1, BufferSize: 1, MaxRetries: 1, RetryDelay: time.Minute, Logger: s.logger})

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		if err := s.queue.TryEnqueue(jobs.Job{ID: SweepJobType, Type: SweepJobType}); err != nil {
			s.logger.Debug("sweep already pending", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule upload sweeper: %w", err)
	}
	s.queue.Start(ctx)
	c.Start()
	s.cron = c
	s.logger.Info("upload sweeper started", zap.String("schedule", s.cfg.Schedule), zap.Duration("grace", s.cfg.GracePeriod))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *UploadSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.queue != nil {
		s.queue.Stop()
	}
}

// Sweep deletes unreferenced uploads older than the grace period and returns
// the removed names.
func (s *UploadSweeper) Sweep(ctx context.Context) ([]string, error) {
	files, err := s.storage.ListOlderThan(s.cfg.GracePeriod)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	referenced, err := s.referenced(ctx)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0)
	for _, file := range files {
		if _, ok := referenced[file.Name]; ok {
			continue
		}
		if err := s.storage.Delete(file.Name); err != nil {
			s.logger.Warn("remove orphan upload", zap.String("file", file.Name), zap.Error(err))
			continue
		}
		removed = append(removed, file.Name)
	}
	s.cfg.Metrics.RecordSweep(len(removed))
	if len(removed) > 0 {
		s.logger.Info("orphan uploads removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

// referenced collects storage names mentioned by any content body, together
// with the thumbnails derived from them.
func (s *UploadSweeper) referenced(ctx context.Context) (map[string]struct{}, error) {
	bodies, err := s.bodies.ListBodies(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{})
	for _, body := range bodies {
		for _, match := range s.pattern.FindAllStringSubmatch(string(body), -1) {
			name := path.Clean(match[1])
			names[name] = struct{}{}
			names[path.Join(thumbnailDir, media.ThumbnailName(name))] = struct{}{}
		}
	}
	return names, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/Nurdhuha/website-ukim/api/swagger"
	"github.com/Nurdhuha/website-ukim/internal/handler"
	"github.com/Nurdhuha/website-ukim/internal/middleware"
	"github.com/Nurdhuha/website-ukim/internal/models"
	"github.com/Nurdhuha/website-ukim/internal/repository"
	"github.com/Nurdhuha/website-ukim/internal/service"
	"github.com/Nurdhuha/website-ukim/pkg/cache"
	"github.com/Nurdhuha/website-ukim/pkg/config"
	"github.com/Nurdhuha/website-ukim/pkg/database"
	"github.com/Nurdhuha/website-ukim/pkg/export"
	"github.com/Nurdhuha/website-ukim/pkg/jobs"
	"github.com/Nurdhuha/website-ukim/pkg/logger"
	"github.com/Nurdhuha/website-ukim/pkg/markdown"
	corsmiddleware "github.com/Nurdhuha/website-ukim/pkg/middleware/cors"
	reqidmiddleware "github.com/Nurdhuha/website-ukim/pkg/middleware/requestid"
	"github.com/Nurdhuha/website-ukim/pkg/storage"
)

// @title Website UKIM API
// @version 1.0.0
// @description Content, gallery, agenda and media API for the UKIM website
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	metrics := service.NewMetricsService()
	cacheRepo, closeCache := newCacheRepository(cfg, logr)
	defer closeCache()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	files, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("prepare upload dir: %w", err)
	}

	validate := service.NewValidator()
	contentRepo := repository.NewContentRepository(db)
	eventRepo := repository.NewCalendarRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if cfg.Auth.BootstrapPassword != "" {
		if err := authSvc.BootstrapPassword(ctx, cfg.Auth.DefaultAuthor, cfg.Auth.BootstrapPassword); err != nil {
			logr.Warn("admin password bootstrap failed", zap.String("username", cfg.Auth.DefaultAuthor), zap.Error(err))
		}
	}

	contentSvc := service.NewContentService(contentRepo, markdown.NewRenderer(), cacheSvc, validate, logr, service.ContentServiceConfig{
		DefaultAuthor: cfg.Auth.DefaultAuthor,
		CacheTTL:      cfg.Cache.TTL,
		Metrics:       metrics,
	})
	gallerySvc := service.NewGalleryService(contentSvc, contentRepo, cacheSvc, cfg.Cache.TTL, logr)
	eventSvc := service.NewEventService(eventRepo, cacheSvc, validate, logr, service.EventServiceConfig{
		DefaultAuthor: cfg.Auth.DefaultAuthor,
		CacheTTL:      cfg.Cache.TTL,
	})
	exportSvc := service.NewEventExportService(eventSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	thumbnails := jobs.NewQueue("thumbnails",
		service.ThumbnailHandler(files, cfg.Uploads.ThumbnailWidth, cfg.Uploads.ThumbnailHeight, metrics),
		jobs.QueueConfig{Workers: cfg.Uploads.ThumbnailWorkers, MaxRetries: 1, JobTimeout: 30 * time.Second, Logger: logr})
	thumbnails.Start(ctx)
	defer thumbnails.Stop()

	uploadSvc := service.NewUploadService(files, thumbnails, metrics, logr, service.UploadServiceConfig{
		PublicPath:    cfg.Uploads.PublicPath,
		MaxImageBytes: cfg.Uploads.MaxImageBytes,
		MaxPDFBytes:   cfg.Uploads.MaxPDFBytes,
	})

	if cfg.Sweeper.Enabled {
		sweeper := service.NewUploadSweeper(files, contentRepo, logr, service.UploadSweeperConfig{
			PublicPath:  cfg.Uploads.PublicPath,
			GracePeriod: cfg.Sweeper.GracePeriod,
			Schedule:    cfg.Sweeper.Schedule,
			Metrics:     metrics,
		})
		if err := sweeper.Start(ctx); err != nil {
			return fmt.Errorf("start upload sweeper: %w", err)
		}
		defer sweeper.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxPDFBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	var admin gin.HandlersChain
	if cfg.Auth.Enabled {
		admin = gin.HandlersChain{middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleEditor)}
	} else {
		logr.Warn("admin authentication disabled; writes are attributed to the default author", zap.String("author", cfg.Auth.DefaultAuthor))
		admin = gin.HandlersChain{middleware.OptionalJWT(authSvc)}
	}
	limiter := middleware.NewClientRateLimiter(cfg.Uploads.RateLimit, cfg.Uploads.RateBurst)

	handler.RegisterRoutes(r, handler.RouterConfig{
		APIPrefix:         cfg.APIPrefix,
		UploadsPublicPath: cfg.Uploads.PublicPath,
		UploadsDir:        files.Dir(),
		ExposeDocs:        cfg.Env != config.EnvProduction,
	}, handler.Handlers{
		Content: handler.NewContentHandler(contentSvc),
		Gallery: handler.NewGalleryHandler(gallerySvc),
		Event:   handler.NewEventHandler(eventSvc, exportSvc),
		Upload: handler.NewUploadHandler(uploadSvc, handler.UploadLimits{
			MaxImageBytes: cfg.Uploads.MaxImageBytes,
			MaxPDFBytes:   cfg.Uploads.MaxPDFBytes,
		}),
		Auth:   handler.NewAuthHandler(authSvc),
		Health: handler.NewHealthHandler(db, metrics),
	}, handler.Guards{
		Admin:  admin,
		Upload: gin.HandlersChain{limiter.Middleware()},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}

// newCacheRepository picks the cache backend. Redis falls back to memory
// when it cannot be reached.
func newCacheRepository(cfg *config.Config, logr *zap.Logger) (service.CacheRepository, func()) {
	if cfg.Cache.Driver == config.CacheDriverRedis {
		client, err := cache.NewRedis(cfg.Redis)
		if err == nil {
			repo := repository.NewRedisCacheRepository(client, repository.DefaultCacheKeyPrefix, logr)
			return repo, func() { _ = repo.Close() }
		}
		logr.Warn("redis unavailable, using in-memory cache", zap.Error(err))
	}
	return repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Cache.TTL)), func() {}
}

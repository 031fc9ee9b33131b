// Command shadow_compare replays public read requests against the legacy
// server and the Go API and reports response differences.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

// defaultTargets covers every public listing.
var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/api/content/artikel", Critical: true},
	{Method: http.MethodGet, Path: "/api/content/pengumuman", Critical: true},
	{Method: http.MethodGet, Path: "/api/content/akademik", Critical: true},
	{Method: http.MethodGet, Path: "/api/content/achievement", Critical: true},
	{Method: http.MethodGet, Path: "/api/content/gallery", Critical: true},
	{Method: http.MethodGet, Path: "/api/content/pages"},
	{Method: http.MethodGet, Path: "/api/gallery/public"},
	{Method: http.MethodGet, Path: "/api/events", Critical: true},
	{Method: http.MethodGet, Path: "/api/content/admin/all"},
}

type comparison struct {
	Target       target
	LegacyStatus int
	GoStatus     int
	StatusMatch  bool
	BodyMatch    bool
	Err          error
	GoTook       time.Duration
	LegacyTook   time.Duration
}

func (c comparison) breaking() bool {
	return c.Target.Critical && (c.Err != nil || !c.StatusMatch || !c.BodyMatch)
}

func (c comparison) differs() bool {
	return c.Err == nil && (!c.StatusMatch || !c.BodyMatch)
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		ignore      string
		timeout     time.Duration
		parallel    int
	)
	flag.StringVar(&goBase, "go-base", "http://localhost:5000", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:5001", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", "", "JSON targets file; the public listings are used when empty")
	flag.StringVar(&ignore, "ignore", "created_at,updated_at", "Comma separated fields left out of body comparison")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.IntVar(&parallel, "parallel", 4, "Concurrent targets")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			logger.Fatal("failed to load targets", zap.String("path", targetsPath), zap.Error(err))
		}
		targets = loaded
	}

	cmp := &comparer{
		client:     &http.Client{Timeout: timeout},
		goBase:     goBase,
		legacyBase: legacyBase,
		ignore:     splitFields(ignore),
	}
	results := cmp.run(context.Background(), targets, parallel)
	printReport(os.Stdout, results)

	var breaking, optional int
	for _, res := range results {
		switch {
		case res.breaking():
			breaking++
		case res.differs():
			optional++
		}
	}
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

type comparer struct {
	client     *http.Client
	goBase     string
	legacyBase string
	ignore     map[string]struct{}
}

// run compares every target, keeping the input order in the result.
func (c *comparer) run(ctx context.Context, targets []target, parallel int) []comparison {
	results := make([]comparison, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, tgt := range targets {
		g.Go(func() error {
			results[i] = c.compare(ctx, tgt)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *comparer) compare(ctx context.Context, tgt target) comparison {
	comp := comparison{Target: tgt}

	goStatus, goBody, goTook, err := c.fetch(ctx, c.goBase, tgt)
	if err != nil {
		comp.Err = fmt.Errorf("go request failed: %w", err)
		return comp
	}
	legacyStatus, legacyBody, legacyTook, err := c.fetch(ctx, c.legacyBase, tgt)
	if err != nil {
		comp.Err = fmt.Errorf("legacy request failed: %w", err)
		return comp
	}

	comp.GoStatus, comp.LegacyStatus = goStatus, legacyStatus
	comp.GoTook, comp.LegacyTook = goTook, legacyTook
	comp.StatusMatch = goStatus == legacyStatus
	comp.BodyMatch = bodiesEqual(goBody, legacyBody, c.ignore)
	return comp
}

func (c *comparer) fetch(ctx context.Context, base string, tgt target) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// bodiesEqual compares two payloads as JSON, ignoring key order, integral
// float formatting and the ignored fields at any depth.
func bodiesEqual(a, b []byte, ignore map[string]struct{}) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(normalize(aj, ignore), normalize(bj, ignore))
}

func normalize(v interface{}, ignore map[string]struct{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			if _, skip := ignore[k]; skip {
				continue
			}
			out[k] = normalize(item, ignore)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalize(item, ignore)
		}
		return out
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
	}
	return v
}

func splitFields(raw string) map[string]struct{} {
	fields := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			fields[part] = struct{}{}
		}
	}
	return fields
}

func printReport(w io.Writer, results []comparison) {
	fmt.Fprintln(w, "Shadow Compare Report")
	fmt.Fprintln(w, "=====================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if res.differs() {
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Err != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Err)
			continue
		}
		fmt.Fprintf(w, "  Go: %d (%s) | Legacy: %d (%s)\n", res.GoStatus, res.GoTook, res.LegacyStatus, res.LegacyTook)
		fmt.Fprintf(w, "  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
	}
}

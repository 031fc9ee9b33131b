// Command cms-admin manages website content from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nurdhuha/website-ukim/internal/adminclient"
)

var (
	apiURL  string
	token   string
	timeout time.Duration
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cms-admin",
	Short: "Manage UKIM website content",
	Long: `List, create, edit and delete website content through the admin API.

Views: artikel, pengumuman, akademik, achievement (prestasi), gallery (galeri), events, pages.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("CMS_API_URL", "http://localhost:5000/api"), "API base URL (or set CMS_API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CMS_TOKEN"), "Bearer token (or set CMS_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every API call")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// session bundles what every command needs.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	client *adminclient.Client
	logger *zap.Logger
}

func newSession(cmd *cobra.Command) *session {
	logger := newLogger()
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return &session{
		ctx:    ctx,
		cancel: cancel,
		client: adminclient.New(apiURL, adminclient.WithToken(token), adminclient.WithLogger(logger)),
		logger: logger,
	}
}

func (s *session) close() {
	s.cancel()
	_ = s.logger.Sync()
}

// lifecycle opens viewName and loads its listing.
func (s *session) lifecycle(viewName string) (*adminclient.Lifecycle, error) {
	view, err := adminclient.ParseView(viewName)
	if err != nil {
		return nil, err
	}
	lc := adminclient.NewLifecycle(s.client, view, s.logger)
	if err := lc.Refresh(s.ctx); err != nil {
		return nil, fmt.Errorf("load %s: %w", view, err)
	}
	return lc, nil
}

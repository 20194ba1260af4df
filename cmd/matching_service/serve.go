package main

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kajiplatform/matching-service/internal/server"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the matching HTTP server",
	Long:  `Start the HTTP server that exposes match listings, skill search, and the notification dispatch triggers, plus the periodic digest flush.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by environment variables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Periodic digest flush for batched-frequency recipients.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.DigestCron, func() {
		if _, err := a.flusher.Flush(context.Background()); err != nil {
			a.log.Error("digest flush failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest cron spec %q: %w", cfg.DigestCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(server.Config{
		Addr:         cfg.ListenAddr,
		CandidateCap: cfg.CandidateCap,
		PostingCap:   cfg.PostingCap,
	}, server.Deps{
		Repo:       a.repo,
		Selector:   a.selector,
		Dispatcher: a.dispatcher,
		Notifier:   a.notifier,
		Log:        a.log,
	})

	return srv.Start()
}

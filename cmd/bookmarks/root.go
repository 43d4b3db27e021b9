package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samanthvittal/bookmark-browser/internal/app"
	"github.com/samanthvittal/bookmark-browser/internal/config"
	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Bookmark sidebar with remote sync",
	Long: `bookmarks keeps a folder tree of bookmarks on disk (or in redis) and
synchronizes it with a file in a remote repository.

Configuration comes from BOOKMARKS_* environment variables.`,
	SilenceUsage: true,
}

// withApp loads the configuration, builds the logger and the app, and runs fn
// with a context canceled on SIGINT/SIGTERM.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg := config.Load()
	loggerClient := logger.NewWithOptions(logger.Options{
		Level:      cfg.LogLevel,
		Pretty:     cfg.PrettyLog,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer func() { _ = loggerClient.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, loggerClient)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close()

	return fn(ctx, a)
}

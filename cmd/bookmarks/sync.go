package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samanthvittal/bookmark-browser/internal/app"
	"github.com/samanthvittal/bookmark-browser/internal/dispatch"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the local bookmarks to the remote",
	Long: `Upload the local bookmarks to the remote.

The write is conditional on the remote version seen by the last successful
push or pull, which is kept in sync.json next to the settings. If the remote
changed since then, push fails and asks for a pull first. When no version is
recorded for the configured location (first push, or after switching
repository), the current remote version is read just before the write and
the remote file is replaced.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, dispatch.Push{})
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local bookmarks with the remote copy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, dispatch.Pull{})
	},
}

func runSync(cmd *cobra.Command, op dispatch.Command) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		status, err := a.Sync(ctx, op)
		if err != nil {
			return err
		}
		if status.Phase == dispatch.PhaseError {
			return errors.New(status.Message)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), status.Message)
		return err
	})
}

func init() {
	rootCmd.AddCommand(pushCmd, pullCmd)
}

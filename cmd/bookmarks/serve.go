package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/samanthvittal/bookmark-browser/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sidebar API and the sync loop until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			return a.Serve(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

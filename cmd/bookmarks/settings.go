package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samanthvittal/bookmark-browser/internal/app"
)

var (
	credentialFlag string
	locationFlag   string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Save the remote credential and location",
	Long: `Save the remote credential and location.

A running serve shows the new values right away when it watches the
configuration directory (the file backend with watching enabled), and
otherwise re-reads them before its next own settings change.`,
	Example: `  bookmarks settings --credential ghp_xxx --location me/bookmarks
  bookmarks settings --credential "" --location ""   # disable sync`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			if err := a.SaveSettings(ctx, credentialFlag, locationFlag); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
			return err
		})
	},
}

func init() {
	settingsCmd.Flags().StringVar(&credentialFlag, "credential", "", "access token for the remote")
	settingsCmd.Flags().StringVar(&locationFlag, "location", "", "remote repository as owner/repo")
	_ = settingsCmd.MarkFlagRequired("credential")
	_ = settingsCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(settingsCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samanthvittal/bookmark-browser/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build metadata",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

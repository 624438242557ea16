// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/reviewdeck/reviewdeck/internal/releases"
	"github.com/spf13/cobra"
)

// Commit is stamped at build time via ldflags.
var Commit = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the application version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reviewdeck %s (commit %s)\n",
			releases.CurrentVersion, Commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

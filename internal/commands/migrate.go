// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/reviewdeck/reviewdeck/internal/migrate"
	"github.com/reviewdeck/reviewdeck/internal/releases"
	"github.com/reviewdeck/reviewdeck/pkg/kvstore"
	"github.com/reviewdeck/reviewdeck/pkg/logx"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Inspect and run store migrations",
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored data version without changing anything",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := kvstore.NewFileStore(resolveDataDir())
		if err != nil {
			return err
		}
		defer store.Close()

		tracker, err := releases.NewTracker(store, logx.As())
		if err != nil {
			return err
		}

		check, err := tracker.CheckStatus()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case check.FirstRun:
			fmt.Fprintf(out, "store is uninitialized, current version is %s\n",
				check.ToVersion.Raw())
		case check.IsOlder:
			fmt.Fprintf(out, "store was written by %s, which is newer than %s\n",
				check.FromVersion.Raw(), check.ToVersion.Raw())
		case check.Updated:
			fmt.Fprintf(out, "store is at %s, migration to %s pending\n",
				check.FromVersion.Raw(), check.ToVersion.Raw())
		default:
			fmt.Fprintf(out, "store is up to date at %s\n", check.ToVersion.Raw())
		}
		return nil
	},
}

var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Bring the store up to the current version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := kvstore.NewFileStore(resolveDataDir())
		if err != nil {
			return err
		}
		defer store.Close()

		status := releases.InitializeVersioning(cmd.Context(), store, logx.As())
		if status.Err != nil {
			return status.Err
		}

		out := cmd.OutOrStdout()
		switch {
		case status.FirstRun:
			fmt.Fprintf(out, "store initialized at %s\n", status.ToVersion.Raw())
		case status.MigrationResult != nil:
			printSummary(out, status.MigrationResult)
		case status.Downgrade:
			fmt.Fprintf(out, "store was written by %s, leaving it untouched\n",
				status.FromVersion.Raw())
		default:
			fmt.Fprintf(out, "store is up to date at %s\n", status.ToVersion.Raw())
		}
		return nil
	},
}

func printSummary(out io.Writer, summary *migrate.Summary) {
	fmt.Fprintln(out, summary.Message)
	for _, step := range summary.Results {
		marker := "ok"
		if !step.Success {
			marker = "failed"
		}
		fmt.Fprintf(out, "  %s %s %s\n", step.Version.Raw(), marker, step.Details)
	}
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateRunCmd)
	rootCmd.AddCommand(migrateCmd)
}

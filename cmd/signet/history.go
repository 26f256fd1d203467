// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/toeirei/signet/internal/db"
	"github.com/toeirei/signet/internal/i18n"
)

// historyCmd represents the 'history' command.
// It lists past runs from the database, or with --events the audit trail of
// keys appearing and disappearing. --prune trims old runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs and key events",
	Long: `Display the recorded update runs in table format, newest first.

With --events, the key event audit log is shown instead: one entry for every
key that appeared for the first time or stopped being published.
With --prune N, all but the most recent N runs are deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("prune") {
			keep, _ := cmd.Flags().GetInt("prune")
			pruned, err := db.PruneRuns(keep)
			if err != nil {
				return err
			}
			fmt.Println(i18n.T("history.pruned", pruned))
			return nil
		}

		if events, _ := cmd.Flags().GetBool("events"); events {
			entries, err := db.GetAllAuditLogEntries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println(i18n.T("history.events_none"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tACTION\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp, e.Action, e.Details)
			}
			w.Flush()

			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := db.GetRuns(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println(i18n.T("history.none"))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tFILE\tSIGNERS\tKEYS")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%dms\t%s\t%d\t%d\n",
				r.ID, r.StartedAt, r.DurationMS, r.FilePath, r.Signers, r.Keys)
		}
		w.Flush()

		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	historyCmd.Flags().Bool("events", false, "show the key event audit log instead of runs")
	historyCmd.Flags().Int("prune", 0, "delete all but the most recent N runs")
}

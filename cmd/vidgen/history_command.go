package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidgen/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit, pruneDays int
	var jobID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent render attempts recorded by this worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cmd.Context(), cfg.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if pruneDays > 0 {
				removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -pruneDays))
				if err != nil {
					return fmt.Errorf("prune journal: %w", err)
				}
				fmt.Fprintf(out, "Pruned %d entries older than %d days\n", removed, pruneDays)
			}

			var entries []journal.Entry
			if strings.TrimSpace(jobID) != "" {
				entries, err = store.ForJob(cmd.Context(), strings.TrimSpace(jobID))
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No render attempts recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Job", "Series", "Part", "Status", "Started", "Took", "Result"},
				historyRows(entries),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				60,
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of attempts to show")
	cmd.Flags().StringVar(&jobID, "job", "", "Only attempts for this job id")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete finished attempts older than this many days first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func historyRows(entries []journal.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		took := "-"
		if d := e.Duration(); d > 0 {
			took = d.Round(time.Second).String()
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.JobID,
			e.Series,
			strconv.Itoa(e.Part),
			string(e.Status),
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			took,
			historyResult(e),
		})
	}
	return rows
}

func historyResult(e journal.Entry) string {
	switch {
	case e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.FailedStage, e.ErrorMessage)
	case e.PublishedURL != "":
		return e.PublishedURL
	case e.FinishedVideo != "":
		return e.FinishedVideo
	default:
		return e.VideoPath
	}
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"journalimport/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var title string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded import runs and volume outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			runID = strings.TrimSpace(runID)
			title = strings.TrimSpace(title)

			switch {
			case runID != "" || title != "":
				var entries []ledger.Entry
				if runID != "" {
					entries, err = store.Outcomes(cmd.Context(), runID)
				} else {
					entries, err = store.History(cmd.Context(), title)
				}
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, entries)
				}
				printEntries(out, entries)
				return nil
			default:
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				printRuns(out, runs)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show the volume outcomes of one run")
	cmd.Flags().StringVar(&title, "title", "", "Show every recorded outcome for a process title")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("run", "title")
	return cmd
}

func printRuns(out io.Writer, runs []ledger.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		finished := "running"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			r.ID,
			humanize.Time(r.StartedAt),
			finished,
			r.Strategy,
			strconv.Itoa(len(r.Journals)),
			strconv.Itoa(r.Completed),
			strconv.Itoa(r.Invalid),
			r.ErrorMessage,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]column{col("Run"), col("Started"), num("Duration"), col("Strategy"), num("Journals"), num("Completed"), num("Invalid"), col("Error")},
		rows,
	))
}

func printEntries(out io.Writer, entries []ledger.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No outcomes recorded")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			e.RunID,
			e.ProcessTitle,
			string(e.Status),
			strconv.Itoa(e.ImageCount),
			outcomeDetail(e.Outcome),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]column{col("Recorded"), col("Run"), col("Process title"), col("Status"), num("Images"), col("Detail")},
		rows,
	))
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/spf13/cobra"

	"journalimport/internal/catalogue"
	"journalimport/internal/config"
	"journalimport/internal/importer"
	"journalimport/internal/logging"
	"journalimport/internal/preflight"
	"journalimport/internal/relocate"
	"journalimport/internal/services"
)

const runLockName = "journalimport.lock"

type importOptions struct {
	collections   []string
	recordsFile   string
	strategy      string
	workers       int
	skipPreflight bool
	jsonOutput    bool
}

type importReport struct {
	RunID    string             `json:"run_id"`
	Summary  importer.Summary   `json:"summary"`
	Outcomes []importer.Outcome `json:"outcomes"`
	Error    string             `json:"error,omitempty"`
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [journal-id...]",
		Short: "Import every volume of the given journals (all journals when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, ctx, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.collections, "collection", nil, "Collection tag for the given journals (repeatable)")
	cmd.Flags().StringVar(&opts.recordsFile, "records", "", "JSON file listing {journal_id, collections} records")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Override image strategy (copy, move, ignore)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Override the number of volumes imported in parallel")
	cmd.Flags().BoolVar(&opts.skipPreflight, "skip-preflight", false, "Start without running preflight checks")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runImport(cmd *cobra.Command, ctx *commandContext, args []string, opts importOptions) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg := *base
	if opts.strategy != "" {
		strategy, err := relocate.ParseStrategy(opts.strategy)
		if err != nil {
			return err
		}
		cfg.Import.ImageStrategy = string(strategy)
	}
	if opts.workers > 0 {
		cfg.Import.Workers = opts.workers
	}

	records, err := resolveRecords(&cfg, args, opts)
	if err != nil {
		return err
	}

	lock := flock.New(filepath.Join(cfg.Paths.LogDir, runLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another import is already running (lock %s)", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	registry, err := catalogue.NewRegistry(&cfg, catalogue.WithLogger(logger))
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	runID := uuid.NewString()
	runCtx := services.WithRunID(signalCtx, runID)

	if !opts.skipPreflight {
		if failed := preflight.Failed(preflight.RunAll(runCtx, &cfg, registry)); len(failed) > 0 {
			for _, r := range failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "preflight: %s: %s\n", r.Name, r.Detail)
			}
			return errors.New("preflight failed; run `journalimport preflight` for details or pass --skip-preflight")
		}
	}

	importOpts := []importer.Option{importer.WithLogger(logger)}
	finish := func(importer.Summary, error) {}
	if cfg.Ledger.Enabled {
		store, err := ctx.openLedger()
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.StartRun(runCtx, runID, journalIDs(records), cfg.Import.ImageStrategy); err != nil {
			return fmt.Errorf("record run start: %w", err)
		}
		importOpts = append(importOpts, importer.WithRecorder(store))
		finish = func(summary importer.Summary, runErr error) {
			if err := store.FinishRun(context.WithoutCancel(runCtx), runID, summary, runErr); err != nil {
				logging.WarnWithContext(logging.WithContext(runCtx, logger), "record run finish failed", "ledger_write_failed",
					logging.Error(err),
				)
			}
		}
	}

	im, err := importer.New(&cfg, registry, importOpts...)
	if err != nil {
		return err
	}

	outcomes, runErr := im.Run(runCtx, records)
	summary := importer.Summarize(outcomes)
	finish(summary, runErr)

	if opts.jsonOutput {
		report := importReport{RunID: runID, Summary: summary, Outcomes: outcomes}
		if runErr != nil {
			report.Error = runErr.Error()
		}
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printOutcomes(cmd.OutOrStdout(), runID, outcomes, summary)
	}
	return runErr
}

func resolveRecords(cfg *config.Config, args []string, opts importOptions) ([]importer.Record, error) {
	var records []importer.Record
	if opts.recordsFile != "" {
		loaded, err := loadRecordsFile(opts.recordsFile)
		if err != nil {
			return nil, err
		}
		records = append(records, loaded...)
	}
	for _, arg := range args {
		id := strings.TrimSpace(arg)
		if id == "" {
			continue
		}
		records = append(records, importer.Record{JournalID: id, Collections: opts.collections})
	}
	if len(records) > 0 {
		return records, nil
	}

	all, err := importer.AllJournals(cfg)
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i].Collections = opts.collections
	}
	return all, nil
}

// loadRecordsFile reads a JSON list of records. Comments are allowed.
func loadRecordsFile(path string) ([]importer.Record, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}
	var records []importer.Record
	if err := json.Unmarshal(jsonc.ToJSON(data), &records); err != nil {
		return nil, fmt.Errorf("parse records file %s: %w", expanded, err)
	}
	for i, r := range records {
		if strings.TrimSpace(r.JournalID) == "" {
			return nil, fmt.Errorf("records file %s: entry %d has no journal_id", expanded, i+1)
		}
	}
	return records, nil
}

func journalIDs(records []importer.Record) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.JournalID)
	}
	return ids
}

func printOutcomes(out io.Writer, runID string, outcomes []importer.Outcome, summary importer.Summary) {
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "No volumes imported")
	} else {
		rows := make([][]string, 0, len(outcomes))
		for _, o := range outcomes {
			rows = append(rows, []string{
				o.ProcessTitle,
				string(o.Status),
				strconv.Itoa(o.ImageCount),
				outcomeDetail(o),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]column{col("Process title"), col("Status"), num("Images"), col("Detail")},
			rows,
		))
	}
	fmt.Fprintf(out, "Run %s: %d completed, %d invalid\n", runID, summary.Completed, summary.InvalidData)
}

func outcomeDetail(o importer.Outcome) string {
	if o.ErrorMessage != "" {
		if o.ErrorKind != "" {
			return o.ErrorKind + ": " + o.ErrorMessage
		}
		return o.ErrorMessage
	}
	if o.CleanupWarnings > 0 {
		return fmt.Sprintf("%d cleanup warnings", o.CleanupWarnings)
	}
	return o.MetadataFile
}

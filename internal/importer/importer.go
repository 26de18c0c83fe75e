package importer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"journalimport/internal/builder"
	"journalimport/internal/catalogue"
	"journalimport/internal/config"
	"journalimport/internal/discovery"
	"journalimport/internal/docmodel"
	"journalimport/internal/docwriter"
	"journalimport/internal/layout"
	"journalimport/internal/logging"
	"journalimport/internal/relocate"
	"journalimport/internal/services"
)

const defaultCatalogueTimeout = 30 * time.Second

// Recorder receives every outcome as soon as it is known.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// Relocator moves images into place.
type Relocator interface {
	Relocate(ctx context.Context, req relocate.Request) (relocate.Result, error)
}

// Option customises an Importer.
type Option func(*Importer)

// WithLogger sets the importer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		im.logger = logging.NewComponentLogger(logger, "importer")
	}
}

// WithWriter replaces the document writer.
func WithWriter(w docwriter.Writer) Option {
	return func(im *Importer) {
		im.writer = w
	}
}

// WithRelocator replaces the image relocator.
func WithRelocator(r Relocator) Option {
	return func(im *Importer) {
		im.relocator = r
	}
}

// WithRecorder registers an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(im *Importer) {
		im.recorder = r
	}
}

// WithRuleset replaces the ruleset loaded from configuration.
func WithRuleset(rs *docmodel.Ruleset) Option {
	return func(im *Importer) {
		im.ruleset = rs
	}
}

// Importer runs batch imports with a fixed configuration.
type Importer struct {
	cfg       *config.Config
	fetcher   catalogue.Fetcher
	strategy  relocate.Strategy
	ruleset   *docmodel.Ruleset
	builder   *builder.Builder
	writer    docwriter.Writer
	relocator Relocator
	recorder  Recorder
	logger    *slog.Logger
}

// New validates the run configuration and returns an Importer.
func New(cfg *config.Config, fetcher catalogue.Fetcher, opts ...Option) (*Importer, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "importer", "new", "config is nil", nil)
	}
	if fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "importer", "new", "catalogue fetcher is nil", nil)
	}
	strategy, err := relocate.ParseStrategy(cfg.Import.ImageStrategy)
	if err != nil {
		return nil, err
	}
	im := &Importer{
		cfg:      cfg,
		fetcher:  fetcher,
		strategy: strategy,
		writer:   docwriter.NewJSONWriter(),
		logger:   logging.NewComponentLogger(nil, "importer"),
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.ruleset == nil {
		if im.ruleset, err = docmodel.LoadRuleset(cfg.Ruleset.Path); err != nil {
			return nil, err
		}
	}
	if im.relocator == nil {
		im.relocator = relocate.New(
			relocate.WithLogger(im.logger),
			relocate.WithLockDir(filepath.Join(cfg.Paths.LogDir, "locks")),
		)
	}
	im.builder = builder.New(im.ruleset, cfg.Metadata)
	return im, nil
}

// AllJournals returns a record for every journal folder below the base dir.
func AllJournals(cfg *config.Config) ([]Record, error) {
	ids, err := layout.ListJournalFolders(cfg.Paths.BaseDir)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, Record{JournalID: id})
	}
	return records, nil
}

type job struct {
	record      Record
	volume      string
	volumeDir   string
	images      []discovery.ImageFile
	discoverErr error
}

// Run imports every volume of every record. On cancellation no further
// volumes are started; the outcomes gathered so far are returned with the
// context error. Already relocated files are not rolled back.
func (im *Importer) Run(ctx context.Context, records []Record) ([]Outcome, error) {
	if _, ok := services.RunIDFromContext(ctx); !ok {
		ctx = services.WithRunID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, im.logger)
	started := time.Now()

	jobs := im.plan(ctx, records)
	logger.Info("import planned",
		logging.Int("journals", len(records)),
		logging.Int("volumes", len(jobs)),
		logging.String("strategy", string(im.strategy)),
		logging.Int("workers", im.cfg.Import.Workers),
	)

	outcomes := make([]Outcome, len(jobs))
	done := make([]bool, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(im.cfg.Import.Workers, 1))
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome, ok := im.processVolume(ctx, jobs[i])
			if !ok {
				return nil
			}
			outcomes[i] = outcome
			done[i] = true
			im.record(ctx, outcome)
			return nil
		})
	}
	_ = g.Wait()

	result := make([]Outcome, 0, len(jobs))
	for i, ok := range done {
		if ok {
			result = append(result, outcomes[i])
		}
	}
	summary := Summarize(result)
	logger.Info("import finished",
		logging.Int("completed", summary.Completed),
		logging.Int("invalid", summary.InvalidData),
		logging.Duration("elapsed", time.Since(started)),
	)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// plan lists volumes and images up front so outcomes keep a stable order
// regardless of worker scheduling.
func (im *Importer) plan(ctx context.Context, records []Record) []job {
	logger := logging.WithContext(ctx, im.logger)
	var jobs []job
	for _, record := range records {
		record.JournalID = strings.TrimSpace(record.JournalID)
		if record.JournalID == "" {
			continue
		}
		volumes, err := layout.ListVolumeFolders(im.cfg.Paths.BaseDir, record.JournalID)
		if err != nil {
			logging.WarnWithContext(logger, "journal folder not readable", "journal_list_failed",
				logging.String(logging.FieldJournalID, record.JournalID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the journal folder"),
				logging.String(logging.FieldImpact, "journal skipped"),
			)
			continue
		}
		if len(volumes) == 0 {
			logger.Info("no volume folders found", logging.String(logging.FieldJournalID, record.JournalID))
			continue
		}
		for _, volume := range volumes {
			volumeDir := filepath.Join(im.cfg.Paths.BaseDir, record.JournalID, volume)
			images, err := discovery.ListFiles(volumeDir, discovery.Options{Exclude: im.cfg.Import.Exclude})
			if err == nil && len(images) == 0 {
				logger.Debug("volume has no images, skipping",
					logging.String(logging.FieldJournalID, record.JournalID),
					logging.String(logging.FieldVolume, volume),
				)
				continue
			}
			jobs = append(jobs, job{
				record:      record,
				volume:      volume,
				volumeDir:   volumeDir,
				images:      images,
				discoverErr: err,
			})
		}
	}
	return jobs
}

// processVolume returns false when the run was cancelled before the volume
// reached a terminal state.
func (im *Importer) processVolume(ctx context.Context, j job) (Outcome, bool) {
	ctx = services.WithVolume(services.WithJournalID(ctx, j.record.JournalID), j.volume)
	logger := logging.WithContext(ctx, im.logger)

	outcome := Outcome{
		ProcessTitle: j.volume,
		JournalID:    j.record.JournalID,
		VolumeFolder: j.volume,
		ImageCount:   len(j.images),
	}
	fail := func(err error) (Outcome, bool) {
		outcome.Status = StatusInvalidData
		outcome.ErrorKind = services.Kind(err)
		outcome.ErrorMessage = err.Error()
		attrs := []logging.Attr{
			logging.String(logging.FieldProcessTitle, outcome.ProcessTitle),
			logging.String("error_kind", outcome.ErrorKind),
			logging.Error(err),
		}
		if services.IsVolumeFailure(err) {
			logging.WarnWithContext(logger, "volume not imported", "volume_invalid_data",
				append(attrs, logging.String(logging.FieldImpact, "volume marked invalidData, batch continues"))...)
		} else {
			logging.ErrorWithContext(logger, "volume failed unexpectedly", "volume_failed", attrs...)
		}
		return outcome, true
	}

	if j.discoverErr != nil {
		return fail(services.Wrap(services.ErrFileIO, "discovery", "list files", j.volumeDir, j.discoverErr))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, im.catalogueTimeout())
	seed, err := im.fetcher.Fetch(fetchCtx, im.cfg.Catalogue.Name, j.record.JournalID)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, false
		}
		if !errors.Is(err, services.ErrCatalogueLookup) && !errors.Is(err, services.ErrInvalidSeed) {
			err = services.Wrap(services.ErrCatalogueLookup, "catalogue", "fetch", j.record.JournalID, err)
		}
		return fail(err)
	}

	built, err := im.builder.Build(builder.Input{
		Seed:              seed,
		JournalID:         j.record.JournalID,
		VolumeFolder:      j.volume,
		Images:            j.images,
		Collections:       j.record.Collections,
		DefaultCollection: im.cfg.Import.Collection,
	})
	if err != nil {
		return fail(err)
	}
	outcome.ProcessTitle = built.ProcessTitle

	metadataFile := filepath.Join(im.cfg.Paths.ImportDir, built.ProcessTitle+docwriter.Extension)
	if err := im.writer.Write(built.Document, metadataFile); err != nil {
		return fail(err)
	}
	outcome.MetadataFile = metadataFile

	res, err := im.relocator.Relocate(ctx, relocate.Request{
		VolumeDir:  j.volumeDir,
		DestDir:    im.ImagesDir(built.ProcessTitle),
		Placements: built.Placements,
		Strategy:   im.strategy,
	})
	outcome.CleanupWarnings = len(res.CleanupErrors)
	if err != nil {
		// A volume whose images did not arrive must not look imported.
		if rmErr := os.Remove(metadataFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.WarnWithContext(logger, "remove document of failed volume", "document_cleanup_failed",
				logging.String("metadata_file", metadataFile),
				logging.Error(rmErr),
				logging.String(logging.FieldErrorHint, "delete the document file by hand before re-importing"),
			)
		}
		outcome.MetadataFile = ""
		return fail(err)
	}

	outcome.Status = StatusCompleted
	logger.Info("volume imported",
		logging.String(logging.FieldProcessTitle, built.ProcessTitle),
		logging.Int("images", len(j.images)),
		logging.String("metadata_file", metadataFile),
		logging.String(logging.FieldEventType, "volume_completed"),
	)
	return outcome, true
}

func (im *Importer) catalogueTimeout() time.Duration {
	if im.cfg.Catalogue.TimeoutSeconds <= 0 {
		return defaultCatalogueTimeout
	}
	return time.Duration(im.cfg.Catalogue.TimeoutSeconds) * time.Second
}

// ImagesDir returns the destination image folder of a process.
func (im *Importer) ImagesDir(processTitle string) string {
	folder := strings.ReplaceAll(im.cfg.Import.ImagesFolderTemplate, config.ProcessTitlePlaceholder, processTitle)
	return filepath.Join(im.cfg.Paths.ImportDir, processTitle, "images", folder)
}

func (im *Importer) record(ctx context.Context, outcome Outcome) {
	if im.recorder == nil {
		return
	}
	if err := im.recorder.Record(ctx, outcome); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, im.logger), "outcome not recorded", "ledger_write_failed",
			logging.String(logging.FieldProcessTitle, outcome.ProcessTitle),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the ledger database path"),
			logging.String(logging.FieldImpact, "history incomplete for this run"),
		)
	}
}

package relocate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"journalimport/internal/builder"
	"journalimport/internal/config"
	"journalimport/internal/fileutil"
	"journalimport/internal/logging"
	"journalimport/internal/services"
)

const lockRetryDelay = 50 * time.Millisecond

// Strategy selects how images reach the destination.
type Strategy string

const (
	StrategyCopy   Strategy = config.StrategyCopy
	StrategyMove   Strategy = config.StrategyMove
	StrategyIgnore Strategy = config.StrategyIgnore
)

// ParseStrategy accepts copy, move or ignore in any case.
func ParseStrategy(value string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(value))); s {
	case StrategyCopy, StrategyMove, StrategyIgnore:
		return s, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "relocate", "strategy", fmt.Sprintf("unknown image strategy %q", value), nil)
	}
}

// Request describes the images of one volume.
type Request struct {
	// VolumeDir is the source volume folder, pruned after a move.
	VolumeDir  string
	DestDir    string
	Placements []builder.Placement
	Strategy   Strategy
}

// Result reports what happened. CleanupErrors are informational only.
type Result struct {
	Transferred   int
	CleanupErrors []error
}

// Option customises a Relocator.
type Option func(*Relocator)

// WithLogger sets the relocator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relocator) {
		r.logger = logging.NewComponentLogger(logger, "relocate")
	}
}

// WithLockDir sets where destination lock files are kept.
func WithLockDir(dir string) Option {
	return func(r *Relocator) {
		r.lockDir = dir
	}
}

// Relocator executes naming plans. Writes into one destination folder are
// serialised both inside the process and across processes.
type Relocator struct {
	logger  *slog.Logger
	lockDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Relocator.
func New(opts ...Option) *Relocator {
	r := &Relocator{
		logger:  logging.NewComponentLogger(nil, "relocate"),
		lockDir: filepath.Join(os.TempDir(), "journalimport-locks"),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Relocate transfers every placement into req.DestDir. A failed transfer
// stops the volume and is returned as services.ErrFileIO.
func (r *Relocator) Relocate(ctx context.Context, req Request) (Result, error) {
	var result Result
	if req.Strategy == StrategyIgnore {
		return result, nil
	}
	if req.Strategy != StrategyCopy && req.Strategy != StrategyMove {
		return result, services.Wrap(services.ErrConfiguration, "relocate", "strategy", fmt.Sprintf("unknown image strategy %q", req.Strategy), nil)
	}
	logger := logging.WithContext(ctx, r.logger)

	unlock, err := r.lock(ctx, req.DestDir)
	if err != nil {
		return result, services.Wrap(services.ErrFileIO, "relocate", "lock destination", req.DestDir, err)
	}
	defer unlock()

	if err := os.MkdirAll(req.DestDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrFileIO, "relocate", "create destination", req.DestDir, err)
	}

	transfer := fileutil.CopyFileVerified
	if req.Strategy == StrategyMove {
		transfer = fileutil.MoveFile
	}
	for _, placement := range req.Placements {
		dst := filepath.Join(req.DestDir, placement.TargetName)
		if err := transfer(placement.Source, dst); err != nil {
			return result, services.Wrap(
				services.ErrFileIO,
				"relocate",
				string(req.Strategy),
				fmt.Sprintf("%s -> %s", placement.Source, dst),
				err,
			)
		}
		result.Transferred++
	}
	logger.Debug("images relocated",
		logging.String("strategy", string(req.Strategy)),
		logging.Int("count", result.Transferred),
		logging.String("destination", req.DestDir),
	)

	if req.Strategy == StrategyMove && strings.TrimSpace(req.VolumeDir) != "" {
		result.CleanupErrors = fileutil.RemoveEmptyDirs(req.VolumeDir)
		for _, cleanupErr := range result.CleanupErrors {
			logging.WarnWithContext(logger, "source folder not removed", "cleanup_failed",
				logging.String("volume_dir", req.VolumeDir),
				logging.Error(cleanupErr),
				logging.String(logging.FieldErrorHint, "folder still holds files that were not part of the import"),
				logging.String(logging.FieldImpact, "source folder left in place"),
			)
		}
	}
	return result, nil
}

func (r *Relocator) lock(ctx context.Context, destDir string) (func(), error) {
	key := filepath.Clean(destDir)

	r.mu.Lock()
	local, ok := r.locks[key]
	if !ok {
		local = &sync.Mutex{}
		r.locks[key] = local
	}
	r.mu.Unlock()
	local.Lock()

	if err := os.MkdirAll(r.lockDir, 0o755); err != nil {
		local.Unlock()
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	sum := sha256.Sum256([]byte(key))
	fileLock := flock.New(filepath.Join(r.lockDir, hex.EncodeToString(sum[:8])+".lock"))
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		local.Unlock()
		if err == nil {
			err = fmt.Errorf("lock %s not acquired", fileLock.Path())
		}
		return nil, err
	}
	return func() {
		if err := fileLock.Unlock(); err != nil {
			r.logger.Warn("failed to release destination lock", logging.String("lock", fileLock.Path()), logging.Error(err))
		}
		local.Unlock()
	}, nil
}

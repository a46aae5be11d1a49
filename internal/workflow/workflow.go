package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"spool/internal/config"
	"spool/internal/discovery"
	"spool/internal/encoder"
	"spool/internal/history"
	"spool/internal/logging"
	"spool/internal/notifications"
	"spool/internal/preflight"
	"spool/internal/services"
)

// Options carries the per-invocation switches layered over the
// configuration for one run.
type Options struct {
	// Spec overrides encoding.default_spec for every script in the run.
	Spec string
	// OutputDir overrides paths.output_dir for this run.
	OutputDir string
	// ForceKeyframes lists frame numbers av1an must cut keyframes at,
	// comma separated.
	ForceKeyframes string
	// KeepLossless keeps the lossless intermediates after a script
	// finishes, in addition to encoding.keep_lossless.
	KeepLossless bool
	// LosslessOnly stops each script after its lossless intermediate.
	LosslessOnly bool
	// SkipLossless feeds av1an the script directly instead of going
	// through a lossless intermediate.
	SkipLossless bool
	// CopyAudioToLossless muxes the source's first audio track into the
	// intermediate, so a cut can be sync-checked without a full encode.
	CopyAudioToLossless bool
}

// Summary reports what a run did. It is valid even when Run also returns
// an error.
type Summary struct {
	RunID     string
	Processed int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Runner executes encode runs against one configuration and history store.
type Runner struct {
	cfg      *config.Config
	store    *history.Store
	logger   *slog.Logger
	notifier notifications.Service
	tools    *encoder.Runner
}

// NewRunner assembles a Runner with the notifier the configuration selects.
func NewRunner(cfg *config.Config, store *history.Store, logger *slog.Logger) *Runner {
	return NewRunnerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewRunnerWithNotifier assembles a Runner around a caller-supplied
// notification service.
func NewRunnerWithNotifier(cfg *config.Config, store *history.Store, logger *slog.Logger, notifier notifications.Service) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	return &Runner{
		cfg:      cfg,
		store:    store,
		logger:   logging.WithComponent(logger, "workflow"),
		notifier: notifier,
		tools:    encoder.NewRunner(logging.WithComponent(logger, "encoder")),
	}
}

// Run processes every script reachable from input once. Per-script failures
// are logged and recorded in history and the batch keeps going, unless
// workflow.fail_fast stops it at the first one. The returned summary
// reflects everything attempted regardless of the error value.
func (r *Runner) Run(ctx context.Context, input string, opts Options) (*Summary, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "", "prepare working directories", err)
	}

	lock := flock.New(filepath.Join(r.cfg.Paths.LogDir, "spool.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "", "acquire run lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "workflow", "", "another spool run is already active", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	summary := &Summary{RunID: uuid.NewString()}
	log := r.logger.With(logging.String("run_id", summary.RunID))

	if n, err := r.store.MarkInterrupted(ctx); err != nil {
		log.Warn("sweep stale jobs", logging.Error(err))
	} else if n > 0 {
		log.Info("marked stale jobs interrupted", logging.Int64("jobs", n))
	}

	if r.cfg.Preflight.Enabled {
		failures := preflight.Failures(preflight.RunAll(r.cfg))
		for _, f := range failures {
			log.Error("preflight check failed", logging.String("check", f.Name), logging.String("detail", f.Detail))
		}
		if len(failures) > 0 {
			return summary, services.Wrap(services.ErrValidation, "workflow", "", fmt.Sprintf("%d preflight checks failed", len(failures)), nil)
		}
	}

	scripts, err := discovery.Discover(input)
	if err != nil {
		return summary, services.Wrap(services.ErrValidation, "workflow", "", "discover input scripts", err)
	}
	if len(scripts) == 0 {
		log.Warn("no input scripts found", logging.String("path", input))
		return summary, nil
	}

	log.Info("starting encode run", logging.String("path", input), logging.Int("scripts", len(scripts)))
	start := time.Now()

	for _, script := range scripts {
		if ctx.Err() != nil {
			summary.Duration = time.Since(start)
			log.Info("encode run interrupted", logging.Int("processed", summary.Processed))
			return summary, services.Wrap(services.ErrInterrupted, "workflow", "", "encode run interrupted", ctx.Err())
		}

		err := r.processScript(ctx, log, summary.RunID, script, opts)
		if err == nil {
			summary.Processed++
			continue
		}
		if errors.Is(err, services.ErrInterrupted) {
			summary.Failed++
			summary.Duration = time.Since(start)
			log.Info("encode run interrupted", logging.Int("processed", summary.Processed))
			return summary, err
		}

		if services.FailureStatus(err) == history.StatusSkipped {
			summary.Skipped++
		} else {
			summary.Failed++
		}
		log.Error("script failed", logging.String(logging.FieldSource, filepath.Base(script)), logging.Error(err))
		if nerr := r.notifier.NotifyError(ctx, err, filepath.Base(script)); nerr != nil {
			log.Warn("error notification failed", logging.Error(nerr))
		}
		if r.cfg.Workflow.FailFast {
			summary.Duration = time.Since(start)
			return summary, err
		}
	}

	summary.Duration = time.Since(start)
	log.Info("encode run finished",
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("duration", summary.Duration),
	)
	if err := r.notifier.NotifyRunCompleted(ctx, summary.Processed, summary.Failed+summary.Skipped, summary.Duration); err != nil {
		log.Warn("completion notification failed", logging.Error(err))
	}
	return summary, nil
}

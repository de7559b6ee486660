// Package resync moves local fallback copies to the remote archive once it is
// reachable again.
package resync

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/daily-report/pkg/services/archive"
)

// Syncer is the part of the archive bridge the runner drives.
type Syncer interface {
	Resync(ctx context.Context, limit int) (moved, remaining int, err error)
}

type Runner struct {
	syncer   Syncer
	done     chan struct{}
	progress chan Progress
	config   Config
}

type Config struct {
	// Interval between passes while nothing is pending or the remote fails.
	Interval time.Duration
	// BatchSize caps the copies uploaded per pass.
	BatchSize int
}

func DefaultConfig() Config {
	return Config{
		Interval:  5 * time.Minute,
		BatchSize: 20,
	}
}

type Progress struct {
	Moved     int
	Remaining int
	Err       error
	At        time.Time
}

func NewRunner(syncer Syncer, config Config) *Runner {
	defaults := DefaultConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	return &Runner{
		syncer:   syncer,
		done:     make(chan struct{}),
		progress: make(chan Progress, 100),
		config:   config,
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Progress reports every pass that moved something or failed. Reports are
// dropped when nobody keeps up with the channel.
func (r *Runner) Progress() <-chan Progress {
	return r.progress
}

// Run loops until ctx is cancelled. A full batch is followed immediately by
// the next pass; otherwise the runner sleeps for the configured interval.
func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("worker", "resync").Logger()
	defer close(r.done)
	defer close(r.progress)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("archive resync stopped")
			return
		case <-timer.C:
		}

		moved, remaining, err := r.syncer.Resync(logger.WithContext(ctx), r.config.BatchSize)
		switch {
		case errors.Is(err, archive.ErrNoRemote):
			logger.Info().Msg("no remote archive, resync disabled")
			return
		case errors.Is(err, context.Canceled):
			continue
		case err != nil:
			logger.Warn().Err(err).Int("moved", moved).Msg("archive resync pass failed")
		case moved > 0:
			logger.Info().Int("moved", moved).Int("remaining", remaining).Msg("archive resync pass completed")
		}

		if moved > 0 || err != nil {
			r.report(Progress{Moved: moved, Remaining: remaining, Err: err, At: time.Now()})
		}

		next := r.config.Interval
		if err == nil && moved == r.config.BatchSize {
			next = 0
		}
		timer.Reset(next)
	}
}

func (r *Runner) report(p Progress) {
	select {
	case r.progress <- p:
	default:
	}
}

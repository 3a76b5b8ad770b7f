package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	redisclient "github.com/hackgods/consultation-scheduling/internal/redis"
)

// BatchLockName is held for the duration of one scheduling run so that only
// one process writes placements at a time.
const BatchLockName = "scheduling:batch"

// ErrRunInProgress is returned when another process holds the batch lock.
var ErrRunInProgress = errors.New("scheduling run already in progress")

// Job runs the engine under the cluster-wide batch lock.
type Job struct {
	engine *Engine
	locker redisclient.Locker
	logger zerolog.Logger
}

func NewJob(engine *Engine, locker redisclient.Locker, logger zerolog.Logger) *Job {
	return &Job{
		engine: engine,
		locker: locker,
		logger: logger.With().Str("component", "scheduling_job").Logger(),
	}
}

// RunOnce processes the pending queue once. It returns ErrRunInProgress
// without doing anything when the lock is taken.
func (j *Job) RunOnce(ctx context.Context) error {
	start := time.Now()
	err := j.locker.WithLock(ctx, BatchLockName, func(ctx context.Context) error {
		j.engine.ProcessPending(ctx)
		return nil
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrRunInProgress
	}
	if err != nil {
		return err
	}
	j.logger.Debug().Dur("took", time.Since(start)).Msg("scheduling run finished")
	return nil
}

// Run calls RunOnce immediately and then on every tick until ctx is done.
func (j *Job) Run(ctx context.Context, interval time.Duration) {
	j.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("scheduling job stopping")
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *Job) tick(ctx context.Context) {
	if err := j.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			j.logger.Debug().Msg("another instance is scheduling, skipping tick")
			return
		}
		j.logger.Error().Err(err).Msg("scheduling run failed")
	}
}

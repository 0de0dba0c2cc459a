package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type worker struct {
	id          int
	jobs        <-chan Job
	taskTimeout time.Duration
	log         zerolog.Logger
}

func newWorker(id int, jobs <-chan Job, taskTimeout time.Duration, log zerolog.Logger) *worker {
	return &worker{
		id:          id,
		jobs:        jobs,
		taskTimeout: taskTimeout,
		log:         log.With().Int("worker_id", id).Str("component", "worker").Logger(),
	}
}

// run processes jobs until the queue is closed and drained.
func (w *worker) run(ctx context.Context) {
	for job := range w.jobs {
		w.execute(ctx, job)
	}
	w.log.Debug().Msg("worker stopped")
}

func (w *worker) execute(ctx context.Context, job Job) {
	if w.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.taskTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Str("job", job.Name).Msg("job panicked")
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		w.log.Warn().Err(err).Str("job", job.Name).Dur("elapsed", time.Since(start)).Msg("job failed")
		return
	}
	w.log.Debug().Str("job", job.Name).Dur("elapsed", time.Since(start)).Msg("job completed")
}

// Package worker runs short background jobs on a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrPoolClosed is returned by Submit after Stop.
var ErrPoolClosed = errors.New("worker pool is stopped")

// ErrQueueFull is returned by Submit when every slot is taken.
var ErrQueueFull = errors.New("worker queue is full")

// Job is one unit of background work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Config contains worker pool configuration.
type Config struct {
	WorkerCount int
	QueueSize   int
	TaskTimeout time.Duration
	StopTimeout time.Duration
}

// Pool manages multiple background workers fed from a bounded queue.
type Pool struct {
	cfg  Config
	jobs chan Job
	log  zerolog.Logger
	wg   sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewPool creates a new worker pool.
func NewPool(cfg Config, log zerolog.Logger) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 30 * time.Second
	}
	return &Pool{
		cfg:  cfg,
		jobs: make(chan Job, cfg.QueueSize),
		log:  log.With().Str("component", "worker-pool").Logger(),
	}
}

// Start launches the workers. Jobs keep running after ctx is cancelled so Stop can drain the queue.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	base := context.WithoutCancel(ctx)
	p.log.Info().Int("worker_count", p.cfg.WorkerCount).Msg("starting worker pool")
	for i := 0; i < p.cfg.WorkerCount; i++ {
		w := newWorker(i+1, p.jobs, p.cfg.TaskTimeout, p.log)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run(base)
		}()
	}
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(p.cfg.StopTimeout)
	defer timer.Stop()
	select {
	case <-done:
		p.log.Info().Msg("all workers stopped gracefully")
	case <-timer.C:
		p.log.Warn().Msg("worker pool shutdown timed out")
	}
}

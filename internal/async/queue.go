// Package async bounds how many certificate extractions run at once.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/extract"
)

var ErrQueueClosed = errors.New("extraction queue is shutting down")

// Runner is the extraction the queue hands to its workers.
type Runner interface {
	Run(ctx context.Context, path string, kind constants.DocumentKind) (extract.Result, error)
}

// Job is one queued extraction. ctx carries request values to the worker.
type Job struct {
	Path        string
	Kind        constants.DocumentKind
	SubmittedAt time.Time
	RequestID   string

	ctx   context.Context
	reply chan outcome
}

type outcome struct {
	res extract.Result
	err error
}

// ExtractionQueue runs extractions on a fixed set of workers. Run blocks
// until its job is done; queued jobs are drained on Shutdown.
type ExtractionQueue struct {
	runner  Runner
	logger  *slog.Logger
	workers int

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ExtractionQueue)

func WithWorkers(n int) Option {
	return func(q *ExtractionQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ExtractionQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func NewExtractionQueue(runner Runner, logger *slog.Logger, opts ...Option) *ExtractionQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ExtractionQueue{
		runner:  runner,
		logger:  logger,
		workers: 4,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ExtractionQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.logger.Debug("extraction started",
						"worker_id", workerID,
						"path", job.Path,
						"request_id", job.RequestID,
						"waited_ms", time.Since(job.SubmittedAt).Milliseconds(),
					)
					res, err := q.runner.Run(job.ctx, job.Path, job.Kind)
					job.reply <- outcome{res: res, err: err}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Run queues an extraction and waits for its result. If ctx ends first the
// job still runs, but its result is dropped.
func (q *ExtractionQueue) Run(ctx context.Context, path string, kind constants.DocumentKind) (extract.Result, error) {
	job := Job{
		Path:        path,
		Kind:        kind,
		SubmittedAt: time.Now(),
		RequestID:   common.RequestIDFromContext(ctx),
		ctx:         ctx,
		reply:       make(chan outcome, 1),
	}
	if err := q.enqueue(ctx, job); err != nil {
		return extract.Result{}, err
	}

	select {
	case out := <-job.reply:
		return out.res, out.err
	case <-ctx.Done():
		return extract.Result{}, ctx.Err()
	}
}

func (q *ExtractionQueue) enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "path", job.Path, "queued", len(q.ch))
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
func (q *ExtractionQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("extraction queue drained")
	}
}

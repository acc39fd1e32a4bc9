package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/osse101/BingoBot_Go/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Process(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface
type JobFunc func(ctx context.Context) error

// Process calls f
func (f JobFunc) Process(ctx context.Context) error { return f(ctx) }

// Pool runs jobs on a fixed number of goroutines fed by a bounded queue
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	quit     chan struct{}
	stopped  atomic.Bool
	mu       sync.RWMutex
	failures atomic.Int64
}

// NewPool creates a new worker pool
func NewPool(workers int, queueSize int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		quit:     make(chan struct{}),
	}
}

// Start starts the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			p.run(job)
		case <-p.quit:
			// Queued jobs are still run so accepted work is not lost
			for {
				select {
				case job := <-p.jobQueue:
					p.run(job)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) run(job Job) {
	ctx := context.Background()
	if err := job.Process(ctx); err != nil {
		p.failures.Add(1)
		logger.FromContext(ctx).Error(LogMsgWorkerJobFailed, "error", err)
	}
}

// Enqueue adds a job to the queue, blocking while it is full.
// It reports false once the pool is stopping.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped.Load() {
		return false
	}
	p.jobQueue <- job
	return true
}

// TryEnqueue adds a job without blocking. It reports false when the queue
// is full or the pool is stopping.
func (p *Pool) TryEnqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped.Load() {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		logger.Warn(LogMsgWorkerQueueFull, "queue_size", cap(p.jobQueue))
		return false
	}
}

// QueueLength returns the number of jobs waiting for a worker
func (p *Pool) QueueLength() int {
	return len(p.jobQueue)
}

// Failures returns how many jobs have returned an error
func (p *Pool) Failures() int64 {
	return p.failures.Load()
}

// Stop stops accepting jobs, runs what is queued and waits for the workers
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped.Swap(true) {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	close(p.quit)
	p.wg.Wait()
}

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/BingoBot_Go/internal/logger"
)

// NamedJob is a maintenance job with a name for logging
type NamedJob struct {
	Name string
	Job  Job
}

// MaintenanceWorker runs housekeeping jobs once a day at a fixed UTC hour
type MaintenanceWorker struct {
	jobs     []NamedJob
	hour     int
	now      func() time.Time
	timer    *time.Timer
	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewMaintenanceWorker creates a worker running jobs daily at hour (UTC)
func NewMaintenanceWorker(hour int, jobs ...NamedJob) *MaintenanceWorker {
	if hour < 0 || hour > 23 {
		hour = DefaultMaintenanceHourUTC
	}
	return &MaintenanceWorker{
		jobs:     jobs,
		hour:     hour,
		now:      time.Now,
		shutdown: make(chan struct{}),
	}
}

// Start schedules the first run
func (w *MaintenanceWorker) Start() {
	w.scheduleNext()
}

func (w *MaintenanceWorker) scheduleNext() {
	duration := untilNextRun(w.now(), w.hour)

	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.shutdown:
		return
	default:
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(duration, func() {
		select {
		case <-w.shutdown:
			return
		default:
		}
		w.RunNow()
		w.scheduleNext()
	})

	logger.Info(LogMsgMaintenanceScheduled, "next_run_at", w.now().UTC().Add(duration))
}

// RunNow runs every job once in a tracked goroutine and waits for it
func (w *MaintenanceWorker) RunNow() {
	w.wg.Add(1)
	defer w.wg.Done()

	ctx := context.Background()
	log := logger.FromContext(ctx)
	for _, job := range w.jobs {
		start := time.Now()
		if err := job.Job.Process(ctx); err != nil {
			log.Error(LogMsgMaintenanceJobFailed, "job", job.Name, "error", err)
			continue
		}
		log.Info(LogMsgMaintenanceJobCompleted, "job", job.Name, "duration", time.Since(start))
	}
}

// Shutdown cancels the pending run and waits for a running one to finish
func (w *MaintenanceWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgMaintenanceShuttingDown)

	w.mu.Lock()
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgMaintenanceShutdownTimeout)
		return ctx.Err()
	}
}

// untilNextRun returns the time from now to the next hour:00 UTC
func untilNextRun(now time.Time, hour int) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

package bingo

import (
	"context"
	"errors"
	"time"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// DeadLetterer keeps events that could not be processed
type DeadLetterer interface {
	DeadLetter(evt event.Event, attempts int, lastErr error)
}

// JobConfig controls how queued events are retried. A nil DeadLetter only
// logs events that exhaust their attempts.
type JobConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	DeadLetter  DeadLetterer
}

// ProcessJob applies one adapted event on the worker pool
type ProcessJob struct {
	service Service
	event   domain.UnifiedGameEvent
	cfg     JobConfig
}

// NewProcessJob creates a job for ev
func NewProcessJob(service Service, ev domain.UnifiedGameEvent, cfg JobConfig) *ProcessJob {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultProcessAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultProcessRetryDelay
	}
	return &ProcessJob{service: service, event: ev, cfg: cfg}
}

// Process runs the event, retrying failures with backoff. The webhook has
// already acknowledged the event, so one that still fails is dead-lettered
// rather than dropped.
func (j *ProcessJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx).With("event_id", j.event.EventID)

	var err error
	attempt := 1
	for ; ; attempt++ {
		if err = j.attempt(ctx); err == nil {
			return nil
		}
		if attempt >= j.cfg.MaxAttempts || ctx.Err() != nil {
			break
		}

		log.Warn(LogMsgProcessRetry, "attempt", attempt, "conflict", errors.Is(err, domain.ErrWriteConflict), "error", err)
		timer := time.NewTimer(event.CalculateRetryDelay(j.cfg.RetryDelay, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	log.Error(LogMsgProcessJobFailed, "attempts", attempt, "error", err)
	if j.cfg.DeadLetter != nil {
		j.cfg.DeadLetter.DeadLetter(event.NewGameEventFailedEvent(j.event), attempt, err)
		log.Warn(LogMsgProcessDeadLettered, "attempts", attempt)
	}
	return err
}

func (j *ProcessJob) attempt(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultProcessTimeout)
	defer cancel()
	_, err := j.service.ProcessEvent(ctx, j.event)
	return err
}

package event

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/BingoBot_Go/internal/logger"
)

// retryEntry tracks one failing event; attempts counts failed publishes so far
type retryEntry struct {
	event    Event
	attempts int
	lastErr  error
}

// ResilientPublisher wraps an event bus with asynchronous retries. Events that
// still fail after maxRetries, or that overflow the retry queue, are written to
// the dead-letter file.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter

	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewResilientPublisher creates a publisher and starts its retry worker
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dl, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}
	return newResilientPublisher(bus, maxRetries, retryDelay, dl, RetryQueueBufferSize), nil
}

func newResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, dl *DeadLetterWriter, queueSize int) *ResilientPublisher {
	p := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, queueSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.retryWorker()
	return p
}

// Publish implements Bus. Failures are retried in the background, so it never returns an error.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	p.PublishWithRetry(ctx, event)
	return nil
}

// Subscribe delegates to the wrapped bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.bus.Subscribe(eventType, handler)
}

// PublishWithRetry publishes once synchronously and queues the event for retry on failure
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	err := p.bus.Publish(ctx, event)
	if err == nil {
		return
	}

	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed, "event_type", event.Type, "event_id", event.SourceEventID(), "error", err)
	p.enqueue(retryEntry{event: event, attempts: 1, lastErr: err})
}

func (p *ResilientPublisher) enqueue(entry retryEntry) {
	select {
	case p.retryQueue <- entry:
	default:
		logger.Warn(LogMsgRetryQueueFull, "event_type", entry.event.Type)
		p.writeDeadLetter(entry)
	}
}

func (p *ResilientPublisher) retryWorker() {
	defer p.wg.Done()

	for {
		select {
		case entry := <-p.retryQueue:
			p.retry(entry, false)
		case <-p.shutdown:
			p.drain()
			return
		}
	}
}

// drain retries whatever is queued without waiting for backoff
func (p *ResilientPublisher) drain() {
	drained := 0
	for {
		select {
		case entry := <-p.retryQueue:
			p.retry(entry, true)
			drained++
		default:
			if drained > 0 {
				logger.Info(LogMsgQueueDrainedShutdown, "count", drained)
			}
			return
		}
	}
}

func (p *ResilientPublisher) retry(entry retryEntry, draining bool) {
	if !draining {
		timer := time.NewTimer(CalculateRetryDelay(p.retryDelay, entry.attempts))
		select {
		case <-timer.C:
		case <-p.shutdown:
			timer.Stop()
		}
	}

	err := p.bus.Publish(context.Background(), entry.event)
	if err == nil {
		logger.Info(LogMsgEventRetrySucceeded, "event_type", entry.event.Type, "attempt", entry.attempts)
		return
	}

	entry.lastErr = err
	entry.attempts++
	if entry.attempts > p.maxRetries {
		logger.Warn(LogMsgEventRetryExhausted, "event_type", entry.event.Type, "event_id", entry.event.SourceEventID(), "attempts", entry.attempts)
		p.writeDeadLetter(entry)
		return
	}

	logger.Debug(LogMsgEventRetryFailed, "event_type", entry.event.Type, "attempt", entry.attempts, "error", err)
	p.enqueue(entry)
}

func (p *ResilientPublisher) writeDeadLetter(entry retryEntry) {
	if err := p.deadLetter.Write(entry.event, entry.attempts, entry.lastErr); err != nil {
		logger.Error(LogMsgDeadLetterWriteFailed, "event_type", entry.event.Type, "error", err)
	}
}

// DeadLetter records evt directly, for callers that ran their own retries
func (p *ResilientPublisher) DeadLetter(evt Event, attempts int, lastErr error) {
	p.writeDeadLetter(retryEntry{event: evt, attempts: attempts, lastErr: lastErr})
}

// Shutdown stops the retry worker after draining the queue
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.deadLetter.Close()
	case <-ctx.Done():
		logger.Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}
}

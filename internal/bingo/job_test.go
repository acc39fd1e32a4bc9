package bingo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/event"
)

func TestProcessJob_RetriesUntilProcessed(t *testing.T) {
	ev := gamble("ev-1", "Alice", 1)
	svc := &MockService{}
	svc.On("ProcessEvent", mock.Anything, ev).Return(nil, domain.ErrWriteConflict).Twice()
	svc.On("ProcessEvent", mock.Anything, ev).Return(&ProcessSummary{EventID: ev.EventID}, nil).Once()
	dead := &recordingDeadLetter{}

	job := NewProcessJob(svc, ev, JobConfig{MaxAttempts: 4, RetryDelay: time.Microsecond, DeadLetter: dead})
	require.NoError(t, job.Process(context.Background()))

	svc.AssertNumberOfCalls(t, "ProcessEvent", 3)
	assert.Empty(t, dead.events)
}

func TestProcessJob_DeadLettersAfterLastAttempt(t *testing.T) {
	ev := gamble("ev-1", "Alice", 1)
	storageErr := errors.New("connection reset")
	svc := &MockService{}
	svc.On("ProcessEvent", mock.Anything, ev).Return(nil, storageErr)
	dead := &recordingDeadLetter{}

	job := NewProcessJob(svc, ev, JobConfig{MaxAttempts: 3, RetryDelay: time.Microsecond, DeadLetter: dead})
	err := job.Process(context.Background())
	assert.ErrorIs(t, err, storageErr)

	svc.AssertNumberOfCalls(t, "ProcessEvent", 3)
	require.Len(t, dead.events, 1)
	assert.Equal(t, event.GameEventFailed, dead.events[0].Type)
	assert.Equal(t, 3, dead.attempts[0])
	assert.ErrorIs(t, dead.errs[0], storageErr)
	assert.Equal(t, "ev-1", dead.events[0].SourceEventID())

	payload, ok := dead.events[0].Payload.(event.GameEventFailedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, ev, payload.Event)
}

func TestProcessJob_CancelledContextStopsRetrying(t *testing.T) {
	ev := gamble("ev-1", "Alice", 1)
	svc := &MockService{}
	svc.On("ProcessEvent", mock.Anything, ev).Return(nil, context.Canceled)
	dead := &recordingDeadLetter{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewProcessJob(svc, ev, JobConfig{MaxAttempts: 5, RetryDelay: time.Microsecond, DeadLetter: dead})
	assert.Error(t, job.Process(ctx))

	svc.AssertNumberOfCalls(t, "ProcessEvent", 1)
	assert.Len(t, dead.events, 1)
}

func TestNewProcessJob_Defaults(t *testing.T) {
	job := NewProcessJob(&MockService{}, gamble("ev-1", "Alice", 1), JobConfig{})
	assert.Equal(t, DefaultProcessAttempts, job.cfg.MaxAttempts)
	assert.Equal(t, DefaultProcessRetryDelay, job.cfg.RetryDelay)
	assert.Nil(t, job.cfg.DeadLetter)
}

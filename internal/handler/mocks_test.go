package handler

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/BingoBot_Go/internal/bingo"
	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/eventlog"
	"github.com/osse101/BingoBot_Go/internal/worker"
)

// MockBingoService is a mock implementation of bingo.Service
type MockBingoService struct {
	mock.Mock
}

func (m *MockBingoService) Adapt(ctx context.Context, source string, raw []byte) (*domain.UnifiedGameEvent, error) {
	args := m.Called(ctx, source, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnifiedGameEvent), args.Error(1)
}

func (m *MockBingoService) Ingest(ctx context.Context, source string, raw []byte) (*bingo.ProcessSummary, error) {
	args := m.Called(ctx, source, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bingo.ProcessSummary), args.Error(1)
}

func (m *MockBingoService) ProcessEvent(ctx context.Context, ev domain.UnifiedGameEvent) (*bingo.ProcessSummary, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bingo.ProcessSummary), args.Error(1)
}

func (m *MockBingoService) GetTileProgress(ctx context.Context, teamID, tileID int64, privileged bool) (*bingo.TileProgressView, error) {
	args := m.Called(ctx, teamID, tileID, privileged)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bingo.TileProgressView), args.Error(1)
}

func (m *MockBingoService) Shutdown(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockEventlogService is a mock implementation of eventlog.Service
type MockEventlogService struct {
	mock.Mock
}

func (m *MockEventlogService) Subscribe(bus event.Bus) error {
	return m.Called(bus).Error(0)
}

func (m *MockEventlogService) Recent(ctx context.Context, filter eventlog.EventFilter) ([]eventlog.Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]eventlog.Event), args.Error(1)
}

func (m *MockEventlogService) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// recordingQueue collects enqueued jobs and can simulate a full queue
type recordingQueue struct {
	mu   sync.Mutex
	full bool
	jobs []worker.Job
}

func (q *recordingQueue) TryEnqueue(job worker.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

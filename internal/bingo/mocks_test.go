package bingo

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/repository"
)

// MockBoardRepository is a mock implementation of repository.BoardRepository
type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) FindTeamForPlayer(ctx context.Context, playerName string, at time.Time) (*domain.Team, error) {
	args := m.Called(ctx, playerName, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *MockBoardRepository) ActiveTiles(ctx context.Context, teamID int64, at time.Time) ([]domain.ActiveTile, error) {
	args := m.Called(ctx, teamID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActiveTile), args.Error(1)
}

func (m *MockBoardRepository) GetTile(ctx context.Context, tileID int64) (*domain.Tile, error) {
	args := m.Called(ctx, tileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tile), args.Error(1)
}

func (m *MockBoardRepository) GetBoard(ctx context.Context, boardID int64) (*domain.Board, error) {
	args := m.Called(ctx, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardRepository) ImportBoard(ctx context.Context, board *domain.Board, teams []repository.TeamImport) error {
	args := m.Called(ctx, board, teams)
	return args.Error(0)
}

type progressKey struct {
	teamID, tileID int64
	key            string
}

// memoryProgressStore is an in-memory ProgressStore with the same version
// and applied-event semantics as the Postgres one. failWrites injects
// conflicts; conflictKeys makes every write to those keys conflict; markErr
// fails tile completion.
type memoryProgressStore struct {
	mu           sync.Mutex
	rows         map[progressKey]domain.TileProgress
	applied      map[progressKey]map[string]bool
	completions  map[[2]int64]domain.TileCompletion
	failWrites   int
	conflictKeys map[string]bool
	readErr      error
	markErr      error
	writes       int
}

func newMemoryProgressStore() *memoryProgressStore {
	return &memoryProgressStore{
		rows:         make(map[progressKey]domain.TileProgress),
		applied:      make(map[progressKey]map[string]bool),
		completions:  make(map[[2]int64]domain.TileCompletion),
		conflictKeys: make(map[string]bool),
	}
}

func (s *memoryProgressStore) Read(ctx context.Context, teamID, tileID int64, requirementKey string) (*domain.TileProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	row, ok := s.rows[progressKey{teamID, tileID, requirementKey}]
	if !ok {
		return nil, nil
	}
	row = copyRow(row)
	return &row, nil
}

func (s *memoryProgressStore) WriteIfUnchanged(ctx context.Context, row domain.TileProgress, expectedVersion int64, eventID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites > 0 {
		s.failWrites--
		return 0, domain.ErrWriteConflict
	}
	if s.conflictKeys[row.RequirementKey] {
		return 0, domain.ErrWriteConflict
	}

	k := progressKey{row.TeamID, row.TileID, row.RequirementKey}
	current, ok := s.rows[k]
	switch {
	case expectedVersion == 0 && ok:
		return 0, domain.ErrWriteConflict
	case expectedVersion != 0 && (!ok || current.Version != expectedVersion):
		return 0, domain.ErrWriteConflict
	}
	if eventID != "" {
		if s.applied[k][eventID] {
			return 0, domain.ErrEventAlreadyApplied
		}
		if s.applied[k] == nil {
			s.applied[k] = make(map[string]bool)
		}
		s.applied[k][eventID] = true
	}

	row = copyRow(row)
	if ok && current.CompletedAt != nil {
		row.CompletedAt = current.CompletedAt
	}
	row.Version = expectedVersion + 1
	row.UpdatedAt = time.Now()
	s.rows[k] = row
	s.writes++
	return row.Version, nil
}

func (s *memoryProgressStore) ListTileProgress(ctx context.Context, teamID, tileID int64) ([]domain.TileProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TileProgress
	for k, row := range s.rows {
		if k.teamID == teamID && k.tileID == tileID {
			out = append(out, copyRow(row))
		}
	}
	return out, nil
}

func (s *memoryProgressStore) MarkTileCompleted(ctx context.Context, completion domain.TileCompletion) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return false, s.markErr
	}
	k := [2]int64{completion.TeamID, completion.TileID}
	if _, ok := s.completions[k]; ok {
		return false, nil
	}
	s.completions[k] = completion
	return true, nil
}

func (s *memoryProgressStore) row(teamID, tileID int64, key string) (domain.TileProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[progressKey{teamID, tileID, key}]
	return row, ok
}

func copyRow(row domain.TileProgress) domain.TileProgress {
	if row.ProgressMetadata != nil {
		row.ProgressMetadata = row.ProgressMetadata.Clone()
	}
	return row
}

// memoryDedup claims ids in a set
type memoryDedup struct {
	mu       sync.Mutex
	claimed  map[string]bool
	released []string
}

func newMemoryDedup() *memoryDedup {
	return &memoryDedup{claimed: make(map[string]bool)}
}

func (d *memoryDedup) ClaimEvent(ctx context.Context, eventID, source string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.claimed[eventID] {
		return domain.ErrEventAlreadyProcessed
	}
	d.claimed[eventID] = true
	return nil
}

func (d *memoryDedup) ReleaseEvent(ctx context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.claimed, eventID)
	d.released = append(d.released, eventID)
	return nil
}

// recordingDeadLetter keeps every dead-lettered event
type recordingDeadLetter struct {
	mu       sync.Mutex
	events   []event.Event
	attempts []int
	errs     []error
}

func (d *recordingDeadLetter) DeadLetter(evt event.Event, attempts int, lastErr error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
	d.attempts = append(d.attempts, attempts)
	d.errs = append(d.errs, lastErr)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) PublishWithRetry(ctx context.Context, evt event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) ofType(t event.Type) []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.Event
	for _, evt := range p.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

// MockService is a mock implementation of Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Adapt(ctx context.Context, source string, raw []byte) (*domain.UnifiedGameEvent, error) {
	args := m.Called(ctx, source, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnifiedGameEvent), args.Error(1)
}

func (m *MockService) Ingest(ctx context.Context, source string, raw []byte) (*ProcessSummary, error) {
	args := m.Called(ctx, source, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProcessSummary), args.Error(1)
}

func (m *MockService) ProcessEvent(ctx context.Context, ev domain.UnifiedGameEvent) (*ProcessSummary, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProcessSummary), args.Error(1)
}

func (m *MockService) GetTileProgress(ctx context.Context, teamID, tileID int64, privileged bool) (*TileProgressView, error) {
	args := m.Called(ctx, teamID, tileID, privileged)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TileProgressView), args.Error(1)
}

func (m *MockService) Shutdown(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

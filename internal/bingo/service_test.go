package bingo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/osse101/BingoBot_Go/internal/adapter"
	"github.com/osse101/BingoBot_Go/internal/concurrency"
	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/progress"
	"github.com/osse101/BingoBot_Go/internal/requirement"
)

const (
	testTeamID  = int64(7)
	testBoardID = int64(3)
	testTileID  = int64(11)
)

var boardStart = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

type stubAdapter struct {
	ev  *domain.UnifiedGameEvent
	err error
}

func (a stubAdapter) Adapt(ctx context.Context, raw []byte) (*domain.UnifiedGameEvent, error) {
	return a.ev, a.err
}

type fixture struct {
	svc       Service
	boards    *MockBoardRepository
	store     *memoryProgressStore
	dedup     *memoryDedup
	publisher *recordingPublisher
}

func newFixture(t *testing.T, tiles ...domain.ActiveTile) *fixture {
	t.Helper()
	f := &fixture{
		boards:    &MockBoardRepository{},
		store:     newMemoryProgressStore(),
		dedup:     newMemoryDedup(),
		publisher: &recordingPublisher{},
	}
	f.boards.On("FindTeamForPlayer", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Team{ID: testTeamID, BoardID: testBoardID, Name: "Iron Wolves"}, nil).Maybe()
	f.boards.On("ActiveTiles", mock.Anything, testTeamID, mock.Anything).Return(tiles, nil).Maybe()
	f.svc = f.newService(nil)
	return f
}

// newService builds another service over the same storage, as a second process would
func (f *fixture) newService(adapters adapter.Table) Service {
	return NewService(Deps{
		Adapters:         adapters,
		Boards:           f.boards,
		Progress:         f.store,
		Dedup:            f.dedup,
		Engine:           progress.NewEngine(nil),
		Publisher:        f.publisher,
		Locks:            concurrency.NewLockManager(),
		Tracer:           noop.NewTracerProvider().Tracer("test"),
		MaxWriteAttempts: 20,
		WriteRetryDelay:  time.Microsecond,
	})
}

func tile(mode domain.TileCompletionMode, reqs ...domain.Requirement) domain.ActiveTile {
	return domain.ActiveTile{
		Tile: domain.Tile{
			ID:             testTileID,
			BoardID:        testBoardID,
			Name:           "Barbarian Assault",
			CompletionMode: mode,
			Requirements:   reqs,
		},
		BoardStartsAt: boardStart,
	}
}

func gamble(id, player string, count int64) domain.UnifiedGameEvent {
	return domain.UnifiedGameEvent{
		EventID:    id,
		EventType:  domain.GameEventBAGamble,
		PlayerName: player,
		AccountID:  "acc-" + strings.ToLower(player),
		Timestamp:  boardStart.Add(time.Hour),
		Source:     "dink",
		Data:       domain.GambleData{GambleCount: count},
	}
}

func TestProcessEvent_SumAcrossPlayersCompletesTile(t *testing.T) {
	req := domain.BAGamblesRequirement{Amount: 50}
	f := newFixture(t, tile(domain.CompletionAll, req))
	ctx := context.Background()

	first, err := f.svc.ProcessEvent(ctx, gamble("ev-1", "Alice", 20))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Requirements)
	assert.Zero(t, first.Completions)

	second, err := f.svc.ProcessEvent(ctx, gamble("ev-2", "Bob", 35))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Completions)
	assert.Equal(t, []int64{testTileID}, second.CompletedTiles)

	row, ok := f.store.row(testTeamID, testTileID, requirement.KeyOf(req))
	require.True(t, ok)
	assert.Equal(t, int64(55), row.ProgressValue)
	assert.True(t, row.IsCompleted)
	require.NotNil(t, row.CompletedAt)
	assert.Equal(t, boardStart.Add(time.Hour), *row.CompletedAt)
	assert.Len(t, row.ProgressMetadata.Base().PlayerContributions, 2)

	completed := f.publisher.ofType(event.RequirementCompleted)
	require.Len(t, completed, 1)
	payload, err := event.DecodePayload[event.RequirementCompletedPayloadV1](completed[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "Bob", payload.PlayerName)
	assert.Equal(t, int64(55), payload.ProgressValue)
	assert.Equal(t, int64(50), payload.TargetValue)

	assert.Len(t, f.publisher.ofType(event.TileCompleted), 1)
	assert.Len(t, f.publisher.ofType(event.GameEventProcessed), 2)
}

func TestProcessEvent_CompletionLatchesAndAnnouncesOnce(t *testing.T) {
	req := domain.BAGamblesRequirement{Amount: 5}
	f := newFixture(t, tile(domain.CompletionAll, req))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.ProcessEvent(ctx, gamble(fmt.Sprintf("ev-%d", i), "Alice", 5))
		require.NoError(t, err)
	}

	row, _ := f.store.row(testTeamID, testTileID, requirement.KeyOf(req))
	assert.Equal(t, int64(15), row.ProgressValue)
	assert.Len(t, f.publisher.ofType(event.RequirementCompleted), 1)
	assert.Len(t, f.publisher.ofType(event.TileCompleted), 1)
}

func TestProcessEvent_RedeliveryIsNoop(t *testing.T) {
	req := domain.BAGamblesRequirement{Amount: 50}
	f := newFixture(t, tile(domain.CompletionAll, req))
	ctx := context.Background()
	ev := gamble("ev-1", "Alice", 10)

	_, err := f.svc.ProcessEvent(ctx, ev)
	require.NoError(t, err)
	summary, err := f.svc.ProcessEvent(ctx, ev)
	require.NoError(t, err)

	assert.True(t, summary.Duplicate)
	row, _ := f.store.row(testTeamID, testTileID, requirement.KeyOf(req))
	assert.Equal(t, int64(10), row.ProgressValue)
	assert.Equal(t, 1, f.store.writes)
}

func TestProcessEvent_DerivesMissingEventID(t *testing.T) {
	f := newFixture(t, tile(domain.CompletionAll, domain.BAGamblesRequirement{Amount: 50}))
	ev := gamble("", "Alice", 1)

	summary, err := f.svc.ProcessEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, adapter.EventID(ev), summary.EventID)
}

func TestProcessEvent_NoTeamKeepsClaim(t *testing.T) {
	f := &fixture{
		boards:    &MockBoardRepository{},
		store:     newMemoryProgressStore(),
		dedup:     newMemoryDedup(),
		publisher: &recordingPublisher{},
	}
	f.boards.On("FindTeamForPlayer", mock.Anything, "Stranger", mock.Anything).Return(nil, domain.ErrTeamNotFound)
	f.svc = f.newService(nil)

	summary, err := f.svc.ProcessEvent(context.Background(), gamble("ev-1", "Stranger", 1))
	require.NoError(t, err)

	assert.Zero(t, summary.TeamID)
	assert.Zero(t, summary.Requirements)
	assert.Empty(t, f.dedup.released)
	f.boards.AssertNotCalled(t, "ActiveTiles", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_NonMatchingRequirementsUntouched(t *testing.T) {
	pet := domain.PetRequirement{PetName: "Pet penance queen", Amount: 1}
	gambles := domain.BAGamblesRequirement{Amount: 50}
	f := newFixture(t, tile(domain.CompletionAny, pet, gambles))

	summary, err := f.svc.ProcessEvent(context.Background(), gamble("ev-1", "Alice", 3))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Requirements)
	_, ok := f.store.row(testTeamID, testTileID, requirement.KeyOf(pet))
	assert.False(t, ok)
}

func TestProcessEvent_RetriesWriteConflicts(t *testing.T) {
	req := domain.BAGamblesRequirement{Amount: 50}
	f := newFixture(t, tile(domain.CompletionAll, req))
	f.store.failWrites = 3

	summary, err := f.svc.ProcessEvent(context.Background(), gamble("ev-1", "Alice", 4))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Requirements)
	row, _ := f.store.row(testTeamID, testTileID, requirement.KeyOf(req))
	assert.Equal(t, int64(4), row.ProgressValue)
}

func TestProcessEvent_ExhaustedRetriesReleaseClaim(t *testing.T) {
	f := newFixture(t, tile(domain.CompletionAll, domain.BAGamblesRequirement{Amount: 50}))
	f.store.failWrites = 1000

	_, err := f.svc.ProcessEvent(context.Background(), gamble("ev-1", "Alice", 4))
	require.Error(t, err)

	assert.True(t, errors.Is(err, domain.ErrWriteConflict))
	assert.Equal(t, []string{"ev-1"}, f.dedup.released)
	assert.Empty(t, f.publisher.ofType(event.GameEventProcessed))
}

func TestProcessEvent_ReadErrorReleasesClaim(t *testing.T) {
	f := newFixture(t, tile(domain.CompletionAll, domain.BAGamblesRequirement{Amount: 50}))
	f.store.readErr = errors.New("connection reset")

	_, err := f.svc.ProcessEvent(context.Background(), gamble("ev-1", "Alice", 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, []string{"ev-1"}, f.dedup.released)

	// The released id can be delivered again once storage recovers
	f.store.readErr = nil
	summary, err := f.svc.ProcessEvent(context.Background(), gamble("ev-1", "Alice", 4))
	require.NoError(t, err)
	assert.False(t, summary.Duplicate)
}

func TestProcessEvent_PartialFailureResumesOnRetry(t *testing.T) {
	small := domain.BAGamblesRequirement{Amount: 5}
	large := domain.BAGamblesRequirement{Amount: 10}
	f := newFixture(t, tile(domain.CompletionAll, small, large))
	f.store.conflictKeys[requirement.KeyOf(large)] = true
	ctx := context.Background()
	ev := gamble("ev-1", "Alice", 12)

	_, err := f.svc.ProcessEvent(ctx, ev)
	require.ErrorIs(t, err, domain.ErrWriteConflict)
	assert.Equal(t, []string{"ev-1"}, f.dedup.released)

	row, ok := f.store.row(testTeamID, testTileID, requirement.KeyOf(small))
	require.True(t, ok)
	assert.Equal(t, int64(12), row.ProgressValue)
	_, ok = f.store.row(testTeamID, testTileID, requirement.KeyOf(large))
	assert.False(t, ok)
	assert.Empty(t, f.publisher.ofType(event.TileCompleted))

	delete(f.store.conflictKeys, requirement.KeyOf(large))
	summary, err := f.svc.ProcessEvent(ctx, ev)
	require.NoError(t, err)
	assert.False(t, summary.Duplicate)
	assert.Equal(t, 1, summary.Requirements)
	assert.Equal(t, []int64{testTileID}, summary.CompletedTiles)

	row, _ = f.store.row(testTeamID, testTileID, requirement.KeyOf(small))
	assert.Equal(t, int64(12), row.ProgressValue, "the row the first attempt reached is not counted twice")
	assert.Equal(t, int64(1), row.Version)
	row, _ = f.store.row(testTeamID, testTileID, requirement.KeyOf(large))
	assert.Equal(t, int64(12), row.ProgressValue)
	assert.True(t, row.IsCompleted)

	assert.Len(t, f.publisher.ofType(event.RequirementCompleted), 2)
	assert.Len(t, f.publisher.ofType(event.TileCompleted), 1)

	// Once fully applied the claim holds
	summary, err = f.svc.ProcessEvent(ctx, ev)
	require.NoError(t, err)
	assert.True(t, summary.Duplicate)
}

func TestProcessEvent_TileCompletionFailureResumesOnRetry(t *testing.T) {
	req := domain.BAGamblesRequirement{Amount: 5}
	f := newFixture(t, tile(domain.CompletionAll, req))
	f.store.markErr = errors.New("connection reset")
	ctx := context.Background()
	ev := gamble("ev-1", "Alice", 6)

	_, err := f.svc.ProcessEvent(ctx, ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	row, _ := f.store.row(testTeamID, testTileID, requirement.KeyOf(req))
	assert.True(t, row.IsCompleted)
	assert.Empty(t, f.publisher.ofType(event.TileCompleted))

	f.store.markErr = nil
	summary, err := f.svc.ProcessEvent(ctx, ev)
	require.NoError(t, err)
	assert.Zero(t, summary.Requirements)
	assert.Equal(t, []int64{testTileID}, summary.CompletedTiles)
	assert.Len(t, f.publisher.ofType(event.TileCompleted), 1)
	assert.Len(t, f.publisher.ofType(event.RequirementCompleted), 1)
}

func TestProcessEvent_LaterEventCompletesTileLeftOpen(t *testing.T) {
	req := domain.BAGamblesRequirement{Amount: 5}
	f := newFixture(t, tile(domain.CompletionAll, req))
	f.store.markErr = errors.New("connection reset")
	ctx := context.Background()

	_, err := f.svc.ProcessEvent(ctx, gamble("ev-1", "Alice", 6))
	require.Error(t, err)

	f.store.markErr = nil
	summary, err := f.svc.ProcessEvent(ctx, gamble("ev-2", "Bob", 1))
	require.NoError(t, err)
	assert.Equal(t, []int64{testTileID}, summary.CompletedTiles)
	assert.Len(t, f.publisher.ofType(event.TileCompleted), 1)
}

func TestProcessEvent_ConcurrentProcessesNeverLoseIncrements(t *testing.T) {
	req := domain.BAGamblesRequirement{Amount: 1000}
	f := newFixture(t, tile(domain.CompletionAll, req))
	services := []Service{f.svc, f.newService(nil), f.newService(nil)}

	faker := gofakeit.New(42)
	players := []string{"Alice", "Bob", "Carol", "Dave"}
	var expected int64
	var events []domain.UnifiedGameEvent
	for i := 0; i < 60; i++ {
		count := int64(faker.IntRange(1, 9))
		expected += count
		events = append(events, gamble(fmt.Sprintf("ev-%d", i), players[faker.IntRange(0, len(players)-1)], count))
	}

	var wg sync.WaitGroup
	for i, ev := range events {
		wg.Add(1)
		go func(svc Service, ev domain.UnifiedGameEvent) {
			defer wg.Done()
			_, err := svc.ProcessEvent(context.Background(), ev)
			assert.NoError(t, err)
		}(services[i%len(services)], ev)
	}
	wg.Wait()

	row, ok := f.store.row(testTeamID, testTileID, requirement.KeyOf(req))
	require.True(t, ok)
	assert.Equal(t, expected, row.ProgressValue)

	var contributed int64
	for _, c := range row.ProgressMetadata.Base().PlayerContributions {
		contributed += c.Value
	}
	assert.Equal(t, expected, contributed)
}

func TestProcessEvent_PublishesNewTiersOnce(t *testing.T) {
	req := domain.BAGamblesRequirement{Amount: 50, Tiers: []int64{10, 20, 40}}
	f := newFixture(t, tile(domain.CompletionAll, req))
	ctx := context.Background()

	_, err := f.svc.ProcessEvent(ctx, gamble("ev-1", "Alice", 25))
	require.NoError(t, err)
	_, err = f.svc.ProcessEvent(ctx, gamble("ev-2", "Alice", 1))
	require.NoError(t, err)
	_, err = f.svc.ProcessEvent(ctx, gamble("ev-3", "Alice", 20))
	require.NoError(t, err)

	var tiers []int
	for _, evt := range f.publisher.ofType(event.TierCompleted) {
		payload, err := event.DecodePayload[event.TierCompletedPayloadV1](evt.Payload)
		require.NoError(t, err)
		tiers = append(tiers, payload.Tier)
	}
	assert.Equal(t, []int{0, 1, 2}, tiers)
}

func TestProcessEvent_PuzzleAnnouncedByDisplayNameOnly(t *testing.T) {
	req := domain.PuzzleRequirement{
		HiddenRequirement: domain.BAGamblesRequirement{Amount: 5, Tiers: []int64{2}},
		DisplayName:       "Horn of Glory",
		Hint:              "Listen closely",
	}
	f := newFixture(t, tile(domain.CompletionAll, req))

	_, err := f.svc.ProcessEvent(context.Background(), gamble("ev-1", "Alice", 6))
	require.NoError(t, err)

	assert.Empty(t, f.publisher.ofType(event.TierCompleted))
	completed := f.publisher.ofType(event.RequirementCompleted)
	require.Len(t, completed, 1)
	payload, err := event.DecodePayload[event.RequirementCompletedPayloadV1](completed[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, domain.RequirementPuzzle, payload.RequirementType)
	assert.Equal(t, "Horn of Glory", payload.DisplayName)
	assert.Equal(t, int64(1), payload.ProgressValue)
	assert.Equal(t, int64(1), payload.TargetValue)
	assert.NotContains(t, payload.RequirementKey, string(domain.RequirementBAGambles))
}

func TestProcessEvent_UnknownRequirementIgnored(t *testing.T) {
	unknown := domain.UnknownRequirement{RawType: "DIARY"}
	gambles := domain.BAGamblesRequirement{Amount: 1}
	f := newFixture(t, tile(domain.CompletionAll, unknown, gambles))

	summary, err := f.svc.ProcessEvent(context.Background(), gamble("ev-1", "Alice", 1))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Requirements)
	assert.Equal(t, []int64{testTileID}, summary.CompletedTiles)
}

func TestIngest(t *testing.T) {
	ev := gamble("ev-1", "Alice", 2)
	f := newFixture(t, tile(domain.CompletionAll, domain.BAGamblesRequirement{Amount: 50}))
	svc := f.newService(adapter.Table{
		"dink":  stubAdapter{ev: &ev},
		"noise": stubAdapter{},
		"bad":   stubAdapter{err: fmt.Errorf("%w: missing player", domain.ErrInvalidEvent)},
	})
	ctx := context.Background()

	summary, err := svc.Ingest(ctx, "dink", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Requirements)

	summary, err = svc.Ingest(ctx, "noise", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, summary.Irrelevant)

	_, err = svc.Ingest(ctx, "bad", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)

	_, err = svc.Ingest(ctx, "runelite", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestGetTileProgress_RedactsPuzzlesForParticipants(t *testing.T) {
	req := domain.PuzzleRequirement{
		HiddenRequirement: domain.BAGamblesRequirement{Amount: 50},
		DisplayName:       "Horn of Glory",
	}
	at := tile(domain.CompletionAll, req)
	f := newFixture(t, at)
	f.boards.On("GetTile", mock.Anything, testTileID).Return(&at.Tile, nil)
	ctx := context.Background()

	_, err := f.svc.ProcessEvent(ctx, gamble("ev-1", "Alice", 3))
	require.NoError(t, err)

	public, err := f.svc.GetTileProgress(ctx, testTeamID, testTileID, false)
	require.NoError(t, err)
	require.Len(t, public.Requirements, 1)
	assert.False(t, public.IsCompleted)
	assert.Zero(t, public.Requirements[0].ProgressValue)
	meta := public.Requirements[0].ProgressMetadata.(*domain.PuzzleProgress)
	assert.Nil(t, meta.HiddenProgressMetadata)
	assert.Empty(t, meta.HiddenRequirementType)

	full, err := f.svc.GetTileProgress(ctx, testTeamID, testTileID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), full.Requirements[0].ProgressValue)
	assert.Equal(t, requirement.KeyOf(req), full.Requirements[0].RequirementKey)
}

func TestGetTileProgress_Errors(t *testing.T) {
	f := newFixture(t)
	f.boards.On("GetTile", mock.Anything, int64(99)).Return(nil, domain.ErrTileNotFound)

	_, err := f.svc.GetTileProgress(context.Background(), testTeamID, 99, false)
	assert.ErrorIs(t, err, domain.ErrTileNotFound)

	_, err = f.svc.GetTileProgress(context.Background(), 0, testTileID, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTileSatisfied(t *testing.T) {
	a := domain.BAGamblesRequirement{Amount: 5}
	b := domain.PetRequirement{PetName: "Pet penance queen", Amount: 1}
	done := func(req domain.Requirement) domain.TileProgress {
		return domain.TileProgress{RequirementKey: requirement.KeyOf(req), IsCompleted: true}
	}

	tests := []struct {
		name string
		mode domain.TileCompletionMode
		reqs []domain.Requirement
		rows []domain.TileProgress
		want bool
	}{
		{"all with one of two", domain.CompletionAll, []domain.Requirement{a, b}, []domain.TileProgress{done(a)}, false},
		{"all with both", domain.CompletionAll, []domain.Requirement{a, b}, []domain.TileProgress{done(a), done(b)}, true},
		{"any with one of two", domain.CompletionAny, []domain.Requirement{a, b}, []domain.TileProgress{done(b)}, true},
		{"incomplete row", domain.CompletionAny, []domain.Requirement{a}, []domain.TileProgress{{RequirementKey: requirement.KeyOf(a)}}, false},
		{"no requirements", domain.CompletionAll, nil, nil, false},
		{"only unknown", domain.CompletionAll, []domain.Requirement{domain.UnknownRequirement{RawType: "X"}}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := domain.Tile{CompletionMode: tt.mode, Requirements: tt.reqs}
			assert.Equal(t, tt.want, TileSatisfied(tile, tt.rows))
		})
	}
}

func TestShutdown_WaitsForInFlight(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, f.svc.Shutdown(ctx))
}

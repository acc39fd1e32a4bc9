package bingo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/osse101/BingoBot_Go/internal/adapter"
	"github.com/osse101/BingoBot_Go/internal/concurrency"
	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/event"
	"github.com/osse101/BingoBot_Go/internal/logger"
	"github.com/osse101/BingoBot_Go/internal/metrics"
	"github.com/osse101/BingoBot_Go/internal/progress"
	"github.com/osse101/BingoBot_Go/internal/repository"
	"github.com/osse101/BingoBot_Go/internal/requirement"
)

// Service applies unified game events to team tile progress
type Service interface {
	// Adapt converts a raw source payload. A nil event with a nil error means
	// the payload is irrelevant to the bingo.
	Adapt(ctx context.Context, source string, raw []byte) (*domain.UnifiedGameEvent, error)

	// Ingest adapts and processes a raw payload synchronously
	Ingest(ctx context.Context, source string, raw []byte) (*ProcessSummary, error)

	// ProcessEvent applies one event to every matching requirement of the
	// player's team. Redelivery of an event id is a no-op.
	ProcessEvent(ctx context.Context, ev domain.UnifiedGameEvent) (*ProcessSummary, error)

	// GetTileProgress returns a team's stored progress on a tile. Unprivileged
	// callers get the participant view with puzzle details redacted.
	GetTileProgress(ctx context.Context, teamID, tileID int64, privileged bool) (*TileProgressView, error)

	// Lifecycle
	Shutdown(ctx context.Context) error
}

// Publisher delivers completion events
type Publisher interface {
	PublishWithRetry(ctx context.Context, evt event.Event)
}

// ProcessSummary describes what one event changed
type ProcessSummary struct {
	EventID        string  `json:"event_id"`
	TeamID         int64   `json:"team_id,omitempty"`
	Duplicate      bool    `json:"duplicate,omitempty"`
	Irrelevant     bool    `json:"irrelevant,omitempty"`
	Requirements   int     `json:"requirements"`
	Completions    int     `json:"completions"`
	CompletedTiles []int64 `json:"completed_tiles,omitempty"`
}

// TileProgressView is the stored progress of every requirement on a team's tile
type TileProgressView struct {
	TeamID         int64                     `json:"team_id"`
	TileID         int64                     `json:"tile_id"`
	TileName       string                    `json:"tile_name"`
	CompletionMode domain.TileCompletionMode `json:"completion_mode"`
	IsCompleted    bool                      `json:"is_completed"`
	Requirements   []domain.TileProgress     `json:"requirements"`
}

// Deps are the collaborators of the service
type Deps struct {
	Adapters  adapter.Table
	Boards    repository.BoardRepository
	Progress  repository.ProgressStore
	Dedup     repository.EventDedupRepository
	Engine    *progress.Engine
	Publisher Publisher
	Locks     *concurrency.LockManager
	Tracer    trace.Tracer

	MaxWriteAttempts int
	WriteRetryDelay  time.Duration
}

type service struct {
	adapters  adapter.Table
	boards    repository.BoardRepository
	progress  repository.ProgressStore
	dedup     repository.EventDedupRepository
	engine    *progress.Engine
	publisher Publisher
	locks     *concurrency.LockManager
	tracer    trace.Tracer

	maxWriteAttempts int
	writeRetryDelay  time.Duration

	wg sync.WaitGroup
}

// NewService creates the bingo service
func NewService(deps Deps) Service {
	s := &service{
		adapters:         deps.Adapters,
		boards:           deps.Boards,
		progress:         deps.Progress,
		dedup:            deps.Dedup,
		engine:           deps.Engine,
		publisher:        deps.Publisher,
		locks:            deps.Locks,
		tracer:           deps.Tracer,
		maxWriteAttempts: deps.MaxWriteAttempts,
		writeRetryDelay:  deps.WriteRetryDelay,
	}
	if s.locks == nil {
		s.locks = concurrency.NewLockManager()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(TracerName)
	}
	if s.maxWriteAttempts <= 0 {
		s.maxWriteAttempts = DefaultMaxWriteAttempts
	}
	if s.writeRetryDelay <= 0 {
		s.writeRetryDelay = DefaultWriteRetryDelay
	}
	return s
}

func (s *service) Adapt(ctx context.Context, source string, raw []byte) (*domain.UnifiedGameEvent, error) {
	ev, err := s.adapters.Adapt(ctx, source, raw)
	if err != nil {
		reason := metrics.ReasonInvalid
		if errors.Is(err, domain.ErrUnknownSource) {
			reason = metrics.ReasonUnknownSource
		}
		metrics.GameEventsDropped.WithLabelValues(source, reason).Inc()
		return nil, err
	}
	if ev == nil {
		metrics.GameEventsDropped.WithLabelValues(source, metrics.ReasonIrrelevant).Inc()
		logger.FromContext(ctx).Debug(LogMsgEventIrrelevant, "source", source)
		return nil, nil
	}
	if ev.EventID == "" {
		ev.EventID = adapter.EventID(*ev)
	}
	return ev, nil
}

func (s *service) Ingest(ctx context.Context, source string, raw []byte) (*ProcessSummary, error) {
	ev, err := s.Adapt(ctx, source, raw)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return &ProcessSummary{Irrelevant: true}, nil
	}
	return s.ProcessEvent(ctx, *ev)
}

func (s *service) ProcessEvent(ctx context.Context, ev domain.UnifiedGameEvent) (*ProcessSummary, error) {
	s.wg.Add(1)
	defer s.wg.Done()

	if ev.EventID == "" {
		ev.EventID = adapter.EventID(ev)
	}

	ctx, span := s.tracer.Start(ctx, "bingo.ProcessEvent", trace.WithAttributes(
		attribute.String(AttrEventID, ev.EventID),
		attribute.String(AttrEventType, string(ev.EventType)),
		attribute.String(AttrSource, ev.Source),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.EventProcessingDuration.WithLabelValues(string(ev.EventType)).Observe(time.Since(start).Seconds())
	}()

	log := logger.FromContext(ctx).With("event_id", ev.EventID, "event_type", ev.EventType, "player", ev.PlayerName)

	if err := s.dedup.ClaimEvent(ctx, ev.EventID, ev.Source); err != nil {
		if errors.Is(err, domain.ErrEventAlreadyProcessed) {
			metrics.GameEventsDropped.WithLabelValues(ev.Source, metrics.ReasonDuplicate).Inc()
			log.Debug(LogMsgEventDuplicate)
			return &ProcessSummary{EventID: ev.EventID, Duplicate: true}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to claim event %s: %w", ev.EventID, err)
	}

	summary := &ProcessSummary{EventID: ev.EventID}
	if err := s.apply(ctx, ev, summary); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error(LogMsgEventFailed, "error", err, "requirements_written", summary.Requirements)

		// Rows the event already reached carry its applied marker, so the
		// claim can always be released and a retry only fills in the rest.
		if relErr := s.dedup.ReleaseEvent(context.WithoutCancel(ctx), ev.EventID); relErr != nil {
			log.Error(LogMsgClaimReleaseFailed, "error", relErr)
		}
		return nil, err
	}

	s.publisher.PublishWithRetry(ctx, event.NewGameEventProcessedEvent(event.GameEventProcessedPayloadV1{
		EventID:      ev.EventID,
		EventType:    ev.EventType,
		Source:       ev.Source,
		PlayerName:   ev.PlayerName,
		TeamID:       summary.TeamID,
		Requirements: summary.Requirements,
		Completions:  summary.Completions,
	}))

	log.Info(LogMsgEventProcessed,
		"team_id", summary.TeamID,
		"requirements", summary.Requirements,
		"completions", summary.Completions)
	return summary, nil
}

// apply runs the event against every active tile of the player's team. A
// failing requirement does not stop the others; the failures are joined.
func (s *service) apply(ctx context.Context, ev domain.UnifiedGameEvent, summary *ProcessSummary) error {
	log := logger.FromContext(ctx)

	team, err := s.boards.FindTeamForPlayer(ctx, ev.PlayerName, ev.Timestamp)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			metrics.GameEventsDropped.WithLabelValues(ev.Source, metrics.ReasonNoTeam).Inc()
			log.Debug(LogMsgEventNoTeam, "player", ev.PlayerName)
			return nil
		}
		return fmt.Errorf("failed to find team for %s: %w", ev.PlayerName, err)
	}
	summary.TeamID = team.ID

	tiles, err := s.boards.ActiveTiles(ctx, team.ID, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to load active tiles for team %d: %w", team.ID, err)
	}

	var errs []error
	for _, tile := range tiles {
		pctx := domain.PlayerContext{
			TeamID:         team.ID,
			AccountID:      ev.AccountID,
			PlayerName:     ev.PlayerName,
			EventStartTime: tile.BoardStartsAt,
		}

		seen := make(map[string]bool, len(tile.Requirements))
		anyCompleted := false
		for _, req := range tile.Requirements {
			if _, ok := req.(domain.UnknownRequirement); ok {
				log.Warn(LogMsgUnknownRequirement, "tile_id", tile.ID, "requirement_type", req.Type())
				continue
			}
			if !requirement.Matches(ev, req) {
				continue
			}
			key := requirement.KeyOf(req)
			if seen[key] {
				continue
			}
			seen[key] = true

			out, err := s.applyRequirement(ctx, ev, team.ID, tile, req, key, pctx)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if out.written {
				summary.Requirements++
			}
			if out.transitioned {
				summary.Completions++
			}
			if out.rowCompleted {
				anyCompleted = true
			}
		}

		// Checked on every pass over a completed row, not only on the
		// transition, so a retry finishes a tile an earlier failure left open
		if !anyCompleted {
			continue
		}
		done, err := s.completeTile(ctx, ev, team.ID, tile)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if done {
			summary.CompletedTiles = append(summary.CompletedTiles, tile.ID)
		}
	}
	return errors.Join(errs...)
}

// requirementOutcome is what one event did to one progress row
type requirementOutcome struct {
	written      bool // a new row version was stored
	transitioned bool // the requirement completed with this write
	rowCompleted bool // the stored requirement is complete after this pass
}

// applyRequirement runs the read-calculate-write cycle for one progress row,
// retrying against fresher state when another writer wins the race.
func (s *service) applyRequirement(
	ctx context.Context,
	ev domain.UnifiedGameEvent,
	teamID int64,
	tile domain.ActiveTile,
	req domain.Requirement,
	key string,
	pctx domain.PlayerContext,
) (requirementOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "bingo.applyRequirement", trace.WithAttributes(
		attribute.Int64(AttrTeamID, teamID),
		attribute.Int64(AttrTileID, tile.ID),
		attribute.String(AttrRequirementKey, key),
	))
	defer span.End()

	// The lock serializes writers inside this process; the version check
	// catches writers in other processes.
	unlock := s.locks.Lock(lockKey(teamID, tile.ID, key))
	defer unlock()

	log := logger.FromContext(ctx).With("team_id", teamID, "tile_id", tile.ID, "requirement_key", key)

	for attempt := 1; ; attempt++ {
		span.SetAttributes(attribute.Int(AttrAttempt, attempt))

		out, err := s.attemptWrite(ctx, ev, teamID, tile, req, key, pctx)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, domain.ErrWriteConflict) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return requirementOutcome{}, err
		}

		metrics.ProgressWriteConflicts.Inc()
		if attempt >= s.maxWriteAttempts {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return requirementOutcome{}, fmt.Errorf("%w: %s after %d attempts", domain.ErrWriteConflict, key, attempt)
		}
		log.Debug(LogMsgWriteConflict, "attempt", attempt)

		select {
		case <-ctx.Done():
			return requirementOutcome{}, ctx.Err()
		case <-time.After(event.CalculateRetryDelay(s.writeRetryDelay, attempt)):
		}
	}
}

// attemptWrite is one read-calculate-write cycle
func (s *service) attemptWrite(
	ctx context.Context,
	ev domain.UnifiedGameEvent,
	teamID int64,
	tile domain.ActiveTile,
	req domain.Requirement,
	key string,
	pctx domain.PlayerContext,
) (requirementOutcome, error) {
	stored, err := s.progress.Read(ctx, teamID, tile.ID, key)
	if err != nil {
		return requirementOutcome{}, fmt.Errorf("failed to read progress %s: %w", key, err)
	}
	existing := stored.Existing()

	result := s.engine.CalculateProgress(ctx, ev, req, existing, pctx)
	metrics.ProgressCalculations.WithLabelValues(string(req.Type())).Inc()

	if existing != nil && unchanged(*existing, result) {
		logger.FromContext(ctx).Debug(LogMsgProgressUnchangedSkip, "requirement_key", key)
		return requirementOutcome{rowCompleted: existing.IsCompleted}, nil
	}

	row := domain.TileProgress{
		TeamID:           teamID,
		TileID:           tile.ID,
		RequirementKey:   key,
		ProgressValue:    result.ProgressValue,
		ProgressMetadata: result.ProgressMetadata,
		IsCompleted:      result.IsCompleted,
	}
	var expectedVersion int64
	var previousTiers []int
	if stored != nil {
		expectedVersion = stored.Version
		row.CompletedAt = stored.CompletedAt
		if stored.ProgressMetadata != nil {
			previousTiers = stored.ProgressMetadata.Base().CompletedTiers
		}
	}

	completed := result.IsCompleted && (existing == nil || !existing.IsCompleted)
	if completed && row.CompletedAt == nil {
		at := ev.Timestamp
		row.CompletedAt = &at
	}

	version, err := s.progress.WriteIfUnchanged(ctx, row, expectedVersion, ev.EventID)
	if errors.Is(err, domain.ErrEventAlreadyApplied) {
		// An earlier attempt of this event already reached the row
		logger.FromContext(ctx).Debug(LogMsgEventAlreadyApplied, "requirement_key", key)
		return requirementOutcome{rowCompleted: existing != nil && existing.IsCompleted}, nil
	}
	if err != nil {
		return requirementOutcome{}, err
	}
	row.Version = version

	s.announce(ctx, ev, tile, req, row, previousTiers, completed)
	return requirementOutcome{written: true, transitioned: completed, rowCompleted: row.IsCompleted}, nil
}

// announce publishes requirement and tier completions of a written row.
// Puzzles only announce their solve, under their display name.
func (s *service) announce(
	ctx context.Context,
	ev domain.UnifiedGameEvent,
	tile domain.ActiveTile,
	req domain.Requirement,
	row domain.TileProgress,
	previousTiers []int,
	completed bool,
) {
	log := logger.FromContext(ctx)
	public := progress.PublicTileProgress(row)
	puzzle, isPuzzle := req.(domain.PuzzleRequirement)

	if !isPuzzle && row.ProgressMetadata != nil {
		for _, tier := range progress.NewTiers(previousTiers, row.ProgressMetadata.Base().CompletedTiers) {
			log.Info(LogMsgTierCompleted, "team_id", row.TeamID, "tile_id", row.TileID, "requirement_key", row.RequirementKey, "tier", tier)
			s.publisher.PublishWithRetry(ctx, event.NewTierCompletedEvent(event.TierCompletedPayloadV1{
				EventID:         ev.EventID,
				TeamID:          row.TeamID,
				TileID:          row.TileID,
				TileName:        tile.Name,
				RequirementKey:  row.RequirementKey,
				RequirementType: req.Type(),
				Tier:            tier,
				PlayerName:      ev.PlayerName,
				CompletedAt:     ev.Timestamp,
			}))
		}
	}

	if !completed {
		return
	}

	payload := event.RequirementCompletedPayloadV1{
		EventID:         ev.EventID,
		TeamID:          row.TeamID,
		BoardID:         tile.BoardID,
		TileID:          row.TileID,
		TileName:        tile.Name,
		RequirementKey:  public.RequirementKey,
		RequirementType: req.Type(),
		PlayerName:      ev.PlayerName,
		AccountID:       ev.AccountID,
		ProgressValue:   public.ProgressValue,
		TargetValue:     req.TargetValue(),
		CompletedAt:     ev.Timestamp,
	}
	if isPuzzle {
		payload.DisplayName = puzzle.DisplayName
		payload.TargetValue = 1
	}

	log.Info(LogMsgRequirementCompleted, "team_id", row.TeamID, "tile_id", row.TileID, "requirement_key", public.RequirementKey)
	s.publisher.PublishWithRetry(ctx, event.NewRequirementCompletedEvent(payload))
}

// completeTile records tile completion once its completion rule holds
func (s *service) completeTile(ctx context.Context, ev domain.UnifiedGameEvent, teamID int64, tile domain.ActiveTile) (bool, error) {
	rows, err := s.progress.ListTileProgress(ctx, teamID, tile.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list progress of tile %d: %w", tile.ID, err)
	}
	if !TileSatisfied(tile.Tile, rows) {
		return false, nil
	}

	inserted, err := s.progress.MarkTileCompleted(ctx, domain.TileCompletion{
		TeamID:      teamID,
		TileID:      tile.ID,
		CompletedAt: ev.Timestamp,
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark tile %d completed: %w", tile.ID, err)
	}
	if !inserted {
		return false, nil
	}

	logger.FromContext(ctx).Info(LogMsgTileCompleted, "team_id", teamID, "tile_id", tile.ID, "tile", tile.Name)
	s.publisher.PublishWithRetry(ctx, event.NewTileCompletedEvent(event.TileCompletedPayloadV1{
		EventID:     ev.EventID,
		TeamID:      teamID,
		BoardID:     tile.BoardID,
		TileID:      tile.ID,
		TileName:    tile.Name,
		PlayerName:  ev.PlayerName,
		CompletedAt: ev.Timestamp,
	}))
	return true, nil
}

// TileSatisfied reports whether the stored rows complete the tile under its
// completion mode. A tile without requirements never completes.
func TileSatisfied(tile domain.Tile, rows []domain.TileProgress) bool {
	completed := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.IsCompleted {
			completed[row.RequirementKey] = true
		}
	}

	total := 0
	done := 0
	for _, req := range tile.Requirements {
		if _, ok := req.(domain.UnknownRequirement); ok {
			continue
		}
		total++
		if completed[requirement.KeyOf(req)] {
			done++
		}
	}
	if total == 0 {
		return false
	}
	if tile.CompletionMode == domain.CompletionAny {
		return done > 0
	}
	return done == total
}

func (s *service) GetTileProgress(ctx context.Context, teamID, tileID int64, privileged bool) (*TileProgressView, error) {
	if teamID <= 0 || tileID <= 0 {
		return nil, fmt.Errorf("%w: team and tile ids must be positive", domain.ErrInvalidInput)
	}

	tile, err := s.boards.GetTile(ctx, tileID)
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.ListTileProgress(ctx, teamID, tileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress of tile %d: %w", tileID, err)
	}

	view := &TileProgressView{
		TeamID:         teamID,
		TileID:         tileID,
		TileName:       tile.Name,
		CompletionMode: tile.CompletionMode,
		IsCompleted:    TileSatisfied(*tile, rows),
		Requirements:   make([]domain.TileProgress, 0, len(rows)),
	}
	for _, row := range rows {
		if !privileged {
			row = progress.PublicTileProgress(row)
		}
		view.Requirements = append(view.Requirements, row)
	}
	return view, nil
}

func (s *service) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgShuttingDown)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgShutdownComplete)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// unchanged reports whether a calculation left the stored state as it was
func unchanged(existing domain.ExistingProgress, result domain.ProgressResult) bool {
	return existing.ProgressValue == result.ProgressValue &&
		existing.IsCompleted == result.IsCompleted &&
		cmp.Equal(existing.ProgressMetadata, result.ProgressMetadata)
}

func lockKey(teamID, tileID int64, key string) string {
	return strconv.FormatInt(teamID, 10) + "/" + strconv.FormatInt(tileID, 10) + "/" + key
}

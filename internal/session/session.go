package session

//go:generate mockgen -destination=../room/mocks/mock_service.go -package=mocks . Service

import (
	"context"
	"errors"
	"log/slog"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/engine"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/events"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

// ErrGameNotFound is returned for unknown games and for games owned by another player.
var ErrGameNotFound = repository.ErrGameNotFound

// View is the read model of a game handed to transports.
type View struct {
	ID          string       `json:"id"`
	PlayerID    string       `json:"player_id"`
	Board       game.Board   `json:"board"`
	Cells       [][]string   `json:"cells"`
	Phase       engine.Phase `json:"phase"`
	Turn        string       `json:"turn,omitempty"`
	Outcome     game.Outcome `json:"outcome,omitempty"`
	WinningLine []int        `json:"winning_line,omitempty"`
}

// NewView builds the read model of record.
func NewView(record *repository.GameRecord) *View {
	view := &View{
		ID:       record.ID,
		PlayerID: record.PlayerID,
		Board:    record.State.Board,
		Cells:    record.State.Board.Symbols(),
		Phase:    record.State.Phase,
		Turn:     game.PlayerName(record.State.Turn),
		Outcome:  record.State.Outcome,
	}
	if record.State.Phase == engine.PhaseFinished {
		if line, ok := record.State.Board.WinningLine(); ok {
			view.WinningLine = line[:]
		}
	}
	return view
}

// Service runs games between a player and the computer.
type Service interface {
	Create(ctx context.Context, playerID string) (*View, error)
	Get(ctx context.Context, playerID, gameID string) (*View, error)
	Start(ctx context.Context, playerID, gameID string, first game.Mark) (*View, error)
	Move(ctx context.Context, playerID, gameID string, cell int) (*View, error)
	Reset(ctx context.Context, playerID, gameID string) (*View, error)
}

type service struct {
	repo       repository.GameRepository
	publisher  events.Publisher
	calculator engine.MoveCalculator
	metrics    *metrics
	newID      func() string
}

// NewService creates a Service storing games in repo and announcing changes through publisher.
func NewService(repo repository.GameRepository, publisher events.Publisher, calculator engine.MoveCalculator) Service {
	return &service{
		repo:       repo,
		publisher:  publisher,
		calculator: calculator,
		metrics:    newMetrics(),
		newID:      uuid.NewString,
	}
}

// Create stores a new game awaiting its first player.
func (s *service) Create(ctx context.Context, playerID string) (*View, error) {
	ctx, span := tracer.Start(ctx, "session.Create", trace.WithAttributes(
		attribute.String("player.id", playerID),
	))
	defer span.End()

	record := &repository.GameRecord{
		ID:       s.newID(),
		PlayerID: playerID,
		State:    engine.NewState(),
	}
	span.SetAttributes(attribute.String("game.id", record.ID))

	if err := s.repo.Create(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to create game", "player.id", playerID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create game")
		return nil, err
	}

	slog.InfoContext(ctx, "Game created", "game.id", record.ID, "player.id", playerID)
	return NewView(record), nil
}

// Get returns the current state of a game owned by playerID.
func (s *service) Get(ctx context.Context, playerID, gameID string) (*View, error) {
	ctx, span := tracer.Start(ctx, "session.Get", trace.WithAttributes(
		attribute.String("player.id", playerID),
		attribute.String("game.id", gameID),
	))
	defer span.End()

	record, err := s.repo.FindByID(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not find game")
		return nil, err
	}
	if record.PlayerID != playerID {
		span.SetStatus(codes.Error, "Game owned by another player")
		return nil, ErrGameNotFound
	}

	return NewView(record), nil
}

// Start picks who opens. When the computer opens its first mark is already on the returned board.
func (s *service) Start(ctx context.Context, playerID, gameID string, first game.Mark) (*View, error) {
	return s.mutate(ctx, "session.Start", playerID, gameID, func(e *engine.Engine) error {
		return e.Start(first)
	}, attribute.String("game.first", game.PlayerName(first)))
}

// Move plays the human's cell and the computer's answer.
func (s *service) Move(ctx context.Context, playerID, gameID string, cell int) (*View, error) {
	return s.mutate(ctx, "session.Move", playerID, gameID, func(e *engine.Engine) error {
		_, err := e.ApplyHumanMove(cell)
		return err
	}, attribute.Int("move.cell", cell))
}

// Reset clears the board so a new game can start.
func (s *service) Reset(ctx context.Context, playerID, gameID string) (*View, error) {
	view, err := s.mutate(ctx, "session.Reset", playerID, gameID, func(e *engine.Engine) error {
		e.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeGameReset, events.GameResetPayload{
		GameID:   gameID,
		PlayerID: playerID,
	})
	return view, nil
}

// mutate rebuilds the engine from the stored snapshot, applies op and
// persists the result in one optimistic transaction. Notifications are
// only sent once the new state is committed.
func (s *service) mutate(ctx context.Context, name, playerID, gameID string, op func(*engine.Engine) error, attrs ...attribute.KeyValue) (*View, error) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
		append(attrs,
			attribute.String("player.id", playerID),
			attribute.String("game.id", gameID),
		)...,
	))
	defer span.End()

	var finished game.Outcome
	record, err := s.repo.Update(ctx, gameID, func(record *repository.GameRecord) error {
		if record.PlayerID != playerID {
			return ErrGameNotFound
		}

		finished = game.None
		e := engine.NewEngine(newTracedCalculator(ctx, s.calculator, s.metrics))
		if err := e.Restore(record.State); err != nil {
			return err
		}
		e.OnFinished(func(outcome game.Outcome) {
			finished = outcome
		})

		if err := op(e); err != nil {
			return err
		}
		record.State = e.State()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Transition rejected")
		if IsClientError(err) {
			slog.WarnContext(ctx, "rejected game transition", "op", name, "game.id", gameID, "player.id", playerID, "error", err)
		} else {
			slog.ErrorContext(ctx, "game transition failed", "op", name, "game.id", gameID, "player.id", playerID, "error", err)
		}
		return nil, err
	}

	view := NewView(record)
	span.SetAttributes(attribute.String("game.phase", string(view.Phase)))

	if err := s.publisher.PublishUpdate(ctx, gameID); err != nil {
		slog.ErrorContext(ctx, "failed to publish update", "game.id", gameID, "error", err)
		span.RecordError(err)
	}

	if finished.IsTerminal() {
		span.SetAttributes(attribute.String("game.outcome", string(finished)))
		s.metrics.recordFinished(ctx, finished)
		slog.InfoContext(ctx, "Game finished", "game.id", gameID, "player.id", playerID, "outcome", finished)
		s.publishEvent(ctx, events.TypeGameFinished, events.GameFinishedPayload{
			GameID:      gameID,
			PlayerID:    playerID,
			Outcome:     string(finished),
			WinningLine: view.WinningLine,
		})
	}

	return view, nil
}

func (s *service) publishEvent(ctx context.Context, eventType string, payload any) {
	event, err := events.NewEvent(eventType, payload)
	if err == nil {
		err = s.publisher.PublishEvent(ctx, event)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "event", eventType, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}

// IsClientError reports whether err was caused by the request rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, game.ErrInvalidMove) ||
		errors.Is(err, game.ErrInvalidState) ||
		errors.Is(err, ErrGameNotFound)
}

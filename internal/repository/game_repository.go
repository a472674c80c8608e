package repository

//go:generate mockgen -destination=../session/mocks/mock_repository.go -package=mocks . GameRepository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/engine"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.game")

// Redis hash fields of a game.
const (
	FieldBoard    = "board"
	FieldTurn     = "turn"
	FieldPhase    = "phase"
	FieldOutcome  = "outcome"
	FieldActive   = "active"
	FieldPlayerID = "player_id"
)

const maxUpdateRetries = 3

var (
	ErrGameNotFound = errors.New("game not found")
	ErrConflict     = errors.New("game was modified concurrently")
	ErrGameExists   = errors.New("game already exists")
)

// GameRecord is one persisted game.
type GameRecord struct {
	ID       string
	PlayerID string
	State    engine.State
}

// GameRepository defines the interface for game data operations.
type GameRepository interface {
	Create(ctx context.Context, record *GameRecord) error
	FindByID(ctx context.Context, id string) (*GameRecord, error)
	Update(ctx context.Context, id string, fn func(record *GameRecord) error) (*GameRecord, error)
	Delete(ctx context.Context, id string) error
}

type redisGameRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewGameRepository creates a new Redis-based GameRepository. Games expire ttl after their last write.
func NewGameRepository(rdb *redis.Client, ttl time.Duration) GameRepository {
	return &redisGameRepository{rdb: rdb, ttl: ttl}
}

func gameKey(id string) string {
	return fmt.Sprintf("game:%s", id)
}

// Create stores a new game. An existing game with the same ID is an error.
func (r *redisGameRepository) Create(ctx context.Context, record *GameRecord) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Create", trace.WithAttributes(
		attribute.String("game.id", record.ID),
	))
	defer span.End()

	fields, err := encodeRecord(record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode game")
		return err
	}

	key := gameKey(record.ID)
	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return fmt.Errorf("%w: %s", ErrGameExists, record.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		return err
	}

	// A concurrent writer on the same key aborts the transaction, which means the id is taken.
	err = r.rdb.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = fmt.Errorf("%w: %s", ErrGameExists, record.ID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create game")
		if errors.Is(err, ErrGameExists) {
			return err
		}
		return fmt.Errorf("failed to create game in redis: %w", err)
	}
	return nil
}

// FindByID retrieves the current game state from Redis.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (*GameRecord, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get game")
		return nil, fmt.Errorf("failed to get game state from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrGameNotFound
	}

	return decodeRecord(id, data)
}

// Update loads the game, applies fn and writes the result back atomically.
// If fn fails nothing is written and its error is returned.
func (r *redisGameRepository) Update(ctx context.Context, id string, fn func(record *GameRecord) error) (*GameRecord, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Update", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	key := gameKey(id)
	var updated *GameRecord

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return ErrGameNotFound
		}

		record, err := decodeRecord(id, data)
		if err != nil {
			return err
		}
		if err := fn(record); err != nil {
			return err
		}

		fields, err := encodeRecord(record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = record
		return nil
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			span.AddEvent("optimistic lock lost", trace.WithAttributes(attribute.Int("attempt", attempt)))
			continue
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update game")
		return nil, err
	}

	span.SetStatus(codes.Error, "Too many concurrent updates")
	return nil, fmt.Errorf("%w: game %s", ErrConflict, id)
}

// Delete removes the game.
func (r *redisGameRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	return r.rdb.Del(ctx, gameKey(id)).Err()
}

func encodeRecord(record *GameRecord) (map[string]any, error) {
	boardJSON, err := json.Marshal(record.State.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}

	return map[string]any{
		FieldBoard:    string(boardJSON),
		FieldTurn:     strconv.Itoa(int(record.State.Turn)),
		FieldPhase:    string(record.State.Phase),
		FieldOutcome:  string(record.State.Outcome),
		FieldActive:   strconv.FormatBool(record.State.Active),
		FieldPlayerID: record.PlayerID,
	}, nil
}

func decodeRecord(id string, data map[string]string) (*GameRecord, error) {
	var board game.Board
	if err := json.Unmarshal([]byte(data[FieldBoard]), &board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	turn, err := strconv.Atoi(data[FieldTurn])
	if err != nil {
		return nil, fmt.Errorf("failed to parse turn: %w", err)
	}

	active, err := strconv.ParseBool(data[FieldActive])
	if err != nil {
		return nil, fmt.Errorf("failed to parse active flag: %w", err)
	}

	state := engine.State{
		Board:   board,
		Turn:    game.Mark(turn),
		Active:  active,
		Phase:   engine.Phase(data[FieldPhase]),
		Outcome: game.Outcome(data[FieldOutcome]),
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("stored game %s is corrupt: %w", id, err)
	}

	return &GameRecord{
		ID:       id,
		PlayerID: data[FieldPlayerID],
		State:    state,
	}, nil
}

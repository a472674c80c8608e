package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/engine"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestEncodeDecodeRecord(t *testing.T) {
	record := &GameRecord{
		ID:       "g1",
		PlayerID: "p1",
		State: engine.State{
			Board: game.Board{
				game.Computer, game.Empty, game.Empty,
				game.Empty, game.Human, game.Empty,
				game.Empty, game.Empty, game.Empty,
			},
			Turn:   game.Human,
			Active: true,
			Phase:  engine.PhaseHumanTurn,
		},
	}

	fields, err := encodeRecord(record)
	require.NoError(t, err)
	assert.Equal(t, "[1,0,0,0,-1,0,0,0,0]", fields[FieldBoard])
	assert.Equal(t, "-1", fields[FieldTurn])

	data := make(map[string]string, len(fields))
	for k, v := range fields {
		data[k] = v.(string)
	}

	decoded, err := decodeRecord("g1", data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestDecodeRecord_RejectsCorruptState(t *testing.T) {
	data := map[string]string{
		FieldBoard:    "[-1,-1,-1,0,0,0,0,0,0]",
		FieldTurn:     "1",
		FieldPhase:    string(engine.PhaseComputerTurn),
		FieldOutcome:  "",
		FieldActive:   "true",
		FieldPlayerID: "p1",
	}

	_, err := decodeRecord("g1", data)
	assert.ErrorIs(t, err, game.ErrInvalidState)

	data[FieldBoard] = "not json"
	_, err = decodeRecord("g1", data)
	assert.Error(t, err)
}

func newRedisRepository(t *testing.T) (GameRepository, *redis.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("redis integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })

	return NewGameRepository(rdb, time.Hour), rdb
}

func TestRedisGameRepository(t *testing.T) {
	repo, rdb := newRedisRepository(t)
	ctx := context.Background()

	record := &GameRecord{ID: "g1", PlayerID: "p1", State: engine.NewState()}

	t.Run("Create and FindByID", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, record))

		got, err := repo.FindByID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, record, got)

		ttl, err := rdb.TTL(ctx, gameKey("g1")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("Create twice keeps the first game", func(t *testing.T) {
		other := &GameRecord{ID: "g1", PlayerID: "p2", State: engine.NewState()}
		assert.ErrorIs(t, repo.Create(ctx, other), ErrGameExists)

		got, err := repo.FindByID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "p1", got.PlayerID)
	})

	t.Run("concurrent Create writes one whole game", func(t *testing.T) {
		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded []string
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(playerID string) {
				defer wg.Done()
				err := repo.Create(ctx, &GameRecord{ID: "g2", PlayerID: playerID, State: engine.NewState()})
				if err == nil {
					mu.Lock()
					succeeded = append(succeeded, playerID)
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, ErrGameExists)
			}(fmt.Sprintf("p%d", i))
		}
		wg.Wait()

		require.Len(t, succeeded, 1)
		got, err := repo.FindByID(ctx, "g2")
		require.NoError(t, err)
		assert.Equal(t, succeeded[0], got.PlayerID)
		assert.Equal(t, engine.NewState(), got.State)

		fields, err := rdb.HLen(ctx, gameKey("g2")).Result()
		require.NoError(t, err)
		assert.EqualValues(t, 6, fields)
		ttl, err := rdb.TTL(ctx, gameKey("g2")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("Update applies fn", func(t *testing.T) {
		updated, err := repo.Update(ctx, "g1", func(r *GameRecord) error {
			r.State.Phase = engine.PhaseHumanTurn
			r.State.Turn = game.Human
			r.State.Active = true
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, engine.PhaseHumanTurn, updated.State.Phase)

		got, err := repo.FindByID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("Update does not write when fn fails", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := repo.Update(ctx, "g1", func(r *GameRecord) error {
			r.State.Board[0] = game.Human
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.FindByID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, game.Board{}, got.State.Board)
	})

	t.Run("missing game", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrGameNotFound)

		_, err = repo.Update(ctx, "nope", func(*GameRecord) error { return nil })
		assert.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "g1"))
		_, err := repo.FindByID(ctx, "g1")
		assert.ErrorIs(t, err, ErrGameNotFound)
	})
}

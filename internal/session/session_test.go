package session

import (
	"context"
	"errors"
	"testing"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/engine"
	enginemocks "ctchen222/Unbeatable-Tic-Tac-Toe/internal/engine/mocks"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/events"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/repository"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/session/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	h = game.Human
	c = game.Computer
	e = game.Empty
)

type fixture struct {
	svc       *service
	repo      *mocks.MockGameRepository
	publisher *mocks.MockPublisher
	calc      *enginemocks.MockMoveCalculator
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:      mocks.NewMockGameRepository(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		calc:      enginemocks.NewMockMoveCalculator(ctrl),
	}
	f.svc = NewService(f.repo, f.publisher, f.calc).(*service)
	f.svc.newID = func() string { return "game-1" }
	return f
}

// expectUpdate runs the service callback against stored, committing only on success.
func (f *fixture) expectUpdate(stored *repository.GameRecord) {
	f.repo.EXPECT().Update(gomock.Any(), stored.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, fn func(*repository.GameRecord) error) (*repository.GameRecord, error) {
			record := *stored
			if err := fn(&record); err != nil {
				return nil, err
			}
			*stored = record
			return &record, nil
		})
}

func humanTurn(board game.Board) engine.State {
	return engine.State{Board: board, Turn: game.Human, Active: true, Phase: engine.PhaseHumanTurn}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Create(gomock.Any(), &repository.GameRecord{
		ID:       "game-1",
		PlayerID: "player-1",
		State:    engine.NewState(),
	}).Return(nil)

	view, err := f.svc.Create(context.Background(), "player-1")

	require.NoError(t, err)
	assert.Equal(t, "game-1", view.ID)
	assert.Equal(t, "player-1", view.PlayerID)
	assert.Equal(t, engine.PhaseAwaitingStart, view.Phase)
	assert.Empty(t, view.Turn)
	assert.Len(t, view.Cells, 3)
}

func TestCreate_RepositoryError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("redis down")
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(boom)

	view, err := f.svc.Create(context.Background(), "player-1")

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, view)
}

func TestGet(t *testing.T) {
	record := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: humanTurn(game.Board{c, e, e, e, e, e, e, e, e})}

	t.Run("owner sees the game", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().FindByID(gomock.Any(), "game-1").Return(record, nil)

		view, err := f.svc.Get(context.Background(), "player-1", "game-1")

		require.NoError(t, err)
		assert.Equal(t, "human", view.Turn)
		assert.Equal(t, "O", view.Cells[0][0])
		assert.Nil(t, view.WinningLine)
	})

	t.Run("other player gets not found", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().FindByID(gomock.Any(), "game-1").Return(record, nil)

		_, err := f.svc.Get(context.Background(), "player-2", "game-1")

		assert.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("missing game", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().FindByID(gomock.Any(), "nope").Return(nil, repository.ErrGameNotFound)

		_, err := f.svc.Get(context.Background(), "player-1", "nope")

		assert.ErrorIs(t, err, ErrGameNotFound)
	})
}

func TestStart(t *testing.T) {
	t.Run("human first", func(t *testing.T) {
		f := newFixture(t)
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: engine.NewState()}
		f.expectUpdate(stored)
		f.publisher.EXPECT().PublishUpdate(gomock.Any(), "game-1").Return(nil)

		view, err := f.svc.Start(context.Background(), "player-1", "game-1", game.Human)

		require.NoError(t, err)
		assert.Equal(t, engine.PhaseHumanTurn, view.Phase)
		assert.Equal(t, game.Board{}, view.Board)
		assert.Equal(t, humanTurn(game.Board{}), stored.State)
	})

	t.Run("computer first moves before returning", func(t *testing.T) {
		f := newFixture(t)
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: engine.NewState()}
		f.expectUpdate(stored)
		f.calc.EXPECT().SelectBestMove(game.Board{}).Return(4, nil)
		f.publisher.EXPECT().PublishUpdate(gomock.Any(), "game-1").Return(nil)

		view, err := f.svc.Start(context.Background(), "player-1", "game-1", game.Computer)

		require.NoError(t, err)
		assert.Equal(t, game.Computer, view.Board[4])
		assert.Equal(t, engine.PhaseHumanTurn, view.Phase)
		assert.Equal(t, "human", view.Turn)
	})

	t.Run("already started", func(t *testing.T) {
		f := newFixture(t)
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: humanTurn(game.Board{})}
		f.expectUpdate(stored)

		_, err := f.svc.Start(context.Background(), "player-1", "game-1", game.Human)

		assert.ErrorIs(t, err, game.ErrInvalidState)
	})
}

func TestMove(t *testing.T) {
	t.Run("computer answers", func(t *testing.T) {
		f := newFixture(t)
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: humanTurn(game.Board{})}
		f.expectUpdate(stored)
		f.calc.EXPECT().SelectBestMove(game.Board{e, e, e, e, h, e, e, e, e}).Return(0, nil)
		f.publisher.EXPECT().PublishUpdate(gomock.Any(), "game-1").Return(nil)

		view, err := f.svc.Move(context.Background(), "player-1", "game-1", 4)

		require.NoError(t, err)
		assert.Equal(t, game.Board{c, e, e, e, h, e, e, e, e}, view.Board)
		assert.Equal(t, view.Board, stored.State.Board)
		assert.Equal(t, engine.PhaseHumanTurn, view.Phase)
	})

	t.Run("occupied cell leaves the game untouched", func(t *testing.T) {
		f := newFixture(t)
		before := humanTurn(game.Board{c, e, e, e, h, e, e, e, e})
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: before}
		f.expectUpdate(stored)

		_, err := f.svc.Move(context.Background(), "player-1", "game-1", 0)

		assert.ErrorIs(t, err, game.ErrInvalidMove)
		assert.Equal(t, before, stored.State)
	})

	t.Run("human win publishes game finished", func(t *testing.T) {
		f := newFixture(t)
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: humanTurn(game.Board{h, h, e, c, c, e, e, e, e})}
		f.expectUpdate(stored)
		f.publisher.EXPECT().PublishUpdate(gomock.Any(), "game-1").Return(nil)
		want, err := events.NewEvent(events.TypeGameFinished, events.GameFinishedPayload{
			GameID:      "game-1",
			PlayerID:    "player-1",
			Outcome:     string(game.HumanWin),
			WinningLine: []int{0, 1, 2},
		})
		require.NoError(t, err)
		f.publisher.EXPECT().PublishEvent(gomock.Any(), want).Return(nil)

		view, err := f.svc.Move(context.Background(), "player-1", "game-1", 2)

		require.NoError(t, err)
		assert.Equal(t, engine.PhaseFinished, view.Phase)
		assert.Equal(t, game.HumanWin, view.Outcome)
		assert.Equal(t, []int{0, 1, 2}, view.WinningLine)
		assert.Empty(t, view.Turn)
	})

	t.Run("calculator failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		before := humanTurn(game.Board{})
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: before}
		f.expectUpdate(stored)
		f.calc.EXPECT().SelectBestMove(gomock.Any()).Return(-1, game.ErrNoLegalMove)

		_, err := f.svc.Move(context.Background(), "player-1", "game-1", 4)

		assert.ErrorIs(t, err, game.ErrNoLegalMove)
		assert.False(t, IsClientError(err))
		assert.Equal(t, before, stored.State)
	})

	t.Run("other player's game", func(t *testing.T) {
		f := newFixture(t)
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: humanTurn(game.Board{})}
		f.expectUpdate(stored)

		_, err := f.svc.Move(context.Background(), "player-2", "game-1", 4)

		assert.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("publish failure does not fail the move", func(t *testing.T) {
		f := newFixture(t)
		stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: humanTurn(game.Board{})}
		f.expectUpdate(stored)
		f.calc.EXPECT().SelectBestMove(gomock.Any()).Return(4, nil)
		f.publisher.EXPECT().PublishUpdate(gomock.Any(), "game-1").Return(errors.New("redis down"))

		view, err := f.svc.Move(context.Background(), "player-1", "game-1", 0)

		require.NoError(t, err)
		assert.Equal(t, game.Computer, view.Board[4])
	})
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	stored := &repository.GameRecord{ID: "game-1", PlayerID: "player-1", State: engine.State{
		Board:   game.Board{h, h, h, c, c, e, e, e, e},
		Phase:   engine.PhaseFinished,
		Outcome: game.HumanWin,
	}}
	f.expectUpdate(stored)
	f.publisher.EXPECT().PublishUpdate(gomock.Any(), "game-1").Return(nil)
	f.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event events.Event) error {
			assert.Equal(t, events.TypeGameReset, event.Type)
			return nil
		})

	view, err := f.svc.Reset(context.Background(), "player-1", "game-1")

	require.NoError(t, err)
	assert.Equal(t, engine.PhaseAwaitingStart, view.Phase)
	assert.Equal(t, engine.NewState(), stored.State)
}

package bot

import (
	"testing"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotMoveCalculator_SelectBestMove(t *testing.T) {
	calc := NewBotMoveCalculator()

	board := game.Board{
		h, h, e,
		c, c, e,
		e, e, e,
	}
	move, err := calc.SelectBestMove(board)
	require.NoError(t, err)
	assert.Equal(t, 2, move)
}

func TestBotMoveCalculator_FullBoard(t *testing.T) {
	calc := NewBotMoveCalculator()

	board := game.Board{
		h, c, h,
		c, c, h,
		h, h, c,
	}
	_, err := calc.SelectBestMove(board)
	assert.ErrorIs(t, err, game.ErrNoLegalMove)
}

// TestBotNeverLoses plays every possible human line against the calculator,
// with either side opening, and checks the human never wins.
func TestBotNeverLoses(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive playout skipped in short mode")
	}

	calc := NewBotMoveCalculator()
	results := map[game.Outcome]int{}

	var play func(board game.Board, humanToMove bool)
	play = func(board game.Board, humanToMove bool) {
		if outcome := board.Evaluate(); outcome.IsTerminal() {
			results[outcome]++
			if outcome == game.HumanWin {
				t.Fatalf("human won on board %s", board)
			}
			return
		}

		if !humanToMove {
			move, err := calc.SelectBestMove(board)
			require.NoError(t, err)
			require.NoError(t, board.Place(move, game.Computer))
			play(board, true)
			return
		}

		for _, cell := range board.EmptyCells() {
			next := board
			require.NoError(t, next.Place(cell, game.Human))
			play(next, false)
		}
	}

	play(game.Board{}, true)
	play(game.Board{}, false)

	assert.Zero(t, results[game.HumanWin])
	assert.Positive(t, results[game.ComputerWin])
	assert.Positive(t, results[game.Draw])
}

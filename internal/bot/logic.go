package bot

import (
	"fmt"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"
)

// Minimax scores board assuming perfect play from both sides. The computer
// maximizes, the human minimizes. Scores do not depend on depth, so a slow
// forced win is worth the same as a fast one.
//
// The board is mutated during the search and restored before returning.
func Minimax(board *game.Board, maximizing bool) int {
	if outcome := board.Evaluate(); outcome.IsTerminal() {
		return outcome.Score()
	}

	mark := game.Human
	best := game.ComputerWin.Score() + 1
	if maximizing {
		mark = game.Computer
		best = game.HumanWin.Score() - 1
	}

	for i := range board {
		if board[i] != game.Empty {
			continue
		}

		board[i] = mark
		score := Minimax(board, !maximizing)
		board[i] = game.Empty

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}

// SelectBestMove returns the cell that maximizes the computer's eventual score.
// Ties go to the lowest index.
func SelectBestMove(board game.Board) (int, error) {
	bestMove := -1
	bestScore := game.HumanWin.Score() - 1

	for i := range board {
		if board[i] != game.Empty {
			continue
		}

		board[i] = game.Computer
		score := Minimax(&board, false)
		board[i] = game.Empty

		if score > bestScore {
			bestScore = score
			bestMove = i
		}
	}

	if bestMove == -1 {
		return -1, fmt.Errorf("%w: board %s is full", game.ErrNoLegalMove, board)
	}
	return bestMove, nil
}

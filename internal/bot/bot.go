package bot

import "ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"

// BotMoveCalculator implements the engine.MoveCalculator interface.
type BotMoveCalculator struct{}

// NewBotMoveCalculator creates the minimax-backed calculator.
func NewBotMoveCalculator() *BotMoveCalculator {
	return &BotMoveCalculator{}
}

// SelectBestMove calls the package-level function to satisfy the interface.
func (c *BotMoveCalculator) SelectBestMove(board game.Board) (int, error) {
	return SelectBestMove(board)
}

package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrInvalidState = errors.New("invalid state")
	ErrNoLegalMove  = errors.New("no legal move")
)

// WinningLines holds the eight triples that win: rows, columns, then diagonals.
var WinningLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// InRange reports whether index addresses a cell.
func InRange(index int) bool {
	return index >= CellMin && index <= CellMax
}

// ParsePlayer converts "human" / "computer" into a mark.
func ParsePlayer(s string) (Mark, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human":
		return Human, nil
	case "computer":
		return Computer, nil
	default:
		return Empty, fmt.Errorf("%w: unknown player %q", ErrInvalidMove, s)
	}
}

// PlayerName is the inverse of ParsePlayer.
func PlayerName(m Mark) string {
	switch m {
	case Human:
		return "human"
	case Computer:
		return "computer"
	default:
		return ""
	}
}

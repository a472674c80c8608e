package game

import (
	"fmt"
	"strings"
)

// Mark represents the occupant of a cell. The numeric tags double as
// minimax scores: a Computer line is worth +1, a Human line -1.
type Mark int8

// Outcome is the result of evaluating a board.
type Outcome string

const (
	// Player marks
	Human    Mark = -1
	Empty    Mark = 0
	Computer Mark = 1

	// Game results
	None        Outcome = ""
	HumanWin    Outcome = "human_win"
	ComputerWin Outcome = "computer_win"
	Draw        Outcome = "draw"

	// Board boundaries
	CellMin   = 0
	CellMax   = 8
	CellCount = 9
)

// Board is the 3x3 grid stored row-major, cell 0 top-left, cell 8 bottom-right.
type Board [CellCount]Mark

// IsCellEmpty reports whether the cell holds no mark. Out of range indices are never empty.
func (b Board) IsCellEmpty(index int) bool {
	if !InRange(index) {
		return false
	}
	return b[index] == Empty
}

// Place puts mark on the cell at index.
func (b *Board) Place(index int, mark Mark) error {
	if !InRange(index) {
		return fmt.Errorf("%w: cell %d out of range", ErrInvalidMove, index)
	}
	if mark != Human && mark != Computer {
		return fmt.Errorf("%w: mark %d cannot be placed", ErrInvalidMove, mark)
	}
	if b[index] != Empty {
		return fmt.Errorf("%w: cell %d already occupied", ErrInvalidMove, index)
	}

	b[index] = mark
	return nil
}

// Clear empties the cell at index. It is the undo of Place.
func (b *Board) Clear(index int) {
	if InRange(index) {
		b[index] = Empty
	}
}

// Evaluate scans the winning lines in order and returns the outcome of the board.
func (b Board) Evaluate() Outcome {
	if line, ok := b.WinningLine(); ok {
		return b[line[0]].winOutcome()
	}

	if b.IsFull() {
		return Draw
	}

	return None
}

// WinningLine returns the first completed line, checking rows, then columns, then diagonals.
func (b Board) WinningLine() ([3]int, bool) {
	for _, line := range WinningLines {
		first := b[line[0]]
		if first != Empty && first == b[line[1]] && first == b[line[2]] {
			return line, true
		}
	}
	return [3]int{}, false
}

// IsFull checks if every cell is occupied.
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// EmptyCells lists the free cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, CellCount)
	for i, cell := range b {
		if cell == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

// Count returns how many cells hold mark.
func (b Board) Count(mark Mark) int {
	n := 0
	for _, cell := range b {
		if cell == mark {
			n++
		}
	}
	return n
}

// Symbols converts the board to its display form, row by row.
func (b Board) Symbols() [][]string {
	rows := make([][]string, 3)
	for r := range [3]int{} {
		rows[r] = make([]string, 3)
		for c := range [3]int{} {
			rows[r][c] = b[r*3+c].String()
		}
	}
	return rows
}

func (b Board) String() string {
	var sb strings.Builder
	for i, cell := range b {
		if cell == Empty {
			sb.WriteByte('.')
		} else {
			sb.WriteString(cell.String())
		}
		if i%3 == 2 && i != CellMax {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	return -m
}

func (m Mark) String() string {
	switch m {
	case Human:
		return "X"
	case Computer:
		return "O"
	default:
		return ""
	}
}

func (m Mark) winOutcome() Outcome {
	if m == Computer {
		return ComputerWin
	}
	return HumanWin
}

// Score maps an outcome to its minimax value.
func (o Outcome) Score() int {
	switch o {
	case ComputerWin:
		return int(Computer)
	case HumanWin:
		return int(Human)
	default:
		return 0
	}
}

// IsTerminal reports whether the game has ended.
func (o Outcome) IsTerminal() bool {
	return o != None
}

package engine

//go:generate mockgen -destination=mocks/mock_calculator.go -package=mocks . MoveCalculator

import (
	"fmt"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"
)

// Phase is the position of the engine in its turn cycle.
type Phase string

const (
	PhaseAwaitingStart Phase = "awaiting_start"
	PhaseHumanTurn     Phase = "human_turn"
	PhaseComputerTurn  Phase = "computer_turn"
	PhaseFinished      Phase = "finished"
)

// MoveCalculator defines an interface for an agent that picks the computer's cell.
type MoveCalculator interface {
	SelectBestMove(board game.Board) (int, error)
}

// OutcomeListener is notified once per finished game.
type OutcomeListener func(outcome game.Outcome)

// State is the snapshot of a game. It only changes through Engine transitions.
type State struct {
	Board   game.Board   `json:"board"`
	Turn    game.Mark    `json:"turn"`
	Active  bool         `json:"active"`
	Phase   Phase        `json:"phase"`
	Outcome game.Outcome `json:"outcome"`
}

// NewState returns the state of a game that has not started.
func NewState() State {
	return State{Phase: PhaseAwaitingStart}
}

// Engine drives a single human-versus-computer game.
type Engine struct {
	state      State
	calculator MoveCalculator
	listeners  []OutcomeListener
}

// NewEngine creates an engine awaiting its first player.
func NewEngine(calculator MoveCalculator) *Engine {
	return &Engine{
		state:      NewState(),
		calculator: calculator,
	}
}

// OnFinished subscribes listener to terminal outcomes.
func (e *Engine) OnFinished(listener OutcomeListener) {
	e.listeners = append(e.listeners, listener)
}

// Start begins the game with first to move. When the computer opens it moves before Start returns.
func (e *Engine) Start(first game.Mark) error {
	if e.state.Phase != PhaseAwaitingStart {
		return fmt.Errorf("%w: cannot start while %s", game.ErrInvalidState, e.state.Phase)
	}

	prev := e.state
	switch first {
	case game.Human:
		e.state.Phase = PhaseHumanTurn
	case game.Computer:
		e.state.Phase = PhaseComputerTurn
	default:
		return fmt.Errorf("%w: %d cannot move first", game.ErrInvalidMove, first)
	}
	e.state.Turn = first
	e.state.Active = true

	if first == game.Computer {
		if err := e.computerMoveStep(); err != nil {
			e.state = prev
			return err
		}
	}
	return nil
}

// ApplyHumanMove places the human mark on index and, unless that ends the
// game, answers with the computer's move. A rejected move leaves the engine untouched.
func (e *Engine) ApplyHumanMove(index int) (game.Outcome, error) {
	if e.state.Phase != PhaseHumanTurn {
		return game.None, fmt.Errorf("%w: human cannot move while %s", game.ErrInvalidState, e.state.Phase)
	}

	prev := e.state
	if err := e.state.Board.Place(index, game.Human); err != nil {
		return game.None, err
	}

	if e.finishIfTerminal() {
		return e.state.Outcome, nil
	}

	e.state.Phase = PhaseComputerTurn
	e.state.Turn = game.Computer
	if err := e.computerMoveStep(); err != nil {
		e.state = prev
		return game.None, err
	}

	return e.state.Outcome, nil
}

// computerMoveStep asks the calculator for a cell and plays it.
func (e *Engine) computerMoveStep() error {
	if e.state.Phase != PhaseComputerTurn {
		return fmt.Errorf("%w: computer cannot move while %s", game.ErrInvalidState, e.state.Phase)
	}

	move, err := e.calculator.SelectBestMove(e.state.Board)
	if err != nil {
		return fmt.Errorf("computer move on %s: %w", e.state.Board, err)
	}
	if err := e.state.Board.Place(move, game.Computer); err != nil {
		return fmt.Errorf("%w: calculator chose unplayable cell %d: %v", game.ErrNoLegalMove, move, err)
	}

	if e.finishIfTerminal() {
		return nil
	}

	e.state.Phase = PhaseHumanTurn
	e.state.Turn = game.Human
	return nil
}

// finishIfTerminal moves to PhaseFinished and notifies listeners when the board is decided.
func (e *Engine) finishIfTerminal() bool {
	outcome := e.state.Board.Evaluate()
	if !outcome.IsTerminal() {
		return false
	}

	e.state.Phase = PhaseFinished
	e.state.Turn = game.Empty
	e.state.Active = false
	e.state.Outcome = outcome

	for _, listener := range e.listeners {
		listener(outcome)
	}
	return true
}

// Reset clears the board and waits for a new first player. Listeners stay subscribed.
func (e *Engine) Reset() {
	e.state = NewState()
}

// Restore replaces the engine state with a persisted snapshot. Listeners are not notified.
func (e *Engine) Restore(s State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.state = s
	return nil
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	return e.state
}

// Board returns a copy of the board for rendering.
func (e *Engine) Board() game.Board {
	return e.state.Board
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.state.Phase
}

// Outcome returns the terminal outcome, or game.None while the game is undecided.
func (e *Engine) Outcome() game.Outcome {
	return e.state.Outcome
}

// WinningLine returns the completed line for highlighting. It is only reported once the game is finished.
func (e *Engine) WinningLine() ([3]int, bool) {
	if e.state.Phase != PhaseFinished {
		return [3]int{}, false
	}
	return e.state.Board.WinningLine()
}

// Validate checks that the snapshot could have been produced by an Engine.
func (s State) Validate() error {
	for i, cell := range s.Board {
		if cell != game.Empty && cell != game.Human && cell != game.Computer {
			return fmt.Errorf("%w: cell %d holds unknown mark %d", game.ErrInvalidState, i, cell)
		}
	}

	// The two sides alternate, so their counts never differ by more than one.
	diff := s.Board.Count(game.Human) - s.Board.Count(game.Computer)
	if diff < -1 || diff > 1 {
		return fmt.Errorf("%w: mark counts out of balance on %s", game.ErrInvalidState, s.Board)
	}

	outcome := s.Board.Evaluate()
	switch s.Phase {
	case PhaseAwaitingStart:
		if s.Board != (game.Board{}) || s.Active || s.Turn != game.Empty || s.Outcome != game.None {
			return fmt.Errorf("%w: unstarted game must be empty", game.ErrInvalidState)
		}
	case PhaseHumanTurn, PhaseComputerTurn:
		// The human is never ahead on their own turn and never behind on the computer's.
		want, lo, hi := game.Human, -1, 0
		if s.Phase == PhaseComputerTurn {
			want, lo, hi = game.Computer, 0, 1
		}
		if diff < lo || diff > hi {
			return fmt.Errorf("%w: %s with mark difference %d on %s", game.ErrInvalidState, s.Phase, diff, s.Board)
		}
		if outcome.IsTerminal() || !s.Active || s.Turn != want || s.Outcome != game.None {
			return fmt.Errorf("%w: %s inconsistent with board %s", game.ErrInvalidState, s.Phase, s.Board)
		}
	case PhaseFinished:
		if !outcome.IsTerminal() || outcome != s.Outcome || s.Active || s.Turn != game.Empty {
			return fmt.Errorf("%w: finished game reports %q, board says %q", game.ErrInvalidState, s.Outcome, outcome)
		}
	default:
		return fmt.Errorf("%w: unknown phase %q", game.ErrInvalidState, s.Phase)
	}

	return nil
}

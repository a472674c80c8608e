package proto

import "ctchen222/Unbeatable-Tic-Tac-Toe/internal/session"

// Client message types
const (
	TypeStart = "start"
	TypeMove  = "move"
	TypeReset = "reset"
)

// Server message types
const (
	TypeUpdate   = "update"
	TypeGameOver = "game_over"
	TypeError    = "error"
)

// ClientToServerMessage represents a message from the client to the server.
// Start carries First, Move carries Cell.
type ClientToServerMessage struct {
	Type  string `json:"type" validate:"required,oneof=start move reset"`
	First string `json:"first,omitempty" validate:"omitempty,oneof=human computer"`
	Cell  *int   `json:"cell,omitempty" validate:"omitempty,min=0,max=8"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string        `json:"type" validate:"required"`
	Reason string        `json:"reason,omitempty"`
	Game   *session.View `json:"game,omitempty"`
}

// NewStateMessage wraps view as an update, or a game_over once the game is decided.
func NewStateMessage(view *session.View) *ServerToClientMessage {
	msgType := TypeUpdate
	if view.Outcome != "" {
		msgType = TypeGameOver
	}
	return &ServerToClientMessage{Type: msgType, Game: view}
}

// NewErrorMessage reports a rejected client message.
func NewErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}

package events

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Pub/Sub channel constants
const (
	EventsChannel      = "channel:events"
	GameChannelPrefix  = "channel:game:"
	GameChannelPattern = GameChannelPrefix + "*"

	// Payload published on a game channel whenever its state changed.
	UpdatePayload = "update"
)

// Event types
const (
	TypeGameFinished = "game_finished"
	TypeGameReset    = "game_reset"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GameFinishedPayload is the payload for the "game_finished" event.
type GameFinishedPayload struct {
	GameID      string `json:"game_id"`
	PlayerID    string `json:"player_id"`
	Outcome     string `json:"outcome"`
	WinningLine []int  `json:"winning_line,omitempty"`
}

// GameResetPayload is the payload for the "game_reset" event.
type GameResetPayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// GameChannel returns the per-game update channel.
func GameChannel(gameID string) string {
	return GameChannelPrefix + gameID
}

// GameIDFromChannel is the inverse of GameChannel.
func GameIDFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, GameChannelPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// NewEvent wraps payload into an Event of the given type.
func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}

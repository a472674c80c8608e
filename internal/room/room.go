package room

import (
	"sync"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/player"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/session"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("room")

// Room groups the local connections watching one game.
type Room struct {
	GameID   string
	PlayerID string

	sessions session.Service
	players  map[*player.Player]struct{}
	mu       sync.Mutex
}

// NewRoom creates a room for gameID owned by playerID.
func NewRoom(gameID, playerID string, sessions session.Service) *Room {
	return &Room{
		GameID:   gameID,
		PlayerID: playerID,
		sessions: sessions,
		players:  make(map[*player.Player]struct{}),
	}
}

// AddPlayer adds a connection to the room.
func (r *Room) AddPlayer(p *player.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p] = struct{}{}
}

// RemovePlayer drops a connection and returns how many remain.
func (r *Room) RemovePlayer(p *player.Player) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, p)
	return len(r.players)
}

// Players returns a snapshot of the connections in the room.
func (r *Room) Players() []*player.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]*player.Player, 0, len(r.players))
	for p := range r.players {
		players = append(players, p)
	}
	return players
}

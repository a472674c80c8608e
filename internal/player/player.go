package player

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is one websocket connection watching a game. A player may hold
// several connections to the same game, each is its own Player.
type Player struct {
	ID     string
	GameID string
	Conn   Connection

	mu sync.Mutex
}

// NewPlayer creates a connection handle for playerID watching gameID.
func NewPlayer(id, gameID string, conn Connection) *Player {
	return &Player{ID: id, GameID: gameID, Conn: conn}
}

// Send writes a text frame. Writes are serialized since gorilla connections allow one writer.
func (p *Player) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.Conn.(*websocket.Conn); ok {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	}
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}

// Ping sends a heartbeat frame. Like Send it gives up after writeWait on a real connection.
func (p *Player) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.Conn.(*websocket.Conn); ok {
		return c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	}
	return p.Conn.WriteMessage(websocket.PingMessage, nil)
}

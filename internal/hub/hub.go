package hub

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/player"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/room"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/session"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

const heartbeatInterval = 10 * time.Second

var tracer = otel.Tracer("hub")

// Hub owns the rooms of this instance. Only the Run goroutine touches rooms.
type Hub struct {
	rdb        *redis.Client
	sessions   session.Service
	rooms      map[string]*room.Room
	register   chan *player.Player
	unregister chan *player.Player
	updates    chan string
	heartbeat  time.Duration
}

// NewHub creates a new hub.
func NewHub(rdb *redis.Client, sessions session.Service) *Hub {
	return &Hub{
		rdb:        rdb,
		sessions:   sessions,
		rooms:      make(map[string]*room.Room),
		register:   make(chan *player.Player),
		unregister: make(chan *player.Player),
		updates:    make(chan string, 64),
		heartbeat:  heartbeatInterval,
	}
}

// Run subscribes to game notifications and serves registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	go h.runGameUpdateSubscriber(ctx)
	go h.runEventSubscriber(ctx)
	h.loop(ctx)
}

func (h *Hub) loop(ctx context.Context) {
	pingTicker := time.NewTicker(h.heartbeat)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Hub stopping", "rooms.count", len(h.rooms))
			for _, r := range h.rooms {
				for _, p := range r.Players() {
					p.Conn.Close()
				}
			}
			return

		case p := <-h.register:
			h.handleRegistration(ctx, p)

		case p := <-h.unregister:
			h.handleUnregistration(ctx, p)

		case gameID := <-h.updates:
			h.handleGameUpdate(ctx, gameID)

		case <-pingTicker.C:
			for _, r := range h.rooms {
				for _, p := range r.Players() {
					go ping(p)
				}
			}
		}
	}
}

// ping runs off the hub goroutine so a stalled peer only delays its own heartbeat.
func ping(p *player.Player) {
	if err := p.Ping(); err != nil {
		slog.Warn("Failed to send ping to player, assuming disconnect", "player.id", p.ID, "error", err)
		p.Conn.Close()
	}
}

// Register hands a freshly upgraded connection to the hub.
func (h *Hub) Register(ctx context.Context, p *player.Player) error {
	select {
	case h.register <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// notify queues a state refresh for gameID. Updates are dropped when the hub is saturated.
func (h *Hub) notify(gameID string) {
	select {
	case h.updates <- gameID:
	default:
		slog.Warn("Dropping game update, hub is busy", "game.id", gameID)
	}
}

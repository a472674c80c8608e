package room

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/player"
	"ctchen222/Unbeatable-Tic-Tac-Toe/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast sends a message to every connection in the room.
func (r *Room) Broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	ctx, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("game.id", r.GameID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	for _, p := range r.Players() {
		if err := p.Send(data); err != nil {
			slog.WarnContext(ctx, "error writing message to player", "player.id", p.ID, "game.id", r.GameID, "error", err)
			span.RecordError(err)
		}
	}
}

// Send writes a message to a single connection.
func (r *Room) Send(ctx context.Context, p *player.Player, message *proto.ServerToClientMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return
	}
	if err := p.Send(data); err != nil {
		slog.WarnContext(ctx, "error writing message to player", "player.id", p.ID, "game.id", r.GameID, "error", err)
	}
}

// ReadPump reads client messages until the connection fails, then hands p to unregister.
func (r *Room) ReadPump(ctx context.Context, p *player.Player, unregister chan<- *player.Player) {
	defer func() {
		p.Conn.Close()
		select {
		case unregister <- p:
		case <-ctx.Done():
		}
		slog.InfoContext(ctx, "Player disconnected", "player.id", p.ID, "game.id", r.GameID)
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			slog.DebugContext(ctx, "Player connection closed", "player.id", p.ID, "game.id", r.GameID, "error", err)
			return
		}
		r.HandleMessage(ctx, p, msg)
	}
}

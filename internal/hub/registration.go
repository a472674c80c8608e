package hub

import (
	"context"
	"log/slog"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/player"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/room"
	"ctchen222/Unbeatable-Tic-Tac-Toe/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleRegistration(hubCtx context.Context, p *player.Player) {
	ctx, span := tracer.Start(hubCtx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("game.id", p.GameID),
	))
	defer span.End()

	r, ok := h.rooms[p.GameID]
	if !ok {
		r = room.NewRoom(p.GameID, p.ID, h.sessions)
		h.rooms[p.GameID] = r
		slog.InfoContext(ctx, "Room opened", "game.id", p.GameID)
	}
	r.AddPlayer(p)
	go r.ReadPump(hubCtx, p, h.unregister)

	view, err := h.sessions.Get(ctx, p.ID, p.GameID)
	if err != nil {
		slog.ErrorContext(ctx, "Could not get initial game state", "game.id", p.GameID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not get initial game state")
		r.Send(ctx, p, proto.NewErrorMessage("could not load game"))
		return
	}
	r.Send(ctx, p, proto.NewStateMessage(view))
	slog.InfoContext(ctx, "Player connected", "player.id", p.ID, "game.id", p.GameID)
}

func (h *Hub) handleUnregistration(ctx context.Context, p *player.Player) {
	r, ok := h.rooms[p.GameID]
	if !ok {
		return
	}
	if r.RemovePlayer(p) == 0 {
		delete(h.rooms, p.GameID)
		slog.InfoContext(ctx, "Room closed due to no players", "game.id", p.GameID)
	}
}

func (h *Hub) handleGameUpdate(ctx context.Context, gameID string) {
	r, ok := h.rooms[gameID]
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "hub.handleGameUpdate", trace.WithAttributes(
		attribute.String("game.id", gameID),
	))
	defer span.End()

	view, err := h.sessions.Get(ctx, r.PlayerID, gameID)
	if err != nil {
		slog.ErrorContext(ctx, "Room subscriber could not get game state", "game.id", gameID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not get game state")
		return
	}
	r.Broadcast(ctx, proto.NewStateMessage(view))
}

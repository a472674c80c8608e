package room

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/player"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/session"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/validator"
	"ctchen222/Unbeatable-Tic-Tac-Toe/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a message from a player. It acts as a dispatcher.
// Accepted transitions reach the client through the game's update channel,
// rejected ones are answered on p only.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("game.id", r.GameID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.Send(ctx, p, proto.NewErrorMessage("malformed message"))
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.Send(ctx, p, proto.NewErrorMessage("invalid message: "+err.Error()))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	var err error
	switch message.Type {
	case proto.TypeStart:
		err = r.handleStart(ctx, &message)
	case proto.TypeMove:
		_, err = r.sessions.Move(ctx, r.PlayerID, r.GameID, *message.Cell)
	case proto.TypeReset:
		_, err = r.sessions.Reset(ctx, r.PlayerID, r.GameID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Transition rejected")
		r.Send(ctx, p, proto.NewErrorMessage(reason(err)))
	}
}

func (r *Room) handleStart(ctx context.Context, message *proto.ClientToServerMessage) error {
	first, err := game.ParsePlayer(message.First)
	if err != nil {
		return err
	}
	_, err = r.sessions.Start(ctx, r.PlayerID, r.GameID, first)
	return err
}

func reason(err error) string {
	if session.IsClientError(err) {
		return err.Error()
	}
	return "internal error"
}

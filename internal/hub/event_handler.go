package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/events"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// runGameUpdateSubscriber forwards every per-game update published by any instance.
func (h *Hub) runGameUpdateSubscriber(ctx context.Context) {
	slog.InfoContext(ctx, "Game update subscriber started", "pattern", events.GameChannelPattern)
	pubsub := h.rdb.PSubscribe(ctx, events.GameChannelPattern)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleGameMessage(msg.Channel, msg.Payload)
	}
	slog.InfoContext(ctx, "Game update subscriber stopped")
}

func (h *Hub) handleGameMessage(channel, payload string) {
	gameID, ok := events.GameIDFromChannel(channel)
	if !ok || payload != events.UpdatePayload {
		slog.Warn("Ignoring unexpected game message", "channel", channel, "payload", payload)
		return
	}
	h.notify(gameID)
}

func (h *Hub) runEventSubscriber(ctx context.Context) {
	slog.InfoContext(ctx, "Event subscriber started", "channel", events.EventsChannel)
	pubsub := h.rdb.Subscribe(ctx, events.EventsChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleEvent(ctx, msg.Payload)
	}
}

// handleEvent refreshes the room an event names. Rooms on other instances are refreshed by their own hub.
func (h *Hub) handleEvent(ctx context.Context, raw string) {
	ctx, span := tracer.Start(ctx, "hub.handleEvent", trace.WithAttributes(
		attribute.String("event.channel", events.EventsChannel),
	))
	defer span.End()

	var event events.Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		slog.ErrorContext(ctx, "Could not unmarshal global event", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not unmarshal global event")
		return
	}
	span.SetAttributes(attribute.String("event.type", event.Type))

	switch event.Type {
	case events.TypeGameFinished:
		var payload events.GameFinishedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			slog.ErrorContext(ctx, "Could not unmarshal game_finished payload", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Could not unmarshal game_finished payload")
			return
		}
		slog.InfoContext(ctx, "Received game_finished event", "game.id", payload.GameID, "outcome", payload.Outcome)
		h.notify(payload.GameID)

	case events.TypeGameReset:
		var payload events.GameResetPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			slog.ErrorContext(ctx, "Could not unmarshal game_reset payload", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Could not unmarshal game_reset payload")
			return
		}
		slog.InfoContext(ctx, "Received game_reset event", "game.id", payload.GameID)
		h.notify(payload.GameID)

	default:
		slog.WarnContext(ctx, "Unknown global event", "event", event.Type)
	}
}

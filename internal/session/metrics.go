package session

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/engine"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

type metrics struct {
	searchDuration metric.Float64Histogram
	gamesFinished  metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter("session")
	m := &metrics{}

	var err error
	m.searchDuration, err = meter.Float64Histogram("bot.search.duration",
		metric.WithDescription("Time spent choosing the computer's move"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		slog.Warn("failed to create search duration histogram", "error", err)
		m.searchDuration = noop.Float64Histogram{}
	}

	m.gamesFinished, err = meter.Int64Counter("games.finished",
		metric.WithDescription("Number of games that reached a terminal outcome"),
	)
	if err != nil {
		slog.Warn("failed to create games finished counter", "error", err)
		m.gamesFinished = noop.Int64Counter{}
	}

	return m
}

func (m *metrics) recordFinished(ctx context.Context, outcome game.Outcome) {
	m.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}

// tracedCalculator times each search and records it as a span of the calling request.
type tracedCalculator struct {
	ctx     context.Context
	next    engine.MoveCalculator
	metrics *metrics
}

func newTracedCalculator(ctx context.Context, next engine.MoveCalculator, m *metrics) *tracedCalculator {
	return &tracedCalculator{ctx: ctx, next: next, metrics: m}
}

func (c *tracedCalculator) SelectBestMove(board game.Board) (int, error) {
	ctx, span := tracer.Start(c.ctx, "bot.SelectBestMove", trace.WithAttributes(
		attribute.String("board", board.String()),
		attribute.Int("board.empty_cells", len(board.EmptyCells())),
	))
	defer span.End()

	start := time.Now()
	move, err := c.next.SelectBestMove(board)
	elapsed := time.Since(start)

	c.metrics.searchDuration.Record(ctx, float64(elapsed.Microseconds())/1000)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		return move, err
	}

	span.SetAttributes(attribute.Int("move.cell", move))
	slog.DebugContext(ctx, "Computer chose move", "cell", move, "board", board.String(), "elapsed", elapsed)
	return move, nil
}

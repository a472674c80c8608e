package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/controller"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/middleware"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/response"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/player"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Registrar accepts upgraded connections.
type Registrar interface {
	Register(ctx context.Context, p *player.Player) error
}

type Server struct {
	hub            Registrar
	sessions       session.Service
	tokens         middleware.TokenParser
	userController *controller.UserController
	gameController *controller.GameController
	staticDir      string
	upgrader       websocket.Upgrader
}

func NewServer(h Registrar, sessions session.Service, tokens middleware.TokenParser, userController *controller.UserController, gameController *controller.GameController, staticDir string) *Server {
	return &Server{
		hub:            h,
		sessions:       sessions,
		tokens:         tokens,
		userController: userController,
		gameController: gameController,
		staticDir:      staticDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Engine builds the gin router with every route registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), traceRequests())

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", s.userController.Register)
		auth.POST("/login", s.userController.Login)
		auth.POST("/guest", s.userController.GuestLogin)
	}

	games := r.Group("/api/games", middleware.Auth(s.tokens))
	{
		games.POST("", s.gameController.Create)
		games.GET("/:id", s.gameController.Get)
		games.POST("/:id/start", s.gameController.Start)
		games.POST("/:id/moves", s.gameController.Move)
		games.POST("/:id/reset", s.gameController.Reset)
	}

	r.GET("/ws/games/:id", middleware.Auth(s.tokens), s.handleWebSocket)

	if s.staticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.staticDir))))
	}
	return r
}

// handleWebSocket upgrades the connection of the game's owner and hands it to the hub.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("game.id", c.Param("id")),
	))
	defer span.End()

	playerID := middleware.PlayerID(c)
	gameID := c.Param("id")
	span.SetAttributes(attribute.String("player.id", playerID))

	if _, err := s.sessions.Get(ctx, playerID, gameID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Game not available")
		if errors.Is(err, session.ErrGameNotFound) {
			response.ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, "internal error")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	if err := s.hub.Register(ctx, player.NewPlayer(playerID, gameID, conn)); err != nil {
		slog.ErrorContext(ctx, "Failed to register connection", "error", err)
		span.RecordError(err)
		conn.Close()
	}
}

// traceRequests opens a server span per request and logs its outcome.
func traceRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		slog.DebugContext(ctx, "request served", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status)
	}
}

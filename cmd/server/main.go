package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/controller"
	apirepository "ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/repository"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/service"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/bot"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/config"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/db"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/events"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/hub"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/logger"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/repository"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/server"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/session"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry before the logger so the otel bridge picks up the provider
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Initialize SQLite DB
	sqlDB, err := db.Connect(ctx, cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := db.InitializeDB(ctx, sqlDB); err != nil {
		return err
	}

	// Create repositories
	gameRepo := repository.NewGameRepository(rdb, cfg.Redis.GameTTL)
	userRepo := apirepository.NewUserRepository(sqlDB)

	// Create services
	sessions := session.NewService(gameRepo, events.NewRedisPublisher(rdb), bot.NewBotMoveCalculator())
	userService := service.NewUserService(userRepo, cfg.Auth)

	// Create hub
	h := hub.NewHub(rdb, sessions)
	go h.Run(ctx)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(h, sessions, userService,
		controller.NewUserController(userService),
		controller.NewGameController(sessions),
		cfg.HTTP.StaticDir,
	)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

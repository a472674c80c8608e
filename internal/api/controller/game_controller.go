package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/middleware"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/models"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/response"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/game"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/repository"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/session"

	"github.com/gin-gonic/gin"
)

// GameController exposes the game session over HTTP.
type GameController struct {
	sessions session.Service
}

// NewGameController creates a new GameController.
func NewGameController(sessions session.Service) *GameController {
	return &GameController{sessions: sessions}
}

// Create opens a new game for the caller.
func (gc *GameController) Create(c *gin.Context) {
	view, err := gc.sessions.Create(c.Request.Context(), middleware.PlayerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.CreatedResponse(c, view)
}

// Get returns the current state of a game.
func (gc *GameController) Get(c *gin.Context) {
	view, err := gc.sessions.Get(c.Request.Context(), middleware.PlayerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// Start picks who opens the game.
func (gc *GameController) Start(c *gin.Context) {
	var req models.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	first, err := game.ParsePlayer(req.First)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := gc.sessions.Start(c.Request.Context(), middleware.PlayerID(c), c.Param("id"), first)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// Move plays the human's cell; the computer's answer is already on the returned board.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := gc.sessions.Move(c.Request.Context(), middleware.PlayerID(c), c.Param("id"), *req.Cell)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// Reset clears the game so it can be started again.
func (gc *GameController) Reset(c *gin.Context) {
	view, err := gc.sessions.Reset(c.Request.Context(), middleware.PlayerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidMove):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrInvalidState):
		response.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrGameNotFound):
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrConflict):
		response.ErrorResponse(c, http.StatusConflict, "game is busy, retry")
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}

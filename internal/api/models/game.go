package models

// StartGameRequest picks who opens the game.
type StartGameRequest struct {
	First string `json:"first" binding:"required,oneof=human computer"`
}

// MoveRequest is the human's cell, numbered row-major from 0.
type MoveRequest struct {
	Cell *int `json:"cell" binding:"required,min=0,max=8"`
}

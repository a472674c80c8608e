package controller

import (
	"errors"
	"net/http"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/models"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/response"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/service"

	"github.com/gin-gonic/gin"
)

// UserController handles user-related HTTP requests.
type UserController struct {
	userService service.UserService
}

// NewUserController creates a new UserController.
func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// Register handles the user registration endpoint.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := uc.userService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			response.ErrorResponse(c, http.StatusConflict, err.Error())
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to register user")
		return
	}

	response.CreatedResponse(c, res)
}

// Login handles the user login endpoint.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := uc.userService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to log in")
		return
	}

	response.SuccessResponse(c, res)
}

// GuestLogin issues a token for an anonymous player.
func (uc *UserController) GuestLogin(c *gin.Context) {
	res, err := uc.userService.GuestLogin(c.Request.Context())
	if err != nil {
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.SuccessResponse(c, res)
}

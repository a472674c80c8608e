package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/models"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/repository"
	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims are carried by every issued token. The subject is the player ID.
type Claims struct {
	Username string `json:"un,omitempty"`
	Guest    bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GuestLogin(ctx context.Context) (*models.LoginResponse, error)
	ParseToken(tokenString string) (string, error)
}

type userService struct {
	userRepo repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewUserService creates a new UserService signing tokens with cfg.JWTSecret.
func NewUserService(userRepo repository.UserRepository, cfg config.Auth) UserService {
	return &userService{
		userRepo: userRepo,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL,
		now:      time.Now,
	}
}

// Register handles user registration and logs the new user in.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error) {
	// Check if user already exists
	existingUser, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrUsernameTaken
	}

	user := &models.User{
		PlayerID: uuid.NewString(),
		Username: req.Username,
	}
	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		return nil, err
	}

	return s.issue(user.PlayerID, user.Username, false)
}

// Login handles user login and returns a JWT on success.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user.PlayerID, user.Username, false)
}

// GuestLogin issues a token for a fresh anonymous player.
func (s *userService) GuestLogin(ctx context.Context) (*models.LoginResponse, error) {
	return s.issue(uuid.NewString(), "", true)
}

// ParseToken verifies tokenString and returns the player ID it was issued to.
func (s *userService) ParseToken(tokenString string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (s *userService) issue(playerID, username string, guest bool) (*models.LoginResponse, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		Guest:    guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.LoginResponse{Token: tokenString, PlayerID: playerID}, nil
}

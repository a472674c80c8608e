package middleware

import (
	"net/http"
	"strings"

	"ctchen222/Unbeatable-Tic-Tac-Toe/internal/api/response"

	"github.com/gin-gonic/gin"
)

const playerIDKey = "player_id"

// TokenParser resolves a bearer token to a player ID.
type TokenParser interface {
	ParseToken(tokenString string) (string, error)
}

// Auth rejects requests without a valid token. Browsers cannot set headers
// on websocket upgrades, so the token may also come as the "token" query parameter.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			response.Abort(c, response.NewError(http.StatusUnauthorized, "missing token"))
			return
		}

		playerID, err := parser.ParseToken(token)
		if err != nil {
			response.Abort(c, response.NewError(http.StatusUnauthorized, "invalid token"))
			return
		}

		c.Set(playerIDKey, playerID)
		c.Next()
	}
}

// PlayerID returns the authenticated player of the request.
func PlayerID(c *gin.Context) string {
	return c.GetString(playerIDKey)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

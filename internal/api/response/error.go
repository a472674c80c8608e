package response

import (
	"github.com/gin-gonic/gin"
)

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(code int, message string) Error {
	return Error{
		Success: false,
		Code:    code,
		Extras:  message,
	}
}

// Abort stops the handler chain and writes e in the error envelope.
func Abort(c *gin.Context, e Error) {
	ErrorResponse(c, e.Code, e.Extras)
	c.Abort()
}

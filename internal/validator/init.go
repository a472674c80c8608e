package validator

import (
	"ctchen222/Unbeatable-Tic-Tac-Toe/pkg/proto"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterStructValidation(clientMessageStructLevel, proto.ClientToServerMessage{})
}

func GetValidator() *validator.Validate {
	return validate
}

// clientMessageStructLevel requires the argument that belongs to each message type.
func clientMessageStructLevel(sl validator.StructLevel) {
	msg := sl.Current().Interface().(proto.ClientToServerMessage)

	switch msg.Type {
	case proto.TypeStart:
		if msg.First == "" {
			sl.ReportError(msg.First, "First", "first", "required_for_start", "")
		}
	case proto.TypeMove:
		if msg.Cell == nil {
			sl.ReportError(msg.Cell, "Cell", "cell", "required_for_move", "")
		}
	}
}

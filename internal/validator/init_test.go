package validator

import (
	"testing"

	"ctchen222/Unbeatable-Tic-Tac-Toe/pkg/proto"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestClientMessageValidation(t *testing.T) {
	testCases := []struct {
		name    string
		msg     proto.ClientToServerMessage
		wantErr bool
	}{
		{"start human", proto.ClientToServerMessage{Type: "start", First: "human"}, false},
		{"start computer", proto.ClientToServerMessage{Type: "start", First: "computer"}, false},
		{"start without first", proto.ClientToServerMessage{Type: "start"}, true},
		{"start unknown first", proto.ClientToServerMessage{Type: "start", First: "dog"}, true},
		{"move corner", proto.ClientToServerMessage{Type: "move", Cell: intPtr(0)}, false},
		{"move last cell", proto.ClientToServerMessage{Type: "move", Cell: intPtr(8)}, false},
		{"move without cell", proto.ClientToServerMessage{Type: "move"}, true},
		{"move out of range", proto.ClientToServerMessage{Type: "move", Cell: intPtr(9)}, true},
		{"move negative", proto.ClientToServerMessage{Type: "move", Cell: intPtr(-1)}, true},
		{"reset", proto.ClientToServerMessage{Type: "reset"}, false},
		{"missing type", proto.ClientToServerMessage{}, true},
		{"unknown type", proto.ClientToServerMessage{Type: "surrender"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := GetValidator().Struct(tc.msg)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

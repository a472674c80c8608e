package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameChannel(t *testing.T) {
	channel := GameChannel("abc")
	assert.Equal(t, "channel:game:abc", channel)

	id, ok := GameIDFromChannel(channel)
	require.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = GameIDFromChannel(EventsChannel)
	assert.False(t, ok)
	_, ok = GameIDFromChannel(GameChannelPrefix)
	assert.False(t, ok)
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent(TypeGameFinished, GameFinishedPayload{
		GameID:      "g1",
		PlayerID:    "p1",
		Outcome:     "computer_win",
		WinningLine: []int{0, 4, 8},
	})
	require.NoError(t, err)
	assert.Equal(t, TypeGameFinished, event.Type)

	var payload GameFinishedPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "g1", payload.GameID)
	assert.Equal(t, []int{0, 4, 8}, payload.WinningLine)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"game_finished","payload":{"game_id":"g1","player_id":"p1","outcome":"computer_win","winning_line":[0,4,8]}}`, string(data))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultsDataNormalize(t *testing.T) {
	d := ResultsData{
		Wpm:                  -12,
		RawWpm:               80,
		Accuracy:             -1,
		CharactersTyped:      -300,
		CompletionPercentage: 95.5,
	}

	d.Normalize()

	assert.Equal(t, float64(0), d.Wpm)
	assert.Equal(t, float64(80), d.RawWpm)
	assert.Equal(t, float64(0), d.Accuracy)
	assert.Equal(t, 0, d.CharactersTyped)
	assert.Equal(t, 95.5, d.CompletionPercentage)
}

func TestJoinRoomDataValidate(t *testing.T) {
	assert.NoError(t, JoinRoomData{RoomID: "r1", Username: "alice"}.Validate())
	assert.Error(t, JoinRoomData{Username: "alice"}.Validate())
	assert.Error(t, JoinRoomData{RoomID: "r1"}.Validate())
	assert.Error(t, JoinRoomData{RoomID: "r1", Username: "abcdefghijklmnopqrstu"}.Validate())
	assert.NoError(t, JoinRoomData{RoomID: "r1", Username: "abcdefghijklmnopqrst"}.Validate())
}

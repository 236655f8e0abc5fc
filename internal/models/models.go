package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/mystic-06/quik-type/internal/constants"
)

// Message defines the structure for outbound WebSocket communication
type Message struct {
	Type   string      `json:"type"`
	RoomID string      `json:"roomId,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Time   time.Time   `json:"timestamp"`
}

// Inbound is the envelope for client messages; Data stays raw until the
// handler for the type decodes it against its schema.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Config holds the room test configuration
type Config struct {
	TimerDuration int    `json:"timerDuration"`
	TestText      string `json:"testText"`
}

// Progress is the best-effort live progress a participant reports mid-test
type Progress struct {
	Wpm                  float64 `json:"wpm"`
	Accuracy             float64 `json:"accuracy"`
	CharactersTyped      int     `json:"charactersTyped"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

// FinalResults is a participant's submitted result for one round
type FinalResults struct {
	Wpm                  float64   `json:"wpm"`
	RawWpm               float64   `json:"rawWpm"`
	Accuracy             float64   `json:"accuracy"`
	CharactersTyped      int       `json:"charactersTyped"`
	CompletionPercentage float64   `json:"completionPercentage"`
	SubmittedAt          time.Time `json:"submittedAt"`
}

type ParticipantSnapshot struct {
	ID              string        `json:"id"`
	Username        string        `json:"username"`
	IsReady         bool          `json:"isReady"`
	IsHost          bool          `json:"isHost"`
	CurrentProgress Progress      `json:"currentProgress"`
	FinalResults    *FinalResults `json:"finalResults"`
}

type RoomSnapshot struct {
	ID           string                `json:"id"`
	HostID       string                `json:"hostId"`
	Phase        string                `json:"phase"`
	Config       Config                `json:"config"`
	Participants []ParticipantSnapshot `json:"participants"`
	CreatedAt    time.Time             `json:"createdAt"`
}

type RankingEntry struct {
	ID                   string  `json:"id"`
	Username             string  `json:"username"`
	Wpm                  float64 `json:"wpm"`
	RawWpm               float64 `json:"rawWpm"`
	Accuracy             float64 `json:"accuracy"`
	CharactersTyped      int     `json:"charactersTyped"`
	CompletionPercentage float64 `json:"completionPercentage"`
	Rank                 int     `json:"rank"`
}

type ReadyStateChange struct {
	ParticipantID string `json:"participantId"`
	IsReady       bool   `json:"isReady"`
}

type TestStartData struct {
	Text     string `json:"text"`
	Duration int    `json:"durationSeconds"`
}

type ProgressUpdate struct {
	ParticipantID string   `json:"participantId"`
	Progress      Progress `json:"progress"`
}

// INBOUND PAYLOAD SCHEMAS =>

type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

func (d JoinRoomData) Validate() error {
	if d.RoomID == "" || d.Username == "" {
		return errors.New("room ID and username are required")
	}
	if len(d.Username) > constants.MaxUsernameLen {
		return errors.New("username must be 20 characters or less")
	}
	return nil
}

type ConfigureData struct {
	TimerDuration int `json:"timerDuration"`
}

type ResultsData struct {
	Wpm                  float64 `json:"wpm"`
	RawWpm               float64 `json:"rawWpm"`
	Accuracy             float64 `json:"accuracy"`
	CharactersTyped      int     `json:"charactersTyped"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

// Normalize clamps negative client values to zero, matching the zero-default
// the server synthesizes on timeout.
func (d *ResultsData) Normalize() {
	d.Wpm = max(d.Wpm, 0)
	d.RawWpm = max(d.RawWpm, 0)
	d.Accuracy = max(d.Accuracy, 0)
	d.CharactersTyped = int(max(float64(d.CharactersTyped), 0))
	d.CompletionPercentage = max(d.CompletionPercentage, 0)
}

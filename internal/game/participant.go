package game

import (
	"log"
	"sync"

	"github.com/mystic-06/quik-type/internal/models"
)

// Conn is the slice of a websocket connection the room needs for fan-out.
// *websocket.Conn satisfies it; tests substitute a recorder.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Participant represents one connected client inside a room. The id is
// connection-scoped and stable for the life of the connection.
type Participant struct {
	ID       string
	Username string
	Conn     Conn

	IsReady         bool
	IsHost          bool
	CurrentProgress models.Progress
	FinalResults    *models.FinalResults

	// WriteMu serializes writes; broadcasts and error sends race otherwise.
	WriteMu sync.Mutex
}

// NewParticipant creates a participant with initialized progress
func NewParticipant(id, username string, conn Conn) *Participant {
	log.Printf("New participant connected: %s (%s)", username, id)
	return &Participant{
		ID:       id,
		Username: username,
		Conn:     conn,
		CurrentProgress: models.Progress{
			Accuracy: 100,
		},
	}
}

// Send writes a single message to this participant's connection.
func (p *Participant) Send(msg models.Message) error {
	p.WriteMu.Lock()
	defer p.WriteMu.Unlock()

	if p.Conn == nil {
		return nil
	}
	return p.Conn.WriteJSON(msg)
}

func (p *Participant) snapshot() models.ParticipantSnapshot {
	snap := models.ParticipantSnapshot{
		ID:              p.ID,
		Username:        p.Username,
		IsReady:         p.IsReady,
		IsHost:          p.IsHost,
		CurrentProgress: p.CurrentProgress,
	}
	if p.FinalResults != nil {
		results := *p.FinalResults
		snap.FinalResults = &results
	}
	return snap
}

// resetRoundState clears per-round state when a room returns to setup.
func (p *Participant) resetRoundState() {
	p.IsReady = false
	p.FinalResults = nil
	p.CurrentProgress = models.Progress{Accuracy: 100}
}

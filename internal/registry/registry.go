package registry

import (
	"log"
	"sync"
	"time"

	"github.com/mystic-06/quik-type/internal/game"
)

// Registry owns the mapping from room id to room. It is injected into the
// coordinator rather than referenced as ambient state, so tests can run
// multiple independent registries.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*game.Room
	genText game.TextGenerator
}

// DebugRoom is the /debug/rooms projection of one room.
type DebugRoom struct {
	ID               string             `json:"id"`
	Phase            string             `json:"phase"`
	ParticipantCount int                `json:"participantCount"`
	Participants     []DebugParticipant `json:"participants"`
}

type DebugParticipant struct {
	Username   string `json:"username"`
	IsReady    bool   `json:"isReady"`
	HasResults bool   `json:"hasResults"`
}

// New creates a registry whose rooms generate test text with gen.
func New(gen game.TextGenerator) *Registry {
	log.Printf("Creating new room registry")
	return &Registry{
		rooms:   make(map[string]*game.Room),
		genText: gen,
	}
}

// GetOrCreate returns the room for id, creating it hosted by hostID when none
// exists. Lookup and create share one critical section, so concurrent first
// joins to the same id always land in the same room object; the loser of the
// create race simply gets the winner's room back.
func (reg *Registry) GetOrCreate(id, hostID string) *game.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if existing, ok := reg.rooms[id]; ok {
		return existing
	}

	room := game.NewRoom(id, hostID, reg.genText)
	reg.rooms[id] = room
	log.Printf("Room %s created by %s", id, hostID)
	return room
}

// Get returns the room for id, or nil.
func (reg *Registry) Get(id string) *game.Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[id]
}

// Delete removes a room from the registry.
func (reg *Registry) Delete(id string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.rooms[id]; !ok {
		return false
	}
	delete(reg.rooms, id)
	log.Printf("Room %s deleted", id)
	return true
}

// Sweep deletes rooms that have sat empty for longer than maxIdle. Empty
// rooms are deleted eagerly on last-participant-leave, so this is a safety
// net, not the primary cleanup path. Returns the number deleted.
func (reg *Registry) Sweep(maxIdle time.Duration) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, room := range reg.rooms {
		if room.Count() == 0 && now.Sub(room.CreatedAt) > maxIdle {
			delete(reg.rooms, id)
			removed++
			log.Printf("Swept stale empty room %s", id)
		}
	}
	return removed
}

// Stats returns total room and participant counts for the periodic stats log.
func (reg *Registry) Stats() (rooms, participants int) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, room := range reg.rooms {
		rooms++
		participants += room.Count()
	}
	return rooms, participants
}

// DebugSnapshot projects every room for the debug endpoint.
func (reg *Registry) DebugSnapshot() []DebugRoom {
	reg.mu.RLock()
	ids := make([]*game.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		ids = append(ids, room)
	}
	reg.mu.RUnlock()

	out := make([]DebugRoom, 0, len(ids))
	for _, room := range ids {
		snap := room.Snapshot()
		dbg := DebugRoom{
			ID:               snap.ID,
			Phase:            snap.Phase,
			ParticipantCount: len(snap.Participants),
		}
		for _, p := range snap.Participants {
			dbg.Participants = append(dbg.Participants, DebugParticipant{
				Username:   p.Username,
				IsReady:    p.IsReady,
				HasResults: p.FinalResults != nil,
			})
		}
		out = append(out, dbg)
	}
	return out
}

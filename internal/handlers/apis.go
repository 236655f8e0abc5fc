package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mystic-06/quik-type/internal/constants"
)

// HandleHealth is the liveness probe.
func (c *Coordinator) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleDebugRooms dumps every room's state. Not part of the protocol
// contract; for operators only.
func (c *Coordinator) HandleDebugRooms(w http.ResponseWriter, r *http.Request) {
	rooms := c.Registry.DebugSnapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rooms":      rooms,
		"totalRooms": len(rooms),
	})
}

// HandleCheckRoom tells a client whether a room code currently exists and is
// joinable, so the UI can validate before opening a socket.
func (c *Coordinator) HandleCheckRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		http.Error(w, "Missing room_id", http.StatusBadRequest)
		return
	}

	resp := map[string]bool{"exists": false, "joinable": false}
	if room := c.Registry.Get(roomID); room != nil {
		snap := room.Snapshot()
		resp["exists"] = true
		resp["joinable"] = len(snap.Participants) < constants.MaxParticipants &&
			snap.Phase != constants.PhaseCountdown && snap.Phase != constants.PhaseTest
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

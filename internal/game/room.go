package game

import (
	"log"
	"sync"
	"time"

	"github.com/mystic-06/quik-type/internal/constants"
	"github.com/mystic-06/quik-type/internal/models"
)

// TextGenerator produces the reference text for one test round.
type TextGenerator func() string

// Room is a game room taking a bounded set of participants through one shared
// test round at a time. All mutation happens under Mu; broadcasts go out after
// the lock is released, built from snapshots taken while it was held.
type Room struct {
	ID        string
	CreatedAt time.Time

	Mu      sync.Mutex
	HostID  string
	Phase   string
	Config  models.Config
	genText TextGenerator

	participants []*Participant
	byID         map[string]*Participant

	// roundSeq increments on every return to setup. Timer callbacks capture
	// the sequence they were armed under and no-op if it moved on.
	roundSeq int

	tickInterval time.Duration
	grace        time.Duration
	resetDelay   time.Duration
}

// LeaveResult reports what a roster removal changed.
type LeaveResult struct {
	Removed   bool
	RoomEmpty bool
	NewHostID string
}

// NewRoom creates a room in the setup phase owned by hostID.
func NewRoom(id, hostID string, gen TextGenerator) *Room {
	log.Printf("Creating new room: %s (host %s)", id, hostID)
	return &Room{
		ID:        id,
		HostID:    hostID,
		Phase:     constants.PhaseSetup,
		CreatedAt: time.Now(),
		Config: models.Config{
			TimerDuration: constants.DefaultTimerDuration,
		},
		genText:      gen,
		byID:         make(map[string]*Participant),
		tickInterval: constants.CountdownTick,
		grace:        constants.SubmissionGrace,
		resetDelay:   constants.ResultsResetDelay,
	}
}

// ROSTER OPERATIONS =>

// Join adds a participant and returns the room snapshot to send them.
// Joining is rejected while a round is running; late joiners wait for setup.
// The first joiner of an empty room becomes its host.
func (r *Room) Join(p *Participant) (models.RoomSnapshot, error) {
	r.Mu.Lock()

	if len(r.participants) >= constants.MaxParticipants {
		r.Mu.Unlock()
		return models.RoomSnapshot{}, ErrRoomFull
	}
	if r.Phase == constants.PhaseCountdown || r.Phase == constants.PhaseTest {
		r.Mu.Unlock()
		return models.RoomSnapshot{}, ErrTestInProgress
	}

	// The connection's participant survives leave/rejoin; ready flags and
	// results from a previous room must not.
	p.resetRoundState()
	if len(r.participants) == 0 {
		r.HostID = p.ID
	}
	p.IsHost = p.ID == r.HostID
	r.participants = append(r.participants, p)
	r.byID[p.ID] = p

	snap := r.snapshotLocked()
	joined := p.snapshot()
	r.Mu.Unlock()

	log.Printf("Participant %s (%s) joined room %s", p.Username, p.ID, r.ID)
	r.broadcastExcept(p.ID, models.Message{Type: "participant-joined", Data: joined})
	return snap, nil
}

// Leave removes a participant. An empty roster means the caller must delete
// the room from the registry; no broadcasts are sent for it. Host departure
// promotes the earliest remaining joiner.
func (r *Room) Leave(participantID string) LeaveResult {
	r.Mu.Lock()

	p, ok := r.byID[participantID]
	if !ok {
		r.Mu.Unlock()
		return LeaveResult{}
	}

	delete(r.byID, participantID)
	for i, other := range r.participants {
		if other.ID == participantID {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			break
		}
	}

	result := LeaveResult{Removed: true}

	if len(r.participants) == 0 {
		result.RoomEmpty = true
		r.Mu.Unlock()
		log.Printf("Participant %s left room %s, room now empty", p.Username, r.ID)
		return result
	}

	if p.IsHost {
		next := r.participants[0]
		next.IsHost = true
		r.HostID = next.ID
		result.NewHostID = next.ID
		log.Printf("Host transferred to %s in room %s", next.Username, r.ID)
	}

	// A departing straggler may have been the only one still typing.
	var snap models.RoomSnapshot
	var rankings []models.RankingEntry
	finished := r.Phase == constants.PhaseTest && r.allSubmittedLocked()
	if finished {
		snap, rankings = r.finishRoundLocked()
	}
	r.Mu.Unlock()

	log.Printf("Participant %s (%s) removed from room %s", p.Username, p.ID, r.ID)
	r.broadcast(models.Message{Type: "participant-left", Data: participantID})
	if result.NewHostID != "" {
		r.broadcast(models.Message{Type: "host-changed", Data: result.NewHostID})
	}
	if finished {
		r.broadcastResults(snap, rankings)
	}
	return result
}

// ToggleReady flips the ready flag. The flip itself is phase-agnostic; the
// countdown decision only fires from setup with a non-empty, fully ready
// roster, so N toggles start at most one countdown.
func (r *Room) ToggleReady(participantID string) error {
	r.Mu.Lock()

	p, ok := r.byID[participantID]
	if !ok {
		r.Mu.Unlock()
		return ErrParticipantNotFound
	}

	p.IsReady = !p.IsReady
	change := models.ReadyStateChange{ParticipantID: p.ID, IsReady: p.IsReady}

	started := false
	if r.Phase == constants.PhaseSetup && len(r.participants) >= 1 && r.allReadyLocked() {
		r.Phase = constants.PhaseCountdown
		started = true
	}
	r.Mu.Unlock()

	r.broadcast(models.Message{Type: "ready-state-changed", Data: change})

	if started {
		log.Printf("All participants ready in room %s, starting countdown", r.ID)
		r.broadcast(models.Message{Type: "countdown-start", Data: constants.CountdownStart})
		go r.runCountdown()
	}
	return nil
}

// Configure updates the timer duration. Host only.
func (r *Room) Configure(actorID string, timerDuration int) error {
	r.Mu.Lock()

	if actorID != r.HostID {
		r.Mu.Unlock()
		return ErrNotAuthorized
	}
	if !constants.IsAllowedDuration(timerDuration) {
		r.Mu.Unlock()
		return ErrInvalidConfig
	}

	r.Config.TimerDuration = timerDuration
	cfg := r.Config
	r.Mu.Unlock()

	log.Printf("Host updated config in room %s: %ds", r.ID, cfg.TimerDuration)
	r.broadcast(models.Message{Type: "config-updated", Data: cfg})
	return nil
}

// SubmitResults stores a participant's results; once every current
// participant has submitted, the round finishes.
func (r *Room) SubmitResults(participantID string, data models.ResultsData) error {
	r.Mu.Lock()

	if r.Phase != constants.PhaseTest {
		r.Mu.Unlock()
		return ErrNoActiveTest
	}
	p, ok := r.byID[participantID]
	if !ok {
		r.Mu.Unlock()
		return ErrParticipantNotFound
	}

	p.FinalResults = &models.FinalResults{
		Wpm:                  data.Wpm,
		RawWpm:               data.RawWpm,
		Accuracy:             data.Accuracy,
		CharactersTyped:      data.CharactersTyped,
		CompletionPercentage: data.CompletionPercentage,
		SubmittedAt:          time.Now(),
	}
	log.Printf("Results stored for %s in room %s: %.1f wpm", p.Username, r.ID, data.Wpm)

	if !r.allSubmittedLocked() {
		r.Mu.Unlock()
		return nil
	}

	snap, rankings := r.finishRoundLocked()
	r.Mu.Unlock()

	r.broadcastResults(snap, rankings)
	return nil
}

// UpdateProgress stores best-effort live progress and relays it to the rest
// of the room. Progress outside an active test is dropped.
func (r *Room) UpdateProgress(participantID string, progress models.Progress) error {
	r.Mu.Lock()

	if r.Phase != constants.PhaseTest {
		r.Mu.Unlock()
		return nil
	}
	p, ok := r.byID[participantID]
	if !ok {
		r.Mu.Unlock()
		return ErrParticipantNotFound
	}

	p.CurrentProgress = progress
	update := models.ProgressUpdate{ParticipantID: p.ID, Progress: progress}
	r.Mu.Unlock()

	r.broadcastExcept(participantID, models.Message{Type: "progress-updated", Data: update})
	return nil
}

// Restart resets the room to setup immediately. Host only, and not a defined
// transition while a round is running.
func (r *Room) Restart(actorID string) error {
	r.Mu.Lock()

	if actorID != r.HostID {
		r.Mu.Unlock()
		return ErrNotAuthorized
	}
	if r.Phase == constants.PhaseTest || r.Phase == constants.PhaseCountdown {
		r.Mu.Unlock()
		return ErrTestInProgress
	}

	r.resetLocked()
	snap := r.snapshotLocked()
	r.Mu.Unlock()

	log.Printf("Room %s restarted by host", r.ID)
	r.broadcast(models.Message{Type: "room-restarted", Data: snap})
	return nil
}

// STATE MACHINE INTERNALS =>

// runCountdown drives countdown → test. The countdown is authoritative and is
// never interrupted by roster changes, only by its own expiry; if everyone
// left in the meantime the expiry finds a dead room and stops.
func (r *Room) runCountdown() {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for count := constants.CountdownStart - 1; count >= 0; count-- {
		<-ticker.C
		if count > 0 {
			r.broadcast(models.Message{Type: "countdown-update", Data: count})
			continue
		}
		r.beginTest()
	}
}

// beginTest transitions countdown → test: one fresh text for the whole room,
// and the forced-completion timer armed for duration + grace.
func (r *Room) beginTest() {
	r.Mu.Lock()

	if len(r.participants) == 0 {
		// Room was emptied and deleted mid-countdown.
		r.Mu.Unlock()
		return
	}

	r.Phase = constants.PhaseTest
	r.Config.TestText = r.generateText()
	start := models.TestStartData{
		Text:     r.Config.TestText,
		Duration: r.Config.TimerDuration,
	}

	seq := r.roundSeq
	timeout := time.Duration(r.Config.TimerDuration)*time.Second + r.grace
	r.Mu.Unlock()

	log.Printf("Test started in room %s (%ds, %d chars)", r.ID, start.Duration, len(start.Text))
	r.broadcast(models.Message{Type: "test-start", Data: start})

	time.AfterFunc(timeout, func() { r.ForceComplete(seq) })
}

// ForceComplete ends a round that never collected every submission,
// synthesizing zero-valued results for non-submitters. Stale fires (the round
// already finished or reset) do nothing.
func (r *Room) ForceComplete(seq int) {
	r.Mu.Lock()

	if r.Phase != constants.PhaseTest || r.roundSeq != seq {
		r.Mu.Unlock()
		return
	}

	log.Printf("Force ending test in room %s due to timeout", r.ID)
	now := time.Now()
	for _, p := range r.participants {
		if p.FinalResults == nil {
			p.FinalResults = &models.FinalResults{SubmittedAt: now}
		}
	}

	snap, rankings := r.finishRoundLocked()
	r.Mu.Unlock()

	r.broadcastResults(snap, rankings)
}

// finishRoundLocked moves test → results, computes rankings and arms the
// automatic round reset. Caller holds Mu and broadcasts the returned pair.
func (r *Room) finishRoundLocked() (models.RoomSnapshot, []models.RankingEntry) {
	r.Phase = constants.PhaseResults

	entries := make([]models.ParticipantSnapshot, 0, len(r.participants))
	for _, p := range r.participants {
		entries = append(entries, p.snapshot())
	}
	rankings := ComputeRankings(entries)
	snap := r.snapshotLocked()

	seq := r.roundSeq
	time.AfterFunc(r.resetDelay, func() { r.resetAfterResults(seq) })

	return snap, rankings
}

// resetAfterResults is the automatic results → setup transition. A manual
// restart may already have advanced the phase; then this fire is stale.
func (r *Room) resetAfterResults(seq int) {
	r.Mu.Lock()

	if r.Phase != constants.PhaseResults || r.roundSeq != seq {
		r.Mu.Unlock()
		return
	}

	r.resetLocked()
	snap := r.snapshotLocked()
	r.Mu.Unlock()

	log.Printf("Room %s reset for next round", r.ID)
	r.broadcast(models.Message{Type: "room-state-updated", Data: snap})
}

func (r *Room) resetLocked() {
	for _, p := range r.participants {
		p.resetRoundState()
	}
	r.Config.TestText = ""
	r.Phase = constants.PhaseSetup
	r.roundSeq++
}

func (r *Room) generateText() string {
	if r.genText != nil {
		if text := r.genText(); text != "" {
			return text
		}
	}
	return "the quick brown fox jumps over the lazy dog"
}

func (r *Room) allReadyLocked() bool {
	for _, p := range r.participants {
		if !p.IsReady {
			return false
		}
	}
	return true
}

func (r *Room) allSubmittedLocked() bool {
	for _, p := range r.participants {
		if p.FinalResults == nil {
			return false
		}
	}
	return len(r.participants) > 0
}

// SNAPSHOTS & BROADCASTS =>

// Snapshot returns a consistent copy of the room state.
func (r *Room) Snapshot() models.RoomSnapshot {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() models.RoomSnapshot {
	parts := make([]models.ParticipantSnapshot, 0, len(r.participants))
	for _, p := range r.participants {
		parts = append(parts, p.snapshot())
	}
	return models.RoomSnapshot{
		ID:           r.ID,
		HostID:       r.HostID,
		Phase:        r.Phase,
		Config:       r.Config,
		Participants: parts,
		CreatedAt:    r.CreatedAt,
	}
}

// Count returns the current roster size.
func (r *Room) Count() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.participants)
}

func (r *Room) broadcast(msg models.Message) {
	r.broadcastExcept("", msg)
}

func (r *Room) broadcastExcept(excludeID string, msg models.Message) {
	msg.RoomID = r.ID
	msg.Time = time.Now()

	r.Mu.Lock()
	targets := make([]*Participant, 0, len(r.participants))
	for _, p := range r.participants {
		if p.ID != excludeID {
			targets = append(targets, p)
		}
	}
	r.Mu.Unlock()

	for _, p := range targets {
		if err := p.Send(msg); err != nil {
			log.Printf("Failed to send %s to %s in room %s: %v", msg.Type, p.Username, r.ID, err)
		}
	}
}

// broadcastResults sends the snapshot first, then the rankings, so clients
// observe the phase change before the leaderboard.
func (r *Room) broadcastResults(snap models.RoomSnapshot, rankings []models.RankingEntry) {
	r.broadcast(models.Message{Type: "room-state-updated", Data: snap})
	r.broadcast(models.Message{Type: "final-rankings", Data: rankings})
	log.Printf("Final rankings sent for room %s (%d entries)", r.ID, len(rankings))
}

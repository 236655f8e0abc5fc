package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mystic-06/quik-type/internal/game"
	"github.com/mystic-06/quik-type/internal/models"
	"github.com/mystic-06/quik-type/internal/registry"
)

// VARIABLES =>

// Configure WebSocket upgrader
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: In production, implement proper origin checking
		return true
	},
}

// session is the per-connection record tying a connection id to the room it
// joined; inbound events carry it instead of hiding state on the transport.
type session struct {
	connID   string
	roomID   string
	username string
}

// Coordinator is the single entry point for inbound client events. It owns
// no room state itself; the registry is injected.
type Coordinator struct {
	Registry *registry.Registry
}

func NewCoordinator(reg *registry.Registry) *Coordinator {
	return &Coordinator{Registry: reg}
}

// METHODS =>

// HandleWebSocket manages a client connection for its whole lifetime.
func (c *Coordinator) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	p := game.NewParticipant(uuid.New().String(), "", conn)
	sess := &session{connID: p.ID}

	// Progress updates arrive continuously mid-test; everything else is
	// sparse. One limiter with headroom for both.
	limiter := rate.NewLimiter(rate.Limit(20), 40)

	defer func() {
		c.leaveRoom(sess, p)
		conn.Close()
		log.Printf("Connection %s closed", sess.connID)
	}()

	for {
		var msg models.Inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for connection %s: %v", sess.connID, err)
			}
			return
		}

		if !limiter.Allow() {
			log.Printf("Dropping %s from %s: rate limit exceeded", msg.Type, sess.connID)
			continue
		}

		c.dispatch(sess, p, msg)
	}
}

// dispatch routes one inbound event. Handler faults are recoverable: the
// sender gets an error message, the room stays untouched, the process lives.
func (c *Coordinator) dispatch(sess *session, p *game.Participant, msg models.Inbound) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Recovered from panic handling %s for %s: %v", msg.Type, sess.connID, rec)
			c.sendError(p, "internal server error")
		}
	}()

	switch msg.Type {
	case "join-room":
		c.handleJoinRoom(sess, p, msg.Data)
	case "configure-test":
		c.handleConfigureTest(sess, p, msg.Data)
	case "ready-toggle":
		c.handleReadyToggle(sess, p)
	case "submit-results":
		c.handleSubmitResults(sess, p, msg.Data)
	case "update-progress":
		c.handleUpdateProgress(sess, p, msg.Data)
	case "restart-room":
		c.handleRestartRoom(sess, p)
	case "leave-room":
		c.leaveRoom(sess, p)
	case "ping":
		c.handlePing(p)
	default:
		log.Printf("Unknown message type %q from %s", msg.Type, sess.connID)
	}
}

// EVENT HANDLERS =>

func (c *Coordinator) handleJoinRoom(sess *session, p *game.Participant, raw json.RawMessage) {
	var data models.JoinRoomData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.sendError(p, "invalid join-room payload")
		return
	}
	if err := data.Validate(); err != nil {
		c.sendError(p, err.Error())
		return
	}
	if sess.roomID != "" {
		c.sendError(p, "already in a room")
		return
	}

	room := c.Registry.GetOrCreate(data.RoomID, sess.connID)

	p.Username = data.Username
	snap, err := room.Join(p)
	if err != nil {
		c.sendError(p, err.Error())
		return
	}

	sess.roomID = data.RoomID
	sess.username = data.Username

	c.send(p, models.Message{Type: "room-joined", RoomID: room.ID, Data: snap})
	log.Printf("%s successfully joined room %s", data.Username, data.RoomID)
}

func (c *Coordinator) handleConfigureTest(sess *session, p *game.Participant, raw json.RawMessage) {
	room, err := c.roomFor(sess)
	if err != nil {
		c.sendError(p, err.Error())
		return
	}

	var data models.ConfigureData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.sendError(p, "invalid configure-test payload")
		return
	}

	if err := room.Configure(sess.connID, data.TimerDuration); err != nil {
		c.sendError(p, err.Error())
	}
}

func (c *Coordinator) handleReadyToggle(sess *session, p *game.Participant) {
	room, err := c.roomFor(sess)
	if err != nil {
		c.sendError(p, err.Error())
		return
	}

	if err := room.ToggleReady(sess.connID); err != nil {
		c.sendError(p, err.Error())
	}
}

func (c *Coordinator) handleSubmitResults(sess *session, p *game.Participant, raw json.RawMessage) {
	room, err := c.roomFor(sess)
	if err != nil {
		c.sendError(p, err.Error())
		return
	}

	var data models.ResultsData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.sendError(p, "invalid submit-results payload")
		return
	}
	data.Normalize()

	if err := room.SubmitResults(sess.connID, data); err != nil {
		c.sendError(p, err.Error())
	}
}

func (c *Coordinator) handleUpdateProgress(sess *session, p *game.Participant, raw json.RawMessage) {
	room, err := c.roomFor(sess)
	if err != nil {
		c.sendError(p, err.Error())
		return
	}

	var data models.Progress
	if err := json.Unmarshal(raw, &data); err != nil {
		c.sendError(p, "invalid update-progress payload")
		return
	}

	if err := room.UpdateProgress(sess.connID, data); err != nil {
		c.sendError(p, err.Error())
	}
}

func (c *Coordinator) handleRestartRoom(sess *session, p *game.Participant) {
	room, err := c.roomFor(sess)
	if err != nil {
		c.sendError(p, err.Error())
		return
	}

	if err := room.Restart(sess.connID); err != nil {
		c.sendError(p, err.Error())
	}
}

// handlePing responds to client keepalive probes
func (c *Coordinator) handlePing(p *game.Participant) {
	c.send(p, models.Message{Type: "pong", Data: time.Now()})
}

// leaveRoom detaches the session from its room, deleting the room when the
// last participant goes. Safe to call with no room or a stale room id.
func (c *Coordinator) leaveRoom(sess *session, p *game.Participant) {
	if sess.roomID == "" {
		return
	}

	if room := c.Registry.Get(sess.roomID); room != nil {
		result := room.Leave(sess.connID)
		if result.RoomEmpty {
			c.Registry.Delete(room.ID)
		}
	}

	log.Printf("%s left room %s", sess.username, sess.roomID)
	sess.roomID = ""
}

// HELPERS =>

func (c *Coordinator) roomFor(sess *session) (*game.Room, error) {
	if sess.roomID == "" {
		return nil, game.ErrRoomNotFound
	}
	room := c.Registry.Get(sess.roomID)
	if room == nil {
		return nil, game.ErrRoomNotFound
	}
	return room, nil
}

// sendError notifies the originating connection only; room state is
// untouched and the rest of the room sees nothing.
func (c *Coordinator) sendError(p *game.Participant, message string) {
	c.send(p, models.Message{Type: "error", Data: message})
}

func (c *Coordinator) send(p *game.Participant, msg models.Message) {
	msg.Time = time.Now()
	if err := p.Send(msg); err != nil {
		log.Printf("Failed to send %s to connection %s: %v", msg.Type, p.ID, err)
	}
}

package relay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopmesh/relay/internal/infrastructure/metrics"
	"github.com/shopmesh/relay/pkg/wire"
	"go.uber.org/zap"
)

// Options tune per-session transport behavior.
type Options struct {
	SendQueueDepth int
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	MaxMessageSize int64
}

func DefaultOptions() Options {
	return Options{
		SendQueueDepth: 64,
		WriteTimeout:   10 * time.Second,
		PongTimeout:    60 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

// Hub is the relay server core: it wires the registry and room manager to
// live sessions, handles the inbound event table, and fans events out to
// room members. Delivery is at-most-once and best-effort; a room with no
// members swallows the event silently.
type Hub struct {
	state   *State
	log     *zap.SugaredLogger
	metrics *metrics.Relay
	auth    *JoinAuth // nil: identity is trusted as asserted
	opts    Options

	register   chan *Session
	unregister chan *Session

	// mu guards sessions. A send queue is closed only under the write lock
	// and pushed to only under the read lock, so a push never races a close.
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub(state *State, log *zap.SugaredLogger, m *metrics.Relay, auth *JoinAuth, opts Options) *Hub {
	return &Hub{
		state:      state,
		log:        log,
		metrics:    m,
		auth:       auth,
		opts:       opts,
		register:   make(chan *Session),
		unregister: make(chan *Session),
		sessions:   make(map[string]*Session),
	}
}

func (h *Hub) Register() chan<- *Session {
	return h.register
}

func (h *Hub) Unregister() chan<- *Session {
	return h.unregister
}

// Run processes session lifecycle until the context is cancelled, then
// closes every remaining session.
func (h *Hub) Run(ctx context.Context) {
	defer h.cleanup()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("hub shutting down")
			return

		case s := <-h.register:
			h.addSession(s)

		case s := <-h.unregister:
			h.handleDisconnect(s)
		}
	}
}

func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	h.state.Registry.Register(s.ID)
	h.updateGauges()
	h.log.Infow("connection registered", "conn", s.ID)
}

func (h *Hub) handleDisconnect(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; ok {
		delete(h.sessions, s.ID)
		close(s.send)
	}
	h.mu.Unlock()

	userID, removed := h.state.Registry.Dissociate(s.ID)
	h.state.Rooms.LeaveAll(s.ID)
	h.updateGauges()
	h.log.Infow("connection closed", "conn", s.ID, "user", userID)

	if removed {
		h.emitToRoom(wire.OperatorRoom, mustEnvelope(wire.EventUserDisconnected, userID))
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.sessions {
		close(s.send)
	}
	h.sessions = make(map[string]*Session)
	h.updateGauges()
}

// OnlineUsers snapshots the associated user identities, for presence
// queries over HTTP.
func (h *Hub) OnlineUsers() []string {
	return h.state.Registry.Online()
}

// IsOnline reports whether the user currently holds a presence entry.
func (h *Hub) IsOnline(userID string) bool {
	_, ok := h.state.Registry.Lookup(userID)
	return ok
}

// dispatch routes one inbound envelope. Called from each session's read
// goroutine; registry and room state carry their own locks.
func (h *Hub) dispatch(s *Session, env *wire.Envelope) {
	switch env.Event {
	case wire.EventJoinUserRoom:
		h.handleJoinUserRoom(s, env)
	case wire.EventJoinAdminRoom:
		h.handleJoinAdminRoom(s, env)
	case wire.EventSendAdminMessage:
		h.handleSendAdminMessage(s, env)
	case wire.EventSendChatMessage:
		h.handleSendChatMessage(s, env)
	case wire.EventSendNotification:
		h.handleSendNotification(s, env)
	case wire.EventGetOnlineUsers:
		h.handleGetOnlineUsers(s)
	default:
		h.log.Warnw("unknown event", "conn", s.ID, "event", env.Event)
		h.sendError(s, "UNKNOWN_EVENT", "unrecognized event: "+env.Event)
	}
}

func (h *Hub) handleJoinUserRoom(s *Session, env *wire.Envelope) {
	var p wire.JoinUserRoomPayload
	if err := env.Decode(&p); err != nil || p.UserID == "" {
		h.sendError(s, "BAD_JOIN", "join-user-room requires a userId")
		return
	}

	if h.auth != nil {
		if err := h.auth.Verify(p.Token, p.UserID); err != nil {
			h.log.Warnw("join rejected", "conn", s.ID, "user", p.UserID, "error", err)
			h.sendError(s, "AUTH_FAILED", "join credential rejected")
			return
		}
	}

	prev := h.state.Registry.Associate(s.ID, p.UserID)
	h.state.Rooms.Join(s.ID, wire.UserRoom(p.UserID))
	h.updateGauges()
	h.log.Infow("user joined", "conn", s.ID, "user", p.UserID)

	if prev != "" {
		h.sendTo(prev, mustEnvelope(wire.EventSessionSuperseded, p.UserID))
	}

	h.emitToRoom(wire.OperatorRoom, mustEnvelope(wire.EventUserConnected, p.UserID))
}

func (h *Hub) handleJoinAdminRoom(s *Session, env *wire.Envelope) {
	var p wire.JoinAdminRoomPayload
	if len(env.Data) > 0 {
		if err := env.Decode(&p); err != nil {
			h.sendError(s, "BAD_JOIN", "malformed join-admin-room payload")
			return
		}
	}

	if h.auth != nil {
		if err := h.auth.Verify(p.Token, p.AdminID); err != nil {
			h.log.Warnw("admin join rejected", "conn", s.ID, "admin", p.AdminID, "error", err)
			h.sendError(s, "AUTH_FAILED", "join credential rejected")
			return
		}
	}

	h.state.Rooms.Join(s.ID, wire.OperatorRoom)
	h.updateGauges()
	h.log.Infow("operator joined", "conn", s.ID, "admin", p.AdminID)
}

func (h *Hub) handleSendAdminMessage(s *Session, env *wire.Envelope) {
	var p wire.SendAdminMessagePayload
	if err := env.Decode(&p); err != nil {
		h.sendError(s, "BAD_PAYLOAD", "malformed send-admin-message payload")
		return
	}

	id := p.MessageID
	if id == "" {
		id = uuid.NewString()
	}

	out, err := wire.NewEnvelope(wire.EventAdminMessage, wire.AdminMessagePayload{
		ID:        id,
		Content:   p.Message,
		Sender:    p.Sender,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.log.Errorw("encode admin message", "error", err)
		return
	}

	h.emitToRoom(wire.UserRoom(p.RecipientID), out)
}

func (h *Hub) handleSendChatMessage(s *Session, env *wire.Envelope) {
	var p wire.SendChatMessagePayload
	if err := env.Decode(&p); err != nil || p.RoomID == "" {
		h.sendError(s, "BAD_PAYLOAD", "malformed send-chat-message payload")
		return
	}

	out, err := wire.NewEnvelope(wire.EventReceiveChatMessage, wire.ReceiveChatMessagePayload{
		ID:        uuid.NewString(),
		Message:   p.Message,
		Sender:    p.Sender,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.log.Errorw("encode chat message", "error", err)
		return
	}

	h.emitToRoom(p.RoomID, out)
}

func (h *Hub) handleSendNotification(s *Session, env *wire.Envelope) {
	var p wire.SendNotificationPayload
	if err := env.Decode(&p); err != nil || p.UserID == "" {
		h.sendError(s, "BAD_PAYLOAD", "malformed send-notification payload")
		return
	}

	// The notification body is opaque; forward it verbatim.
	out := &wire.Envelope{Event: wire.EventNotification, Data: p.Notification}

	if p.UserID == wire.BroadcastUserID {
		h.broadcastAll(out)
		return
	}

	h.emitToRoom(wire.UserRoom(p.UserID), out)
}

func (h *Hub) handleGetOnlineUsers(s *Session) {
	h.sendTo(s.ID, mustEnvelope(wire.EventOnlineUsersList, h.state.Registry.Online()))
}

// emitToRoom fans an event out to every member of a room. Zero members is a
// silent no-op: presence is inherently racy and an offline recipient is not
// an error.
func (h *Hub) emitToRoom(room string, env *wire.Envelope) {
	members := h.state.Rooms.MembersOf(room)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range members {
		if s, ok := h.sessions[id]; ok {
			h.push(s, env)
		}
	}
}

// broadcastAll delivers one event to every connected session, associated or
// not.
func (h *Hub) broadcastAll(env *wire.Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions {
		h.push(s, env)
	}
}

func (h *Hub) sendTo(connID string, env *wire.Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if s, ok := h.sessions[connID]; ok {
		h.push(s, env)
	}
}

func (h *Hub) sendError(s *Session, code, msg string) {
	env, err := wire.NewEnvelope(wire.EventError, wire.ErrorPayload{Code: code, Message: msg})
	if err != nil {
		return
	}
	h.sendTo(s.ID, env)
}

// push hands the event to the session's bounded queue; a full queue drops
// the event rather than blocking the hub.
func (h *Hub) push(s *Session, env *wire.Envelope) {
	select {
	case s.send <- env:
		if h.metrics != nil {
			h.metrics.EventsDelivered.WithLabelValues(env.Event).Inc()
		}
	default:
		h.log.Warnw("send queue full, dropping event", "conn", s.ID, "event", env.Event)
		if h.metrics != nil {
			h.metrics.EventsDropped.WithLabelValues(env.Event).Inc()
		}
	}
}

func (h *Hub) updateGauges() {
	if h.metrics == nil {
		return
	}
	h.metrics.Connections.Set(float64(h.state.Registry.ConnectionCount()))
	h.metrics.AssociatedUsers.Set(float64(h.state.Registry.UserCount()))
	h.metrics.Rooms.Set(float64(h.state.Rooms.RoomCount()))
}

// mustEnvelope wraps payloads that cannot fail to marshal (strings, string
// slices).
func mustEnvelope(event string, v any) *wire.Envelope {
	env, err := wire.NewEnvelope(event, v)
	if err != nil {
		panic(err)
	}
	return env
}

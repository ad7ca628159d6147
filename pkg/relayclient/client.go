// Package relayclient gives the API process a small call surface for
// pushing events into the relay server without embedding transport details
// in route handlers. Sends are fire-and-forget: if the relay is unreachable
// the send reports false and the event is lost, by design — real-time
// delivery is additive to the persisted-record workflow, never required by
// it.
package relayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopmesh/relay/pkg/wire"
	"go.uber.org/zap"
)

// DefaultURL matches the relay server's default listen address.
const DefaultURL = "ws://localhost:8900/ws"

const handshakeTimeout = 20 * time.Second

type Client struct {
	url    string
	log    *zap.SugaredLogger
	dialer websocket.Dialer

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool

	// writeMu serializes writes; reads stay on the read loop goroutine.
	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handler   func(*wire.Envelope)
}

// New builds a client targeting url (DefaultURL when empty). The logger may
// be nil.
func New(url string, log *zap.SugaredLogger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		url: url,
		log: log,
		dialer: websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Connect establishes the long-lived connection. It is idempotent: calling
// it while connected is a no-op. Callers never block on anything past the
// handshake; connection loss is observed via IsConnected and failed sends.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("connect to relay at %s: %w", c.url, err)
	}

	c.conn = conn
	c.connected = true
	c.log.Infow("connected to relay", "url", c.url)

	go c.readLoop(conn)

	return nil
}

// SetEventHandler registers a callback for events pushed by the relay
// (presence notifications, errors). Optional; unhandled events are dropped.
func (c *Client) SetEventHandler(handler func(*wire.Envelope)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.handler = handler
}

// IsConnected reflects the last-known transport state. It is advisory and
// may be stale by up to one round trip.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Disconnect tears the connection down; subsequent sends fail fast until
// Connect is called again.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.connected = false
	return err
}

// JoinAdminRoom subscribes this connection to operator-room events
// (user-connected, user-disconnected).
func (c *Client) JoinAdminRoom(adminID string) bool {
	return c.emit(wire.EventJoinAdminRoom, wire.JoinAdminRoomPayload{AdminID: adminID})
}

// SendAdminMessage pushes an operator message toward the recipient's room.
// messageID references the durable record the consumer acknowledges later.
// Returns false without queuing or retrying when the client believes itself
// disconnected.
func (c *Client) SendAdminMessage(recipientID, message string, sender wire.Sender, messageID string) bool {
	return c.emit(wire.EventSendAdminMessage, wire.SendAdminMessagePayload{
		RecipientID: recipientID,
		Message:     message,
		Sender:      sender,
		MessageID:   messageID,
	})
}

// SendNotification pushes an opaque notification to one user, or to every
// connected client when userID is wire.BroadcastUserID.
func (c *Client) SendNotification(userID string, notification any) bool {
	raw, err := json.Marshal(notification)
	if err != nil {
		c.log.Warnw("encode notification", "error", err)
		return false
	}

	return c.emit(wire.EventSendNotification, wire.SendNotificationPayload{
		UserID:       userID,
		Notification: raw,
	})
}

// SendChatMessage broadcasts into an arbitrary named room.
func (c *Client) SendChatMessage(roomID, message, sender string) bool {
	return c.emit(wire.EventSendChatMessage, wire.SendChatMessagePayload{
		RoomID:  roomID,
		Message: message,
		Sender:  sender,
	})
}

func (c *Client) emit(event string, payload any) bool {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()

	if !connected || conn == nil {
		return false
	}

	env, err := wire.NewEnvelope(event, payload)
	if err != nil {
		c.log.Warnw("encode event", "event", event, "error", err)
		return false
	}

	c.writeMu.Lock()
	err = conn.WriteJSON(env)
	c.writeMu.Unlock()

	if err != nil {
		c.log.Warnw("relay send failed", "event", event, "error", err)
		c.markDisconnected(conn)
		return false
	}

	return true
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.markDisconnected(conn)

	for {
		var env wire.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warnw("relay connection lost", "error", err)
			}
			return
		}

		c.handlerMu.RLock()
		handler := c.handler
		c.handlerMu.RUnlock()

		if handler != nil {
			handler(&env)
		}
	}
}

// markDisconnected flips the state only if conn is still the active
// connection; a stale read loop must not clobber a reconnect.
func (c *Client) markDisconnected(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != conn {
		return
	}

	c.conn.Close()
	c.conn = nil
	c.connected = false
}

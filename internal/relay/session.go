package relay

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopmesh/relay/pkg/wire"
)

// Session is one live transport connection. The hub owns its lifecycle: it
// is registered on handshake, destroyed on disconnect, and never reached
// into by anything outside the relay server process.
type Session struct {
	ID   string
	conn *websocket.Conn
	send chan *wire.Envelope
	hub  *Hub
}

func NewSession(conn *websocket.Conn, id string, hub *Hub) *Session {
	return &Session{
		ID:   id,
		conn: conn,
		send: make(chan *wire.Envelope, hub.opts.SendQueueDepth),
		hub:  hub,
	}
}

// ReadPump decodes inbound envelopes and hands them to the hub until the
// connection closes, then unregisters the session.
func (s *Session) ReadPump() {
	defer func() {
		s.hub.Unregister() <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(s.hub.opts.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.hub.opts.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(s.hub.opts.PongTimeout))
		return nil
	})

	for {
		var env wire.Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.hub.log.Warnw("read error", "conn", s.ID, "error", err)
			}
			break
		}

		s.hub.dispatch(s, &env)
	}
}

// WritePump is the sole writer on the connection; it drains the send queue
// and keeps the connection alive with pings.
func (s *Session) WritePump() {
	pingPeriod := (s.hub.opts.PongTimeout * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case env, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.hub.opts.WriteTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteJSON(env); err != nil {
				s.hub.log.Warnw("write error", "conn", s.ID, "error", err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.hub.opts.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package relayws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopmesh/relay/internal/relay"
	"go.uber.org/zap"
)

type Handler struct {
	hub      *relay.Hub
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

func NewHandler(hub *relay.Hub, log *zap.SugaredLogger, allowedOrigins []string) *Handler {
	return &Handler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ConnectHandler upgrades the request and hands the session to the hub. The
// connection stays unassociated until the consumer sends its join event.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s := relay.NewSession(conn, uuid.NewString(), h.hub)
	h.hub.Register() <- s

	go s.WritePump()
	go s.ReadPump()
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser producers (the API process) send no Origin.
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

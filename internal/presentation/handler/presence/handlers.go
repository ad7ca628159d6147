package presence

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopmesh/relay/internal/infrastructure/json"
	"github.com/shopmesh/relay/internal/relay"
)

// Handler answers presence queries over HTTP for operator dashboards. A
// positive answer is only advisory: the user may disconnect between the
// query and any follow-up push.
type Handler struct {
	hub *relay.Hub
}

func NewHandler(hub *relay.Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) ListOnlineHandler(w http.ResponseWriter, r *http.Request) {
	json.Write(w, http.StatusOK, onlineListResponse{Users: h.hub.OnlineUsers()})
}

func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		json.WriteValidationError(w, errors.New("user ID is missing"))
		return
	}

	json.Write(w, http.StatusOK, userPresenceResponse{
		UserID: userID,
		Online: h.hub.IsOnline(userID),
	})
}

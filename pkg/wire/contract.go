package wire

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the frame exchanged over the relay connection: an event name
// plus an event-specific JSON payload. The relay forwards Data verbatim for
// passthrough events such as notifications.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals v into the envelope payload for the given event.
func NewEnvelope(event string, v any) (*Envelope, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return &Envelope{Event: event, Data: raw}, nil
}

// Decode unmarshals the envelope payload into v.
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s: empty payload", e.Event)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Event, err)
	}
	return nil
}

// Sender identifies who authored a pushed message.
type Sender struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type JoinUserRoomPayload struct {
	UserID string `json:"userId"`
	// Token carries an optional signed credential covering UserID. Only
	// checked when the relay runs with auth.required enabled.
	Token string `json:"token,omitempty"`
}

type JoinAdminRoomPayload struct {
	AdminID string `json:"adminId,omitempty"`
	Token   string `json:"token,omitempty"`
}

type SendAdminMessagePayload struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
	Sender      Sender `json:"sender"`
	MessageID   string `json:"messageId"`
}

// AdminMessagePayload is the normalized shape delivered to recipients. ID
// references the durable message record so the consumer can acknowledge it
// over HTTP once displayed.
type AdminMessagePayload struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Sender    Sender `json:"sender"`
	Timestamp string `json:"timestamp"`
}

type SendChatMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

type ReceiveChatMessagePayload struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

type SendNotificationPayload struct {
	UserID string `json:"userId"`
	// Notification is opaque to the relay and forwarded verbatim.
	Notification json.RawMessage `json:"notification"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

const (
	// OperatorRoom is the shared room every operator console joins.
	OperatorRoom = "operators"

	userRoomPrefix = "user:"
)

// UserRoom derives the per-user room name from a user identity. The mapping
// is injective so the relay can compute the target room without a lookup
// table.
func UserRoom(userID string) string {
	return userRoomPrefix + userID
}

// UserFromRoom is the inverse of UserRoom. The second return is false for
// rooms that are not per-user rooms.
func UserFromRoom(room string) (string, bool) {
	id, ok := strings.CutPrefix(room, userRoomPrefix)
	return id, ok
}

package wire

import "testing"

func TestUserRoomRoundTrip(t *testing.T) {
	room := UserRoom("42")
	id, ok := UserFromRoom(room)
	if !ok || id != "42" {
		t.Errorf("UserFromRoom(%q) = %q, %v; want 42, true", room, id, ok)
	}
}

func TestUserFromRoomRejectsOtherRooms(t *testing.T) {
	if _, ok := UserFromRoom(OperatorRoom); ok {
		t.Error("operator room misread as a per-user room")
	}
}

func TestUserRoomIsInjective(t *testing.T) {
	if UserRoom("4") == UserRoom("42") || UserRoom("a") == UserRoom("b") {
		t.Error("distinct identities mapped to the same room")
	}
}

func TestEnvelopeDecodeEmptyPayload(t *testing.T) {
	env := &Envelope{Event: EventGetOnlineUsers}
	var v struct{}
	if err := env.Decode(&v); err == nil {
		t.Error("decoding an empty payload should error")
	}
}

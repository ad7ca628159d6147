package relay

import "testing"

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestRooms_JoinThenMembers(t *testing.T) {
	rm := NewRooms()
	rm.Join("c1", "user:42")

	if members := rm.MembersOf("user:42"); !contains(members, "c1") {
		t.Errorf("MembersOf = %v, want to contain c1", members)
	}
}

func TestRooms_JoinIsIdempotent(t *testing.T) {
	rm := NewRooms()
	rm.Join("c1", "user:42")
	rm.Join("c1", "user:42")

	if members := rm.MembersOf("user:42"); len(members) != 1 {
		t.Errorf("MembersOf has %d entries after double join, want 1", len(members))
	}
}

func TestRooms_LeaveRemovesMember(t *testing.T) {
	rm := NewRooms()
	rm.Join("c1", "user:42")
	rm.Leave("c1", "user:42")

	if members := rm.MembersOf("user:42"); contains(members, "c1") {
		t.Errorf("MembersOf = %v after leave, want c1 gone", members)
	}
}

func TestRooms_LeaveUnknownIsNoop(t *testing.T) {
	rm := NewRooms()
	rm.Leave("c1", "user:42") // never joined

	if n := rm.RoomCount(); n != 0 {
		t.Errorf("RoomCount = %d, want 0", n)
	}
}

func TestRooms_LeaveAll(t *testing.T) {
	rm := NewRooms()
	rm.Join("c1", "user:42")
	rm.Join("c1", "operators")
	rm.Join("c2", "operators")

	rm.LeaveAll("c1")

	if members := rm.MembersOf("user:42"); len(members) != 0 {
		t.Errorf("user room still has members: %v", members)
	}
	if members := rm.MembersOf("operators"); !contains(members, "c2") || contains(members, "c1") {
		t.Errorf("operators room = %v, want only c2", members)
	}
}

func TestRooms_EmptyRoomsAreDropped(t *testing.T) {
	rm := NewRooms()
	rm.Join("c1", "user:42")
	rm.Leave("c1", "user:42")

	if n := rm.RoomCount(); n != 0 {
		t.Errorf("RoomCount = %d after last member left, want 0", n)
	}
}

func TestRooms_MultipleRoomsPerConnection(t *testing.T) {
	rm := NewRooms()
	rm.Join("c1", "user:42")
	rm.Join("c1", "operators")
	rm.Join("c1", "order-updates")

	for _, room := range []string{"user:42", "operators", "order-updates"} {
		if !contains(rm.MembersOf(room), "c1") {
			t.Errorf("c1 missing from %s", room)
		}
	}
}

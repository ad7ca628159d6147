package relay

import "sync"

// Rooms maintains the membership sets used for fan-out, independent of
// presence tracking. Membership is never persisted; it is rebuilt from join
// events after every reconnect.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{} // room name -> connection ids
	byConn  map[string]map[string]struct{} // connection id -> room names
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]struct{}),
		byConn:  make(map[string]map[string]struct{}),
	}
}

// Join is idempotent. A connection may belong to any number of rooms.
func (rm *Rooms) Join(connID, room string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.members[room] == nil {
		rm.members[room] = make(map[string]struct{})
	}
	rm.members[room][connID] = struct{}{}

	if rm.byConn[connID] == nil {
		rm.byConn[connID] = make(map[string]struct{})
	}
	rm.byConn[connID][room] = struct{}{}
}

// Leave is idempotent; leaving a room the connection never joined is a no-op.
func (rm *Rooms) Leave(connID, room string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.leaveLocked(connID, room)
}

// LeaveAll removes the connection from every room it belonged to. Called on
// disconnect.
func (rm *Rooms) LeaveAll(connID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for room := range rm.byConn[connID] {
		rm.leaveLocked(connID, room)
	}
}

func (rm *Rooms) leaveLocked(connID, room string) {
	if set, ok := rm.members[room]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(rm.members, room)
		}
	}

	if set, ok := rm.byConn[connID]; ok {
		delete(set, room)
		if len(set) == 0 {
			delete(rm.byConn, connID)
		}
	}
}

// MembersOf returns a snapshot of the connection ids joined to a room. An
// unknown room yields an empty slice, not an error.
func (rm *Rooms) MembersOf(room string) []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	set := rm.members[room]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

func (rm *Rooms) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.members)
}

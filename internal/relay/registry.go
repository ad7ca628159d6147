package relay

import (
	"sort"
	"sync"
)

// Registry tracks live connections and which user identity, if any, each one
// is associated with. The user->connection side doubles as the presence
// table: at most one entry per user identity, last connection wins.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]string // connection id -> user id ("" until a join event)
	users map[string]string // user id -> connection id
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]string),
		users: make(map[string]string),
	}
}

// Register records a connection in the unassociated state. Called on
// transport handshake, before any join event has arrived.
func (r *Registry) Register(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = ""
}

// Associate binds a user identity to a connection, overwriting any prior
// association for that identity. It returns the superseded connection id
// when a different connection previously held the identity, so the caller
// may notify the displaced session.
func (r *Registry) Associate(connID, userID string) (prevConnID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A connection re-asserting a different identity releases the old one,
	// but only if it still owns the presence entry.
	if old, ok := r.conns[connID]; ok && old != "" && old != userID {
		if r.users[old] == connID {
			delete(r.users, old)
		}
	}

	prev := r.users[userID]
	if prev == connID {
		prev = ""
	}

	r.users[userID] = connID
	r.conns[connID] = userID

	return prev
}

// Dissociate removes the connection and, when the connection still owns its
// user's presence entry, removes that entry too. It reports the user id and
// whether a presence entry was actually cleared; a superseded connection
// disconnecting later does not clear the newer entry.
func (r *Registry) Dissociate(connID string) (userID string, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.conns[connID]
	delete(r.conns, connID)

	if !ok || u == "" {
		return "", false
	}

	if r.users[u] != connID {
		return "", false
	}

	delete(r.users, u)
	return u, true
}

// Lookup answers presence queries. A miss means the user is offline, which
// is a normal outcome rather than an error. Routing never goes through
// Lookup; it goes through room membership.
func (r *Registry) Lookup(userID string) (connID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok = r.users[userID]
	return connID, ok
}

// Online returns a sorted snapshot of the currently associated user ids.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.users))
	for u := range r.users {
		ids = append(ids, u)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

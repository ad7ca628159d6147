package relay

// State bundles the registry and room manager behind one explicitly
// constructed object. The hub receives it by injection; nothing in the
// process holds it as a package-level global, so tests construct a fresh
// State per case.
type State struct {
	Registry *Registry
	Rooms    *Rooms
}

func NewState() *State {
	return &State{
		Registry: NewRegistry(),
		Rooms:    NewRooms(),
	}
}

package app

import "fmt"

// State is the controller's position in the workout entry cycle.
type State int

const (
	// StateInitializing: position acquisition in flight.
	StateInitializing State = iota
	// StateMapReady: idle, waiting for a map click.
	StateMapReady
	// StateFormOpen: form shown for the pending intent.
	StateFormOpen
	// StateSubmitting: validating and building a workout.
	StateSubmitting
	// StateMapUnavailable: position or map failed; only listing works.
	StateMapUnavailable
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateMapReady:
		return "map_ready"
	case StateFormOpen:
		return "form_open"
	case StateSubmitting:
		return "submitting"
	case StateMapUnavailable:
		return "map_unavailable"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for st := StateInitializing; st <= StateMapUnavailable; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/subhdotsol/vimgram/internal/bus"
)

// State represents the connection state of an account session.
type State string

const (
	Booting      State = "BOOTING"
	Connecting   State = "CONNECTING"
	AuthRequired State = "AUTH_REQUIRED"
	Ready        State = "READY"
	Reconnecting State = "RECONNECTING"
	LoggedOut    State = "LOGGED_OUT"
	Error        State = "ERROR"
	Stopped      State = "STOPPED"
)

// validTransitions defines allowed state transitions. Stopped is terminal.
var validTransitions = map[State][]State{
	Booting:      {Connecting, Error, Stopped},
	Connecting:   {AuthRequired, Ready, Reconnecting, Error, Stopped},
	AuthRequired: {Ready, Connecting, Error, Stopped},
	Ready:        {Reconnecting, LoggedOut, Error, Stopped},
	Reconnecting: {Connecting, Error, Stopped},
	LoggedOut:    {Stopped, Error},
	Error:        {Connecting, Stopped},
}

// Change is the payload carried by status-change bus events.
type Change struct {
	From State
	To   State
}

// Machine tracks and enforces session state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a state machine starting in Booting.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{current: Booting, bus: b}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state, or reports an error when the move is
// not in the transition table. Successful transitions are published on
// the bus.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Emit(bus.KindStatusChanged, Change{From: from, To: to})
	}
	return nil
}

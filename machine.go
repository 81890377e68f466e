package padfsm

import (
	"fmt"
	"math"
)

// Budget caps what a machine may spend. The zero value disables the cap.
type Budget struct {
	Allowed uint64
	MaxFrac float64
}

// Machine is a complete padding machine handed to the behavior engine.
// States[0] is the start state. A built Machine must not be modified.
type Machine struct {
	States []State
	// Padding is the padding budget in bytes
	Padding Budget
	// Blocking is the blocking budget in microseconds
	Blocking Budget

	IncludeSmallPackets bool
}

// Validate checks the structural invariants the engine relies on
func (m *Machine) Validate() error {
	if len(m.States) == 0 {
		return fmt.Errorf("%w: no states", ErrInvalidMachine)
	}
	for _, b := range []Budget{m.Padding, m.Blocking} {
		if math.IsNaN(b.MaxFrac) || b.MaxFrac < 0 || b.MaxFrac > 1 {
			return fmt.Errorf("%w: budget fraction %g outside [0, 1]", ErrInvalidMachine, b.MaxFrac)
		}
	}
	for i := range m.States {
		if err := m.States[i].validate(len(m.States)); err != nil {
			return fmt.Errorf("%w: state %d: %v", ErrInvalidMachine, i, err)
		}
	}
	return nil
}

// Len returns the number of states
func (m *Machine) Len() int {
	return len(m.States)
}

// Equal reports whether two machines are structurally identical
func (m *Machine) Equal(o *Machine) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.States) != len(o.States) ||
		m.Padding != o.Padding ||
		m.Blocking != o.Blocking ||
		m.IncludeSmallPackets != o.IncludeSmallPackets {
		return false
	}
	for i := range m.States {
		if !m.States[i].equal(&o.States[i]) {
			return false
		}
	}
	return true
}

// Next returns the state entered from `from` when ev is observed, choosing
// among the targets with draw, a uniform sample in [0, 1). The second
// result is false when the state does not react to ev.
func (m *Machine) Next(from StateIndex, ev Event, draw float64) (StateIndex, bool) {
	if from < 0 || int(from) >= len(m.States) {
		return from, false
	}
	targets := m.States[from].Transitions.Get(ev)
	if len(targets) == 0 {
		return from, false
	}

	var cumulative float64
	for _, t := range targets {
		cumulative += t.Prob
		if draw < cumulative {
			return t.State, true
		}
	}
	// Rounding left draw above the accumulated mass
	return targets[len(targets)-1].State, true
}

// Reachable reports, per state, whether some sequence of events leads to it
// from the start state
func (m *Machine) Reachable() []bool {
	seen := make([]bool, len(m.States))
	if len(m.States) == 0 {
		return seen
	}
	queue := []StateIndex{0}
	seen[0] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, ev := range m.States[current].Transitions.Events() {
			for _, t := range m.States[current].Transitions.Get(ev) {
				if t.State < 0 || int(t.State) >= len(seen) || seen[t.State] {
					continue
				}
				seen[t.State] = true
				queue = append(queue, t.State)
			}
		}
	}
	return seen
}

// Unreachable lists the states Reachable reports as unreachable
func (m *Machine) Unreachable() []StateIndex {
	var out []StateIndex
	for i, ok := range m.Reachable() {
		if !ok {
			out = append(out, StateIndex(i))
		}
	}
	return out
}

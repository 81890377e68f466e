package padfsm

import (
	"fmt"
	"math"
)

// Target is one possible destination of a transition
type Target struct {
	State StateIndex
	Prob  float64
}

// To is a transition target taken with certainty
func To(state StateIndex) Target {
	return Target{State: state, Prob: 1}
}

// TransitionTable maps each event to a short ordered list of targets.
// The zero value reacts to no event.
type TransitionTable struct {
	entries [eventCount][]Target
}

// Set replaces the targets for ev. An empty list removes the entry.
func (t *TransitionTable) Set(ev Event, targets ...Target) {
	if !ev.Valid() {
		return
	}
	if len(targets) == 0 {
		t.entries[ev] = nil
		return
	}
	t.entries[ev] = append([]Target(nil), targets...)
}

// Get returns the targets for ev; the slice must not be modified
func (t *TransitionTable) Get(ev Event) []Target {
	if !ev.Valid() {
		return nil
	}
	return t.entries[ev]
}

// Has reports whether the table reacts to ev
func (t *TransitionTable) Has(ev Event) bool {
	return len(t.Get(ev)) > 0
}

// Events returns the events with a non-empty entry, in event order
func (t *TransitionTable) Events() []Event {
	var evs []Event
	for ev := range t.entries {
		if len(t.entries[ev]) > 0 {
			evs = append(evs, Event(ev))
		}
	}
	return evs
}

// Mass is the total probability of the targets for ev
func (t *TransitionTable) Mass(ev Event) float64 {
	var sum float64
	for _, target := range t.Get(ev) {
		sum += target.Prob
	}
	return sum
}

func (t *TransitionTable) equal(o *TransitionTable) bool {
	for ev := range t.entries {
		a, b := t.entries[ev], o.entries[ev]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

func (t *TransitionTable) validate(numStates int) error {
	for ev := range t.entries {
		targets := t.entries[ev]
		if len(targets) == 0 {
			continue
		}
		if Event(ev) == EventEnd {
			return fmt.Errorf("transition keyed by %s", EventEnd)
		}
		seen := make(map[StateIndex]bool, len(targets))
		for _, target := range targets {
			if !target.State.valid(numStates) {
				return fmt.Errorf("%s: target %d out of range [0, %d)", Event(ev), target.State, numStates)
			}
			if seen[target.State] {
				return fmt.Errorf("%s: duplicate target %d", Event(ev), target.State)
			}
			seen[target.State] = true
			if !(target.Prob > 0 && target.Prob <= 1) {
				return fmt.Errorf("%s: target %d has probability %g", Event(ev), target.State, target.Prob)
			}
		}
		if mass := t.Mass(Event(ev)); math.Abs(mass-1) > ProbabilityTolerance {
			return fmt.Errorf("%s: probabilities sum to %g", Event(ev), mass)
		}
	}
	return nil
}

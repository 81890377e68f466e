package padfsm

import (
	"fmt"
	"math"
)

// State is one node of a machine. It is addressed only by its index.
type State struct {
	Transitions TransitionTable

	// Timeout is the delay in microseconds before Action fires
	Timeout Dist
	// Action is the padding size in bytes, or the block duration in
	// microseconds when ActionIsBlock is set
	Action Dist
	// Limit bounds how often Action fires before EventLimitReached.
	// An unset Limit never raises it.
	Limit Dist

	// Bypass lets the action skip the engine's queueing
	Bypass bool
	// Replace lets the action replace one that is already pending
	Replace bool
	// ActionIsBlock makes Action a blocking action instead of padding
	ActionIsBlock bool
	// Blocking marks a state whose block never expires on its own
	Blocking bool
}

// StateOption is a functional option for configuring a State
type StateOption func(*State)

// NewState builds a State from options
func NewState(opts ...StateOption) State {
	var s State
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// On moves to target with certainty when ev is observed
func On(ev Event, target StateIndex) StateOption {
	return func(s *State) {
		s.Transitions.Set(ev, To(target))
	}
}

// OnSplit moves to one of several targets when ev is observed
func OnSplit(ev Event, targets ...Target) StateOption {
	return func(s *State) {
		s.Transitions.Set(ev, targets...)
	}
}

// WithTimeout sets the timeout distribution
func WithTimeout(d Dist) StateOption {
	return func(s *State) {
		s.Timeout = d
	}
}

// WithAction sets the action distribution
func WithAction(d Dist) StateOption {
	return func(s *State) {
		s.Action = d
	}
}

// WithLimit sets the repeat-limit distribution
func WithLimit(d Dist) StateOption {
	return func(s *State) {
		s.Limit = d
	}
}

// WithBypass sets the bypass flag
func WithBypass() StateOption {
	return func(s *State) {
		s.Bypass = true
	}
}

// WithReplace sets the replace flag
func WithReplace() StateOption {
	return func(s *State) {
		s.Replace = true
	}
}

// Padding sends one PacketSize padding packet every interval microseconds
func Padding(interval float64) StateOption {
	return func(s *State) {
		s.Timeout = Fixed(interval)
		s.Action = Fixed(PacketSize)
		s.ActionIsBlock = false
		s.Blocking = false
	}
}

// Block starts blocking immediately for duration microseconds.
// An infinite duration also marks the state as Blocking.
func Block(duration float64) StateOption {
	return func(s *State) {
		s.Timeout = Fixed(0)
		s.Action = Fixed(duration)
		s.ActionIsBlock = true
		s.Blocking = math.IsInf(duration, 1)
	}
}

func (s *State) validate(numStates int) error {
	if err := s.Transitions.validate(numStates); err != nil {
		return err
	}
	if err := s.Timeout.validate(); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	if err := s.Action.validate(); err != nil {
		return fmt.Errorf("action: %w", err)
	}
	if err := s.Limit.validate(); err != nil {
		return fmt.Errorf("limit: %w", err)
	}
	if s.Blocking && !s.ActionIsBlock {
		return fmt.Errorf("blocking state without a block action")
	}
	return nil
}

func (s *State) equal(o *State) bool {
	return s.Transitions.equal(&o.Transitions) &&
		s.Timeout == o.Timeout &&
		s.Action == o.Action &&
		s.Limit == o.Limit &&
		s.Bypass == o.Bypass &&
		s.Replace == o.Replace &&
		s.ActionIsBlock == o.ActionIsBlock &&
		s.Blocking == o.Blocking
}

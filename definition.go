package padfsm

import (
	"fmt"
	"log/slog"
)

// Definition holds the ordered states and budgets before building a Machine.
// The first state added is the start state.
type Definition struct {
	states       []State
	padding      Budget
	blocking     Budget
	smallPackets bool
}

// NewDefinition creates a new machine definition builder
func NewDefinition() *Definition {
	return &Definition{
		states: make([]State, 0),
	}
}

// State appends a state; its index is the number of states added before it
func (d *Definition) State(opts ...StateOption) *Definition {
	d.states = append(d.states, NewState(opts...))
	return d
}

// Add appends an already built state
func (d *Definition) Add(s State) *Definition {
	d.states = append(d.states, s)
	return d
}

// PaddingBudget sets the machine-wide padding budget
func (d *Definition) PaddingBudget(b Budget) *Definition {
	d.padding = b
	return d
}

// BlockingBudget sets the machine-wide blocking budget
func (d *Definition) BlockingBudget(b Budget) *Definition {
	d.blocking = b
	return d
}

// IncludeSmallPackets makes the engine count small packets as well
func (d *Definition) IncludeSmallPackets(include bool) *Definition {
	d.smallPackets = include
	return d
}

// Len returns the number of states added so far
func (d *Definition) Len() int {
	return len(d.states)
}

// Validate checks the definition for errors
func (d *Definition) Validate() error {
	return d.machine().Validate()
}

func (d *Definition) machine() *Machine {
	return &Machine{
		States:              d.states,
		Padding:             d.padding,
		Blocking:            d.blocking,
		IncludeSmallPackets: d.smallPackets,
	}
}

// BuildOption is a functional option for Build
type BuildOption func(*buildConfig)

type buildConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used while building
func WithLogger(logger *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		c.logger = logger
	}
}

// Build creates a Machine from the definition. The definition may be
// reused afterwards without affecting the returned Machine.
func (d *Definition) Build(opts ...BuildOption) (*Machine, error) {
	cfg := buildConfig{logger: Logger}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	m := d.machine()
	m.States = make([]State, len(d.states))
	copy(m.States, d.states)

	cfg.logger.Debug("machine built",
		"states", len(m.States),
		"padding_budget", m.Padding.Allowed,
		"blocking_budget", m.Blocking.Allowed)

	return m, nil
}

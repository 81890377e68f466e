// Package constant compiles the constant-rate defense: once traffic starts,
// all real traffic is blocked and one padding packet leaves every interval.
package constant

import (
	"fmt"
	"math"

	"github.com/librescoot/padfsm"
)

const (
	blockStateIndex padfsm.StateIndex = 1
	constStateIndex padfsm.StateIndex = 2
)

// DefaultInterval is the send interval in microseconds used when none is
// given: 250 packets/sec, about 3 Mbps.
const DefaultInterval = 4000.0

// Machine builds a START, BLOCK, CONST machine sending every interval
// microseconds
func Machine(interval float64, opts ...padfsm.BuildOption) (*padfsm.Machine, error) {
	if math.IsNaN(interval) || interval < 0 {
		return nil, fmt.Errorf("%w: send interval %g", padfsm.ErrInvalidParameter, interval)
	}

	m, err := padfsm.NewDefinition().
		// START
		State(
			padfsm.On(padfsm.EventNonPaddingSent, blockStateIndex),
			padfsm.On(padfsm.EventNonPaddingRecv, blockStateIndex),
		).
		// BLOCK
		State(
			padfsm.On(padfsm.EventBlockingBegin, constStateIndex),
			padfsm.Block(math.Inf(1)),
			padfsm.WithBypass(),
			padfsm.WithReplace(),
		).
		// CONST
		State(
			padfsm.On(padfsm.EventPaddingSent, constStateIndex),
			padfsm.Padding(interval),
			padfsm.WithBypass(),
			padfsm.WithReplace(),
		).
		Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("constant machine: %w", err)
	}
	return m, nil
}

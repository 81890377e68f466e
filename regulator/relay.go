package regulator

import (
	"fmt"
	"math"

	"github.com/librescoot/padfsm"
)

// Relay machine layout
const (
	startStateIndex     padfsm.StateIndex = 0
	blockStateIndex     padfsm.StateIndex = 1
	firstSendStateIndex padfsm.StateIndex = 2
)

const (
	// MinRate is the rate in packets per second below which the decay
	// curve is considered finished
	MinRate = 1.0
	// ResetRateThreshold is the rate in packets per second below which
	// real outgoing traffic restarts the decay curve
	ResetRateThreshold = 200.0
	// MaxSendStates caps the number of SEND states of a relay machine
	MaxSendStates = 100000
)

// RelayParams are the relay-side defense parameters
type RelayParams struct {
	// InitialRate is the surge rate R in packets per second
	InitialRate float64
	// Decay is the per-second decay factor D, expected in (0, 1)
	Decay float64
	// PacketsPerState is the number of packets each SEND state covers
	PacketsPerState float64
}

// RelayMachine builds the relay-side machine: START waits for outgoing
// traffic, BLOCK holds it back, then one SEND state per decay segment.
func RelayMachine(p RelayParams, opts ...padfsm.BuildOption) (*padfsm.Machine, error) {
	if math.IsNaN(p.PacketsPerState) || math.IsInf(p.PacketsPerState, 0) {
		return nil, fmt.Errorf("%w: packets per state %g", padfsm.ErrInvalidParameter, p.PacketsPerState)
	}

	def := padfsm.NewDefinition().
		State(
			padfsm.On(padfsm.EventNonPaddingSent, blockStateIndex),
		).
		State(
			padfsm.On(padfsm.EventBlockingBegin, firstSendStateIndex),
			padfsm.Block(math.Inf(1)),
			padfsm.WithBypass(),
			padfsm.WithReplace(),
		)

	for i, seg := range Segments(p) {
		def.Add(sendState(firstSendStateIndex+padfsm.StateIndex(i), seg, p.PacketsPerState))
	}

	m, err := def.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("relay machine: %w", err)
	}
	return m, nil
}

func sendState(curr padfsm.StateIndex, seg Segment, packets float64) padfsm.State {
	rate := seg.Rate
	next := curr + 1
	if seg.Last {
		rate = MinRate
		next = padfsm.StateEnd
	}

	opts := []padfsm.StateOption{
		padfsm.On(padfsm.EventPaddingSent, curr),
		padfsm.On(padfsm.EventLimitReached, next),
		padfsm.Padding(1e6 / rate),
		padfsm.WithLimit(padfsm.Fixed(packets)),
		padfsm.WithBypass(),
		padfsm.WithReplace(),
	}
	if rate < ResetRateThreshold {
		opts = append(opts, padfsm.On(padfsm.EventNonPaddingSent, firstSendStateIndex))
	}
	return padfsm.NewState(opts...)
}

// Package scrambler compiles the Scrambler defense. Machine one sends
// padding at a fixed interval within a segment and pads each segment
// boundary with a random number of trailing packets. Machine two watches
// for segments that overrun and signals it by blocking.
package scrambler

import (
	"fmt"
	"math"

	"github.com/librescoot/padfsm"
)

// Machine one layout. L and R alternate as real traffic is sent; the
// second pair is entered when blocking begins during the first.
const (
	startStateIndex padfsm.StateIndex = 0
	blockStateIndex padfsm.StateIndex = 1
	minStateIndex   padfsm.StateIndex = 2
	leftStateIndex  padfsm.StateIndex = 3
	rightStateIndex padfsm.StateIndex = 4

	numStatesOne = 7
)

// Machine two layout
const (
	countLeftIndex  padfsm.StateIndex = 0
	countRightIndex padfsm.StateIndex = 1
	signalIndex     padfsm.StateIndex = 2
)

const (
	// secondaryTrailDivisor scales the trailing range of the second L/R pair
	secondaryTrailDivisor = 4.0
	// overrunFactor scales MinCount into machine two's signal threshold
	overrunFactor = 1.25
)

// Params are the Scrambler defense parameters
type Params struct {
	// Interval is the send interval in microseconds
	Interval float64
	// MinCount is the minimum number of packets in a segment
	MinCount float64
	// MinTrail and MaxTrail bound the trailing padding after a segment
	MinTrail float64
	MaxTrail float64
}

func (p Params) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"send interval", p.Interval},
		{"minimum count", p.MinCount},
		{"minimum trail", p.MinTrail},
		{"maximum trail", p.MaxTrail},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s %g", padfsm.ErrInvalidParameter, f.name, f.v)
		}
	}
	if p.MinTrail > p.MaxTrail {
		return fmt.Errorf("%w: minimum trail %g above maximum trail %g", padfsm.ErrInvalidParameter, p.MinTrail, p.MaxTrail)
	}
	return nil
}

// Machines builds both cooperating machines
func Machines(p Params, opts ...padfsm.BuildOption) (one, two *padfsm.Machine, err error) {
	if one, err = MachineOne(p, opts...); err != nil {
		return nil, nil, err
	}
	if two, err = MachineTwo(p.MinCount, opts...); err != nil {
		return nil, nil, err
	}
	return one, two, nil
}

// MachineOne builds the timing and trailing-padding machine
func MachineOne(p Params, opts ...padfsm.BuildOption) (*padfsm.Machine, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	def := padfsm.NewDefinition().
		// START
		State(
			padfsm.On(padfsm.EventNonPaddingSent, blockStateIndex),
			padfsm.Block(0),
			padfsm.WithBypass(),
			padfsm.WithReplace(),
		).
		// BLOCK
		State(
			padfsm.On(padfsm.EventBlockingBegin, minStateIndex),
			padfsm.Block(math.Inf(1)),
			padfsm.WithBypass(),
			padfsm.WithReplace(),
		).
		// MIN
		State(
			padfsm.On(padfsm.EventPaddingSent, minStateIndex),
			padfsm.On(padfsm.EventLimitReached, rightStateIndex),
			padfsm.Padding(p.Interval),
			padfsm.WithLimit(padfsm.Fixed(p.MinCount)),
			padfsm.WithBypass(),
			padfsm.WithReplace(),
		)

	for pair := 0; pair < 2; pair++ {
		lo, hi := p.MinTrail, p.MaxTrail
		if pair == 1 {
			lo, hi = lo/secondaryTrailDivisor, hi/secondaryTrailDivisor
		}
		def.Add(trailState(leftStateIndex, rightStateIndex, pair, p.Interval, lo, hi))
		def.Add(trailState(rightStateIndex, leftStateIndex, pair, p.Interval, lo, hi))
	}

	if def.Len() != numStatesOne {
		return nil, fmt.Errorf("machine one: %d states, want %d", def.Len(), numStatesOne)
	}
	m, err := def.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("machine one: %w", err)
	}
	return m, nil
}

// trailState builds side `self` of L/R pair `pair`; real traffic hands
// control to `other` of the same pair
func trailState(self, other padfsm.StateIndex, pair int, interval, lo, hi float64) padfsm.State {
	offset := padfsm.StateIndex(2 * pair)
	opts := []padfsm.StateOption{
		padfsm.On(padfsm.EventPaddingSent, self+offset),
		padfsm.On(padfsm.EventNonPaddingSent, other+offset),
		padfsm.On(padfsm.EventLimitReached, startStateIndex),
		padfsm.Padding(interval),
		padfsm.WithLimit(padfsm.Range(lo, hi)),
		padfsm.WithBypass(),
		padfsm.WithReplace(),
	}
	if pair == 0 {
		opts = append(opts, padfsm.On(padfsm.EventBlockingBegin, self+2))
	}
	return padfsm.NewState(opts...)
}

// MachineTwo builds the overrun signal machine. Its L and R states count
// real packets sent and swap on every blocking start; after
// 1.25·minCount packets on one side it moves to SIGNAL and blocks.
func MachineTwo(minCount float64, opts ...padfsm.BuildOption) (*padfsm.Machine, error) {
	if math.IsNaN(minCount) || math.IsInf(minCount, 0) || minCount < 0 {
		return nil, fmt.Errorf("%w: minimum count %g", padfsm.ErrInvalidParameter, minCount)
	}
	limit := padfsm.Fixed(minCount * overrunFactor)

	m, err := padfsm.NewDefinition().
		Add(countState(countLeftIndex, countRightIndex, limit)).
		Add(countState(countRightIndex, countLeftIndex, limit)).
		// SIGNAL
		State(
			padfsm.On(padfsm.EventBlockingBegin, countRightIndex),
			padfsm.Block(math.Inf(1)),
			padfsm.WithBypass(),
			padfsm.WithReplace(),
		).
		Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("machine two: %w", err)
	}
	return m, nil
}

func countState(self, other padfsm.StateIndex, limit padfsm.Dist) padfsm.State {
	return padfsm.NewState(
		padfsm.On(padfsm.EventNonPaddingSent, self),
		padfsm.On(padfsm.EventBlockingBegin, other),
		padfsm.On(padfsm.EventLimitReached, signalIndex),
		padfsm.Block(0),
		padfsm.WithLimit(limit),
		padfsm.WithBypass(),
	)
}

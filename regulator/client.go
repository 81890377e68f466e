package regulator

import (
	"fmt"
	"math"

	"github.com/librescoot/padfsm"
)

// countLimit is the repeat limit of every COUNT state
const countLimit = 2

// ClientMachine builds the client-side machine for upload ratio u, the
// number of received packets per padding packet sent. It counts received
// packets through ⌈u⌉ COUNT states and then pads once from SEND. The last
// COUNT state advances with probability 1-fract(u).
func ClientMachine(u float64, opts ...padfsm.BuildOption) (*padfsm.Machine, error) {
	if math.IsNaN(u) || math.IsInf(u, 0) || u <= 0 {
		return nil, fmt.Errorf("%w: upload ratio %g", padfsm.ErrInvalidParameter, u)
	}

	numCount := int(math.Ceil(u))
	_, frac := math.Modf(u)

	def := padfsm.NewDefinition()
	for i := 0; i < numCount; i++ {
		prob := 1.0
		if i == numCount-1 {
			prob = 1 - frac
		}
		def.Add(countState(padfsm.StateIndex(i), padfsm.StateIndex(i+1), prob))
	}

	// SEND
	def.State(
		padfsm.On(padfsm.EventPaddingSent, 0),
		padfsm.Padding(0),
		padfsm.WithBypass(),
		padfsm.WithReplace(),
	)

	m, err := def.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("client machine: %w", err)
	}
	return m, nil
}

func countState(curr, next padfsm.StateIndex, prob float64) padfsm.State {
	targets := []padfsm.Target{{State: next, Prob: prob}}
	if prob < 1 {
		targets = append(targets, padfsm.Target{State: curr, Prob: 1 - prob})
	}

	opts := []padfsm.StateOption{
		padfsm.OnSplit(padfsm.EventPaddingRecv, targets...),
		padfsm.OnSplit(padfsm.EventNonPaddingRecv, targets...),
		padfsm.Block(math.Inf(1)),
		padfsm.WithLimit(padfsm.Fixed(countLimit)),
		padfsm.WithBypass(),
		padfsm.WithReplace(),
	}
	if prob < 1 {
		opts = append(opts, padfsm.On(padfsm.EventLimitReached, next))
	}
	return padfsm.NewState(opts...)
}

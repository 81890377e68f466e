package padfsm

import (
	"testing"

	"pgregory.net/rapid"
)

// splitGen draws a probability split over n targets that sums to one
func splitGen(n int) *rapid.Generator[[]float64] {
	return rapid.Custom(func(t *rapid.T) []float64 {
		weights := make([]float64, n)
		var total float64
		for i := range weights {
			weights[i] = rapid.Float64Range(0.01, 1).Draw(t, "weight")
			total += weights[i]
		}
		for i := range weights {
			weights[i] /= total
		}
		return weights
	})
}

func TestPropertyBuiltMachinesAreWellFormed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numStates := rapid.IntRange(1, 8).Draw(t, "states")
		def := NewDefinition()

		for i := 0; i < numStates; i++ {
			var opts []StateOption
			for _, ev := range Events() {
				if !rapid.Bool().Draw(t, "react") {
					continue
				}
				perm := rapid.Permutation(append(indices(numStates), StateEnd)).Draw(t, "perm")
				k := rapid.IntRange(1, len(perm)).Draw(t, "targets")
				probs := splitGen(k).Draw(t, "split")
				targets := make([]Target, k)
				for j := range targets {
					targets[j] = Target{State: perm[j], Prob: probs[j]}
				}
				opts = append(opts, OnSplit(ev, targets...))
			}
			opts = append(opts, Padding(rapid.Float64Range(0, 1e6).Draw(t, "interval")))
			def.State(opts...)
		}

		m, err := def.Build()
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}

		decoded, err := StringEncoder{}.Decode(mustEncode(t, m))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !decoded.Equal(m) || Digest(decoded) != Digest(m) {
			t.Fatal("round trip changed the machine")
		}

		draw := rapid.Float64Range(0, 1).Draw(t, "draw")
		for i := range m.States {
			for _, ev := range m.States[i].Transitions.Events() {
				next, ok := m.Next(StateIndex(i), ev, draw)
				if !ok || !next.valid(m.Len()) {
					t.Fatalf("Next(%d, %s) = %d, %v", i, ev, next, ok)
				}
			}
		}
	})
}

func indices(n int) []StateIndex {
	out := make([]StateIndex, n)
	for i := range out {
		out[i] = StateIndex(i)
	}
	return out
}

func mustEncode(t *rapid.T, m *Machine) string {
	s, err := StringEncoder{}.Encode(m)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return s
}

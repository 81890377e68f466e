package padfsm

import (
	"errors"
	"math"
	"testing"
)

// Test states
const (
	stateA StateIndex = 0
	stateB StateIndex = 1
	stateC StateIndex = 2
)

func TestBasicBuild(t *testing.T) {
	def := NewDefinition().
		State(On(EventNonPaddingSent, stateB)).
		State(
			On(EventPaddingSent, stateB),
			On(EventLimitReached, StateEnd),
			Padding(1000),
			WithLimit(Fixed(10)),
			WithBypass(),
			WithReplace(),
		)

	m, err := def.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if m.Len() != 2 {
		t.Fatalf("expected 2 states, got %d", m.Len())
	}
	if m.Padding != (Budget{}) || m.Blocking != (Budget{}) {
		t.Errorf("expected disabled budgets, got %+v %+v", m.Padding, m.Blocking)
	}

	send := m.States[stateB]
	if !send.Timeout.IsFixed() || send.Timeout.Param1 != 1000 {
		t.Errorf("expected fixed timeout 1000, got %+v", send.Timeout)
	}
	if send.Action != Fixed(PacketSize) {
		t.Errorf("expected padding action of %g bytes, got %+v", PacketSize, send.Action)
	}
	if !send.Bypass || !send.Replace || send.ActionIsBlock {
		t.Errorf("unexpected flags: %+v", send)
	}
	if got := send.Transitions.Get(EventLimitReached); len(got) != 1 || got[0].State != StateEnd {
		t.Errorf("expected LimitReached -> end, got %v", got)
	}
}

func TestBuildCopiesStates(t *testing.T) {
	def := NewDefinition().State(On(EventPaddingSent, stateA))

	m, err := def.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	def.State(On(EventPaddingSent, stateA))
	if m.Len() != 1 {
		t.Errorf("machine changed after build: %d states", m.Len())
	}
}

func TestBlockOption(t *testing.T) {
	s := NewState(Block(math.Inf(1)))
	if !s.ActionIsBlock || !s.Blocking {
		t.Errorf("infinite block should be blocking: %+v", s)
	}
	if s.Timeout != Fixed(0) {
		t.Errorf("expected zero timeout, got %+v", s.Timeout)
	}

	s = NewState(Block(0))
	if !s.ActionIsBlock || s.Blocking {
		t.Errorf("zero block should not be blocking: %+v", s)
	}

	// Later options win
	s = NewState(Block(math.Inf(1)), Padding(10))
	if s.ActionIsBlock || s.Blocking {
		t.Errorf("padding should clear block flags: %+v", s)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
	}{
		{
			name: "empty",
			def:  NewDefinition(),
		},
		{
			name: "target out of range",
			def:  NewDefinition().State(On(EventPaddingSent, stateC)),
		},
		{
			name: "negative target",
			def:  NewDefinition().State(On(EventPaddingSent, -5)),
		},
		{
			name: "mass below one",
			def: NewDefinition().State(OnSplit(EventPaddingRecv,
				Target{State: stateA, Prob: 0.5},
				Target{State: StateEnd, Prob: 0.4},
			)),
		},
		{
			name: "mass above one",
			def: NewDefinition().State(OnSplit(EventPaddingRecv,
				Target{State: stateA, Prob: 0.7},
				Target{State: StateEnd, Prob: 0.7},
			)),
		},
		{
			name: "zero probability",
			def: NewDefinition().State(OnSplit(EventPaddingRecv,
				Target{State: stateA, Prob: 1},
				Target{State: StateEnd, Prob: 0},
			)),
		},
		{
			name: "duplicate target",
			def: NewDefinition().State(OnSplit(EventPaddingRecv,
				Target{State: stateA, Prob: 0.5},
				Target{State: stateA, Prob: 0.5},
			)),
		},
		{
			name: "end event",
			def:  NewDefinition().State(On(EventEnd, stateA)),
		},
		{
			name: "reversed range",
			def:  NewDefinition().State(WithLimit(Range(10, 5))),
		},
		{
			name: "NaN timeout",
			def:  NewDefinition().State(WithTimeout(Fixed(math.NaN()))),
		},
		{
			name: "negative padding",
			def:  NewDefinition().State(Padding(-1)),
		},
		{
			name: "budget fraction",
			def:  NewDefinition().State().PaddingBudget(Budget{Allowed: 10, MaxFrac: 1.5}),
		},
		{
			name: "blocking without block action",
			def:  NewDefinition().Add(State{Blocking: true}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidMachine) {
				t.Errorf("expected ErrInvalidMachine, got %v", err)
			}
			if _, err := tt.def.Build(); err == nil {
				t.Error("build should fail")
			}
		})
	}
}

func TestValidateTolerance(t *testing.T) {
	def := NewDefinition().State(OnSplit(EventPaddingRecv,
		Target{State: stateA, Prob: 0.7000000000000002},
		Target{State: StateEnd, Prob: 0.2999999999999998},
	))
	if err := def.Validate(); err != nil {
		t.Errorf("rounding within tolerance rejected: %v", err)
	}
}

func TestTransitionTable(t *testing.T) {
	var table TransitionTable

	if len(table.Events()) != 0 {
		t.Errorf("zero table should be empty")
	}

	table.Set(EventLimitReached, To(stateB))
	table.Set(EventPaddingSent, Target{State: stateA, Prob: 0.25}, Target{State: stateB, Prob: 0.75})

	evs := table.Events()
	if len(evs) != 2 || evs[0] != EventPaddingSent || evs[1] != EventLimitReached {
		t.Errorf("expected events in enum order, got %v", evs)
	}
	if table.Mass(EventPaddingSent) != 1 {
		t.Errorf("expected mass 1, got %g", table.Mass(EventPaddingSent))
	}
	if table.Has(EventBlockingBegin) {
		t.Error("table should not react to BlockingBegin")
	}

	table.Set(EventLimitReached)
	if table.Has(EventLimitReached) {
		t.Error("empty Set should remove the entry")
	}

	table.Set(Event(99), To(stateA))
	if table.Get(Event(99)) != nil {
		t.Error("unknown event should be ignored")
	}
}

func TestNext(t *testing.T) {
	m, err := NewDefinition().
		State(OnSplit(EventPaddingRecv,
			Target{State: stateB, Prob: 0.25},
			Target{State: stateA, Prob: 0.75},
		)).
		State(On(EventLimitReached, StateEnd)).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	tests := []struct {
		from  StateIndex
		ev    Event
		draw  float64
		want  StateIndex
		moved bool
	}{
		{stateA, EventPaddingRecv, 0, stateB, true},
		{stateA, EventPaddingRecv, 0.2499, stateB, true},
		{stateA, EventPaddingRecv, 0.25, stateA, true},
		{stateA, EventPaddingRecv, 0.9999, stateA, true},
		{stateA, EventPaddingSent, 0.5, stateA, false},
		{stateB, EventLimitReached, 0.5, StateEnd, true},
		{StateEnd, EventLimitReached, 0.5, StateEnd, false},
	}

	for _, tt := range tests {
		got, moved := m.Next(tt.from, tt.ev, tt.draw)
		if got != tt.want || moved != tt.moved {
			t.Errorf("Next(%d, %s, %g) = %d, %v; want %d, %v", tt.from, tt.ev, tt.draw, got, moved, tt.want, tt.moved)
		}
	}
}

func TestReachable(t *testing.T) {
	m, err := NewDefinition().
		State(On(EventNonPaddingSent, stateB)).
		State(On(EventPaddingSent, StateEnd)).
		State(On(EventPaddingSent, stateA)).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	reach := m.Reachable()
	if !reach[stateA] || !reach[stateB] || reach[stateC] {
		t.Errorf("unexpected reachability %v", reach)
	}
	if got := m.Unreachable(); len(got) != 1 || got[0] != stateC {
		t.Errorf("expected [2] unreachable, got %v", got)
	}
}

func TestEqual(t *testing.T) {
	build := func(limit float64) *Machine {
		m, err := NewDefinition().
			State(On(EventPaddingSent, stateA), Padding(10), WithLimit(Fixed(limit))).
			Build()
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		return m
	}

	if !build(3).Equal(build(3)) {
		t.Error("identical machines should be equal")
	}
	if build(3).Equal(build(4)) {
		t.Error("machines with different limits should differ")
	}
	if build(3).Equal(nil) {
		t.Error("machine should not equal nil")
	}
}

func TestEventString(t *testing.T) {
	if EventNonPaddingRecv.String() != "NonPaddingRecv" {
		t.Errorf("got %q", EventNonPaddingRecv.String())
	}
	if Event(42).String() != "Event(?)" {
		t.Errorf("got %q", Event(42).String())
	}
	for _, ev := range Events() {
		if ev == EventEnd {
			t.Error("Events should not list EventEnd")
		}
	}
}

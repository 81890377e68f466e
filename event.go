package padfsm

// Event is an occurrence the behavior engine reports to a machine
type Event int

const (
	EventPaddingSent Event = iota
	EventPaddingRecv
	EventNonPaddingSent
	EventNonPaddingRecv
	EventBlockingBegin
	// EventLimitReached is raised by a state once its action fired Limit times
	EventLimitReached
	// EventEnd marks the end of a machine. It never triggers a transition.
	EventEnd

	eventCount = int(EventEnd) + 1
)

var eventNames = [eventCount]string{
	EventPaddingSent:    "PaddingSent",
	EventPaddingRecv:    "PaddingRecv",
	EventNonPaddingSent: "NonPaddingSent",
	EventNonPaddingRecv: "NonPaddingRecv",
	EventBlockingBegin:  "BlockingBegin",
	EventLimitReached:   "LimitReached",
	EventEnd:            "End",
}

func (e Event) String() string {
	if e < 0 || int(e) >= eventCount {
		return "Event(?)"
	}
	return eventNames[e]
}

// Valid reports whether e is one of the defined events
func (e Event) Valid() bool {
	return e >= 0 && int(e) < eventCount
}

// Events lists the events a transition may be keyed by, in table order
func Events() []Event {
	return []Event{
		EventPaddingSent,
		EventPaddingRecv,
		EventNonPaddingSent,
		EventNonPaddingRecv,
		EventBlockingBegin,
		EventLimitReached,
	}
}

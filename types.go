package padfsm

import (
	"errors"
	"log/slog"
)

// StateIndex addresses a state by its position in a machine
type StateIndex int

// StateEnd is the reserved transition target that ends the machine
const StateEnd StateIndex = -1

// PacketSize is the size in bytes of a padding packet
const PacketSize = 1500.0

// ProbabilityTolerance bounds how far the probability mass of a
// transition entry may drift from 1
const ProbabilityTolerance = 1e-9

var (
	// ErrInvalidMachine is wrapped by every structural validation failure
	ErrInvalidMachine = errors.New("invalid machine")
	// ErrInvalidParameter is returned by synthesizers for parameters they cannot compile
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Logger is the default logger used when none is provided
var Logger = slog.Default()

func (i StateIndex) valid(n int) bool {
	return i == StateEnd || (i >= 0 && int(i) < n)
}

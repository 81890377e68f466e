package padfsm

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/blake2b"
)

// Encoder turns a machine into the string form the engine accepts
type Encoder interface {
	Encode(m *Machine) (string, error)
}

// EncoderFunc adapts a function to the Encoder interface
type EncoderFunc func(m *Machine) (string, error)

// Encode calls f(m)
func (f EncoderFunc) Encode(m *Machine) (string, error) {
	return f(m)
}

// encodingVersion is the first byte of every encoded machine
const encodingVersion byte = 1

// endIndex is how StateEnd is written on the wire
const endIndex = math.MaxUint32

var errEncoding = errors.New("malformed encoded machine")

// StringEncoder writes machines as base64 of a version byte followed by
// the zlib-compressed little-endian state table
type StringEncoder struct{}

// Encode validates m and returns its printable encoding
func (StringEncoder) Encode(m *Machine) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteByte(encodingVersion)
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(marshalMachine(m)); err != nil {
		return "", fmt.Errorf("compress machine: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress machine: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a string produced by Encode
func (StringEncoder) Decode(s string) (*Machine, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errEncoding, err)
	}
	if len(raw) == 0 || raw[0] != encodingVersion {
		return nil, fmt.Errorf("%w: unsupported version", errEncoding)
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw[1:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errEncoding, err)
	}
	defer zr.Close()

	m, err := unmarshalMachine(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errEncoding, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Digest returns the hex BLAKE2b-256 of the canonical state table. Machines
// that are Equal have the same digest.
func Digest(m *Machine) string {
	sum := blake2b.Sum256(marshalMachine(m))
	return hex.EncodeToString(sum[:])
}

const (
	flagBypass = 1 << iota
	flagReplace
	flagActionIsBlock
	flagBlocking
	flagSmallPackets
)

func marshalMachine(m *Machine) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	put := func(v any) {
		// bytes.Buffer writes never fail
		_ = binary.Write(&buf, le, v)
	}

	put(m.Padding.Allowed)
	put(m.Padding.MaxFrac)
	put(m.Blocking.Allowed)
	put(m.Blocking.MaxFrac)
	var machineFlags uint8
	if m.IncludeSmallPackets {
		machineFlags |= flagSmallPackets
	}
	put(machineFlags)
	put(uint32(len(m.States)))

	for i := range m.States {
		s := &m.States[i]
		var flags uint8
		if s.Bypass {
			flags |= flagBypass
		}
		if s.Replace {
			flags |= flagReplace
		}
		if s.ActionIsBlock {
			flags |= flagActionIsBlock
		}
		if s.Blocking {
			flags |= flagBlocking
		}
		put(flags)
		for _, d := range []Dist{s.Timeout, s.Action, s.Limit} {
			put(uint8(d.Kind))
			put([4]float64{d.Param1, d.Param2, d.Start, d.Max})
		}

		events := s.Transitions.Events()
		put(uint8(len(events)))
		for _, ev := range events {
			targets := s.Transitions.Get(ev)
			put(uint8(ev))
			put(uint32(len(targets)))
			for _, t := range targets {
				idx := uint32(endIndex)
				if t.State != StateEnd {
					idx = uint32(t.State)
				}
				put(idx)
				put(t.Prob)
			}
		}
	}
	return buf.Bytes()
}

func unmarshalMachine(r io.Reader) (*Machine, error) {
	le := binary.LittleEndian
	var err error
	get := func(v any) {
		if err == nil {
			err = binary.Read(r, le, v)
		}
	}

	m := &Machine{}
	var machineFlags uint8
	var numStates uint32
	get(&m.Padding.Allowed)
	get(&m.Padding.MaxFrac)
	get(&m.Blocking.Allowed)
	get(&m.Blocking.MaxFrac)
	get(&machineFlags)
	get(&numStates)
	if err != nil {
		return nil, err
	}
	m.IncludeSmallPackets = machineFlags&flagSmallPackets != 0

	m.States = make([]State, 0, min(int(numStates), 1024))
	for i := uint32(0); i < numStates && err == nil; i++ {
		var s State
		var flags uint8
		get(&flags)
		s.Bypass = flags&flagBypass != 0
		s.Replace = flags&flagReplace != 0
		s.ActionIsBlock = flags&flagActionIsBlock != 0
		s.Blocking = flags&flagBlocking != 0

		for _, d := range []*Dist{&s.Timeout, &s.Action, &s.Limit} {
			var kind uint8
			var params [4]float64
			get(&kind)
			get(&params)
			*d = Dist{Kind: DistKind(kind), Param1: params[0], Param2: params[1], Start: params[2], Max: params[3]}
		}

		var numEvents uint8
		get(&numEvents)
		for e := uint8(0); e < numEvents && err == nil; e++ {
			var ev uint8
			var numTargets uint32
			get(&ev)
			get(&numTargets)
			var targets []Target
			for j := uint32(0); j < numTargets && err == nil; j++ {
				var idx uint32
				var t Target
				get(&idx)
				get(&t.Prob)
				t.State = StateIndex(idx)
				if idx == endIndex {
					t.State = StateEnd
				}
				targets = append(targets, t)
			}
			if !Event(ev).Valid() {
				return nil, fmt.Errorf("state %d: unknown event %d", i, ev)
			}
			s.Transitions.Set(Event(ev), targets...)
		}
		m.States = append(m.States, s)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

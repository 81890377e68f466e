package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/librescoot/padfsm"
	"github.com/librescoot/padfsm/constant"
	"github.com/librescoot/padfsm/regulator"
	"github.com/librescoot/padfsm/scrambler"
)

// namedMachine is one generated machine and the label it is printed with
type namedMachine struct {
	name    string
	machine *padfsm.Machine
}

// generate builds every machine the config asks for, in a fixed order
func generate(cfg *Config, opts ...padfsm.BuildOption) ([]namedMachine, error) {
	var out []namedMachine

	if r := cfg.Regulator; r != nil {
		relay, err := regulator.RelayMachine(regulator.RelayParams{
			InitialRate:     r.InitialRate,
			Decay:           r.Decay,
			PacketsPerState: r.PacketsPerState,
		}, opts...)
		if err != nil {
			return nil, err
		}
		client, err := regulator.ClientMachine(r.UploadRatio, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, namedMachine{"Relay machine", relay}, namedMachine{"Client machine", client})
	}

	if c := cfg.Constant; c != nil {
		m, err := constant.Machine(c.Interval, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, namedMachine{"Machine", m})
	}

	if s := cfg.Scrambler; s != nil {
		one, two, err := scrambler.Machines(scrambler.Params{
			Interval: s.Interval,
			MinCount: s.MinCount,
			MinTrail: s.MinTrail,
			MaxTrail: s.MaxTrail,
		}, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, namedMachine{"Machine 1", one}, namedMachine{"Machine 2", two})
	}

	return out, nil
}

// emit encodes each machine and writes "<name>: <encoding> (<length>)"
// followed by its digest
func emit(w io.Writer, machines []namedMachine, enc padfsm.Encoder, check bool, logger *slog.Logger) error {
	for _, nm := range machines {
		s, err := enc.Encode(nm.machine)
		if err != nil {
			return fmt.Errorf("encode %s: %w", nm.name, err)
		}
		digest := padfsm.Digest(nm.machine)
		if _, err := fmt.Fprintf(w, "%s: %s (%d)\ndigest %s\n\n", nm.name, s, len(s), digest); err != nil {
			return err
		}
		logger.Info("machine generated",
			"name", nm.name,
			"states", nm.machine.Len(),
			"digest", digest)

		if check {
			if unreachable := nm.machine.Unreachable(); len(unreachable) > 0 {
				logger.Warn("unreachable states", "name", nm.name, "states", unreachable)
			}
		}
	}
	return nil
}

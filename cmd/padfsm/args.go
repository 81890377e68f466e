package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/librescoot/padfsm/constant"
)

var (
	// ErrInvalidArgumentCount is returned when a defense gets the wrong number of parameters
	ErrInvalidArgumentCount = errors.New("invalid argument count")
	// ErrInvalidArgumentValue is returned when a parameter is not a number or the defense is unknown
	ErrInvalidArgumentValue = errors.New("invalid argument value")
)

const usageText = `Usage:
  padfsm [flags] regulator <initial rate> <decay rate> <upload ratio> <packets per state>
  padfsm [flags] constant [send interval = 4000.0]
  padfsm [flags] scrambler <send interval> <minimum count> <min trail> <max trail>
  padfsm [flags] -config <file.toml>
`

// parseArgs turns positional arguments into a single-defense Config
func parseArgs(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no defense given", ErrInvalidArgumentCount)
	}

	name, params := args[0], args[1:]
	switch name {
	case "regulator":
		v, err := parseFloats(name, params, "initial rate", "decay rate", "upload ratio", "packets per state")
		if err != nil {
			return nil, err
		}
		return &Config{Regulator: &RegulatorConfig{
			InitialRate:     v[0],
			Decay:           v[1],
			UploadRatio:     v[2],
			PacketsPerState: v[3],
		}}, nil

	case "constant":
		if len(params) == 0 {
			return &Config{Constant: &ConstantConfig{Interval: constant.DefaultInterval}}, nil
		}
		v, err := parseFloats(name, params, "send interval")
		if err != nil {
			return nil, err
		}
		return &Config{Constant: &ConstantConfig{Interval: v[0]}}, nil

	case "scrambler":
		v, err := parseFloats(name, params, "send interval", "minimum count", "min trail", "max trail")
		if err != nil {
			return nil, err
		}
		return &Config{Scrambler: &ScramblerConfig{
			Interval: v[0],
			MinCount: v[1],
			MinTrail: v[2],
			MaxTrail: v[3],
		}}, nil
	}

	return nil, fmt.Errorf("%w: unknown defense %q", ErrInvalidArgumentValue, name)
}

func parseFloats(defense string, params []string, names ...string) ([]float64, error) {
	if len(params) != len(names) {
		return nil, fmt.Errorf("%w: %s takes %d parameters, got %d", ErrInvalidArgumentCount, defense, len(names), len(params))
	}
	out := make([]float64, len(params))
	for i, p := range params {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidArgumentValue, names[i], p)
		}
		out[i] = v
	}
	return out, nil
}

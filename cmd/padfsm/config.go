package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config lists the defenses to generate. Nil sections are skipped.
type Config struct {
	Regulator *RegulatorConfig `toml:"regulator"`
	Constant  *ConstantConfig  `toml:"constant"`
	Scrambler *ScramblerConfig `toml:"scrambler"`
}

type RegulatorConfig struct {
	InitialRate     float64 `toml:"initial_rate"`
	Decay           float64 `toml:"decay"`
	UploadRatio     float64 `toml:"upload_ratio"`
	PacketsPerState float64 `toml:"packets_per_state"`
}

type ConstantConfig struct {
	Interval float64 `toml:"interval"`
}

type ScramblerConfig struct {
	Interval float64 `toml:"interval"`
	MinCount float64 `toml:"min_count"`
	MinTrail float64 `toml:"min_trail"`
	MaxTrail float64 `toml:"max_trail"`
}

func (c *Config) empty() bool {
	return c.Regulator == nil && c.Constant == nil && c.Scrambler == nil
}

// loadConfig reads a TOML defense list. Unknown keys are errors so that
// typos do not silently fall back to zero parameters.
func loadConfig(path string) (*Config, error) {
	cfg := new(Config)
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if cfg.empty() {
		return nil, fmt.Errorf("config %s: no defenses configured", path)
	}
	return cfg, nil
}

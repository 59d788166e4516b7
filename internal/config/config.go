// Package config provides YAML-backed configuration for a solve: scenario
// selection, horizon and timestep, and the solver's iteration, convergence,
// and line-search knobs.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tmn-dev/ilqgame/internal/solver"
)

const (
	DefaultScenario = "one_player_reach"
	DefaultDt       = 0.1
	DefaultHorizon  = 20
)

type Config struct {
	Scenario  string             `yaml:"scenario"`
	Dt        float64            `yaml:"dt"`
	Horizon   int                `yaml:"horizon"`
	InitState []float64          `yaml:"init_state"`
	Solver    solver.Params      `yaml:"solver"`
	Weights   map[string]float64 `yaml:"weights"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: DefaultScenario,
		Dt:       DefaultDt,
		Horizon:  DefaultHorizon,
		Solver:   solver.DefaultParams(),
		Weights:  map[string]float64{},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Weight returns a named cost weight with a fallback default, so scenarios
// stay tunable from config files without new fields.
func (c *Config) Weight(name string, def float64) float64 {
	if v, ok := c.Weights[name]; ok {
		return v
	}
	return def
}

package config

// Presets bundles known-good settings per scenario. Solver thresholds are
// deliberately per-preset: line-search and convergence constants tend to be
// problem-specific, not universal.
var Presets = map[string]*Config{
	"reach": {
		Scenario:  "one_player_reach",
		Dt:        0.1,
		Horizon:   20,
		InitState: []float64{2.0, 2.0, -3.141592653589793, 0.0},
	},
	"reach_long": {
		Scenario:  "one_player_reach",
		Dt:        0.1,
		Horizon:   50,
		InitState: []float64{2.0, 2.0, -3.141592653589793, 0.0},
	},
	"intersection": {
		Scenario: "two_player_intersection",
		Dt:       0.1,
		Horizon:  30,
	},
	"regulation": {
		Scenario: "point_mass_regulation",
		Dt:       0.1,
		Horizon:  25,
	},
}

// Preset resolves a named preset on top of the defaults, so solver
// parameters stay valid even when the preset only pins problem shape.
func Preset(name string) (*Config, bool) {
	p, ok := Presets[name]
	if !ok {
		return nil, false
	}
	cfg := DefaultConfig()
	cfg.Scenario = p.Scenario
	cfg.Dt = p.Dt
	cfg.Horizon = p.Horizon
	cfg.InitState = append([]float64(nil), p.InitState...)
	return cfg, true
}

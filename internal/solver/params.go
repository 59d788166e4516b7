package solver

import "fmt"

// Default solver parameters. The line-search and convergence thresholds are
// deliberately exposed rather than hard-coded; good values vary by problem.
const (
	DefaultMaxIterations      = 100
	DefaultCostTolerance      = 1e-3
	DefaultStrategyTolerance  = 1e-4
	DefaultMaxBacktracks      = 10
	DefaultInitialStepScale   = 1.0
	DefaultMaxConditionNumber = 1e8
	DefaultWorkers            = 4
)

// Params configures a solve.
type Params struct {
	// MaxIterations bounds the outer loop. Exhausting it is reported as
	// StatusMaxIterations, not an error.
	MaxIterations int `yaml:"max_iterations"`

	// CostTolerance declares convergence when the relative change in total
	// cost between accepted iterates falls below it.
	CostTolerance float64 `yaml:"cost_tolerance"`

	// StrategyTolerance declares convergence when the feedforward norm of
	// the freshly solved strategy profile falls below it.
	StrategyTolerance float64 `yaml:"strategy_tolerance"`

	// MaxBacktracks is the number of step-size halvings the line search may
	// try after the initial scale.
	MaxBacktracks int `yaml:"max_backtracks"`

	// InitialStepScale is the first line-search scale, in (0, 1].
	InitialStepScale float64 `yaml:"initial_step_scale"`

	// MinCostReduction is the sufficient-decrease margin a candidate must
	// beat the nominal cost by before the line search accepts it.
	MinCostReduction float64 `yaml:"min_cost_reduction"`

	// MaxConditionNumber fails the coupled LQ step when the per-timestep
	// linear system is conditioned worse than this.
	MaxConditionNumber float64 `yaml:"max_condition_number"`

	// Workers bounds the linearization worker pool; zero or negative means
	// the default.
	Workers int `yaml:"workers"`
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		MaxIterations:      DefaultMaxIterations,
		CostTolerance:      DefaultCostTolerance,
		StrategyTolerance:  DefaultStrategyTolerance,
		MaxBacktracks:      DefaultMaxBacktracks,
		InitialStepScale:   DefaultInitialStepScale,
		MaxConditionNumber: DefaultMaxConditionNumber,
		Workers:            DefaultWorkers,
	}
}

// Validate checks the parameter ranges once, at solver construction.
func (p *Params) Validate() error {
	if p.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrConfiguration, p.MaxIterations)
	}
	if p.CostTolerance <= 0 {
		return fmt.Errorf("%w: cost tolerance must be positive, got %g", ErrConfiguration, p.CostTolerance)
	}
	if p.StrategyTolerance < 0 {
		return fmt.Errorf("%w: strategy tolerance must be non-negative, got %g", ErrConfiguration, p.StrategyTolerance)
	}
	if p.MaxBacktracks < 0 {
		return fmt.Errorf("%w: max backtracks must be non-negative, got %d", ErrConfiguration, p.MaxBacktracks)
	}
	if p.InitialStepScale <= 0 || p.InitialStepScale > 1 {
		return fmt.Errorf("%w: initial step scale must be in (0, 1], got %g", ErrConfiguration, p.InitialStepScale)
	}
	if p.MinCostReduction < 0 {
		return fmt.Errorf("%w: min cost reduction must be non-negative, got %g", ErrConfiguration, p.MinCostReduction)
	}
	if p.MaxConditionNumber <= 1 {
		return fmt.Errorf("%w: max condition number must exceed 1, got %g", ErrConfiguration, p.MaxConditionNumber)
	}
	if p.Workers <= 0 {
		p.Workers = DefaultWorkers
	}
	return nil
}

// Package scenario assembles ready-to-solve game problems: joint dynamics,
// per-player costs, and an initial condition, built from configuration.
package scenario

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/config"
	"github.com/tmn-dev/ilqgame/internal/cost"
	"github.com/tmn-dev/ilqgame/internal/dynamics"
	"github.com/tmn-dev/ilqgame/internal/game"
	"github.com/tmn-dev/ilqgame/internal/solver"
)

// Problem is one fully assembled game instance.
type Problem struct {
	Name     string
	Dynamics game.Dynamics
	Costs    []game.Cost
	X0       *mat.VecDense
	Horizon  int

	// Goal marks a circular region of interest for reporting and plotting;
	// Radius zero means none.
	GoalX, GoalY, GoalRadius float64
}

// NewSolver builds a solver for the problem.
func (p *Problem) NewSolver(params solver.Params) (*solver.Solver, error) {
	return solver.New(p.Dynamics, p.Costs, p.X0, p.Horizon, params)
}

// OnePlayerReach is the single-player reachability benchmark: a
// constant-speed car with delayed steering must reach a circular goal at
// the origin while keeping its turning rate inside soft bounds. Costs are
// exponentiated so the running sum approximates the worst timestep.
func OnePlayerReach(cfg *config.Config) (*Problem, error) {
	const (
		// Speed sized so the goal circle is reachable from the default
		// initial state inside the default horizon.
		speed       = 1.75
		goalRadius  = 0.5
		omegaMax    = 1.0
		expConstant = 0.1
	)

	car := dynamics.NewDelayedDubinsCar(speed)
	dyn, err := dynamics.NewConcatenated([]dynamics.SinglePlayer{car}, cfg.Dt, nil)
	if err != nil {
		return nil, err
	}

	x0 := mat.NewVecDense(4, []float64{2.0, 2.0, -math.Pi, 0.0})
	if len(cfg.InitState) == 4 {
		x0 = mat.NewVecDense(4, append([]float64(nil), cfg.InitState...))
	}

	pc := cost.NewPlayerCost("P1")
	pc.AddControlCost(0, cost.NewQuadratic("steering", cfg.Weight("steering", 1.0), []int{dynamics.DelayedDubinsAlphaIdx}, nil))
	pc.AddStateCost(cost.NewSingleDimensionBound("omega_max", cfg.Weight("omega_bound", 10.0), dynamics.DelayedDubinsOmegaIdx, omegaMax, true))
	pc.AddStateCost(cost.NewSingleDimensionBound("omega_min", cfg.Weight("omega_bound", 10.0), dynamics.DelayedDubinsOmegaIdx, -omegaMax, false))
	pc.AddStateCost(cost.NewGoalDistance("goal", cfg.Weight("goal", 2.0), dynamics.DelayedDubinsPxIdx, dynamics.DelayedDubinsPyIdx, 0, 0, goalRadius, true))
	pc.SetExponentialConstant(expConstant)

	return &Problem{
		Name:       "one_player_reach",
		Dynamics:   dyn,
		Costs:      []game.Cost{pc},
		X0:         x0,
		Horizon:    cfg.Horizon,
		GoalRadius: goalRadius,
	}, nil
}

// TwoPlayerIntersection crosses two unicycles through a shared
// intersection: each wants its own goal straight ahead at a nominal speed,
// and both pay a proximity penalty for closing within a collision
// threshold. The proximity coupling is what makes this a genuine game
// rather than two independent optimal control problems.
func TwoPlayerIntersection(cfg *config.Config) (*Problem, error) {
	const (
		nominalSpeed = 1.5
		threshold    = 1.0
	)

	p1 := dynamics.NewUnicycle4D()
	p2 := dynamics.NewUnicycle4D()
	dyn, err := dynamics.NewConcatenated([]dynamics.SinglePlayer{p1, p2}, cfg.Dt, nil)
	if err != nil {
		return nil, err
	}

	// Joint layout: player 1 at dims 0..3, player 2 at dims 4..7.
	off := dyn.StateOffset(1)
	x0 := mat.NewVecDense(8, []float64{
		-4, 0, 0, nominalSpeed,
		0, -4, math.Pi / 2, nominalSpeed,
	})

	goalW := cfg.Weight("goal", 2.0)
	speedW := cfg.Weight("speed", 0.5)
	controlW := cfg.Weight("control", 1.0)
	proximityW := cfg.Weight("proximity", 20.0)

	c1 := cost.NewPlayerCost("P1")
	c1.AddStateCost(cost.NewQuadratic("goal", goalW, []int{dynamics.UnicyclePxIdx, dynamics.UnicyclePyIdx}, []float64{4, 0}))
	c1.AddStateCost(cost.NewQuadratic("speed", speedW, []int{dynamics.UnicycleVIdx}, []float64{nominalSpeed}))
	c1.AddControlCost(0, cost.NewQuadratic("effort", controlW, []int{dynamics.UnicycleOmegaIdx, dynamics.UnicycleAIdx}, nil))
	c1.AddStateCost(cost.NewProximity("separation", proximityW,
		dynamics.UnicyclePxIdx, dynamics.UnicyclePyIdx, off+dynamics.UnicyclePxIdx, off+dynamics.UnicyclePyIdx, threshold))

	c2 := cost.NewPlayerCost("P2")
	c2.AddStateCost(cost.NewQuadratic("goal", goalW, []int{off + dynamics.UnicyclePxIdx, off + dynamics.UnicyclePyIdx}, []float64{0, 4}))
	c2.AddStateCost(cost.NewQuadratic("speed", speedW, []int{off + dynamics.UnicycleVIdx}, []float64{nominalSpeed}))
	c2.AddControlCost(1, cost.NewQuadratic("effort", controlW, []int{dynamics.UnicycleOmegaIdx, dynamics.UnicycleAIdx}, nil))
	c2.AddStateCost(cost.NewProximity("separation", proximityW,
		off+dynamics.UnicyclePxIdx, off+dynamics.UnicyclePyIdx, dynamics.UnicyclePxIdx, dynamics.UnicyclePyIdx, threshold))

	return &Problem{
		Name:     "two_player_intersection",
		Dynamics: dyn,
		Costs:    []game.Cost{c1, c2},
		X0:       x0,
		Horizon:  cfg.Horizon,
	}, nil
}

// PointMassRegulation drives a planar double integrator to the origin with
// a pure LQ objective. With linear dynamics the problem is exactly
// quadratic, so the solver should converge in a single outer iteration;
// it doubles as a sanity scenario.
func PointMassRegulation(cfg *config.Config) (*Problem, error) {
	pm := dynamics.NewPointMass2D()
	dyn, err := dynamics.NewConcatenated([]dynamics.SinglePlayer{pm}, cfg.Dt, nil)
	if err != nil {
		return nil, err
	}

	x0 := mat.NewVecDense(4, []float64{1, 1, 0, 0})
	if len(cfg.InitState) == 4 {
		x0 = mat.NewVecDense(4, append([]float64(nil), cfg.InitState...))
	}

	pc := cost.NewPlayerCost("P1")
	pc.AddStateCost(cost.NewQuadratic("state", cfg.Weight("state", 1.0), []int{0, 1, 2, 3}, nil))
	pc.AddControlCost(0, cost.NewQuadratic("effort", cfg.Weight("control", 0.1), []int{0, 1}, nil))

	return &Problem{
		Name:     "point_mass_regulation",
		Dynamics: dyn,
		Costs:    []game.Cost{pc},
		X0:       x0,
		Horizon:  cfg.Horizon,
	}, nil
}

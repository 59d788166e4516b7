// Package solver implements an iterative linear-quadratic solver for
// general-sum multi-player differential games.
//
// Each outer iteration linearizes the nonlinear joint dynamics and
// quadraticizes every player's cost about the current nominal trajectory,
// solves the resulting time-varying LQ game for a coupled feedback Nash
// strategy profile, and rolls the profile forward through the true
// nonlinear dynamics with a backtracking line search. Accepted iterates are
// recorded in a Log for inspection and replay.
package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/game"
)

// Status reports how a solve ended.
type Status int

const (
	// StatusConverged: the tolerance test passed or the line search hit a
	// cost plateau.
	StatusConverged Status = iota
	// StatusMaxIterations: the iteration budget ran out; the returned
	// iterate is valid but not fully converged.
	StatusMaxIterations
	// StatusFailed: a numerical failure or non-finite value aborted the
	// solve.
	StatusFailed
	// StatusCancelled: the context was cancelled between iterations.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max-iterations"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the outcome of a solve. On StatusMaxIterations the last
// accepted operating point and strategies are still returned; a suboptimal
// but valid trajectory is still useful.
type Result struct {
	Status      Status
	Iterations  int
	Op          *game.OperatingPoint
	Strategies  []*game.Strategy
	TotalCost   float64
	PlayerCosts []float64
	Log         *Log
}

// Solver runs the outer ILQ loop for one fixed problem: joint dynamics, one
// cost per player, an initial joint state, and a horizon.
type Solver struct {
	dyn     game.Dynamics
	costs   []game.Cost
	x0      *mat.VecDense
	horizon int
	params  Params

	udims  []int
	lq     *lqSolver
	approx *approximation

	// checks are the costs that declare hard state bounds; the line
	// search rejects candidate rollouts that violate one.
	checks []game.FeasibilityChecker

	// initialStrategies seeds iteration zero's rollout; nil means zero
	// strategies. Interpreted about a zero reference trajectory.
	initialStrategies []*game.Strategy
}

// New validates the problem once and builds a solver. Dimension mismatches
// and a non-positive horizon are configuration errors; they are never
// rechecked inside the loop.
func New(dyn game.Dynamics, costs []game.Cost, x0 *mat.VecDense, horizon int, params Params) (*Solver, error) {
	if dyn == nil {
		return nil, fmt.Errorf("%w: nil dynamics", ErrConfiguration)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive, got %d", ErrConfiguration, horizon)
	}
	if len(costs) != dyn.NumPlayers() {
		return nil, fmt.Errorf("%w: %d costs for %d players", ErrConfiguration, len(costs), dyn.NumPlayers())
	}
	if x0 == nil || x0.Len() != dyn.XDim() {
		return nil, fmt.Errorf("%w: initial state dimension mismatch", ErrConfiguration)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	udims := make([]int, dyn.NumPlayers())
	for i := range udims {
		udims[i] = dyn.UDim(game.PlayerIndex(i))
		if udims[i] <= 0 {
			return nil, fmt.Errorf("%w: player %d has control dimension %d", ErrConfiguration, i, udims[i])
		}
	}

	var checks []game.FeasibilityChecker
	for _, c := range costs {
		if chk, ok := c.(game.FeasibilityChecker); ok {
			checks = append(checks, chk)
		}
	}

	return &Solver{
		dyn:     dyn,
		costs:   costs,
		x0:      mat.VecDenseCopyOf(x0),
		horizon: horizon,
		params:  params,
		udims:   udims,
		lq:      newLQSolver(dyn.XDim(), udims, horizon, params.MaxConditionNumber),
		approx:  newApproximation(horizon, dyn.XDim(), udims),
		checks:  checks,
	}, nil
}

// SetInitialStrategies seeds the first rollout with a caller-supplied
// strategy profile instead of zero strategies.
func (s *Solver) SetInitialStrategies(strategies []*game.Strategy) error {
	if len(strategies) != len(s.udims) {
		return fmt.Errorf("%w: %d initial strategies for %d players", ErrConfiguration, len(strategies), len(s.udims))
	}
	for i, st := range strategies {
		if len(st.Ps) != s.horizon {
			return fmt.Errorf("%w: player %d initial strategy horizon %d, want %d", ErrConfiguration, i, len(st.Ps), s.horizon)
		}
		r, c := st.Ps[0].Dims()
		if r != s.udims[i] || c != s.dyn.XDim() {
			return fmt.Errorf("%w: player %d initial gain is %dx%d, want %dx%d", ErrConfiguration, i, r, c, s.udims[i], s.dyn.XDim())
		}
	}
	s.initialStrategies = strategies
	return nil
}

// Solve runs the outer loop to convergence, budget exhaustion, failure, or
// cancellation. Cancellation is honored cooperatively between iterations;
// an in-flight iteration always finishes first.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	log := NewLog()

	strategies := s.initialStrategies
	if strategies == nil {
		strategies = make([]*game.Strategy, len(s.udims))
		for i := range strategies {
			strategies[i] = game.NewStrategy(s.horizon, s.dyn.XDim(), s.udims[i])
		}
	}

	// Iteration zero: roll the initial strategies out about a zero
	// reference to establish the first nominal trajectory.
	zero := game.NewOperatingPoint(s.horizon, s.dyn, 0)
	op, playerCosts, total, err := s.rollout(zero, strategies, 1)
	if err != nil {
		return s.failed(log, nil, nil, 0, StageInitializing, err)
	}
	s.record(log, 0, op, strategies, total, playerCosts, 1)

	result := func(status Status, iters int) *Result {
		return &Result{
			Status:      status,
			Iterations:  iters,
			Op:          op,
			Strategies:  strategies,
			TotalCost:   total,
			PlayerCosts: playerCosts,
			Log:         log,
		}
	}

	for iter := 1; iter <= s.params.MaxIterations; iter++ {
		if ctx.Err() != nil {
			return result(StatusCancelled, iter-1), ctx.Err()
		}

		if err := s.linearize(op, s.approx); err != nil {
			return s.failed(log, op, strategies, iter, StageLinearizing, err)
		}

		next, err := s.lq.solve(s.approx.lin, s.approx.quads)
		if err != nil {
			return s.failed(log, op, strategies, iter, StageSolving, err)
		}

		cand, improved, err := s.lineSearch(op, total, next)
		if err != nil {
			return s.failed(log, op, strategies, iter, StageLineSearching, err)
		}
		if !improved {
			// No step scale reduces cost: the iterate sits on a plateau,
			// i.e. a local optimum of the nonlinear game.
			return result(StatusConverged, iter), nil
		}

		prevTotal := total
		op, playerCosts, total = cand.op, cand.playerCosts, cand.total
		strategies = next
		s.record(log, iter, op, strategies, total, playerCosts, cand.scale)

		relChange := math.Abs(prevTotal-total) / math.Max(1, math.Abs(prevTotal))
		if relChange < s.params.CostTolerance || s.maxFeedforwardNorm(strategies) < s.params.StrategyTolerance {
			return result(StatusConverged, iter), nil
		}
	}

	return result(StatusMaxIterations, s.params.MaxIterations), nil
}

func (s *Solver) maxFeedforwardNorm(strategies []*game.Strategy) float64 {
	norm := 0.0
	for _, st := range strategies {
		norm = math.Max(norm, st.FeedforwardNorm())
	}
	return norm
}

func (s *Solver) record(log *Log, iter int, op *game.OperatingPoint, strategies []*game.Strategy, total float64, playerCosts []float64, scale float64) {
	clones := make([]*game.Strategy, len(strategies))
	for i, st := range strategies {
		clones[i] = st.Clone()
	}
	log.append(Entry{
		Iteration:   iter,
		Op:          op.Clone(),
		Strategies:  clones,
		TotalCost:   total,
		PlayerCosts: append([]float64(nil), playerCosts...),
		StepScale:   scale,
	})
}

func (s *Solver) failed(log *Log, op *game.OperatingPoint, strategies []*game.Strategy, iter int, stage Stage, err error) (*Result, error) {
	wrapped := &SolveError{Iteration: iter, Stage: stage, Wrapped: err}
	res := &Result{
		Status:     StatusFailed,
		Iterations: iter,
		Op:         op,
		Strategies: strategies,
		Log:        log,
	}
	if last, ok := log.Last(); ok {
		res.TotalCost = last.TotalCost
		res.PlayerCosts = last.PlayerCosts
	}
	return res, wrapped
}

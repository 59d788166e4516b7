package solver

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/game"
)

// errInfeasible marks a candidate whose rollout crossed a hard state bound.
// It rejects the candidate like an insufficient cost decrease does; it is
// never surfaced as a solve failure.
var errInfeasible = errors.New("infeasible rollout")

// candidate is one line-search trial: an operating point rolled out under a
// scaled strategy profile, with its true nonlinear cost.
type candidate struct {
	op          *game.OperatingPoint
	playerCosts []float64
	total       float64
	scale       float64
	err         error
}

// rollout integrates the true nonlinear dynamics forward from the fixed
// initial state, applying u_i = uref_i - scale*(P_i*dx + alpha_i) at every
// timestep, and evaluates every player's true cost along the way. The
// nominal operating point is read-only throughout, so a rejected candidate
// leaves the last accepted iterate untouched.
func (s *Solver) rollout(nominal *game.OperatingPoint, strategies []*game.Strategy, scale float64) (*game.OperatingPoint, []float64, float64, error) {
	horizon := nominal.Horizon()
	dt := s.dyn.TimeStep()

	op := game.NewOperatingPoint(horizon, s.dyn, nominal.StartTime)
	op.Xs[0].CopyVec(s.x0)

	playerCosts := make([]float64, len(s.costs))

	dx := mat.NewVecDense(s.dyn.XDim(), nil)
	for k := 0; k < horizon; k++ {
		t := op.Time(k, dt)

		dx.SubVec(op.Xs[k], nominal.Xs[k])
		cs := op.ControlsAt(k)
		for i := range strategies {
			u := strategies[i].Control(k, dx, nominal.Us[i][k], scale)
			cs[i].CopyVec(u)
		}

		next := s.dyn.Step(op.Xs[k], cs)
		if !game.VecIsFinite(next) {
			return nil, nil, 0, fmt.Errorf("%w: rollout state at timestep %d", ErrNonFinite, k+1)
		}
		op.Xs[k+1].CopyVec(next)

		for i, c := range s.costs {
			playerCosts[i] += c.Evaluate(t, op.Xs[k], cs)
		}
	}

	tT := op.Time(horizon, dt)
	total := 0.0
	for i, c := range s.costs {
		playerCosts[i] += c.Evaluate(tT, op.Xs[horizon], nil)
		total += playerCosts[i]
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, nil, 0, fmt.Errorf("%w: rollout cost", ErrNonFinite)
	}
	return op, playerCosts, total, nil
}

// feasible reports whether every rolled-out state after the fixed initial
// one satisfies the hard bounds the cost model declares.
func (s *Solver) feasible(op *game.OperatingPoint) bool {
	for _, chk := range s.checks {
		for k := 1; k < len(op.Xs); k++ {
			if !chk.Feasible(op.Xs[k]) {
				return false
			}
		}
	}
	return true
}

// lineSearch tries step scales s0, s0/2, ... concurrently and picks, among
// the finite candidates that beat the nominal cost by the sufficient
// decrease margin, the largest (least damped) scale. Selection is by scale
// order, never completion order, so results are reproducible regardless of
// scheduling. A non-finite candidate is rejected, not fatal: a shorter step
// may still be fine. Candidates that cross a hard state bound are rejected
// the same way. Returns ok=false when no scale improves (a plateau).
func (s *Solver) lineSearch(nominal *game.OperatingPoint, nominalCost float64, strategies []*game.Strategy) (*candidate, bool, error) {
	numScales := s.params.MaxBacktracks + 1
	cands := make([]candidate, numScales)

	var wg sync.WaitGroup
	scale := s.params.InitialStepScale
	for c := 0; c < numScales; c++ {
		cands[c].scale = scale
		scale /= 2

		wg.Add(1)
		go func(cand *candidate) {
			defer wg.Done()
			cand.op, cand.playerCosts, cand.total, cand.err = s.rollout(nominal, strategies, cand.scale)
			if cand.err == nil && !s.feasible(cand.op) {
				cand.err = errInfeasible
			}
		}(&cands[c])
	}
	wg.Wait()

	// Fatal only when every candidate diverged numerically; a profile of
	// merely infeasible candidates is a plateau, not a failure.
	allDiverged := true
	for c := range cands {
		if cands[c].err == nil || errors.Is(cands[c].err, errInfeasible) {
			allDiverged = false
			break
		}
	}
	if allDiverged {
		return nil, false, fmt.Errorf("%w: every line-search candidate diverged", ErrNonFinite)
	}

	for c := range cands {
		if cands[c].err != nil {
			continue
		}
		if cands[c].total < nominalCost-s.params.MinCostReduction {
			return &cands[c], true, nil
		}
	}
	return nil, false, nil
}

package cost

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/game"
)

// PlayerCost aggregates one player's cost terms: state terms of the joint
// state plus control terms keyed by whose control they penalize. It
// implements game.Cost.
//
// An optional exponential constant a transforms the per-timestep cost
// c into exp(a*c) with exact chain-rule quadraticization, turning the
// running sum into a soft maximum (reachability-style objectives).
//
// Quadraticize allocates its own scratch space per call and is safe for
// concurrent use at distinct timesteps.
type PlayerCost struct {
	name         string
	stateTerms   []StateTerm
	controlTerms map[game.PlayerIndex][]ControlTerm
	expConstant  float64
}

// NewPlayerCost returns an empty aggregate for the named player.
func NewPlayerCost(name string) *PlayerCost {
	return &PlayerCost{
		name:         name,
		controlTerms: make(map[game.PlayerIndex][]ControlTerm),
	}
}

func (p *PlayerCost) Name() string { return p.name }

// AddStateCost appends a term over the joint state.
func (p *PlayerCost) AddStateCost(c StateTerm) {
	p.stateTerms = append(p.stateTerms, c)
}

// AddControlCost appends a term over the given player's control.
func (p *PlayerCost) AddControlCost(player game.PlayerIndex, c ControlTerm) {
	p.controlTerms[player] = append(p.controlTerms[player], c)
}

// SetExponentialConstant enables the exp(a*cost) transform; zero disables.
func (p *PlayerCost) SetExponentialConstant(a float64) {
	p.expConstant = a
}

// Feasible reports whether x satisfies every bound-style state term. The
// line search consults this to reject rollouts that cross a hard bound,
// regardless of how small the soft penalty at the crossing is.
func (p *PlayerCost) Feasible(x *mat.VecDense) bool {
	for _, c := range p.stateTerms {
		b, ok := c.(interface{ Violated(*mat.VecDense) bool })
		if !ok {
			continue
		}
		if b.Violated(x) {
			return false
		}
	}
	return true
}

func (p *PlayerCost) raw(t float64, x *mat.VecDense, us []*mat.VecDense) float64 {
	total := 0.0
	for _, c := range p.stateTerms {
		total += c.Evaluate(t, x)
	}
	if us != nil {
		for player, terms := range p.controlTerms {
			for _, c := range terms {
				total += c.Evaluate(t, us[player])
			}
		}
	}
	return total
}

// Evaluate returns this player's (possibly exponentiated) cost at one
// timestep. Pass us == nil at the terminal time.
func (p *PlayerCost) Evaluate(t float64, x *mat.VecDense, us []*mat.VecDense) float64 {
	c := p.raw(t, x, us)
	if p.expConstant != 0 {
		return math.Exp(p.expConstant * c)
	}
	return c
}

// Quadraticize fills q with the local second-order model at (t, x, us).
func (p *PlayerCost) Quadraticize(t float64, x *mat.VecDense, us []*mat.VecDense, q *game.Quadratic) {
	q.Reset()

	for _, c := range p.stateTerms {
		c.Quadraticize(t, x, q.Lx, q.Qx)
	}
	if us != nil {
		for player, terms := range p.controlTerms {
			for _, c := range terms {
				c.Quadraticize(t, us[player], q.Lus[player], q.Qus[player])
			}
		}
	}

	if p.expConstant == 0 {
		return
	}

	// Chain rule for c -> exp(a*c):
	//   grad = a*e^(a*c) * grad_c
	//   hess = a*e^(a*c) * (hess_c + a * grad_c grad_c^T)
	a := p.expConstant
	scale := a * math.Exp(a*p.raw(t, x, us))

	expBlock := func(grad *mat.VecDense, hess *mat.Dense) {
		n := grad.Len()
		outer := mat.NewDense(n, n, nil)
		outer.Outer(a, grad, grad)
		hess.Add(hess, outer)
		hess.Scale(scale, hess)
		grad.ScaleVec(scale, grad)
	}

	expBlock(q.Lx, q.Qx)
	if us != nil {
		for i := range q.Lus {
			expBlock(q.Lus[i], q.Qus[i])
		}
	}
}

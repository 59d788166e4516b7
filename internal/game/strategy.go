package game

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Strategy is one player's time-indexed affine feedback law.
//
// Notation follows Basar and Olsder, Corollary 6.1: Ps are the feedback
// gains and Alphas the feedforward terms, so that
//
//	u(t) = uref(t) - Ps[t]*dx(t) - Alphas[t]
//
// where dx is the deviation from the nominal state. A Strategy owns its
// matrices; strategies are rebuilt every outer iteration and never shared
// across iterations.
type Strategy struct {
	Ps     []*mat.Dense    // horizon gains, each udim by xdim
	Alphas []*mat.VecDense // horizon feedforwards, each udim
}

// NewStrategy returns a zero strategy for the given dimensions.
func NewStrategy(horizon, xdim, udim int) *Strategy {
	s := &Strategy{
		Ps:     make([]*mat.Dense, horizon),
		Alphas: make([]*mat.VecDense, horizon),
	}
	for k := 0; k < horizon; k++ {
		s.Ps[k] = mat.NewDense(udim, xdim, nil)
		s.Alphas[k] = mat.NewVecDense(udim, nil)
	}
	return s
}

// Control evaluates the feedback law at timestep k, scaling both the
// feedback and feedforward corrections by scale (the line-search step size).
func (s *Strategy) Control(k int, dx, uref *mat.VecDense, scale float64) *mat.VecDense {
	u := mat.NewVecDense(s.Alphas[k].Len(), nil)
	u.MulVec(s.Ps[k], dx)
	u.AddScaledVec(u, 1, s.Alphas[k])
	u.AddScaledVec(uref, -scale, u)
	return u
}

// NumVariables returns the total number of scalar entries across all gains
// and feedforwards.
func (s *Strategy) NumVariables() int {
	n := 0
	for k := range s.Ps {
		r, c := s.Ps[k].Dims()
		n += r*c + s.Alphas[k].Len()
	}
	return n
}

// FeedforwardNorm is the Euclidean norm of all feedforward terms. Near a
// local equilibrium the feedforwards vanish, so this serves as the strategy
// update magnitude in the convergence test.
func (s *Strategy) FeedforwardNorm() float64 {
	sum := 0.0
	for _, a := range s.Alphas {
		n := mat.Norm(a, 2)
		sum += n * n
	}
	return math.Sqrt(sum)
}

// IsFinite reports whether every gain and feedforward entry is finite.
func (s *Strategy) IsFinite() bool {
	for k := range s.Ps {
		if !MatIsFinite(s.Ps[k]) || !VecIsFinite(s.Alphas[k]) {
			return false
		}
	}
	return true
}

// Clone deep-copies the strategy.
func (s *Strategy) Clone() *Strategy {
	c := &Strategy{
		Ps:     make([]*mat.Dense, len(s.Ps)),
		Alphas: make([]*mat.VecDense, len(s.Alphas)),
	}
	for k := range s.Ps {
		c.Ps[k] = mat.DenseCopyOf(s.Ps[k])
		c.Alphas[k] = mat.VecDenseCopyOf(s.Alphas[k])
	}
	return c
}

// StrategyRef is a non-owning view of a strategy laid out in a contiguous
// primal arena, (gain, feedforward) pairs per timestep. It avoids per-step
// allocation inside the coupled LQ recursion; the arena owner is
// responsible for keeping the backing slice alive.
type StrategyRef struct {
	Ps     []*mat.Dense
	Alphas []*mat.VecDense
}

// NewStrategyRef maps a strategy view onto arena starting at offset and
// returns the view together with the offset one past its last element.
func NewStrategyRef(horizon, xdim, udim int, arena []float64, offset int) (*StrategyRef, int) {
	ref := &StrategyRef{
		Ps:     make([]*mat.Dense, horizon),
		Alphas: make([]*mat.VecDense, horizon),
	}
	for k := 0; k < horizon; k++ {
		ref.Ps[k] = mat.NewDense(udim, xdim, arena[offset:offset+udim*xdim])
		offset += udim * xdim
		ref.Alphas[k] = mat.NewVecDense(udim, arena[offset:offset+udim])
		offset += udim
	}
	return ref, offset
}

// NumVariables returns the number of arena entries the view spans.
func (r *StrategyRef) NumVariables() int {
	n := 0
	for k := range r.Ps {
		rows, cols := r.Ps[k].Dims()
		n += rows*cols + r.Alphas[k].Len()
	}
	return n
}

// StrategyFromRef converts a reference view, expressed in deviation
// coordinates delta_u = -P*dx - alpha, into an owned Strategy about the
// given operating point:
//
//	alpha_new[t] = alpha_ref[t] + uref[t] - P[t]*xref[t]
func StrategyFromRef(ref *StrategyRef, op *OperatingPoint, p PlayerIndex) *Strategy {
	horizon := len(ref.Ps)
	s := &Strategy{
		Ps:     make([]*mat.Dense, horizon),
		Alphas: make([]*mat.VecDense, horizon),
	}
	for k := 0; k < horizon; k++ {
		s.Ps[k] = mat.DenseCopyOf(ref.Ps[k])

		a := mat.NewVecDense(ref.Alphas[k].Len(), nil)
		a.MulVec(ref.Ps[k], op.Xs[k])
		a.AddScaledVec(ref.Alphas[k], -1, a)
		a.AddVec(a, op.Us[p][k])
		s.Alphas[k] = a
	}
	return s
}

package cost

import "gonum.org/v1/gonum/mat"

// SingleDimensionBound is a soft one-sided constraint on a state dimension,
// contributing a quadratic penalty only while the bound is violated. Use it
// to keep states such as steering rate inside actuator limits without a
// hard constraint solver.
type SingleDimensionBound struct {
	inner *Semiquadratic
	// isUpper marks whether the bound caps the value from above.
	isUpper bool
	dim     int
	bound   float64
}

func NewSingleDimensionBound(name string, weight float64, dim int, bound float64, isUpper bool) *SingleDimensionBound {
	return &SingleDimensionBound{
		inner:   NewSemiquadratic(name, weight, dim, bound, isUpper),
		isUpper: isUpper,
		dim:     dim,
		bound:   bound,
	}
}

func (c *SingleDimensionBound) Name() string { return c.inner.Name() }

// Violated reports whether the bound is currently being crossed; the line
// search uses this to flag infeasible rollouts.
func (c *SingleDimensionBound) Violated(x *mat.VecDense) bool {
	v := x.AtVec(c.dim)
	if c.isUpper {
		return v > c.bound
	}
	return v < c.bound
}

func (c *SingleDimensionBound) Evaluate(t float64, x *mat.VecDense) float64 {
	return c.inner.Evaluate(t, x)
}

func (c *SingleDimensionBound) Quadraticize(t float64, x *mat.VecDense, grad *mat.VecDense, hess *mat.Dense) {
	c.inner.Quadraticize(t, x, grad, hess)
}

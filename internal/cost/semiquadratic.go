package cost

import "gonum.org/v1/gonum/mat"

// Semiquadratic penalizes one dimension quadratically on one side of a
// threshold only: 0.5 * weight * (v[dim] - threshold)^2 when the value is
// beyond the threshold in the oriented direction, zero otherwise.
// It implements both StateTerm and ControlTerm.
type Semiquadratic struct {
	name      string
	weight    float64
	dim       int
	threshold float64
	// above selects which side is penalized: values greater than the
	// threshold when true, smaller when false.
	above bool
}

func NewSemiquadratic(name string, weight float64, dim int, threshold float64, above bool) *Semiquadratic {
	return &Semiquadratic{name: name, weight: weight, dim: dim, threshold: threshold, above: above}
}

func (c *Semiquadratic) Name() string { return c.name }

func (c *Semiquadratic) active(v float64) bool {
	if c.above {
		return v > c.threshold
	}
	return v < c.threshold
}

func (c *Semiquadratic) Evaluate(t float64, v *mat.VecDense) float64 {
	val := v.AtVec(c.dim)
	if !c.active(val) {
		return 0
	}
	e := val - c.threshold
	return 0.5 * c.weight * e * e
}

func (c *Semiquadratic) Quadraticize(t float64, v *mat.VecDense, grad *mat.VecDense, hess *mat.Dense) {
	val := v.AtVec(c.dim)
	if !c.active(val) {
		return
	}
	e := val - c.threshold
	grad.SetVec(c.dim, grad.AtVec(c.dim)+c.weight*e)
	hess.Set(c.dim, c.dim, hess.At(c.dim, c.dim)+c.weight)
}

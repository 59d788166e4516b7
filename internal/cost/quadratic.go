package cost

import "gonum.org/v1/gonum/mat"

// Quadratic penalizes squared deviation of selected vector dimensions from
// nominal values: 0.5 * weight * sum_d (v[d] - nominal[d])^2.
// It implements both StateTerm and ControlTerm.
type Quadratic struct {
	name    string
	weight  float64
	dims    []int
	nominal []float64
}

// NewQuadratic builds a quadratic penalty over the given dimensions. If
// nominal is nil the nominal value is zero for every dimension.
func NewQuadratic(name string, weight float64, dims []int, nominal []float64) *Quadratic {
	if nominal == nil {
		nominal = make([]float64, len(dims))
	}
	return &Quadratic{name: name, weight: weight, dims: dims, nominal: nominal}
}

func (c *Quadratic) Name() string { return c.name }

func (c *Quadratic) Evaluate(t float64, v *mat.VecDense) float64 {
	sum := 0.0
	for i, d := range c.dims {
		e := v.AtVec(d) - c.nominal[i]
		sum += e * e
	}
	return 0.5 * c.weight * sum
}

func (c *Quadratic) Quadraticize(t float64, v *mat.VecDense, grad *mat.VecDense, hess *mat.Dense) {
	for i, d := range c.dims {
		e := v.AtVec(d) - c.nominal[i]
		grad.SetVec(d, grad.AtVec(d)+c.weight*e)
		hess.Set(d, d, hess.At(d, d)+c.weight)
	}
}

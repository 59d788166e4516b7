package cost

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Proximity penalizes two players for coming within a threshold distance of
// each other: 0.5 * weight * (threshold - d)^2 when d < threshold, zero
// otherwise, where d is the planar distance between the players' position
// dimensions in the joint state.
type Proximity struct {
	name      string
	weight    float64
	xi, yi    int // first player's position dims in the joint state
	xj, yj    int // second player's position dims
	threshold float64
}

func NewProximity(name string, weight float64, xi, yi, xj, yj int, threshold float64) *Proximity {
	return &Proximity{
		name: name, weight: weight,
		xi: xi, yi: yi, xj: xj, yj: yj,
		threshold: threshold,
	}
}

func (c *Proximity) Name() string { return c.name }

func (c *Proximity) delta(x *mat.VecDense) (dx, dy, d float64) {
	dx = x.AtVec(c.xi) - x.AtVec(c.xj)
	dy = x.AtVec(c.yi) - x.AtVec(c.yj)
	return dx, dy, math.Hypot(dx, dy)
}

func (c *Proximity) Evaluate(t float64, x *mat.VecDense) float64 {
	_, _, d := c.delta(x)
	if d >= c.threshold {
		return 0
	}
	e := c.threshold - d
	return 0.5 * c.weight * e * e
}

func (c *Proximity) Quadraticize(t float64, x *mat.VecDense, grad *mat.VecDense, hess *mat.Dense) {
	dx, dy, d := c.delta(x)
	if d >= c.threshold || d < 1e-9 {
		return
	}

	// cost = 0.5*w*(thr - d)^2, d = |p_i - p_j|.
	// Gradient: -w*(thr - d) * n on player i dims, opposite on player j,
	// with n the unit separation vector. Hessian by Gauss-Newton on n.
	e := c.threshold - d
	nx := dx / d
	ny := dy / d
	g := -c.weight * e

	dims := []int{c.xi, c.yi, c.xj, c.yj}
	n := []float64{nx, ny, -nx, -ny}

	for a, da := range dims {
		grad.SetVec(da, grad.AtVec(da)+g*n[a])
		for b, db := range dims {
			hess.Set(da, db, hess.At(da, db)+c.weight*n[a]*n[b])
		}
	}
}

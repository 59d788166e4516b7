package cost

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GoalDistance is the signed distance from a player's planar position to
// the boundary of a circular region: positive outside, negative inside.
// With reach=true the cost rewards entering the region; with reach=false
// the sign flips and the cost rewards staying out. Typically wrapped in an
// exponentiated PlayerCost so the running sum approximates the worst
// timestep.
type GoalDistance struct {
	name   string
	weight float64
	xIdx   int
	yIdx   int
	cx, cy float64
	radius float64
	reach  bool
}

func NewGoalDistance(name string, weight float64, xIdx, yIdx int, cx, cy, radius float64, reach bool) *GoalDistance {
	return &GoalDistance{
		name: name, weight: weight,
		xIdx: xIdx, yIdx: yIdx,
		cx: cx, cy: cy, radius: radius, reach: reach,
	}
}

func (c *GoalDistance) Name() string { return c.name }

func (c *GoalDistance) sign() float64 {
	if c.reach {
		return 1
	}
	return -1
}

func (c *GoalDistance) Evaluate(t float64, x *mat.VecDense) float64 {
	dx := x.AtVec(c.xIdx) - c.cx
	dy := x.AtVec(c.yIdx) - c.cy
	return c.sign() * c.weight * (math.Hypot(dx, dy) - c.radius)
}

func (c *GoalDistance) Quadraticize(t float64, x *mat.VecDense, grad *mat.VecDense, hess *mat.Dense) {
	dx := x.AtVec(c.xIdx) - c.cx
	dy := x.AtVec(c.yIdx) - c.cy
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		// Gradient undefined at the center; leave the model flat there.
		return
	}

	s := c.sign() * c.weight
	nx := dx / d
	ny := dy / d

	grad.SetVec(c.xIdx, grad.AtVec(c.xIdx)+s*nx)
	grad.SetVec(c.yIdx, grad.AtVec(c.yIdx)+s*ny)

	// Hessian of the Euclidean distance: (I - n n^T) / d.
	hess.Set(c.xIdx, c.xIdx, hess.At(c.xIdx, c.xIdx)+s*(1-nx*nx)/d)
	hess.Set(c.yIdx, c.yIdx, hess.At(c.yIdx, c.yIdx)+s*(1-ny*ny)/d)
	hess.Set(c.xIdx, c.yIdx, hess.At(c.xIdx, c.yIdx)-s*nx*ny/d)
	hess.Set(c.yIdx, c.xIdx, hess.At(c.yIdx, c.xIdx)-s*nx*ny/d)
}

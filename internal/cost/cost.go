// Package cost provides per-player cost terms for trajectory games:
// quadratic and one-sided quadratic penalties, circular goal distances,
// inter-player proximity penalties, and soft state bounds. PlayerCost
// aggregates terms for one player and implements the solver-facing
// game.Cost contract, including the exponential cost transform used for
// reach-avoid problems.
package cost

import "gonum.org/v1/gonum/mat"

// StateTerm is a scalar cost of the joint state at one timestep.
// Quadraticize adds the term's gradient and Hessian into grad and hess.
type StateTerm interface {
	Name() string
	Evaluate(t float64, x *mat.VecDense) float64
	Quadraticize(t float64, x *mat.VecDense, grad *mat.VecDense, hess *mat.Dense)
}

// ControlTerm is a scalar cost of one player's control at one timestep.
type ControlTerm interface {
	Name() string
	Evaluate(t float64, u *mat.VecDense) float64
	Quadraticize(t float64, u *mat.VecDense, grad *mat.VecDense, hess *mat.Dense)
}

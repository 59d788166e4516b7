// Package dynamics provides continuous-time single-player vehicle models
// with analytic Jacobians, and the Concatenated joint system that stacks
// them into the discrete-time game.Dynamics the solver consumes.
package dynamics

import "gonum.org/v1/gonum/mat"

// SinglePlayer is a continuous-time model of one player's own state block.
//
// Derive returns dx/dt for the player's block given its control. Linearize
// returns the continuous Jacobians df/dx (xdim by xdim) and df/du (xdim by
// udim) at the same point. Both must be finite wherever the solver may
// evaluate them.
type SinglePlayer interface {
	XDim() int
	UDim() int
	Derive(x, u *mat.VecDense) *mat.VecDense
	Linearize(x, u *mat.VecDense) (dfdx, dfdu *mat.Dense)
}

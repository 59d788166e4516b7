package game

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PlayerIndex identifies one player in the joint game.
type PlayerIndex int

// Dynamics is the discrete-time joint dynamics of all players.
//
// Step advances the joint state one timestep under the given per-player
// controls. Jacobians returns the state-transition matrix A (xdim by xdim)
// and one control matrix B per player (xdim by udim_i), both already
// discretized to the same timestep Step integrates over.
type Dynamics interface {
	XDim() int
	NumPlayers() int
	UDim(p PlayerIndex) int
	TimeStep() float64
	Step(x *mat.VecDense, us []*mat.VecDense) *mat.VecDense
	Jacobians(x *mat.VecDense, us []*mat.VecDense) (*mat.Dense, []*mat.Dense)
}

// Cost is one player's cost over joint state and all players' controls.
//
// Quadraticize accumulates the local second-order model at (t, x, us) into q.
// At the terminal time us is nil and only the state blocks are filled.
// Implementations must be safe for concurrent calls at distinct timesteps.
type Cost interface {
	Name() string
	Evaluate(t float64, x *mat.VecDense, us []*mat.VecDense) float64
	Quadraticize(t float64, x *mat.VecDense, us []*mat.VecDense, q *Quadratic)
}

// FeasibilityChecker is optionally implemented by costs that declare hard
// state bounds. The line search rejects candidate rollouts whose states
// violate one.
type FeasibilityChecker interface {
	Feasible(x *mat.VecDense) bool
}

// VecIsFinite reports whether every entry of v is finite.
func VecIsFinite(v *mat.VecDense) bool {
	for _, e := range v.RawVector().Data {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	return true
}

// MatIsFinite reports whether every entry of m is finite.
func MatIsFinite(m *mat.Dense) bool {
	for _, e := range m.RawMatrix().Data {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	return true
}

// Package integrators provides fixed-step integrators for the continuous
// joint vector field of a multi-player system. Controls are held with a
// zero-order hold over each step, so the field closes over them and only
// depends on time and state.
package integrators

import "gonum.org/v1/gonum/mat"

// Field is the time-varying joint state derivative dx/dt = f(t, x).
type Field func(t float64, x *mat.VecDense) *mat.VecDense

// Integrator advances a state one step through a vector field.
type Integrator interface {
	Step(f Field, x *mat.VecDense, t, dt float64) *mat.VecDense
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f Field, x *mat.VecDense, t, dt float64) *mat.VecDense {
	out := mat.VecDenseCopyOf(x)
	out.AddScaledVec(out, dt, f(t, x))
	return out
}

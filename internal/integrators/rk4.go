package integrators

import "gonum.org/v1/gonum/mat"

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(f Field, x *mat.VecDense, t, dt float64) *mat.VecDense {
	n := x.Len()

	k1 := f(t, x)

	tmp := mat.NewVecDense(n, nil)
	tmp.AddScaledVec(x, dt*0.5, k1)
	k2 := f(t+dt*0.5, tmp)

	tmp.AddScaledVec(x, dt*0.5, k2)
	k3 := f(t+dt*0.5, tmp)

	tmp.AddScaledVec(x, dt, k3)
	k4 := f(t+dt, tmp)

	out := mat.VecDenseCopyOf(x)
	out.AddScaledVec(out, dt/6, k1)
	out.AddScaledVec(out, dt/3, k2)
	out.AddScaledVec(out, dt/3, k3)
	out.AddScaledVec(out, dt/6, k4)
	return out
}

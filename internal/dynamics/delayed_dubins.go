package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// State and control layout for DelayedDubinsCar.
const (
	DelayedDubinsPxIdx    = 0
	DelayedDubinsPyIdx    = 1
	DelayedDubinsThetaIdx = 2
	DelayedDubinsOmegaIdx = 3

	DelayedDubinsAlphaIdx = 0
)

// DelayedDubinsCar is a constant-speed car whose turning rate is itself a
// state, controlled through angular acceleration. The extra integrator lets
// soft bounds on omega act as actuator limits.
//
//	px' = v cos(theta)
//	py' = v sin(theta)
//	theta' = omega
//	omega' = alpha
type DelayedDubinsCar struct {
	Speed float64
}

func NewDelayedDubinsCar(speed float64) *DelayedDubinsCar {
	return &DelayedDubinsCar{Speed: speed}
}

func (d *DelayedDubinsCar) XDim() int { return 4 }
func (d *DelayedDubinsCar) UDim() int { return 1 }

func (d *DelayedDubinsCar) Derive(x, u *mat.VecDense) *mat.VecDense {
	theta := x.AtVec(DelayedDubinsThetaIdx)
	return mat.NewVecDense(4, []float64{
		d.Speed * math.Cos(theta),
		d.Speed * math.Sin(theta),
		x.AtVec(DelayedDubinsOmegaIdx),
		u.AtVec(DelayedDubinsAlphaIdx),
	})
}

func (d *DelayedDubinsCar) Linearize(x, u *mat.VecDense) (*mat.Dense, *mat.Dense) {
	theta := x.AtVec(DelayedDubinsThetaIdx)

	dfdx := mat.NewDense(4, 4, nil)
	dfdx.Set(DelayedDubinsPxIdx, DelayedDubinsThetaIdx, -d.Speed*math.Sin(theta))
	dfdx.Set(DelayedDubinsPyIdx, DelayedDubinsThetaIdx, d.Speed*math.Cos(theta))
	dfdx.Set(DelayedDubinsThetaIdx, DelayedDubinsOmegaIdx, 1)

	dfdu := mat.NewDense(4, 1, nil)
	dfdu.Set(DelayedDubinsOmegaIdx, DelayedDubinsAlphaIdx, 1)

	return dfdx, dfdu
}

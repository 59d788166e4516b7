package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// State and control layout for Unicycle4D.
const (
	UnicyclePxIdx    = 0
	UnicyclePyIdx    = 1
	UnicycleThetaIdx = 2
	UnicycleVIdx     = 3

	UnicycleOmegaIdx = 0
	UnicycleAIdx     = 1
)

// Unicycle4D is a planar unicycle with speed as a state, controlled by
// turning rate and longitudinal acceleration:
//
//	px' = v cos(theta)
//	py' = v sin(theta)
//	theta' = omega
//	v' = a
type Unicycle4D struct{}

func NewUnicycle4D() *Unicycle4D {
	return &Unicycle4D{}
}

func (d *Unicycle4D) XDim() int { return 4 }
func (d *Unicycle4D) UDim() int { return 2 }

func (d *Unicycle4D) Derive(x, u *mat.VecDense) *mat.VecDense {
	theta := x.AtVec(UnicycleThetaIdx)
	v := x.AtVec(UnicycleVIdx)
	return mat.NewVecDense(4, []float64{
		v * math.Cos(theta),
		v * math.Sin(theta),
		u.AtVec(UnicycleOmegaIdx),
		u.AtVec(UnicycleAIdx),
	})
}

func (d *Unicycle4D) Linearize(x, u *mat.VecDense) (*mat.Dense, *mat.Dense) {
	theta := x.AtVec(UnicycleThetaIdx)
	v := x.AtVec(UnicycleVIdx)

	dfdx := mat.NewDense(4, 4, nil)
	dfdx.Set(UnicyclePxIdx, UnicycleThetaIdx, -v*math.Sin(theta))
	dfdx.Set(UnicyclePxIdx, UnicycleVIdx, math.Cos(theta))
	dfdx.Set(UnicyclePyIdx, UnicycleThetaIdx, v*math.Cos(theta))
	dfdx.Set(UnicyclePyIdx, UnicycleVIdx, math.Sin(theta))

	dfdu := mat.NewDense(4, 2, nil)
	dfdu.Set(UnicycleThetaIdx, UnicycleOmegaIdx, 1)
	dfdu.Set(UnicycleVIdx, UnicycleAIdx, 1)

	return dfdx, dfdu
}

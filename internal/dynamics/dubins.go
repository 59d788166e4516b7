package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// State and control layout for DubinsCar.
const (
	DubinsPxIdx    = 0
	DubinsPyIdx    = 1
	DubinsThetaIdx = 2

	DubinsOmegaIdx = 0
)

// DubinsCar is a constant-speed car steered by its turning rate:
//
//	px' = v cos(theta)
//	py' = v sin(theta)
//	theta' = omega
type DubinsCar struct {
	Speed float64
}

func NewDubinsCar(speed float64) *DubinsCar {
	return &DubinsCar{Speed: speed}
}

func (d *DubinsCar) XDim() int { return 3 }
func (d *DubinsCar) UDim() int { return 1 }

func (d *DubinsCar) Derive(x, u *mat.VecDense) *mat.VecDense {
	theta := x.AtVec(DubinsThetaIdx)
	return mat.NewVecDense(3, []float64{
		d.Speed * math.Cos(theta),
		d.Speed * math.Sin(theta),
		u.AtVec(DubinsOmegaIdx),
	})
}

func (d *DubinsCar) Linearize(x, u *mat.VecDense) (*mat.Dense, *mat.Dense) {
	theta := x.AtVec(DubinsThetaIdx)

	dfdx := mat.NewDense(3, 3, nil)
	dfdx.Set(DubinsPxIdx, DubinsThetaIdx, -d.Speed*math.Sin(theta))
	dfdx.Set(DubinsPyIdx, DubinsThetaIdx, d.Speed*math.Cos(theta))

	dfdu := mat.NewDense(3, 1, nil)
	dfdu.Set(DubinsThetaIdx, DubinsOmegaIdx, 1)

	return dfdx, dfdu
}

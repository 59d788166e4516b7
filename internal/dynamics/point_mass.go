package dynamics

import "gonum.org/v1/gonum/mat"

// State and control layout for PointMass2D.
const (
	PointMassPxIdx = 0
	PointMassPyIdx = 1
	PointMassVxIdx = 2
	PointMassVyIdx = 3

	PointMassAxIdx = 0
	PointMassAyIdx = 1
)

// PointMass2D is a planar double integrator driven by acceleration. Its
// dynamics are linear, which makes it the reference model for closed-form
// LQR comparisons.
type PointMass2D struct{}

func NewPointMass2D() *PointMass2D {
	return &PointMass2D{}
}

func (d *PointMass2D) XDim() int { return 4 }
func (d *PointMass2D) UDim() int { return 2 }

func (d *PointMass2D) Derive(x, u *mat.VecDense) *mat.VecDense {
	return mat.NewVecDense(4, []float64{
		x.AtVec(PointMassVxIdx),
		x.AtVec(PointMassVyIdx),
		u.AtVec(PointMassAxIdx),
		u.AtVec(PointMassAyIdx),
	})
}

func (d *PointMass2D) Linearize(x, u *mat.VecDense) (*mat.Dense, *mat.Dense) {
	dfdx := mat.NewDense(4, 4, nil)
	dfdx.Set(PointMassPxIdx, PointMassVxIdx, 1)
	dfdx.Set(PointMassPyIdx, PointMassVyIdx, 1)

	dfdu := mat.NewDense(4, 2, nil)
	dfdu.Set(PointMassVxIdx, PointMassAxIdx, 1)
	dfdu.Set(PointMassVyIdx, PointMassAyIdx, 1)

	return dfdx, dfdu
}

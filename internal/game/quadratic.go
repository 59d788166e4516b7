package game

import "gonum.org/v1/gonum/mat"

// LinearizedDynamics holds the dynamics Jacobians at one timestep.
type LinearizedDynamics struct {
	A  *mat.Dense   // xdim by xdim state transition
	Bs []*mat.Dense // per-player control matrices, xdim by udim_i
}

// IsFinite reports whether all Jacobian entries are finite.
func (l *LinearizedDynamics) IsFinite() bool {
	if !MatIsFinite(l.A) {
		return false
	}
	for _, b := range l.Bs {
		if !MatIsFinite(b) {
			return false
		}
	}
	return true
}

// Quadratic is one player's local second-order cost model at one timestep:
// gradient and Hessian with respect to joint state, plus gradient and
// Hessian with respect to every player's control. Cross state-control
// second derivatives are not carried; the LQ game setup does not consume
// them. Instances are transient and rebuilt every outer iteration.
type Quadratic struct {
	Lx *mat.VecDense // gradient wrt joint state
	Qx *mat.Dense    // Hessian wrt joint state

	Lus []*mat.VecDense // gradient wrt each player's control
	Qus []*mat.Dense    // Hessian wrt each player's control
}

// NewQuadratic allocates a zeroed quadratic model for the given dimensions.
func NewQuadratic(xdim int, udims []int) *Quadratic {
	q := &Quadratic{
		Lx:  mat.NewVecDense(xdim, nil),
		Qx:  mat.NewDense(xdim, xdim, nil),
		Lus: make([]*mat.VecDense, len(udims)),
		Qus: make([]*mat.Dense, len(udims)),
	}
	for i, ud := range udims {
		q.Lus[i] = mat.NewVecDense(ud, nil)
		q.Qus[i] = mat.NewDense(ud, ud, nil)
	}
	return q
}

// Reset zeroes all blocks so the model can be refilled in place.
func (q *Quadratic) Reset() {
	q.Lx.Zero()
	q.Qx.Zero()
	for i := range q.Lus {
		q.Lus[i].Zero()
		q.Qus[i].Zero()
	}
}

// IsFinite reports whether every block entry is finite.
func (q *Quadratic) IsFinite() bool {
	if !VecIsFinite(q.Lx) || !MatIsFinite(q.Qx) {
		return false
	}
	for i := range q.Lus {
		if !VecIsFinite(q.Lus[i]) || !MatIsFinite(q.Qus[i]) {
			return false
		}
	}
	return true
}

package game

import "gonum.org/v1/gonum/mat"

// OperatingPoint is a nominal joint trajectory: horizon+1 states and, for
// each player, horizon controls. Accepted operating points are never mutated
// in place; the line search builds fresh candidates and discards rejected
// ones, so the last accepted iterate always stays intact.
type OperatingPoint struct {
	// Xs holds the joint state at each timestep, len == horizon+1.
	Xs []*mat.VecDense
	// Us holds controls indexed as Us[player][t], len(Us[i]) == horizon.
	Us [][]*mat.VecDense
	// StartTime is the trajectory's initial time.
	StartTime float64
}

// NewOperatingPoint returns a zero operating point sized for dyn over the
// given horizon.
func NewOperatingPoint(horizon int, dyn Dynamics, startTime float64) *OperatingPoint {
	op := &OperatingPoint{
		Xs:        make([]*mat.VecDense, horizon+1),
		Us:        make([][]*mat.VecDense, dyn.NumPlayers()),
		StartTime: startTime,
	}
	for k := range op.Xs {
		op.Xs[k] = mat.NewVecDense(dyn.XDim(), nil)
	}
	for i := range op.Us {
		op.Us[i] = make([]*mat.VecDense, horizon)
		for k := range op.Us[i] {
			op.Us[i][k] = mat.NewVecDense(dyn.UDim(PlayerIndex(i)), nil)
		}
	}
	return op
}

// Horizon returns the number of control steps.
func (op *OperatingPoint) Horizon() int {
	return len(op.Xs) - 1
}

// NumPlayers returns the number of players with control sequences.
func (op *OperatingPoint) NumPlayers() int {
	return len(op.Us)
}

// Time returns the absolute time of timestep k.
func (op *OperatingPoint) Time(k int, dt float64) float64 {
	return op.StartTime + float64(k)*dt
}

// ControlsAt gathers every player's control at timestep k.
func (op *OperatingPoint) ControlsAt(k int) []*mat.VecDense {
	us := make([]*mat.VecDense, len(op.Us))
	for i := range op.Us {
		us[i] = op.Us[i][k]
	}
	return us
}

// Clone deep-copies the operating point.
func (op *OperatingPoint) Clone() *OperatingPoint {
	c := &OperatingPoint{
		Xs:        make([]*mat.VecDense, len(op.Xs)),
		Us:        make([][]*mat.VecDense, len(op.Us)),
		StartTime: op.StartTime,
	}
	for k, x := range op.Xs {
		c.Xs[k] = mat.VecDenseCopyOf(x)
	}
	for i := range op.Us {
		c.Us[i] = make([]*mat.VecDense, len(op.Us[i]))
		for k, u := range op.Us[i] {
			c.Us[i][k] = mat.VecDenseCopyOf(u)
		}
	}
	return c
}

// IsFinite reports whether every state and control entry is finite.
func (op *OperatingPoint) IsFinite() bool {
	for _, x := range op.Xs {
		if !VecIsFinite(x) {
			return false
		}
	}
	for i := range op.Us {
		for _, u := range op.Us[i] {
			if !VecIsFinite(u) {
				return false
			}
		}
	}
	return true
}

// Package metrics computes post-hoc statistics of a solved trajectory for
// reporting: control effort, closest inter-player approach, and terminal
// distance to a goal.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/game"
)

// ControlEffort is the mean absolute control magnitude across all players
// and timesteps.
func ControlEffort(op *game.OperatingPoint) float64 {
	sum := 0.0
	samples := 0
	for i := range op.Us {
		for _, u := range op.Us[i] {
			for d := 0; d < u.Len(); d++ {
				sum += math.Abs(u.AtVec(d))
			}
			samples += u.Len()
		}
	}
	if samples == 0 {
		return 0
	}
	return sum / float64(samples)
}

// MinSeparation is the smallest planar distance between two players'
// position dimensions over the trajectory.
func MinSeparation(op *game.OperatingPoint, xi, yi, xj, yj int) float64 {
	best := math.Inf(1)
	for _, x := range op.Xs {
		d := math.Hypot(x.AtVec(xi)-x.AtVec(xj), x.AtVec(yi)-x.AtVec(yj))
		if d < best {
			best = d
		}
	}
	return best
}

// TerminalDistance is the final state's planar distance to a point.
func TerminalDistance(op *game.OperatingPoint, xIdx, yIdx int, cx, cy float64) float64 {
	last := op.Xs[len(op.Xs)-1]
	return distanceTo(last, xIdx, yIdx, cx, cy)
}

func distanceTo(x *mat.VecDense, xIdx, yIdx int, cx, cy float64) float64 {
	return math.Hypot(x.AtVec(xIdx)-cx, x.AtVec(yIdx)-cy)
}

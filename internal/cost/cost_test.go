package cost

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/game"
)

const tol = 1e-9

// checkGradient compares an analytic gradient against central differences
// of Evaluate at x.
func checkGradient(t *testing.T, term StateTerm, x *mat.VecDense) {
	t.Helper()
	n := x.Len()
	grad := mat.NewVecDense(n, nil)
	hess := mat.NewDense(n, n, nil)
	term.Quadraticize(0, x, grad, hess)

	const h = 1e-6
	for d := 0; d < n; d++ {
		xp := mat.VecDenseCopyOf(x)
		xm := mat.VecDenseCopyOf(x)
		xp.SetVec(d, x.AtVec(d)+h)
		xm.SetVec(d, x.AtVec(d)-h)
		fd := (term.Evaluate(0, xp) - term.Evaluate(0, xm)) / (2 * h)
		if math.Abs(fd-grad.AtVec(d)) > 1e-4 {
			t.Errorf("%s: gradient[%d] = %g, finite difference %g", term.Name(), d, grad.AtVec(d), fd)
		}
	}
}

func TestQuadraticEvaluate(t *testing.T) {
	c := NewQuadratic("q", 2.0, []int{0, 2}, []float64{1, -1})
	v := mat.NewVecDense(3, []float64{2, 100, 1})

	// 0.5 * 2 * ((2-1)^2 + (1-(-1))^2) = 5.
	if got := c.Evaluate(0, v); math.Abs(got-5.0) > tol {
		t.Errorf("expected 5.0, got %f", got)
	}
}

func TestQuadraticQuadraticize(t *testing.T) {
	c := NewQuadratic("q", 3.0, []int{1}, nil)
	v := mat.NewVecDense(2, []float64{0, 2})

	grad := mat.NewVecDense(2, nil)
	hess := mat.NewDense(2, 2, nil)
	c.Quadraticize(0, v, grad, hess)

	if math.Abs(grad.AtVec(1)-6.0) > tol {
		t.Errorf("gradient should be w*e = 6, got %f", grad.AtVec(1))
	}
	if math.Abs(hess.At(1, 1)-3.0) > tol {
		t.Errorf("hessian should be w = 3, got %f", hess.At(1, 1))
	}
	if grad.AtVec(0) != 0 || hess.At(0, 0) != 0 {
		t.Error("untouched dimensions must stay zero")
	}
	checkGradient(t, c, v)
}

func TestQuadraticizeAccumulates(t *testing.T) {
	c := NewQuadratic("q", 1.0, []int{0}, nil)
	v := mat.NewVecDense(1, []float64{1})

	grad := mat.NewVecDense(1, nil)
	hess := mat.NewDense(1, 1, nil)
	c.Quadraticize(0, v, grad, hess)
	c.Quadraticize(0, v, grad, hess)

	if math.Abs(grad.AtVec(0)-2.0) > tol || math.Abs(hess.At(0, 0)-2.0) > tol {
		t.Error("terms must accumulate into the passed blocks, not overwrite them")
	}
}

func TestSemiquadraticOneSided(t *testing.T) {
	c := NewSemiquadratic("s", 2.0, 0, 1.0, true)

	below := mat.NewVecDense(1, []float64{0.5})
	if got := c.Evaluate(0, below); got != 0 {
		t.Errorf("inactive side should cost zero, got %f", got)
	}

	above := mat.NewVecDense(1, []float64{2.0})
	if got := c.Evaluate(0, above); math.Abs(got-1.0) > tol {
		t.Errorf("expected 0.5*2*1 = 1, got %f", got)
	}

	grad := mat.NewVecDense(1, nil)
	hess := mat.NewDense(1, 1, nil)
	c.Quadraticize(0, below, grad, hess)
	if grad.AtVec(0) != 0 || hess.At(0, 0) != 0 {
		t.Error("inactive side should contribute nothing")
	}
	checkGradient(t, c, above)
}

func TestGoalDistanceSign(t *testing.T) {
	reach := NewGoalDistance("goal", 1.0, 0, 1, 0, 0, 1.0, true)

	outside := mat.NewVecDense(2, []float64{3, 4})
	if got := reach.Evaluate(0, outside); math.Abs(got-4.0) > tol {
		t.Errorf("signed distance should be 5-1 = 4, got %f", got)
	}

	inside := mat.NewVecDense(2, []float64{0.5, 0})
	if got := reach.Evaluate(0, inside); math.Abs(got+0.5) > tol {
		t.Errorf("inside the region the reach cost is negative, got %f", got)
	}

	avoid := NewGoalDistance("avoid", 1.0, 0, 1, 0, 0, 1.0, false)
	if got := avoid.Evaluate(0, inside); math.Abs(got-0.5) > tol {
		t.Errorf("avoid flips the sign, got %f", got)
	}

	checkGradient(t, reach, outside)
}

func TestGoalDistanceFlatAtCenter(t *testing.T) {
	c := NewGoalDistance("goal", 1.0, 0, 1, 0, 0, 1.0, true)
	center := mat.NewVecDense(2, []float64{0, 0})

	grad := mat.NewVecDense(2, nil)
	hess := mat.NewDense(2, 2, nil)
	c.Quadraticize(0, center, grad, hess)

	if grad.AtVec(0) != 0 || grad.AtVec(1) != 0 {
		t.Error("gradient at the center must stay zero")
	}
	if !game.MatIsFinite(hess) {
		t.Error("hessian at the center must stay finite")
	}
}

func TestProximityInactiveWhenApart(t *testing.T) {
	c := NewProximity("prox", 10.0, 0, 1, 2, 3, 1.0)
	x := mat.NewVecDense(4, []float64{0, 0, 5, 0})
	if got := c.Evaluate(0, x); got != 0 {
		t.Errorf("players 5 apart with threshold 1 should cost zero, got %f", got)
	}
}

func TestProximityPenalty(t *testing.T) {
	c := NewProximity("prox", 2.0, 0, 1, 2, 3, 2.0)
	x := mat.NewVecDense(4, []float64{0, 0, 1, 0})

	// d = 1, e = 1, cost = 0.5*2*1 = 1.
	if got := c.Evaluate(0, x); math.Abs(got-1.0) > tol {
		t.Errorf("expected 1.0, got %f", got)
	}
	checkGradient(t, c, x)

	// Descending the cost separates the players: player 1 sits left of
	// player 2, so its cost rises as it moves right toward player 2.
	grad := mat.NewVecDense(4, nil)
	hess := mat.NewDense(4, 4, nil)
	c.Quadraticize(0, x, grad, hess)
	if grad.AtVec(0) <= 0 {
		t.Errorf("player 1 x-gradient should be positive, got %f", grad.AtVec(0))
	}
	if grad.AtVec(2) >= 0 {
		t.Errorf("player 2 x-gradient should be negative, got %f", grad.AtVec(2))
	}
}

func TestSingleDimensionBound(t *testing.T) {
	upper := NewSingleDimensionBound("omega_max", 10.0, 1, 1.0, true)
	lower := NewSingleDimensionBound("omega_min", 10.0, 1, -1.0, false)

	ok := mat.NewVecDense(2, []float64{0, 0.5})
	if upper.Violated(ok) || lower.Violated(ok) {
		t.Error("state inside the bounds should not be flagged")
	}
	if upper.Evaluate(0, ok) != 0 || lower.Evaluate(0, ok) != 0 {
		t.Error("state inside the bounds should cost nothing")
	}

	high := mat.NewVecDense(2, []float64{0, 1.5})
	if !upper.Violated(high) {
		t.Error("upper bound violation missed")
	}
	if got := upper.Evaluate(0, high); math.Abs(got-1.25) > tol {
		t.Errorf("expected 0.5*10*0.25 = 1.25, got %f", got)
	}

	low := mat.NewVecDense(2, []float64{0, -2.0})
	if !lower.Violated(low) {
		t.Error("lower bound violation missed")
	}
}

func TestPlayerCostAggregates(t *testing.T) {
	pc := NewPlayerCost("P1")
	pc.AddStateCost(NewQuadratic("state", 1.0, []int{0}, nil))
	pc.AddControlCost(0, NewQuadratic("effort", 2.0, []int{0}, nil))

	x := mat.NewVecDense(2, []float64{2, 0})
	us := []*mat.VecDense{mat.NewVecDense(1, []float64{1})}

	// 0.5*1*4 + 0.5*2*1 = 3.
	if got := pc.Evaluate(0, x, us); math.Abs(got-3.0) > tol {
		t.Errorf("expected 3.0, got %f", got)
	}

	// Terminal call: control terms are skipped.
	if got := pc.Evaluate(0, x, nil); math.Abs(got-2.0) > tol {
		t.Errorf("terminal cost should drop control terms, got %f", got)
	}
}

func TestPlayerCostQuadraticize(t *testing.T) {
	pc := NewPlayerCost("P1")
	pc.AddStateCost(NewQuadratic("state", 1.0, []int{0, 1}, nil))
	pc.AddControlCost(0, NewQuadratic("effort", 2.0, []int{0}, nil))

	x := mat.NewVecDense(2, []float64{1, -1})
	us := []*mat.VecDense{mat.NewVecDense(1, []float64{0.5})}

	q := game.NewQuadratic(2, []int{1})
	pc.Quadraticize(0, x, us, q)

	if math.Abs(q.Lx.AtVec(0)-1.0) > tol || math.Abs(q.Lx.AtVec(1)+1.0) > tol {
		t.Error("state gradient wrong")
	}
	if math.Abs(q.Qx.At(0, 0)-1.0) > tol {
		t.Error("state hessian wrong")
	}
	if math.Abs(q.Lus[0].AtVec(0)-1.0) > tol || math.Abs(q.Qus[0].At(0, 0)-2.0) > tol {
		t.Error("control blocks wrong")
	}

	// A second call resets rather than accumulates.
	pc.Quadraticize(0, x, us, q)
	if math.Abs(q.Qx.At(0, 0)-1.0) > tol {
		t.Error("Quadraticize must reset the model between calls")
	}
}

func TestExponentiatedEvaluate(t *testing.T) {
	pc := NewPlayerCost("P1")
	pc.AddStateCost(NewQuadratic("state", 1.0, []int{0}, nil))
	pc.SetExponentialConstant(0.5)

	x := mat.NewVecDense(1, []float64{2})
	// raw = 2, transformed = exp(0.5*2) = e.
	if got := pc.Evaluate(0, x, nil); math.Abs(got-math.E) > tol {
		t.Errorf("expected e, got %f", got)
	}
}

// TestExponentiatedQuadraticize checks the chain rule against central
// differences of the transformed cost.
func TestExponentiatedQuadraticize(t *testing.T) {
	pc := NewPlayerCost("P1")
	pc.AddStateCost(NewQuadratic("near", 1.0, []int{0, 1}, []float64{1, 2}))
	pc.SetExponentialConstant(0.3)

	x := mat.NewVecDense(2, []float64{0.5, 1.0})
	q := game.NewQuadratic(2, []int{1})
	pc.Quadraticize(0, x, nil, q)

	const h = 1e-5
	eval := func(v *mat.VecDense) float64 { return pc.Evaluate(0, v, nil) }
	for d := 0; d < 2; d++ {
		xp := mat.VecDenseCopyOf(x)
		xm := mat.VecDenseCopyOf(x)
		xp.SetVec(d, x.AtVec(d)+h)
		xm.SetVec(d, x.AtVec(d)-h)
		fd := (eval(xp) - eval(xm)) / (2 * h)
		if math.Abs(fd-q.Lx.AtVec(d)) > 1e-5 {
			t.Errorf("gradient[%d] = %g, finite difference %g", d, q.Lx.AtVec(d), fd)
		}
	}

	// Diagonal hessian entries via second differences.
	f0 := eval(x)
	for d := 0; d < 2; d++ {
		xp := mat.VecDenseCopyOf(x)
		xm := mat.VecDenseCopyOf(x)
		xp.SetVec(d, x.AtVec(d)+h)
		xm.SetVec(d, x.AtVec(d)-h)
		fd := (eval(xp) - 2*f0 + eval(xm)) / (h * h)
		if math.Abs(fd-q.Qx.At(d, d)) > 1e-4 {
			t.Errorf("hessian[%d][%d] = %g, finite difference %g", d, d, q.Qx.At(d, d), fd)
		}
	}
}

func TestPlayerCostFeasible(t *testing.T) {
	pc := NewPlayerCost("P1")
	pc.AddStateCost(NewQuadratic("state", 1.0, []int{0, 1}, nil))
	pc.AddStateCost(NewSingleDimensionBound("upper", 10.0, 2, 1.0, true))
	pc.AddStateCost(NewSingleDimensionBound("lower", 10.0, 2, -1.0, false))

	x := mat.NewVecDense(3, []float64{5, 5, 0})
	if !pc.Feasible(x) {
		t.Error("state inside both bounds should be feasible regardless of soft cost")
	}

	x.SetVec(2, 1.5)
	if pc.Feasible(x) {
		t.Error("state above the upper bound should be infeasible")
	}
	x.SetVec(2, -1.5)
	if pc.Feasible(x) {
		t.Error("state below the lower bound should be infeasible")
	}

	// Sitting exactly on the bound does not count as a violation.
	x.SetVec(2, 1.0)
	if !pc.Feasible(x) {
		t.Error("state on the bound should be feasible")
	}

	// No bound terms at all means everything is feasible.
	free := NewPlayerCost("P2")
	free.AddStateCost(NewQuadratic("state", 1.0, []int{0}, nil))
	if !free.Feasible(x) {
		t.Error("a cost without bound terms should accept any state")
	}
}

package solver

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/game"
)

// scalarApprox builds a one-player scalar LQ game: x' = a*x + b*u with
// running cost 0.5*(q*x^2 + r*u^2) and terminal cost 0.5*qT*x^2 + lT*x.
func scalarApprox(horizon int, a, b, q, r, qT, lT float64) ([]game.LinearizedDynamics, [][]*game.Quadratic) {
	lin := make([]game.LinearizedDynamics, horizon)
	for k := range lin {
		lin[k] = game.LinearizedDynamics{
			A:  mat.NewDense(1, 1, []float64{a}),
			Bs: []*mat.Dense{mat.NewDense(1, 1, []float64{b})},
		}
	}

	quads := make([][]*game.Quadratic, 1)
	quads[0] = make([]*game.Quadratic, horizon+1)
	for k := 0; k <= horizon; k++ {
		quad := game.NewQuadratic(1, []int{1})
		if k < horizon {
			quad.Qx.Set(0, 0, q)
			quad.Qus[0].Set(0, 0, r)
		} else {
			quad.Qx.Set(0, 0, qT)
			quad.Lx.SetVec(0, lT)
		}
		quads[0][k] = quad
	}
	return lin, quads
}

// A single-step scalar problem has a closed-form solution:
//
//	P = (r + b*qT*b)^-1 * b*qT*a
//	alpha = (r + b*qT*b)^-1 * b*lT
func TestLQSingleStepClosedForm(t *testing.T) {
	const (
		a, b  = 2.0, 1.0
		r, qT = 1.0, 3.0
		lT    = 1.0
	)
	lq := newLQSolver(1, []int{1}, 1, DefaultMaxConditionNumber)
	lin, quads := scalarApprox(1, a, b, 0, r, qT, lT)

	strategies, err := lq.solve(lin, quads)
	if err != nil {
		t.Fatal(err)
	}

	denom := r + b*qT*b
	wantP := b * qT * a / denom
	wantAlpha := b * lT / denom

	if got := strategies[0].Ps[0].At(0, 0); math.Abs(got-wantP) > 1e-12 {
		t.Errorf("gain: expected %f, got %f", wantP, got)
	}
	if got := strategies[0].Alphas[0].AtVec(0); math.Abs(got-wantAlpha) > 1e-12 {
		t.Errorf("feedforward: expected %f, got %f", wantAlpha, got)
	}
}

// With one player the coupled recursion must reduce to discrete-time LQR.
// The reference gains come from the standard scalar Riccati recursion.
func TestLQMatchesScalarRiccati(t *testing.T) {
	const (
		horizon = 20
		a, b    = 1.1, 0.3
		q, r    = 0.7, 0.2
		qT      = 2.0
	)
	lq := newLQSolver(1, []int{1}, horizon, DefaultMaxConditionNumber)
	lin, quads := scalarApprox(horizon, a, b, q, r, qT, 0)

	strategies, err := lq.solve(lin, quads)
	if err != nil {
		t.Fatal(err)
	}

	z := qT
	for k := horizon - 1; k >= 0; k-- {
		p := b * z * a / (r + b*z*b)
		f := a - b*p
		z = f*z*f + q + p*r*p

		if got := strategies[0].Ps[k].At(0, 0); math.Abs(got-p) > 1e-9 {
			t.Fatalf("gain at timestep %d: expected %f, got %f", k, p, got)
		}
		if got := strategies[0].Alphas[k].AtVec(0); math.Abs(got) > 1e-12 {
			t.Fatalf("feedforward at timestep %d should vanish without linear cost, got %g", k, got)
		}
	}
}

func TestLQSingularSystem(t *testing.T) {
	// Zero control penalty and zero terminal cost make the coupling matrix
	// exactly singular at the last timestep.
	lq := newLQSolver(1, []int{1}, 1, DefaultMaxConditionNumber)
	lin, quads := scalarApprox(1, 1, 1, 0, 0, 0, 0)

	_, err := lq.solve(lin, quads)
	if err == nil {
		t.Fatal("expected an error for a singular coupling matrix")
	}
	if !errors.Is(err, ErrNumericalFailure) {
		t.Errorf("expected ErrNumericalFailure, got %v", err)
	}
}

func TestLQIllConditionedSystem(t *testing.T) {
	// A tiny control penalty against a huge terminal cost pushes the
	// condition number over a tight threshold.
	lq := newLQSolver(2, []int{2}, 1, 1e3)

	lin := []game.LinearizedDynamics{{
		A:  mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		Bs: []*mat.Dense{mat.NewDense(2, 2, []float64{1, 0, 0, 1})},
	}}
	quads := [][]*game.Quadratic{{
		game.NewQuadratic(2, []int{2}),
		game.NewQuadratic(2, []int{2}),
	}}
	quads[0][0].Qus[0].Set(0, 0, 1e-9)
	quads[0][0].Qus[0].Set(1, 1, 1)
	quads[0][1].Qx.Set(0, 0, 1e-9)
	quads[0][1].Qx.Set(1, 1, 1e6)

	_, err := lq.solve(lin, quads)
	if err == nil {
		t.Fatal("expected an error for an ill-conditioned coupling matrix")
	}
	if !errors.Is(err, ErrNumericalFailure) {
		t.Errorf("expected ErrNumericalFailure, got %v", err)
	}
}

// Two identical decoupled players must receive identical strategies; the
// coupling matrix is block-diagonal when B_1 and B_2 touch disjoint state
// blocks and the costs are symmetric.
func TestLQSymmetricPlayers(t *testing.T) {
	const horizon = 5

	lin := make([]game.LinearizedDynamics, horizon)
	for k := range lin {
		lin[k] = game.LinearizedDynamics{
			A: mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
			Bs: []*mat.Dense{
				mat.NewDense(2, 1, []float64{0.1, 0}),
				mat.NewDense(2, 1, []float64{0, 0.1}),
			},
		}
	}

	quads := make([][]*game.Quadratic, 2)
	for i := range quads {
		quads[i] = make([]*game.Quadratic, horizon+1)
		for k := 0; k <= horizon; k++ {
			quad := game.NewQuadratic(2, []int{1, 1})
			quad.Qx.Set(i, i, 1)
			quad.Lx.SetVec(i, 0.5)
			if k < horizon {
				quad.Qus[i].Set(0, 0, 0.1)
			}
			quads[i][k] = quad
		}
	}

	lq := newLQSolver(2, []int{1, 1}, horizon, DefaultMaxConditionNumber)
	strategies, err := lq.solve(lin, quads)
	if err != nil {
		t.Fatal(err)
	}

	for k := 0; k < horizon; k++ {
		p1 := strategies[0].Ps[k].At(0, 0)
		p2 := strategies[1].Ps[k].At(0, 1)
		if math.Abs(p1-p2) > 1e-12 {
			t.Errorf("timestep %d: symmetric players got gains %f and %f", k, p1, p2)
		}
		a1 := strategies[0].Alphas[k].AtVec(0)
		a2 := strategies[1].Alphas[k].AtVec(0)
		if math.Abs(a1-a2) > 1e-12 {
			t.Errorf("timestep %d: symmetric players got feedforwards %f and %f", k, a1, a2)
		}
	}
}

package scenario

import (
	"context"
	"math"
	"testing"

	"github.com/tmn-dev/ilqgame/internal/config"
	"github.com/tmn-dev/ilqgame/internal/dynamics"
	"github.com/tmn-dev/ilqgame/internal/solver"
)

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry()
	names := reg.Names()
	if len(names) != 3 {
		t.Fatalf("expected 3 scenarios, got %d: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i] < names[i-1] {
			t.Fatal("names should come back sorted")
		}
	}
}

func TestRegistryUnknownScenario(t *testing.T) {
	if _, err := NewRegistry().Build("nope", config.DefaultConfig()); err == nil {
		t.Error("expected an error for an unknown scenario")
	}
}

func TestBuildAllScenarios(t *testing.T) {
	reg := NewRegistry()
	cfg := config.DefaultConfig()

	for _, name := range reg.Names() {
		prob, err := reg.Build(name, cfg)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if prob.Name != name {
			t.Errorf("%s: problem reports name %q", name, prob.Name)
		}
		if prob.Dynamics == nil || prob.X0 == nil {
			t.Fatalf("%s: incomplete problem", name)
		}
		if len(prob.Costs) != prob.Dynamics.NumPlayers() {
			t.Errorf("%s: %d costs for %d players", name, len(prob.Costs), prob.Dynamics.NumPlayers())
		}
		if prob.X0.Len() != prob.Dynamics.XDim() {
			t.Errorf("%s: initial state dimension mismatch", name)
		}
		if prob.Horizon != cfg.Horizon {
			t.Errorf("%s: horizon should come from config", name)
		}

		// Every built problem must pass solver construction.
		if _, err := prob.NewSolver(cfg.Solver); err != nil {
			t.Errorf("%s: solver rejected the problem: %v", name, err)
		}
	}
}

func TestInitStateOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.InitState = []float64{5, 5, 0, 1}

	prob, err := OnePlayerReach(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if prob.X0.AtVec(0) != 5 || prob.X0.AtVec(3) != 1 {
		t.Error("config initial state should override the built-in default")
	}

	// A wrong-length override is ignored rather than breaking the problem.
	cfg.InitState = []float64{1, 2}
	prob, err = OnePlayerReach(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if prob.X0.Len() != 4 {
		t.Error("mismatched initial state should fall back to the default")
	}
}

func TestWeightsReachCosts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Weights["proximity"] = 0.0

	prob, err := TwoPlayerIntersection(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// With the coupling weight zeroed the players ignore each other; the
	// proximity term contributes nothing even when they overlap.
	x := prob.X0
	x.SetVec(4, x.AtVec(0))
	x.SetVec(5, x.AtVec(1))
	c0 := prob.Costs[0].Evaluate(0, x, nil)

	cfg.Weights["proximity"] = 1000.0
	hot, err := TwoPlayerIntersection(cfg)
	if err != nil {
		t.Fatal(err)
	}
	x2 := hot.X0
	x2.SetVec(4, x2.AtVec(0))
	x2.SetVec(5, x2.AtVec(1))
	c1 := hot.Costs[0].Evaluate(0, x2, nil)

	if c1 <= c0 {
		t.Errorf("raising the proximity weight should raise the overlap cost: %f vs %f", c0, c1)
	}
}

// The reachability benchmark has to work end to end with its default
// constants: converge inside the iteration budget and actually deliver the
// car into the goal circle, with the turning rate held inside its bounds.
func TestOnePlayerReachSolves(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Solver.MaxIterations = 50

	prob, err := OnePlayerReach(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s, err := prob.NewSolver(cfg.Solver)
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Solve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != solver.StatusConverged {
		t.Fatalf("expected convergence within %d iterations, got %v after %d",
			cfg.Solver.MaxIterations, res.Status, res.Iterations)
	}

	term := res.Op.Xs[res.Op.Horizon()]
	d := math.Hypot(term.AtVec(dynamics.DelayedDubinsPxIdx), term.AtVec(dynamics.DelayedDubinsPyIdx))
	if d > prob.GoalRadius+0.15 {
		t.Errorf("terminal position (%f, %f) is %f from the goal, want inside radius %f",
			term.AtVec(dynamics.DelayedDubinsPxIdx), term.AtVec(dynamics.DelayedDubinsPyIdx),
			d, prob.GoalRadius)
	}

	// Accepted rollouts respect the turning-rate bounds.
	for k, x := range res.Op.Xs {
		if w := x.AtVec(dynamics.DelayedDubinsOmegaIdx); w > 1.0 || w < -1.0 {
			t.Errorf("timestep %d: turning rate %f escaped its bounds", k, w)
		}
	}
}

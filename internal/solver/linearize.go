package solver

import (
	"fmt"
	"sync"

	"github.com/tmn-dev/ilqgame/internal/game"
)

// approximation holds one outer iteration's local model: dynamics Jacobians
// for timesteps 0..horizon-1 and quadraticized costs for 0..horizon
// (terminal state cost included). Rebuilt from scratch every iteration.
type approximation struct {
	lin   []game.LinearizedDynamics
	quads [][]*game.Quadratic // [player][timestep]
}

func newApproximation(horizon int, xdim int, udims []int) *approximation {
	a := &approximation{
		lin:   make([]game.LinearizedDynamics, horizon),
		quads: make([][]*game.Quadratic, len(udims)),
	}
	for i := range a.quads {
		a.quads[i] = make([]*game.Quadratic, horizon+1)
		for k := range a.quads[i] {
			a.quads[i][k] = game.NewQuadratic(xdim, udims)
		}
	}
	return a
}

// parallelFor splits [0, n) across at most workers goroutines and waits for
// all of them. Chunks are contiguous so each worker touches a disjoint
// timestep range.
func parallelFor(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// linearize fills dst with Jacobians and cost quadraticizations about op.
// Work is independent per timestep and per player; it runs on a bounded
// worker pool and everything completes (full barrier) before the coupled
// solve consumes the result.
func (s *Solver) linearize(op *game.OperatingPoint, dst *approximation) error {
	horizon := op.Horizon()
	dt := s.dyn.TimeStep()

	var mu sync.Mutex
	var firstErr error
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	parallelFor(horizon+1, s.params.Workers, func(start, end int) {
		for k := start; k < end; k++ {
			t := op.Time(k, dt)

			if k < horizon {
				controls := op.ControlsAt(k)
				A, Bs := s.dyn.Jacobians(op.Xs[k], controls)
				dst.lin[k] = game.LinearizedDynamics{A: A, Bs: Bs}
				if !dst.lin[k].IsFinite() {
					record(fmt.Errorf("%w: dynamics Jacobians at timestep %d", ErrNonFinite, k))
					return
				}
				for i, c := range s.costs {
					c.Quadraticize(t, op.Xs[k], controls, dst.quads[i][k])
					if !dst.quads[i][k].IsFinite() {
						record(fmt.Errorf("%w: cost %q at timestep %d", ErrNonFinite, c.Name(), k))
						return
					}
				}
			} else {
				for i, c := range s.costs {
					c.Quadraticize(t, op.Xs[k], nil, dst.quads[i][k])
					if !dst.quads[i][k].IsFinite() {
						record(fmt.Errorf("%w: terminal cost %q", ErrNonFinite, c.Name()))
						return
					}
				}
			}
		}
	})

	return firstErr
}

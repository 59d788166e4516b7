package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/game"
)

// lqSolver computes a feedback Nash equilibrium of a time-varying
// multi-player LQ game by backward recursion, following Basar and Olsder
// (Corollary 6.1). Unlike single-agent LQR the per-step gains of all
// players are coupled: at each timestep one dense linear system is
// assembled whose unknowns are every player's gain rows stacked together.
//
// Strategy storage is arena-backed: one contiguous primal buffer is
// allocated at construction and viewed through game.StrategyRef per player,
// so the recursion allocates no per-step strategy memory. The arena is
// reused across outer iterations; callers receive owned copies.
type lqSolver struct {
	xdim      int
	udims     []int
	uoffsets  []int
	totalUDim int
	horizon   int
	maxCond   float64

	arena []float64
	refs  []*game.StrategyRef

	// Scratch reused every timestep.
	s      *mat.Dense    // coupling matrix, totalUDim square
	yp     *mat.Dense    // gain right-hand side, totalUDim by xdim
	ya     *mat.VecDense // feedforward right-hand side
	pStack *mat.Dense
	aStack *mat.VecDense
	f      *mat.Dense
	beta   *mat.VecDense

	zs    []*mat.Dense    // per-player value matrices
	zetas []*mat.VecDense // per-player value vectors
}

func newLQSolver(xdim int, udims []int, horizon int, maxCond float64) *lqSolver {
	lq := &lqSolver{
		xdim:     xdim,
		udims:    append([]int(nil), udims...),
		uoffsets: make([]int, len(udims)),
		horizon:  horizon,
		maxCond:  maxCond,
	}
	for i, ud := range udims {
		lq.uoffsets[i] = lq.totalUDim
		lq.totalUDim += ud
	}

	arenaSize := 0
	for _, ud := range udims {
		arenaSize += horizon * (ud*xdim + ud)
	}
	lq.arena = make([]float64, arenaSize)
	lq.refs = make([]*game.StrategyRef, len(udims))
	offset := 0
	for i, ud := range udims {
		lq.refs[i], offset = game.NewStrategyRef(horizon, xdim, ud, lq.arena, offset)
	}

	lq.s = mat.NewDense(lq.totalUDim, lq.totalUDim, nil)
	lq.yp = mat.NewDense(lq.totalUDim, xdim, nil)
	lq.ya = mat.NewVecDense(lq.totalUDim, nil)
	lq.pStack = mat.NewDense(lq.totalUDim, xdim, nil)
	lq.aStack = mat.NewVecDense(lq.totalUDim, nil)
	lq.f = mat.NewDense(xdim, xdim, nil)
	lq.beta = mat.NewVecDense(xdim, nil)

	lq.zs = make([]*mat.Dense, len(udims))
	lq.zetas = make([]*mat.VecDense, len(udims))
	for i := range udims {
		lq.zs[i] = mat.NewDense(xdim, xdim, nil)
		lq.zetas[i] = mat.NewVecDense(xdim, nil)
	}
	return lq
}

// solve runs the backward recursion over the linearized dynamics and
// quadraticized costs (quads indexed [player][timestep], timestep running
// to horizon inclusive for the terminal state cost). It returns one owned
// strategy per player, in deviation coordinates: delta_u = -P*dx - alpha.
func (lq *lqSolver) solve(lin []game.LinearizedDynamics, quads [][]*game.Quadratic) ([]*game.Strategy, error) {
	n := len(lq.udims)

	// Terminal condition: value is the terminal state cost.
	for i := 0; i < n; i++ {
		lq.zs[i].Copy(quads[i][lq.horizon].Qx)
		lq.zetas[i].CopyVec(quads[i][lq.horizon].Lx)
	}

	for k := lq.horizon - 1; k >= 0; k-- {
		A := lin[k].A
		Bs := lin[k].Bs

		// Assemble the coupling system. Block row i stacks player i's
		// first-order condition: (R_ii + B_i^T Z_i B_i) du_i
		// + sum_{j != i} B_i^T Z_i B_j du_j = -(B_i^T Z_i A dx + B_i^T zeta_i + r_ii).
		for i := 0; i < n; i++ {
			btz := mat.NewDense(lq.udims[i], lq.xdim, nil)
			btz.Mul(Bs[i].T(), lq.zs[i])

			for j := 0; j < n; j++ {
				block := lq.s.Slice(lq.uoffsets[i], lq.uoffsets[i]+lq.udims[i],
					lq.uoffsets[j], lq.uoffsets[j]+lq.udims[j]).(*mat.Dense)
				block.Mul(btz, Bs[j])
				if i == j {
					block.Add(block, quads[i][k].Qus[i])
				}
			}

			ypBlock := lq.yp.Slice(lq.uoffsets[i], lq.uoffsets[i]+lq.udims[i], 0, lq.xdim).(*mat.Dense)
			ypBlock.Mul(btz, A)

			yaBlock := lq.ya.SliceVec(lq.uoffsets[i], lq.uoffsets[i]+lq.udims[i]).(*mat.VecDense)
			yaBlock.MulVec(Bs[i].T(), lq.zetas[i])
			yaBlock.AddVec(yaBlock, quads[i][k].Lus[i])
		}

		var lu mat.LU
		lu.Factorize(lq.s)
		cond := lu.Cond()
		if math.IsNaN(cond) || cond > lq.maxCond {
			return nil, fmt.Errorf("%w: timestep %d condition number %.3g", ErrNumericalFailure, k, cond)
		}
		if err := lu.SolveTo(lq.pStack, false, lq.yp); err != nil {
			return nil, fmt.Errorf("%w: timestep %d gains: %v", ErrNumericalFailure, k, err)
		}
		if err := lu.SolveVecTo(lq.aStack, false, lq.ya); err != nil {
			return nil, fmt.Errorf("%w: timestep %d feedforwards: %v", ErrNumericalFailure, k, err)
		}

		for i := 0; i < n; i++ {
			lq.refs[i].Ps[k].Copy(lq.pStack.Slice(lq.uoffsets[i], lq.uoffsets[i]+lq.udims[i], 0, lq.xdim))
			lq.refs[i].Alphas[k].CopyVec(lq.aStack.SliceVec(lq.uoffsets[i], lq.uoffsets[i]+lq.udims[i]))
		}

		// Closed-loop dynamics under the freshly solved profile:
		// F = A - sum_j B_j P_j, beta = -sum_j B_j alpha_j.
		lq.f.Copy(A)
		lq.beta.Zero()
		tmp := mat.NewDense(lq.xdim, lq.xdim, nil)
		tmpV := mat.NewVecDense(lq.xdim, nil)
		for j := 0; j < n; j++ {
			tmp.Mul(Bs[j], lq.refs[j].Ps[k])
			lq.f.Sub(lq.f, tmp)
			tmpV.MulVec(Bs[j], lq.refs[j].Alphas[k])
			lq.beta.SubVec(lq.beta, tmpV)
		}

		// Propagate each player's value backward through the closed loop:
		//   zeta_i <- F^T (zeta_i + Z_i beta) + l_i + sum_j P_j^T (R_ij alpha_j + r_ij)
		//   Z_i    <- F^T Z_i F + Q_i + sum_j P_j^T R_ij P_j
		// Cross control blocks R_ij are zero unless player i's cost
		// penalizes player j's control.
		for i := 0; i < n; i++ {
			newZeta := mat.NewVecDense(lq.xdim, nil)
			tmpV.MulVec(lq.zs[i], lq.beta)
			tmpV.AddVec(tmpV, lq.zetas[i])
			newZeta.MulVec(lq.f.T(), tmpV)
			newZeta.AddVec(newZeta, quads[i][k].Lx)

			newZ := mat.NewDense(lq.xdim, lq.xdim, nil)
			tmp.Mul(lq.zs[i], lq.f)
			newZ.Mul(lq.f.T(), tmp)
			newZ.Add(newZ, quads[i][k].Qx)

			for j := 0; j < n; j++ {
				rij := quads[i][k].Qus[j]

				w := mat.NewVecDense(lq.udims[j], nil)
				w.MulVec(rij, lq.refs[j].Alphas[k])
				w.AddVec(w, quads[i][k].Lus[j])
				pw := mat.NewVecDense(lq.xdim, nil)
				pw.MulVec(lq.refs[j].Ps[k].T(), w)
				newZeta.AddVec(newZeta, pw)

				pr := mat.NewDense(lq.xdim, lq.udims[j], nil)
				pr.Mul(lq.refs[j].Ps[k].T(), rij)
				prp := mat.NewDense(lq.xdim, lq.xdim, nil)
				prp.Mul(pr, lq.refs[j].Ps[k])
				newZ.Add(newZ, prp)
			}

			lq.zetas[i].CopyVec(newZeta)
			lq.zs[i].Copy(newZ)
		}
	}

	// Hand back owned copies; the arena is recycled next iteration.
	strategies := make([]*game.Strategy, n)
	for i := 0; i < n; i++ {
		s := game.NewStrategy(lq.horizon, lq.xdim, lq.udims[i])
		for k := 0; k < lq.horizon; k++ {
			s.Ps[k].Copy(lq.refs[i].Ps[k])
			s.Alphas[k].CopyVec(lq.refs[i].Alphas[k])
		}
		if !s.IsFinite() {
			return nil, fmt.Errorf("%w: player %d strategy", ErrNonFinite, i)
		}
		strategies[i] = s
	}
	return strategies, nil
}

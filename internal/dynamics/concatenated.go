package dynamics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tmn-dev/ilqgame/internal/game"
	"github.com/tmn-dev/ilqgame/internal/integrators"
)

// Concatenated stacks single-player models into one joint system and
// implements game.Dynamics. Players are physically decoupled; they interact
// only through each other's state appearing in the costs.
//
// Step integrates the continuous joint field over one timestep with the
// configured integrator. Jacobians discretizes the analytic continuous
// Jacobians with a forward-Euler map, A = I + dt*df/dx and B_i = dt*df/du_i,
// matching the first-order model the LQ approximation assumes.
type Concatenated struct {
	players    []SinglePlayer
	offsets    []int // start of each player's state block
	xdim       int
	dt         float64
	integrator integrators.Integrator
}

// NewConcatenated builds the joint system. A nil integrator defaults to
// forward Euler.
func NewConcatenated(players []SinglePlayer, dt float64, integ integrators.Integrator) (*Concatenated, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("dynamics: need at least one player")
	}
	if dt <= 0 {
		return nil, fmt.Errorf("dynamics: timestep must be positive, got %f", dt)
	}
	if integ == nil {
		integ = integrators.NewEuler()
	}

	c := &Concatenated{
		players:    players,
		offsets:    make([]int, len(players)),
		dt:         dt,
		integrator: integ,
	}
	for i, p := range players {
		c.offsets[i] = c.xdim
		c.xdim += p.XDim()
	}
	return c, nil
}

func (c *Concatenated) XDim() int         { return c.xdim }
func (c *Concatenated) NumPlayers() int   { return len(c.players) }
func (c *Concatenated) TimeStep() float64 { return c.dt }

func (c *Concatenated) UDim(p game.PlayerIndex) int {
	return c.players[p].UDim()
}

// StateOffset returns where player p's state block begins in the joint
// state, for wiring cost terms to joint dimensions.
func (c *Concatenated) StateOffset(p game.PlayerIndex) int {
	return c.offsets[p]
}

func (c *Concatenated) derive(x *mat.VecDense, us []*mat.VecDense) *mat.VecDense {
	dx := mat.NewVecDense(c.xdim, nil)
	for i, p := range c.players {
		block := x.SliceVec(c.offsets[i], c.offsets[i]+p.XDim()).(*mat.VecDense)
		d := p.Derive(block, us[i])
		for r := 0; r < p.XDim(); r++ {
			dx.SetVec(c.offsets[i]+r, d.AtVec(r))
		}
	}
	return dx
}

func (c *Concatenated) Step(x *mat.VecDense, us []*mat.VecDense) *mat.VecDense {
	field := func(t float64, y *mat.VecDense) *mat.VecDense {
		return c.derive(y, us)
	}
	return c.integrator.Step(field, x, 0, c.dt)
}

func (c *Concatenated) Jacobians(x *mat.VecDense, us []*mat.VecDense) (*mat.Dense, []*mat.Dense) {
	A := mat.NewDense(c.xdim, c.xdim, nil)
	for d := 0; d < c.xdim; d++ {
		A.Set(d, d, 1)
	}

	Bs := make([]*mat.Dense, len(c.players))
	for i, p := range c.players {
		block := x.SliceVec(c.offsets[i], c.offsets[i]+p.XDim()).(*mat.VecDense)
		dfdx, dfdu := p.Linearize(block, us[i])

		for r := 0; r < p.XDim(); r++ {
			for cc := 0; cc < p.XDim(); cc++ {
				A.Set(c.offsets[i]+r, c.offsets[i]+cc,
					A.At(c.offsets[i]+r, c.offsets[i]+cc)+c.dt*dfdx.At(r, cc))
			}
		}

		B := mat.NewDense(c.xdim, p.UDim(), nil)
		for r := 0; r < p.XDim(); r++ {
			for cc := 0; cc < p.UDim(); cc++ {
				B.Set(c.offsets[i]+r, cc, c.dt*dfdu.At(r, cc))
			}
		}
		Bs[i] = B
	}
	return A, Bs
}

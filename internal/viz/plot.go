// Package viz renders solver output in the terminal: braille-canvas
// trajectory plots, asciigraph convergence curves, and a bubbletea viewer
// that replays the solve iteration by iteration.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/tmn-dev/ilqgame/internal/dynamics"
	"github.com/tmn-dev/ilqgame/internal/game"
	"github.com/tmn-dev/ilqgame/internal/scenario"
	"github.com/tmn-dev/ilqgame/internal/solver"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

// CostCurve renders the per-iteration total cost as a terminal graph.
func CostCurve(costs []float64, height int) string {
	if len(costs) < 2 {
		return ""
	}
	return graphStyle.Render(asciigraph.Plot(costs,
		asciigraph.Height(height),
		asciigraph.Caption("total cost per iteration")))
}

// Report renders a styled summary of a finished solve.
func Report(prob *scenario.Problem, res *solver.Result) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(prob.Name) + "\n\n")

	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	line("status", res.Status.String())
	line("iterations", fmt.Sprintf("%d", res.Iterations))
	line("total cost", fmt.Sprintf("%.6g", res.TotalCost))
	for i, pc := range res.PlayerCosts {
		line(fmt.Sprintf("player %d cost", i+1), fmt.Sprintf("%.6g", pc))
	}
	if res.Status == solver.StatusMaxIterations {
		b.WriteString(warnStyle.Render("did not fully converge") + "\n")
	}

	if curve := CostCurve(res.Log.TotalCosts(), 8); curve != "" {
		b.WriteString(curve + "\n")
	}
	return b.String()
}

// TrajectoryPlot renders every player's path on one canvas, plus the goal
// circle when the problem defines one.
func TrajectoryPlot(prob *scenario.Problem, res *solver.Result, width, height int) string {
	xIdxs, yIdxs := positionDims(prob)
	if len(xIdxs) == 0 {
		return ""
	}

	c := NewCanvas(width, height)
	c.FitTrajectories(res.Op, xIdxs, yIdxs)
	if prob.GoalRadius > 0 {
		c.DrawCircle(prob.GoalX, prob.GoalY, prob.GoalRadius)
	}
	for p := range xIdxs {
		c.DrawTrajectory(res.Op, xIdxs[p], yIdxs[p])
	}
	return c.String()
}

// positionDims assumes every shipped model keeps planar position in its
// first two block dimensions, which holds for all registered scenarios.
func positionDims(prob *scenario.Problem) (xIdxs, yIdxs []int) {
	c, ok := prob.Dynamics.(*dynamics.Concatenated)
	if !ok {
		return []int{0}, []int{1}
	}
	for p := 0; p < c.NumPlayers(); p++ {
		off := c.StateOffset(game.PlayerIndex(p))
		xIdxs = append(xIdxs, off)
		yIdxs = append(yIdxs, off+1)
	}
	return xIdxs, yIdxs
}

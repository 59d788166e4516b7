package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tmn-dev/ilqgame/internal/scenario"
	"github.com/tmn-dev/ilqgame/internal/solver"
)

const (
	replayCanvasWidth  = 60
	replayCanvasHeight = 18
	replayFrameTime    = 300 * time.Millisecond
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(0, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).Width(40)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

// ReplayModel steps through the solver log iteration by iteration, drawing
// each recorded operating point so the trajectory can be watched bending
// toward the equilibrium.
type ReplayModel struct {
	prob    *scenario.Problem
	log     *solver.Log
	idx     int
	playing bool
}

func NewReplay(prob *scenario.Problem, log *solver.Log) ReplayModel {
	return ReplayModel{prob: prob, log: log, playing: true}
}

func (m ReplayModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(replayFrameTime, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.playing = false
			if m.idx > 0 {
				m.idx--
			}
		case "right", "l":
			m.playing = false
			if m.idx < m.log.Len()-1 {
				m.idx++
			}
		case " ":
			m.playing = !m.playing
			if m.playing {
				return m, tick()
			}
		case "r":
			m.idx = 0
		}
	case tickMsg:
		if !m.playing {
			return m, nil
		}
		if m.idx < m.log.Len()-1 {
			m.idx++
		} else {
			m.playing = false
		}
		return m, tick()
	}
	return m, nil
}

func (m ReplayModel) View() string {
	if m.log.Len() == 0 {
		return "empty solver log\n"
	}
	e := m.log.At(m.idx)

	xIdxs, yIdxs := positionDims(m.prob)
	c := NewCanvas(replayCanvasWidth, replayCanvasHeight)

	// Fit to the final iterate so the frame does not jump around.
	last, _ := m.log.Last()
	c.FitTrajectories(last.Op, xIdxs, yIdxs)
	if m.prob.GoalRadius > 0 {
		c.DrawCircle(m.prob.GoalX, m.prob.GoalY, m.prob.GoalRadius)
	}
	for p := range xIdxs {
		c.DrawTrajectory(e.Op, xIdxs[p], yIdxs[p])
	}

	var stats strings.Builder
	stats.WriteString(headerStyle.Render(m.prob.Name) + "\n\n")
	row := func(label, value string) {
		stats.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("iteration", fmt.Sprintf("%d / %d", e.Iteration, m.log.Len()-1))
	row("total cost", fmt.Sprintf("%.6g", e.TotalCost))
	row("step scale", fmt.Sprintf("%.3g", e.StepScale))
	for i, pc := range e.PlayerCosts {
		row(fmt.Sprintf("player %d", i+1), fmt.Sprintf("%.6g", pc))
	}
	if curve := CostCurve(m.log.TotalCosts()[:m.idx+1], 6); curve != "" {
		stats.WriteString(curve)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(c.String()),
		statsStyle.Render(stats.String()))

	return body + helpStyle.Render("\n  space play/pause · ←/→ step · r restart · q quit\n")
}

// RunReplay opens the interactive replay viewer for a finished solve.
func RunReplay(prob *scenario.Problem, res *solver.Result) error {
	p := tea.NewProgram(NewReplay(prob, res.Log))
	_, err := p.Run()
	return err
}

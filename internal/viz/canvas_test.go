package viz

import (
	"strings"
	"testing"

	"github.com/tmn-dev/ilqgame/internal/dynamics"
	"github.com/tmn-dev/ilqgame/internal/game"
)

func TestNewCanvasBlank(t *testing.T) {
	c := NewCanvas(10, 4)
	out := c.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for _, line := range lines {
		for _, r := range line {
			if r != 0x2800 {
				t.Fatal("fresh canvas should be all blank braille cells")
			}
		}
	}
}

func TestSetLightsPixels(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	if c.Grid[0][0] == 0x2800 {
		t.Error("setting a pixel should mark its cell")
	}

	// Out-of-range pixels are ignored rather than panicking.
	c.Set(-1, 0)
	c.Set(0, -1)
	c.Set(1000, 1000)
}

func TestClear(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(1, 1)
	c.Clear()
	if c.Grid[0][0] != 0x2800 {
		t.Error("clear should blank every cell")
	}
}

func TestSetBoundsRejectsDegenerate(t *testing.T) {
	c := NewCanvas(4, 2)
	c.SetBounds(0, 10, 0, 10)
	if c.minX != 0 || c.maxX != 10 {
		t.Error("valid bounds should be accepted")
	}
	c.SetBounds(5, 5, 10, 0)
	if c.minX != 0 || c.maxX != 10 {
		t.Error("degenerate bounds should leave the transform unchanged")
	}
}

func TestWorldTransformYFlip(t *testing.T) {
	c := NewCanvas(10, 10)
	c.SetBounds(0, 1, 0, 1)

	_, lowY := c.toPixel(0.5, 0)
	_, highY := c.toPixel(0.5, 1)
	if highY >= lowY {
		t.Errorf("larger world y should map to a smaller pixel row, got %d vs %d", highY, lowY)
	}
}

func TestDrawTrajectoryMarksCanvas(t *testing.T) {
	dyn, err := dynamics.NewConcatenated([]dynamics.SinglePlayer{dynamics.NewPointMass2D()}, 0.1, nil)
	if err != nil {
		t.Fatal(err)
	}
	op := game.NewOperatingPoint(10, dyn, 0)
	for k := range op.Xs {
		op.Xs[k].SetVec(0, float64(k))
		op.Xs[k].SetVec(1, float64(k))
	}

	c := NewCanvas(20, 10)
	c.FitTrajectories(op, []int{0}, []int{1})
	c.DrawTrajectory(op, 0, 1)

	lit := 0
	for _, row := range c.Grid {
		for _, cell := range row {
			if cell != 0x2800 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("drawing a trajectory should light cells")
	}
}

func TestFitTrajectoriesDegeneratePoint(t *testing.T) {
	dyn, err := dynamics.NewConcatenated([]dynamics.SinglePlayer{dynamics.NewPointMass2D()}, 0.1, nil)
	if err != nil {
		t.Fatal(err)
	}
	op := game.NewOperatingPoint(3, dyn, 0)

	// All states at the origin: bounds must still be non-degenerate.
	c := NewCanvas(10, 10)
	c.FitTrajectories(op, []int{0}, []int{1})
	if c.maxX <= c.minX || c.maxY <= c.minY {
		t.Error("fitting a single point should fall back to a unit margin")
	}
	c.DrawTrajectory(op, 0, 1)
}

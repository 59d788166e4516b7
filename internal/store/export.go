package store

import (
	"encoding/json"
	"os"

	"github.com/tmn-dev/ilqgame/internal/solver"
)

// ExportData is the flat JSON form of a solved run for external tooling.
type ExportData struct {
	Scenario       string        `json:"scenario"`
	Dt             float64       `json:"dt"`
	Horizon        int           `json:"horizon"`
	Status         string        `json:"status"`
	Iterations     int           `json:"iterations"`
	TotalCost      float64       `json:"total_cost"`
	PlayerCosts    []float64     `json:"player_costs"`
	IterationCosts []float64     `json:"iteration_costs"`
	States         [][]float64   `json:"states"`
	Controls       [][][]float64 `json:"controls"`
}

func buildExport(scenario string, dt float64, res *solver.Result) ExportData {
	op := res.Op
	data := ExportData{
		Scenario:       scenario,
		Dt:             dt,
		Horizon:        op.Horizon(),
		Status:         res.Status.String(),
		Iterations:     res.Iterations,
		TotalCost:      res.TotalCost,
		PlayerCosts:    res.PlayerCosts,
		IterationCosts: res.Log.TotalCosts(),
		States:         make([][]float64, len(op.Xs)),
		Controls:       make([][][]float64, len(op.Us)),
	}
	for k, x := range op.Xs {
		row := make([]float64, x.Len())
		for d := range row {
			row[d] = x.AtVec(d)
		}
		data.States[k] = row
	}
	for i := range op.Us {
		data.Controls[i] = make([][]float64, len(op.Us[i]))
		for k, u := range op.Us[i] {
			row := make([]float64, u.Len())
			for d := range row {
				row[d] = u.AtVec(d)
			}
			data.Controls[i][k] = row
		}
	}
	return data
}

// ExportJSON writes a run to path, or to stdout when path is empty.
func ExportJSON(path, scenario string, dt float64, res *solver.Result) error {
	data := buildExport(scenario, dt, res)

	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

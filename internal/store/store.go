// Package store persists solver runs: metadata, the final trajectory, and
// the per-iteration cost history, one directory per run.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/tmn-dev/ilqgame/internal/solver"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Scenario    string    `json:"scenario"`
	Timestamp   time.Time `json:"timestamp"`
	Dt          float64   `json:"dt"`
	Horizon     int       `json:"horizon"`
	Status      string    `json:"status"`
	Iterations  int       `json:"iterations"`
	TotalCost   float64   `json:"total_cost"`
	PlayerCosts []float64 `json:"player_costs"`
}

// Save writes one run directory and returns its ID.
func (s *Store) Save(scenario string, dt float64, res *solver.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    scenario,
		Timestamp:   time.Now(),
		Dt:          dt,
		Horizon:     res.Op.Horizon(),
		Status:      res.Status.String(),
		Iterations:  res.Iterations,
		TotalCost:   res.TotalCost,
		PlayerCosts: res.PlayerCosts,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := s.writeTrajectory(filepath.Join(runDir, "trajectory.csv"), dt, res); err != nil {
		return "", err
	}
	if err := s.writeCosts(filepath.Join(runDir, "costs.csv"), res); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) writeTrajectory(path string, dt float64, res *solver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	op := res.Op
	header := []string{"t"}
	for d := 0; d < op.Xs[0].Len(); d++ {
		header = append(header, "x"+strconv.Itoa(d))
	}
	for i := range op.Us {
		for d := 0; d < op.Us[i][0].Len(); d++ {
			header = append(header, fmt.Sprintf("u%d_%d", i, d))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for k := range op.Xs {
		row := []string{strconv.FormatFloat(op.Time(k, dt), 'f', 4, 64)}
		for d := 0; d < op.Xs[k].Len(); d++ {
			row = append(row, strconv.FormatFloat(op.Xs[k].AtVec(d), 'g', 8, 64))
		}
		for i := range op.Us {
			for d := 0; d < op.Us[i][0].Len(); d++ {
				if k < len(op.Us[i]) {
					row = append(row, strconv.FormatFloat(op.Us[i][k].AtVec(d), 'g', 8, 64))
				} else {
					row = append(row, "")
				}
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeCosts(path string, res *solver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"iteration", "total_cost", "step_scale"}
	for i := range res.PlayerCosts {
		header = append(header, "player"+strconv.Itoa(i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < res.Log.Len(); i++ {
		e := res.Log.At(i)
		row := []string{
			strconv.Itoa(e.Iteration),
			strconv.FormatFloat(e.TotalCost, 'g', 8, 64),
			strconv.FormatFloat(e.StepScale, 'g', 4, 64),
		}
		for _, pc := range e.PlayerCosts {
			row = append(row, strconv.FormatFloat(pc, 'g', 8, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns all saved runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		var meta RunMetadata
		if err := readJSON(filepath.Join(s.baseDir, e.Name(), "metadata.json"), &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// LoadCosts reads a run's per-iteration total costs for plotting.
func (s *Store) LoadCosts(runID string) ([]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "costs.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	var costs []float64
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse costs.csv row %d: %w", i, err)
		}
		costs = append(costs, v)
	}
	return costs, nil
}

// Load reads a run's metadata.
func (s *Store) Load(runID string) (RunMetadata, error) {
	var meta RunMetadata
	err := readJSON(filepath.Join(s.baseDir, runID, "metadata.json"), &meta)
	return meta, err
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

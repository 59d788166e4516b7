package solver

import "github.com/tmn-dev/ilqgame/internal/game"

// Entry is one recorded outer iteration.
type Entry struct {
	Iteration   int
	Op          *game.OperatingPoint
	Strategies  []*game.Strategy
	TotalCost   float64
	PlayerCosts []float64
	StepScale   float64
}

// Log records accepted iterates for later inspection or replay. It is
// append-only during a solve and read-only to consumers.
type Log struct {
	entries []Entry
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) append(e Entry) {
	l.entries = append(l.entries, e)
}

// Len returns the number of recorded iterations.
func (l *Log) Len() int {
	return len(l.entries)
}

// At returns the i-th recorded iteration.
func (l *Log) At(i int) Entry {
	return l.entries[i]
}

// Last returns the most recent entry; ok is false when the log is empty.
func (l *Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// TotalCosts returns the total cost per recorded iteration, in order.
func (l *Log) TotalCosts() []float64 {
	costs := make([]float64, len(l.entries))
	for i, e := range l.entries {
		costs[i] = e.TotalCost
	}
	return costs
}

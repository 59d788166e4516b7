package solver

import (
	"errors"
	"fmt"
)

// Domain errors for a game solve.
var (
	// ErrNumericalFailure indicates the coupled LQ per-step linear system
	// was singular or conditioned beyond the configured threshold.
	ErrNumericalFailure = errors.New("solver: numerical failure in coupled LQ solve")

	// ErrNonFinite indicates NaN or Inf appeared in a linearization,
	// quadraticization, or rollout.
	ErrNonFinite = errors.New("solver: non-finite value detected")

	// ErrConfiguration indicates a malformed problem setup, detected once
	// at construction and never during the loop.
	ErrConfiguration = errors.New("solver: invalid configuration")
)

// Stage names the outer-loop state a failure occurred in.
type Stage int

const (
	StageInitializing Stage = iota
	StageLinearizing
	StageSolving
	StageLineSearching
)

func (s Stage) String() string {
	switch s {
	case StageInitializing:
		return "initializing"
	case StageLinearizing:
		return "linearizing"
	case StageSolving:
		return "solving"
	case StageLineSearching:
		return "line-searching"
	default:
		return "unknown"
	}
}

// SolveError wraps a failure with the iteration and stage it occurred at.
type SolveError struct {
	Iteration int
	Stage     Stage
	Wrapped   error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("iteration %d (%s): %v", e.Iteration, e.Stage, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}

// errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package apsched assembles and solves the aircraft hangar maintenance
// scheduling model: it builds the index universes and parameter table from
// a scenario, assembles the mixed-integer program, drives an external or
// in-process solver, and verifies the returned solution.
package apsched

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal error raised anywhere in the pipeline, in the
// order they can occur.
type Kind int

const (
	// KindInputInvalid marks a malformed row, non-integer task, or missing
	// mandatory column in scenario input.
	KindInputInvalid Kind = iota
	// KindInputEmpty marks a scenario with zero aircraft or zero jobs.
	KindInputEmpty
	// KindModelBuildError marks an internal inconsistency while assembling
	// the model, such as a slot count computed as zero.
	KindModelBuildError
	// KindSolverInfeasible marks an empty feasible region.
	KindSolverInfeasible
	// KindSolverTimeLimit marks a solve that exhausted its wall-clock
	// budget; recoverable if an incumbent exists.
	KindSolverTimeLimit
	// KindSolverError marks any other engine-side failure.
	KindSolverError
)

func (k Kind) String() string {
	switch k {
	case KindInputInvalid:
		return "INPUT_INVALID"
	case KindInputEmpty:
		return "INPUT_EMPTY"
	case KindModelBuildError:
		return "MODEL_BUILD_ERROR"
	case KindSolverInfeasible:
		return "SOLVER_INFEASIBLE"
	case KindSolverTimeLimit:
		return "SOLVER_TIME_LIMIT"
	case KindSolverError:
		return "SOLVER_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error wraps a sentinel error with the Kind it belongs to, so that callers
// can both errors.Is against a specific sentinel and switch on Kind for
// coarser handling (e.g. deciding whether a retry with relaxed windows is
// worthwhile for KindSolverInfeasible).
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns an *Error with the given Kind wrapping err, or nil if err is
// nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// AsKind reports whether err (or one it wraps) is an *Error and returns its
// Kind.
func AsKind(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

var (
	// ErrNoAircraft means the scenario's aircraft roster is empty.
	ErrNoAircraft = errors.New("scenario has no aircraft")
	// ErrNoJobs means the scenario has zero jobs.
	ErrNoJobs = errors.New("scenario has no jobs")
	// ErrNonIntegerTask means a job's task column did not parse as an
	// integer.
	ErrNonIntegerTask = errors.New("job task is not an integer")
	// ErrMissingColumn means a mandatory scenario column was absent.
	ErrMissingColumn = errors.New("missing mandatory column")
	// ErrDuplicateJob means two rows declared the same job id.
	ErrDuplicateJob = errors.New("duplicate job id")
	// ErrZeroSlots means the slot-sizing formula produced zero slots.
	ErrZeroSlots = errors.New("computed zero slots for scenario")
	// ErrInfeasible means the assembled model has an empty feasible region.
	ErrInfeasible = errors.New("model is infeasible")
	// ErrTimeLimit means the solver exhausted its wall-clock budget.
	ErrTimeLimit = errors.New("solver reached its time limit")
	// ErrEngineFailure means the solver engine failed for a reason other
	// than infeasibility or time limit.
	ErrEngineFailure = errors.New("solver engine failed")
)

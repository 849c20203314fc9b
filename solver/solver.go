// solver/solver.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package solver is the Solver Driver (§4.4): it hands an assembled model
// to one of two interchangeable engines (mps, cpsat), enforces a
// wall-clock limit and a relative MIP gap, reads back the primal
// solution, and translates infeasibility into a structured diagnostic.
package solver

import (
	"context"
	"time"

	"github.com/mmp/apsched/model"
)

// Options are the abstract tunables required by §4.4: time limit,
// relative gap, primal-focus flag, heuristic intensity.
type Options struct {
	TimeLimit          time.Duration
	RelativeGap        float64
	PrimalFocus        bool
	HeuristicIntensity float64 // 0..1
}

// DefaultOptions matches the reference tool's Gurobi configuration: a
// 1000s wall clock and a 10% relative gap.
func DefaultOptions() Options {
	return Options{
		TimeLimit:          1000 * time.Second,
		RelativeGap:        0.10,
		PrimalFocus:        true,
		HeuristicIntensity: 1.0,
	}
}

// Status is one of the §6 exit conditions.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasibleWithinGap
	StatusTimeLimit
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasibleWithinGap:
		return "feasible_within_gap"
	case StatusTimeLimit:
		return "time_limit"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Infeasibility is the structured diagnostic surfaced when a solve comes
// back with an empty feasible region: the constraint names implicated in
// the irreducible infeasible subsystem (or an engine's best approximation
// of one).
type Infeasibility struct {
	ConstraintNames []string
	// Approximate is true when the engine cannot compute an exact IIS
	// (e.g. cpsat) and instead greedily found a small unsatisfiable
	// constraint-family subset.
	Approximate bool
}

// Result is the typed solve outcome exposed to callers (§6).
type Result struct {
	Status         Status
	ObjectiveValue float64
	WallClock      time.Duration
	EngineName     string
	Suboptimal     bool
	Solution       *model.Solution
	Infeasibility  *Infeasibility
}

// Engine is implemented by each concrete solver backend (mps, cpsat).
type Engine interface {
	Name() string
	Solve(ctx context.Context, m *model.Model, opts Options) (*Result, error)
}

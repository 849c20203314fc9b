// solver/cpsat/engine.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package cpsat is the in-process Solver Driver engine (§4.4) built on
// OR-Tools' CP-SAT via its Go bindings. It needs no external MIP solver
// binary; the engine is chosen by configuration. Continuous times are
// scaled by 100 and rounded to integers (CP-SAT has no native
// continuous domain), and NoOverlap interval constraints are layered in
// as redundant cuts on top of the same linear constraints the mps engine
// emits, to help CP-SAT's propagators prune the search faster than the
// pure big-M formulation alone.
package cpsat

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/mmp/apsched/log"
	"github.com/mmp/apsched/model"
	"github.com/mmp/apsched/solver"
)

// Scale is the fixed-point factor applied to every continuous time value
// before it is handed to CP-SAT's integer domains, and divided back out
// of the returned solution.
const Scale = 100

// Engine is the CP-SAT-backed solver.Engine implementation.
type Engine struct {
	Logger *log.Logger
}

func (e *Engine) Name() string { return "cpsat" }

// Solve lowers m into a CP-SAT model: one IntVar per continuous variable
// (domain [0, Horizon*Scale]), one BoolVar per binary variable, one
// linear constraint per model.Constraint (coefficients scaled to keep
// both sides in the same integer units), and redundant NoOverlap cuts
// per slot/position derived from the x/start_j/dur_j variables.
func (e *Engine) Solve(ctx context.Context, m *model.Model, opts solver.Options) (*solver.Result, error) {
	cm := cpmodel.NewCpModelBuilder()

	intVars := make(map[string]cpmodel.IntVar, len(m.Vars))
	boolVars := make(map[string]cpmodel.BoolVar, len(m.Vars))
	for _, v := range m.Vars {
		switch v.Kind {
		case model.Binary:
			boolVars[v.Name] = cm.NewBoolVar()
		default:
			intVars[v.Name] = cm.NewIntVar(0, scaleBound(v.UB))
		}
	}

	asIntExpr := func(name string) cpmodel.LinearArgument {
		if iv, ok := intVars[name]; ok {
			return iv
		}
		return boolVars[name]
	}

	// IntVars already hold Scale-multiplied values, so only BoolVar
	// coefficients are multiplied by Scale to match the scaled RHS.
	scaledCoeff := func(t model.Term) int64 {
		if _, ok := intVars[t.Var]; ok {
			return int64(math.Round(t.Coeff))
		}
		return int64(math.Round(t.Coeff * Scale))
	}

	for _, c := range m.Constraints {
		expr := cpmodel.NewLinearExpr()
		for _, t := range c.Terms {
			expr = expr.AddTerm(asIntExpr(t.Var), scaledCoeff(t))
		}
		rhs := int64(math.Round(c.RHS * Scale))
		switch c.Op {
		case model.LE:
			cm.AddLessOrEqual(expr, cpmodel.NewConstant(rhs))
		case model.GE:
			cm.AddGreaterOrEqual(expr, cpmodel.NewConstant(rhs))
		default:
			cm.AddEquality(expr, cpmodel.NewConstant(rhs))
		}
	}

	addNoOverlapCuts(cm, m, intVars, boolVars)

	objExpr := cpmodel.NewLinearExpr()
	for _, t := range m.Objective {
		objExpr = objExpr.AddTerm(asIntExpr(t.Var), scaledCoeff(t))
	}
	cm.Minimize(objExpr)

	cpModel := cm.Model()
	solveCtx, cancel := context.WithTimeout(ctx, opts.TimeLimit)
	defer cancel()

	start := time.Now()
	response, err := cpmodel.SolveCpModelWithContext(solveCtx, cpModel)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("cpsat: solve: %w", err)
	}

	switch response.GetStatus() {
	case cpmodel.OPTIMAL, cpmodel.FEASIBLE:
		values := make(map[string]float64, len(m.Vars))
		for name, iv := range intVars {
			values[name] = float64(cpmodel.SolutionIntegerValue(response, iv)) / Scale
		}
		for name, bv := range boolVars {
			if cpmodel.SolutionBooleanValue(response, bv) {
				values[name] = 1
			} else {
				values[name] = 0
			}
		}
		status := solver.StatusOptimal
		suboptimal := false
		if response.GetStatus() == cpmodel.FEASIBLE {
			status = solver.StatusFeasibleWithinGap
			suboptimal = true
		}
		return &solver.Result{
			Status:         status,
			ObjectiveValue: response.GetObjectiveValue() / Scale,
			WallClock:      elapsed,
			EngineName:     e.Name(),
			Suboptimal:     suboptimal,
			Solution:       model2Solution(values),
		}, nil

	case cpmodel.INFEASIBLE:
		names := approximateIIS(ctx, m, opts, e.Logger)
		return &solver.Result{
			Status:        solver.StatusInfeasible,
			WallClock:     elapsed,
			EngineName:    e.Name(),
			Infeasibility: &solver.Infeasibility{ConstraintNames: names, Approximate: true},
		}, nil

	default:
		return &solver.Result{
			Status:     solver.StatusTimeLimit,
			WallClock:  elapsed,
			EngineName: e.Name(),
			Suboptimal: true,
		}, nil
	}
}

func model2Solution(values map[string]float64) *model.Solution { return model.ExtractSolution(values) }

func scaleBound(v float64) int64 {
	if v >= model.PlusInfinity {
		return math.MaxInt64 / Scale
	}
	return int64(math.Round(v * Scale))
}

// addNoOverlapCuts adds one optional IntervalVar per (slot,position,job)
// fragment, conditioned on its x indicator, and a NoOverlap constraint
// per (slot,position): redundant with families 1-4 and 11-13 but gives
// CP-SAT's scheduling propagators a much tighter structure to search
// over than the big-M linear formulation alone provides.
func addNoOverlapCuts(cm *cpmodel.CpModelBuilder, m *model.Model, intVars map[string]cpmodel.IntVar, boolVars map[string]cpmodel.BoolVar) {
	type key struct{ s, p string }
	intervals := map[key][]cpmodel.IntervalVar{}

	for _, v := range m.Vars {
		family, parts := model.Decode(v.Name)
		if family != "startfrag" {
			continue
		}
		s, p, j := parts[0], parts[1], parts[2]
		startVar, ok1 := intVars[v.Name]
		durVar, ok2 := intVars[model.VarDurFrag(s, p, j)]
		xVar, ok3 := boolVars[model.VarX(s, p, j)]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		end := cpmodel.NewLinearExpr().AddTerm(startVar, 1).AddTerm(durVar, 1)
		iv := cm.NewOptionalIntervalVar(startVar, durVar, end, xVar)
		intervals[key{s, p}] = append(intervals[key{s, p}], iv)
	}

	for _, ivs := range intervals {
		if len(ivs) > 1 {
			cm.AddNoOverlap(ivs)
		}
	}
}

// approximateIIS greedily drops one constraint family at a time and
// re-solves the full model without that family (10-second limit) to see
// whether removing it restores feasibility; CP-SAT has no native IIS
// computation, so this approximates the mps engine's exact IIS with a
// coarser, family-granularity search. It tries at most one family removal per
// solve rather than an exhaustive minimal-subset search, trading
// precision for a bounded diagnostic runtime.
func approximateIIS(ctx context.Context, m *model.Model, opts solver.Options, lg *log.Logger) []string {
	families := map[int]bool{}
	for _, c := range m.Constraints {
		families[c.Family] = true
	}

	short := opts
	short.TimeLimit = 10 * time.Second

	var implicated []string
	for fam := range families {
		trial := model.NewModel(m.Horizon)
		for _, v := range m.Vars {
			trial.AddVar(v.Name, v.Kind, v.LB, v.UB)
		}
		for _, c := range m.Constraints {
			if c.Family == fam {
				continue
			}
			trial.AddConstraint(c)
		}

		eng := &Engine{Logger: lg}
		res, err := eng.Solve(ctx, trial, short)
		if err != nil {
			continue
		}
		if res.Status != solver.StatusInfeasible {
			for _, c := range m.Constraints {
				if c.Family == fam {
					implicated = append(implicated, c.Name)
				}
			}
		}
	}
	if len(implicated) == 0 {
		return []string{fmt.Sprintf("approximate IIS inconclusive across %d families", len(families))}
	}
	return implicated
}

// solver/driver.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package solver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mmp/apsched"
	"github.com/mmp/apsched/log"
	"github.com/mmp/apsched/model"
)

// ResultError translates a terminal Result into the Kind-tagged error the
// caller surfaces to the user, or nil for a result a caller should accept
// (optimal, or feasible within the configured gap).
func ResultError(r *Result) error {
	switch r.Status {
	case StatusOptimal, StatusFeasibleWithinGap:
		return nil
	case StatusTimeLimit:
		return apsched.Wrap(apsched.KindSolverTimeLimit, apsched.ErrTimeLimit)
	case StatusInfeasible:
		return apsched.Wrap(apsched.KindSolverInfeasible, apsched.ErrInfeasible)
	default:
		return apsched.Wrap(apsched.KindSolverError, apsched.ErrEngineFailure)
	}
}

// Fingerprint derives a stable cache key from an assembled model: the
// sorted variable and constraint names plus their coefficients, hashed
// with SHA-256. Both lists are sorted before hashing, so the fingerprint
// does not depend on the order in which Assemble emitted them. Solve
// options and the engine are not part of it.
func Fingerprint(m *model.Model) string {
	h := sha256.New()
	names := make([]string, len(m.Vars))
	for i, v := range m.Vars {
		names[i] = fmt.Sprintf("%s|%d|%g|%g", v.Name, v.Kind, v.LB, v.UB)
	}
	sort.Strings(names)
	for _, n := range names {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}

	rows := make([]string, len(m.Constraints))
	for i, c := range m.Constraints {
		rows[i] = encodeConstraint(c)
	}
	sort.Strings(rows)
	for _, r := range rows {
		h.Write([]byte(r))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

func encodeConstraint(c model.Constraint) string {
	s := fmt.Sprintf("%s|%d|%d|%g", c.Name, c.Family, c.Op, c.RHS)
	for _, t := range c.Terms {
		s += fmt.Sprintf("|%s=%g", t.Var, t.Coeff)
	}
	return s
}

// Drive runs eng.Solve, reporting host resources before the solve and
// wall-clock afterward, and consulting/populating cache (if non-nil) by
// the model's Fingerprint so a repeated solve of the same scenario
// within this process, or across runs if cache has an on-disk tier,
// skips the solver entirely.
func Drive(ctx context.Context, eng Engine, m *model.Model, opts Options, lg *log.Logger, cache *ResultCache) (*Result, error) {
	fp := Fingerprint(m)

	if cache != nil {
		if r, ok := cache.Get(fp); ok {
			lg.Infof("solver: cache hit for fingerprint %s (engine %s)", fp[:12], eng.Name())
			return r, nil
		}
	}

	logHostResources(lg)

	lg.Infof("solver: starting %s with %d vars, %d constraints, fingerprint %s",
		eng.Name(), len(m.Vars), len(m.Constraints), fp[:12])

	start := time.Now()
	res, err := eng.Solve(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	lg.Infof("solver: %s finished in %s, status=%s", eng.Name(), time.Since(start), res.Status)

	if cache != nil && res.Status != StatusInfeasible {
		cache.Put(fp, res)
	}

	return res, nil
}

func logHostResources(lg *log.Logger) {
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		lg.Debugf("solver: host CPU utilization %.1f%%", pct[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		lg.Debugf("solver: host memory %d/%d MB used", vm.Used/1e6, vm.Total/1e6)
	}
}

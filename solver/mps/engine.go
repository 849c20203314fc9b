// solver/mps/engine.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mps

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mmp/apsched/log"
	"github.com/mmp/apsched/model"
	"github.com/mmp/apsched/solver"
	"github.com/mmp/apsched/util"
)

// Engine drives an external MIP solver binary that reads MPS and writes
// a solution file: the §4.4 "exact" engine of record, matching the
// reference tool's Gurobi invocation (TimeLimit/MIPGap options, IIS
// computation on infeasibility) but generalized to any solver reachable
// on PATH via the same two-file protocol.
type Engine struct {
	// BinaryPath is the external solver executable. If empty, "cbc" is
	// tried (the most commonly available free MPS-reading MIP solver);
	// Gurobi's gurobi_cl and SCIP's scip both also speak a similar
	// protocol, but with a different CLI flag template than cliArgs
	// below assumes.
	BinaryPath string
	Registry   *util.TempFileRegistry
	Logger     *log.Logger
}

func (e *Engine) Name() string { return "mps" }

func (e *Engine) binary() string {
	if e.BinaryPath != "" {
		return e.BinaryPath
	}
	return "cbc"
}

// Solve writes m to a scratch MPS file, invokes the external solver with
// a wall-clock limit and relative gap, and parses its solution (or IIS)
// file back into a solver.Result.
func (e *Engine) Solve(ctx context.Context, m *model.Model, opts solver.Options) (*solver.Result, error) {
	scratch, err := os.MkdirTemp("", "apsched-mps-*")
	if err != nil {
		return nil, fmt.Errorf("mps: scratch dir: %w", err)
	}
	if e.Registry != nil {
		e.Registry.RegisterPath(scratch)
	}
	defer os.RemoveAll(scratch)

	mpsPath := filepath.Join(scratch, "model.mps")
	solPath := filepath.Join(scratch, "model.sol")

	f, err := os.Create(mpsPath)
	if err != nil {
		return nil, fmt.Errorf("mps: create %s: %w", mpsPath, err)
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return nil, fmt.Errorf("mps: write model: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("mps: close model file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeLimit)
	defer cancel()

	args := e.cliArgs(mpsPath, solPath, opts)
	cmd := exec.CommandContext(ctx, e.binary(), args...)
	start := time.Now()
	out, runErr := cmd.CombinedOutput()
	elapsed := time.Since(start)

	e.Logger.Debugf("mps solver invocation: %s %v (%s)", e.binary(), args, elapsed)

	if ctx.Err() == context.DeadlineExceeded {
		values, _ := e.tryParse(solPath)
		res := &solver.Result{Status: solver.StatusTimeLimit, WallClock: elapsed, EngineName: e.Name(), Suboptimal: true}
		if values != nil {
			res.Solution = model.ExtractSolution(values)
		}
		return res, nil
	}
	if runErr != nil {
		if strings.Contains(strings.ToLower(string(out)), "infeasible") {
			names, _ := e.parseIIS(scratch)
			return &solver.Result{
				Status:     solver.StatusInfeasible,
				WallClock:  elapsed,
				EngineName: e.Name(),
				Infeasibility: &solver.Infeasibility{
					ConstraintNames: names,
					Approximate:     len(names) == 0,
				},
			}, nil
		}
		return nil, fmt.Errorf("mps: solver invocation failed: %w (output: %s)", runErr, truncate(out, 2048))
	}

	values, obj, err := parseSolution(solPath)
	if err != nil {
		return nil, fmt.Errorf("mps: parse solution: %w", err)
	}
	return &solver.Result{
		Status:         solver.StatusOptimal,
		ObjectiveValue: obj,
		WallClock:      elapsed,
		EngineName:     e.Name(),
		Solution:       model.ExtractSolution(values),
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "...(truncated)"
}

// cliArgs builds the CBC-style invocation: "<mps> sec <t> ratioGap <g>
// solve solution <out>".
func (e *Engine) cliArgs(mpsPath, solPath string, opts solver.Options) []string {
	return []string{
		mpsPath,
		"sec", strconv.Itoa(int(opts.TimeLimit.Seconds())),
		"ratioGap", strconv.FormatFloat(opts.RelativeGap, 'f', -1, 64),
		"solve",
		"solution", solPath,
	}
}

func (e *Engine) tryParse(solPath string) (map[string]float64, error) {
	if _, err := os.Stat(solPath); err != nil {
		return nil, nil
	}
	values, _, err := parseSolution(solPath)
	return values, err
}

// parseSolution reads a CBC-format solution file:
//
//	Optimal - objective value 123.45
//	   0 x#s1#position1#j1     1              0
//	   1 startjob#j1           3.5            0
func parseSolution(path string) (map[string]float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	values := make(map[string]float64)
	var objective float64

	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			if idx := strings.LastIndex(line, "value"); idx >= 0 {
				fmt.Sscanf(line[idx+len("value"):], "%f", &objective)
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name := fields[1]
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		values[name] = v
	}
	return values, objective, sc.Err()
}

// parseIIS reads an external solver's IIS dump (a ".ilp" file naming the
// constraints it identified as jointly infeasible), matching the
// reference tool's diagnose_infeasibility pattern of writing one row name
// per line.
func (e *Engine) parseIIS(scratchDir string) ([]string, error) {
	ilpPath := filepath.Join(scratchDir, "model.ilp")
	f, err := os.Open(ilpPath)
	if err != nil {
		return nil, nil // no IIS available; not fatal
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "\\") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names, sc.Err()
}

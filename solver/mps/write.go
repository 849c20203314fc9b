// solver/mps/write.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package mps is the MPS-text Solver Driver engine (§4.4): it lowers a
// model.Model to the MPS file interchange format, hands it to an external
// MIP solver binary, and parses the solution (or IIS) the solver writes
// back. It needs an external solver (Gurobi, CBC, SCIP, HiGHS — anything
// that reads MPS and writes a solution file); the engine is chosen by
// configuration, and cpsat is the in-process alternative.
package mps

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmp/apsched/model"
)

// rowName and colName round-trip a constraint/variable name through the
// MPS format's fixed conventions: MPS tolerates long free-form names in
// "free" mode, which is what every modern reader (and the solvers this
// engine targets) accepts, so no truncation or re-encoding is needed
// beyond replacing characters MPS reserves as field separators.
func sanitize(s string) string {
	return strings.NewReplacer(" ", "_", "\t", "_").Replace(s)
}

func rowName(c model.Constraint) string {
	if c.Name != "" {
		return sanitize(c.Name)
	}
	return fmt.Sprintf("R%d_%d", c.Family, len(c.Terms))
}

func colName(v model.Var) string { return sanitize(v.Name) }

// Write emits w as a free-format MPS file: NAME, ROWS, COLUMNS, RHS,
// BOUNDS, and ENDATA sections (no RANGES), in the column-major order
// Gurobi/CBC/HiGHS all expect. Column order follows m.Vars (the Model
// Assembler's declaration order, itself derived from the Parameter
// Table's orderedmap iteration) so repeated writes of the same model are
// byte-for-byte identical.
func Write(w io.Writer, m *model.Model) error {
	bw := &errWriter{w: w}

	fmt.Fprintf(bw, "NAME          apsched\n")

	fmt.Fprintf(bw, "ROWS\n")
	fmt.Fprintf(bw, " N  COST\n")
	for _, c := range m.Constraints {
		fmt.Fprintf(bw, " %s  %s\n", mpsRowType(c.Op), rowName(c))
	}

	// COLUMNS: one entry per line, grouped by column so the
	// solver can stream the file without buffering the whole matrix.
	fmt.Fprintf(bw, "COLUMNS\n")
	objCoeff := make(map[string]float64, len(m.Objective))
	for _, t := range m.Objective {
		objCoeff[t.Var] += t.Coeff
	}
	rowsByVar := make(map[string][]struct {
		row   string
		coeff float64
	}, len(m.Vars))
	for _, c := range m.Constraints {
		name := rowName(c)
		for _, t := range c.Terms {
			rowsByVar[t.Var] = append(rowsByVar[t.Var], struct {
				row   string
				coeff float64
			}{name, t.Coeff})
		}
	}

	inInteger := false
	for i, v := range m.Vars {
		if v.Kind == model.Binary && !inInteger {
			fmt.Fprintf(bw, "    MARKER                 'MARKER'                 'INTORG'\n")
			inInteger = true
		} else if v.Kind == model.Continuous && inInteger {
			fmt.Fprintf(bw, "    MARKER                 'MARKER'                 'INTEND'\n")
			inInteger = false
		}

		col := colName(v)
		if c, ok := objCoeff[v.Name]; ok && c != 0 {
			fmt.Fprintf(bw, "    %-10s  COST      %.10g\n", col, c)
		}
		for _, e := range rowsByVar[v.Name] {
			fmt.Fprintf(bw, "    %-10s  %-8s  %.10g\n", col, e.row, e.coeff)
		}
		_ = i
	}
	if inInteger {
		fmt.Fprintf(bw, "    MARKER                 'MARKER'                 'INTEND'\n")
	}

	fmt.Fprintf(bw, "RHS\n")
	for _, c := range m.Constraints {
		if c.RHS != 0 {
			fmt.Fprintf(bw, "    RHS       %-8s  %.10g\n", rowName(c), c.RHS)
		}
	}

	fmt.Fprintf(bw, "BOUNDS\n")
	for _, v := range m.Vars {
		col := colName(v)
		switch {
		case v.Kind == model.Binary && v.LB == 0 && v.UB == 1:
			// Default [0,1] integer bound; MARKER already typed it.
		case v.LB == 0 && v.UB == model.PlusInfinity:
			// Default continuous lower bound; no BOUNDS row needed.
		default:
			if v.LB != 0 {
				fmt.Fprintf(bw, " LO BND       %-8s  %.10g\n", col, v.LB)
			}
			if v.UB != model.PlusInfinity {
				fmt.Fprintf(bw, " UP BND       %-8s  %.10g\n", col, v.UB)
			}
		}
	}

	fmt.Fprintf(bw, "ENDATA\n")

	return bw.err
}

func mpsRowType(op model.Op) string {
	switch op {
	case model.LE:
		return "L"
	case model.GE:
		return "G"
	default:
		return "E"
	}
}

// errWriter lets the many Fprintf calls above skip individual error
// checks; the first write error sticks and is returned by Write.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// model/assemble_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package model

import (
	"testing"

	"github.com/mmp/apsched"
	"github.com/mmp/apsched/index"
	"github.com/mmp/apsched/paramtable"
)

func buildSingleJobIndex(t *testing.T) *index.Index {
	t.Helper()
	rows := []index.Row{{Job: "J1", Task: 1, Plane: "N1", Duration: 2, Date: 0}}
	ix, err := index.Build(rows, nil, index.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	return ix
}

func TestAssembleProducesEveryFamily(t *testing.T) {
	// Two aircraft, so family 25 (switch counting over pairs of distinct
	// aircraft) has switch tuples to emit.
	rows := []index.Row{
		{Job: "J1", Task: 1, Plane: "N1", Duration: 2, Date: 0},
		{Job: "J2", Task: 1, Plane: "N2", Duration: 3, Date: 0},
	}
	ix, err := index.Build(rows, nil, index.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	pt := paramtable.Build(ix)

	m, err := Assemble(ix, pt, Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(m.Vars) == 0 {
		t.Fatal("Assemble produced zero variables")
	}
	if len(m.Constraints) == 0 {
		t.Fatal("Assemble produced zero constraints")
	}
	if len(m.Objective) == 0 {
		t.Fatal("Assemble produced an empty objective")
	}

	seen := map[int]bool{}
	for _, c := range m.Constraints {
		seen[c.Family] = true
	}
	for fam := 1; fam <= 28; fam++ {
		if !seen[fam] {
			t.Errorf("no constraint emitted for family %d", fam)
		}
	}
}

func TestAssembleEntryExitRoutedOutside(t *testing.T) {
	ix := buildSingleJobIndex(t)
	pt := paramtable.Build(ix)

	m, err := Assemble(ix, pt, Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	found := false
	for _, c := range m.Constraints {
		if c.Family == 26 && len(c.Terms) == 1 && c.Op == LE && c.RHS == 0 {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected a family-26b entry/exit routing constraint (single-term, x<=0)")
	}
}

func TestAssembleSymmetryBreakingOptIn(t *testing.T) {
	ix := buildSingleJobIndex(t)
	pt := paramtable.Build(ix)

	without, err := Assemble(ix, pt, Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	for _, c := range without.Constraints {
		if c.Family == 29 {
			t.Fatal("expected no family-29 constraint when SymmetryBreaking is off")
		}
	}

	with, err := Assemble(ix, pt, Options{SymmetryBreaking: true})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var cut *Constraint
	for i, c := range with.Constraints {
		if c.Family == 29 {
			cut = &with.Constraints[i]
			break
		}
	}
	if cut == nil {
		t.Fatal("expected a family-29 symmetry-breaking constraint when SymmetryBreaking is on")
	}
	if cut.Op != EQ || cut.RHS != 1 {
		t.Errorf("unexpected symmetry cut shape: %+v", cut)
	}
	slot0 := string(ix.Slots[0])
	for _, term := range cut.Terms {
		family, parts := Decode(term.Var)
		if family != famX || parts[0] != slot0 || parts[1] != string(index.Outside) {
			t.Errorf("symmetry cut term %s not anchored at slot0/Outside", term.Var)
		}
	}
}

func TestAssembleZeroSlotsModelBuildError(t *testing.T) {
	ix := buildSingleJobIndex(t)
	ix.Slots = nil
	pt := paramtable.Build(ix)

	_, err := Assemble(ix, pt, Options{})
	if err == nil {
		t.Fatal("expected an error when the index has zero slots")
	}
	if kind, ok := apsched.AsKind(err); !ok || kind != apsched.KindModelBuildError {
		t.Errorf("got Kind %v (ok=%v), want KindModelBuildError", kind, ok)
	}
}

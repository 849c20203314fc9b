// model/vars_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package model

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	name := VarX("slot0", "position1", "J1")
	family, parts := Decode(name)
	if family != famX {
		t.Errorf("family = %q, want %q", family, famX)
	}
	if len(parts) != 3 || parts[0] != "slot0" || parts[1] != "position1" || parts[2] != "J1" {
		t.Errorf("parts = %v, want [slot0 position1 J1]", parts)
	}
}

func TestAddVarDedups(t *testing.T) {
	m := NewModel(100)
	m.AddVar("v1", Binary, 0, 1)
	m.AddVar("v1", Binary, 0, 1)
	if len(m.Vars) != 1 {
		t.Fatalf("got %d vars, want 1 after re-adding the same name", len(m.Vars))
	}
	if !m.HasVar("v1") {
		t.Error("HasVar should report true for a declared variable")
	}
	if m.HasVar("nope") {
		t.Error("HasVar should report false for an undeclared variable")
	}
}

func TestAddConstraintAndObjective(t *testing.T) {
	m := NewModel(100)
	m.AddVar("v1", Continuous, 0, 100)
	m.AddConstraint(Constraint{Name: "c1", Family: 1, Terms: []Term{{"v1", 1}}, Op: LE, RHS: 10})
	m.AddObjectiveTerm("v1", 2)

	if len(m.Constraints) != 1 {
		t.Fatalf("got %d constraints, want 1", len(m.Constraints))
	}
	if len(m.Objective) != 1 || m.Objective[0].Coeff != 2 {
		t.Fatalf("unexpected objective: %+v", m.Objective)
	}
}

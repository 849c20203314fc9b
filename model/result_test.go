// model/result_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package model

import "testing"

func TestExtractSolutionAssignment(t *testing.T) {
	values := map[string]float64{
		VarX("slot0", "outside", "N1-entry"): 1,
		VarX("slot0", "outside", "N1-exit"):  0,
		VarStartJob("N1-entry"):              0,
		VarFinishJob("N1-entry"):             0.01,
		VarPlaneDelay("N1"):                  0,
		VarAlpha("slot0", "slot1", "position1", "position2"): 1,
	}
	sol := ExtractSolution(values)

	got := sol.SlotAssignment[[2]string{"slot0", "outside"}]
	if len(got) != 1 || got[0] != "N1-entry" {
		t.Errorf("SlotAssignment = %v, want [N1-entry]", got)
	}
	if got := sol.FinishJob["N1-entry"]; got != 0.01 {
		t.Errorf("FinishJob[N1-entry] = %g, want 0.01", got)
	}
	if len(sol.Interference) != 1 || sol.Interference[0] != [4]string{"slot0", "slot1", "position1", "position2"} {
		t.Errorf("unexpected Interference: %+v", sol.Interference)
	}
}

func TestExtractSolutionPreservesMultiplicity(t *testing.T) {
	values := map[string]float64{
		VarX("slot0", "outside", "J1"): 1,
		VarX("slot0", "outside", "J2"): 1,
	}
	sol := ExtractSolution(values)

	got := sol.SlotAssignment[[2]string{"slot0", "outside"}]
	if len(got) != 2 {
		t.Fatalf("expected both jobs preserved for a double-booked slot, got %v", got)
	}
}

func TestIsEntryExitName(t *testing.T) {
	if !IsEntryExitName("N1-entry") || !IsEntryExitName("N1-exit") {
		t.Error("expected entry/exit suffixes to be recognized")
	}
	if IsEntryExitName("J1") {
		t.Error("J1 should not be recognized as an entry/exit dummy")
	}
}

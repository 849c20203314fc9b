// verify/verify_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package verify

import (
	"context"
	"testing"

	"github.com/mmp/apsched/index"
	"github.com/mmp/apsched/model"
	"github.com/mmp/apsched/paramtable"
	"github.com/mmp/apsched/solver"
)

func buildScenario(t *testing.T) (*index.Index, *paramtable.Table) {
	t.Helper()
	rows := []index.Row{
		{Job: "J1", Task: 1, Plane: "N1", Duration: 2, Date: 0},
	}
	ix, err := index.Build(rows, nil, index.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	return ix, paramtable.Build(ix)
}

// validSolution builds a Solution that satisfies every property Check
// enforces for the single-job scenario from buildScenario: N1-entry, J1,
// and N1-exit placed in order at the Outside position across three slots.
func validSolution(ix *index.Index, pt *paramtable.Table) *model.Solution {
	sol := &model.Solution{
		SlotAssignment: map[[2]string][]string{
			{"slot0", "outside"}: {"N1-entry"},
			{"slot1", "outside"}: {"J1"},
			{"slot2", "outside"}: {"N1-exit"},
		},
		StartJob:        map[string]float64{"N1-entry": 0, "J1": 0.01, "N1-exit": 2.01},
		FinishJob:       map[string]float64{"N1-entry": 0.01, "J1": 2.01, "N1-exit": 2.02},
		StartSlotJob:    map[[3]string]float64{},
		FinishSlotJob:   map[[3]string]float64{},
		DurationSlotJob: map[[3]string]float64{{"slot0", "outside", "N1-entry"}: 0.01, {"slot1", "outside", "J1"}: 2, {"slot2", "outside", "N1-exit"}: 0.01},
		PlaneDelay:      map[string]float64{"N1": 0},
		Presence:        map[[3]string]float64{},
		StartPresence:   map[[3]string]float64{},
		FinishPresence:  map[[3]string]float64{},
		FinishSlot:      map[[2]string]float64{},
	}
	return sol
}

func TestCheckValidSolutionHasNoViolations(t *testing.T) {
	ix, pt := buildScenario(t)
	sol := validSolution(ix, pt)

	report, err := Check(context.Background(), ix, pt, sol)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.OK() {
		t.Errorf("expected no violations, got %+v", report.Violations)
	}
}

func TestCheckMissingPlacementIsAViolation(t *testing.T) {
	ix, pt := buildScenario(t)
	sol := validSolution(ix, pt)
	delete(sol.SlotAssignment, [2]string{"slot1", "outside"})

	report, err := Check(context.Background(), ix, pt, sol)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.OK() {
		t.Fatal("expected a property-1 violation for the unplaced job")
	}
	found := false
	for _, v := range report.Violations {
		if v.Property == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a property 1 violation, got %+v", report.Violations)
	}
}

func TestCheckPrecedenceViolation(t *testing.T) {
	rows := []index.Row{
		{Job: "J1", Task: 1, Plane: "N1", Duration: 2, Date: 0},
		{Job: "J2", Task: 2, Plane: "N1", Duration: 2, Date: 0},
	}
	ix, err := index.Build(rows, nil, index.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	pt := paramtable.Build(ix)

	sol := &model.Solution{
		SlotAssignment: map[[2]string][]string{
			{"slot0", "outside"}: {"N1-entry"},
			{"slot1", "outside"}: {"J1"},
			{"slot2", "outside"}: {"J2"},
			{"slot3", "outside"}: {"N1-exit"},
		},
		// J2 starts before J1 finishes: violates precedence.
		StartJob:        map[string]float64{"N1-entry": 0, "J1": 2, "J2": 0, "N1-exit": 4},
		FinishJob:       map[string]float64{"N1-entry": 0, "J1": 4, "J2": 2, "N1-exit": 4},
		StartSlotJob:    map[[3]string]float64{},
		FinishSlotJob:   map[[3]string]float64{},
		DurationSlotJob: map[[3]string]float64{{"slot1", "outside", "J1"}: 2, {"slot2", "outside", "J2"}: 2},
		PlaneDelay:      map[string]float64{"N1": 0},
		Presence:        map[[3]string]float64{},
		StartPresence:   map[[3]string]float64{},
		FinishPresence:  map[[3]string]float64{},
		FinishSlot:      map[[2]string]float64{},
	}

	report, err := Check(context.Background(), ix, pt, sol)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	foundP5 := false
	for _, v := range report.Violations {
		if v.Property == 5 {
			foundP5 = true
		}
	}
	if !foundP5 {
		t.Errorf("expected a property 5 (precedence) violation, got %+v", report.Violations)
	}
}

func TestCheckEntryExitMustBeOutside(t *testing.T) {
	ix, pt := buildScenario(t)
	sol := validSolution(ix, pt)
	// Route N1-entry onto a real position instead of Outside.
	delete(sol.SlotAssignment, [2]string{"slot0", "outside"})
	sol.SlotAssignment[[2]string{"slot0", "position1"}] = []string{"N1-entry"}

	report, err := Check(context.Background(), ix, pt, sol)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	found := false
	for _, v := range report.Violations {
		if v.Property == 10 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a property 10 (entry/exit outside) violation, got %+v", report.Violations)
	}
}

func TestRoundTripAgreesWithCheck(t *testing.T) {
	ix, pt := buildScenario(t)
	sol := validSolution(ix, pt)

	a, err := Check(context.Background(), ix, pt, sol)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	b, err := RoundTrip(context.Background(), ix, pt, sol)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if a.OK() != b.OK() {
		t.Errorf("Check and RoundTrip disagree: %v vs %v", a.OK(), b.OK())
	}
}

// TestRoundTripSurvivesEncoding exercises the actual msgpack flatten/
// unflatten path rather than re-checking the in-memory Solution, so a bug
// in solver.EncodeSolution/DecodeSolution (e.g. losing a SlotAssignment
// entry) would fail this test even though sol itself is untouched.
func TestRoundTripSurvivesEncoding(t *testing.T) {
	ix, pt := buildScenario(t)
	sol := validSolution(ix, pt)

	data, err := solver.EncodeSolution(sol)
	if err != nil {
		t.Fatalf("EncodeSolution: %v", err)
	}
	decoded, err := solver.DecodeSolution(data)
	if err != nil {
		t.Fatalf("DecodeSolution: %v", err)
	}
	if len(decoded.SlotAssignment) != len(sol.SlotAssignment) {
		t.Fatalf("decoded SlotAssignment has %d entries, want %d", len(decoded.SlotAssignment), len(sol.SlotAssignment))
	}
	for k, jobs := range sol.SlotAssignment {
		if got := decoded.SlotAssignment[k]; len(got) != len(jobs) || got[0] != jobs[0] {
			t.Errorf("slot %v: decoded jobs %v, want %v", k, got, jobs)
		}
	}

	report, err := RoundTrip(context.Background(), ix, pt, sol)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if !report.OK() {
		t.Errorf("expected no violations after round trip, got %+v", report.Violations)
	}
}

func TestCheckAtMostOneJobPerSlotViolation(t *testing.T) {
	ix, pt := buildScenario(t)
	sol := validSolution(ix, pt)
	sol.SlotAssignment[[2]string{"slot1", "outside"}] = append(sol.SlotAssignment[[2]string{"slot1", "outside"}], "J2")

	report, err := Check(context.Background(), ix, pt, sol)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	found := false
	for _, v := range report.Violations {
		if v.Property == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a property 2 (at-most-one-job-per-slot) violation, got %+v", report.Violations)
	}
}

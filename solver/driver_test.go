// solver/driver_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package solver

import (
	"testing"

	"github.com/mmp/apsched/model"
)

func sampleModel() *model.Model {
	m := model.NewModel(10)
	m.AddVar("v1", model.Binary, 0, 1)
	m.AddVar("v2", model.Continuous, 0, 10)
	m.AddConstraint(model.Constraint{Name: "c1", Family: 1, Terms: []model.Term{{Var: "v1", Coeff: 1}, {Var: "v2", Coeff: -1}}, Op: model.LE, RHS: 0})
	m.AddObjectiveTerm("v2", 1)
	return m
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(sampleModel())
	b := Fingerprint(sampleModel())
	if a != b {
		t.Errorf("Fingerprint is not deterministic: %s != %s", a, b)
	}
}

func TestFingerprintChangesWithModel(t *testing.T) {
	a := Fingerprint(sampleModel())
	m2 := sampleModel()
	m2.AddVar("v3", model.Binary, 0, 1)
	b := Fingerprint(m2)
	if a == b {
		t.Error("Fingerprint should change when the model changes")
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusOptimal:           "optimal",
		StatusFeasibleWithinGap: "feasible_within_gap",
		StatusTimeLimit:         "time_limit",
		StatusInfeasible:        "infeasible",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestResultErrorMapping(t *testing.T) {
	if err := ResultError(&Result{Status: StatusOptimal}); err != nil {
		t.Errorf("optimal should map to a nil error, got %v", err)
	}
	if err := ResultError(&Result{Status: StatusInfeasible}); err == nil {
		t.Error("infeasible should map to a non-nil error")
	}
	if err := ResultError(&Result{Status: StatusTimeLimit}); err == nil {
		t.Error("time limit should map to a non-nil error")
	}
}

func TestResultCacheRoundTrip(t *testing.T) {
	cache, err := NewResultCache(4, "")
	if err != nil {
		t.Fatalf("NewResultCache: %v", err)
	}
	r := &Result{
		Status:         StatusOptimal,
		ObjectiveValue: 42,
		EngineName:     "test",
		Solution: &model.Solution{
			SlotAssignment: map[[2]string][]string{{"slot0", "outside"}: {"N1-entry"}},
			StartJob:       map[string]float64{"N1-entry": 0},
			FinishJob:      map[string]float64{"N1-entry": 0.01},
		},
	}
	cache.Put("fp1", r)

	got, ok := cache.Get("fp1")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.ObjectiveValue != 42 || got.EngineName != "test" {
		t.Errorf("unexpected cached result: %+v", got)
	}
	if jobs := got.Solution.SlotAssignment[[2]string{"slot0", "outside"}]; len(jobs) != 1 || jobs[0] != "N1-entry" {
		t.Errorf("SlotAssignment round-trip failed: got %v", jobs)
	}

	if _, ok := cache.Get("nope"); ok {
		t.Error("expected a cache miss for an unknown fingerprint")
	}
}

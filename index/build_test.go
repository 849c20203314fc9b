// index/build_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package index

import (
	"testing"

	"github.com/mmp/apsched"
	"github.com/mmp/apsched/log"
)

func singleAircraftRows() []Row {
	return []Row{
		{Job: "J1", Task: 1, Plane: "N1", Duration: 2, Date: 0},
	}
}

func TestBuildSingleAircraftSingleJob(t *testing.T) {
	ix, err := Build(singleAircraftRows(), nil, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(ix.Jobs) != 3 {
		t.Fatalf("got %d jobs, want 3 (entry, J1, exit)", len(ix.Jobs))
	}
	entry, ok := ix.JobByID("N1-entry")
	if !ok || !entry.EntryExit || entry.Task != 0 {
		t.Errorf("entry job missing or malformed: %+v (ok=%v)", entry, ok)
	}
	exit, ok := ix.JobByID("N1-exit")
	if !ok || !exit.EntryExit || exit.Task != 2 {
		t.Errorf("exit job missing or malformed: %+v (ok=%v)", exit, ok)
	}

	if !ix.LastJobOfPlane["J1"] {
		t.Errorf("J1 should be the last real job of N1")
	}

	if len(ix.PrecedencePairs) != 2 {
		t.Fatalf("got %d precedence pairs, want 2 (entry->J1, J1->exit)", len(ix.PrecedencePairs))
	}
	if ix.PrecedencePairs[0] != (PrecedencePair{First: "N1-entry", Second: "J1"}) {
		t.Errorf("unexpected first precedence pair: %+v", ix.PrecedencePairs[0])
	}
	if ix.PrecedencePairs[1] != (PrecedencePair{First: "J1", Second: "N1-exit"}) {
		t.Errorf("unexpected second precedence pair: %+v", ix.PrecedencePairs[1])
	}

	wantHorizon := (0.01 + 2 + 0.01) * 1.2
	if diff := ix.Horizon - wantHorizon; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("horizon = %g, want %g", ix.Horizon, wantHorizon)
	}

	if len(ix.Clients) != 1 || ix.Clients[0].ID != "N1" {
		t.Errorf("expected aircraft to be its own client absent a client column, got %+v", ix.Clients)
	}
}

func TestBuildEmptyJobIDInvalid(t *testing.T) {
	rows := []Row{
		{Job: "", Task: 0, Plane: "N2", Duration: 0},
	}
	_, err := Build(rows, nil, DefaultOptions(), nil)
	if err == nil {
		t.Fatal("expected an error for a row with an empty job id")
	}
	if kind, ok := apsched.AsKind(err); !ok || kind != apsched.KindInputInvalid {
		t.Errorf("got Kind %v (ok=%v), want KindInputInvalid", kind, ok)
	}
}

func TestBuildEmptyScenario(t *testing.T) {
	_, err := Build(nil, nil, DefaultOptions(), nil)
	if err == nil {
		t.Fatal("expected an error for an empty scenario")
	}
	if kind, ok := apsched.AsKind(err); !ok || kind != apsched.KindInputEmpty {
		t.Errorf("got Kind %v (ok=%v), want KindInputEmpty", kind, ok)
	}
}

func TestBuildDuplicateJobID(t *testing.T) {
	rows := []Row{
		{Job: "J1", Task: 1, Plane: "N1", Duration: 1},
		{Job: "J1", Task: 2, Plane: "N1", Duration: 1},
	}
	_, err := Build(rows, nil, DefaultOptions(), nil)
	if err == nil {
		t.Fatal("expected a duplicate-job error")
	}
}

func TestBuildClientColumnGrouping(t *testing.T) {
	rows := []Row{
		{Job: "J1", Task: 1, Plane: "N1", Duration: 1, Client: "ACME"},
		{Job: "J2", Task: 1, Plane: "N2", Duration: 1, Client: "ACME"},
	}
	ix, err := Build(rows, nil, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ix.Clients) != 1 {
		t.Fatalf("expected one merged client, got %d: %+v", len(ix.Clients), ix.Clients)
	}
	if ix.Clients[0].ID != "ACME" || len(ix.Clients[0].Aircraft) != 2 {
		t.Errorf("unexpected client grouping: %+v", ix.Clients[0])
	}
}

func TestBuildTimeWindowDefaults(t *testing.T) {
	ix, err := Build(singleAircraftRows(), nil, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a, ok := ix.AircraftByID("N1")
	if !ok {
		t.Fatal("aircraft N1 not found")
	}
	if a.EarlyStart != 0 {
		t.Errorf("EarlyStart = %g, want 0", a.EarlyStart)
	}
	if a.LateFinish != ix.Horizon {
		t.Errorf("LateFinish = %g, want Horizon %g", a.LateFinish, ix.Horizon)
	}
}

func TestBuildDuplicateTaskWarnsNoEdge(t *testing.T) {
	rows := []Row{
		{Job: "J1", Task: 1, Plane: "N1", Duration: 1},
		{Job: "J2", Task: 1, Plane: "N1", Duration: 1},
	}
	lg := log.New("error", t.TempDir())
	ix, err := Build(rows, nil, DefaultOptions(), lg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// entry->J1 (or J2), J1/J2(whichever sorts second)->exit; the tied pair
	// between J1 and J2 themselves should not produce an edge.
	for _, pp := range ix.PrecedencePairs {
		if (pp.First == "J1" && pp.Second == "J2") || (pp.First == "J2" && pp.Second == "J1") {
			t.Errorf("unexpected precedence edge between tied-task jobs: %+v", pp)
		}
	}
}

func TestContainsInterference(t *testing.T) {
	pairs := DefaultInterferencePairs()
	if !ContainsInterference(pairs, "position3", "position5") {
		t.Error("expected (position3, position5) to be interfering")
	}
	if !ContainsInterference(pairs, "position5", "position3") {
		t.Error("ContainsInterference should be order-independent")
	}
	if ContainsInterference(pairs, "position1", "position2") {
		t.Error("position1/position2 should not be configured as interfering by default")
	}
}

func TestIsEntryExit(t *testing.T) {
	cases := map[JobID]bool{
		"N1-entry": true,
		"N1-exit":  true,
		"J1":       false,
		"":         false,
	}
	for id, want := range cases {
		if got := IsEntryExit(id); got != want {
			t.Errorf("IsEntryExit(%q) = %v, want %v", id, got, want)
		}
	}
}

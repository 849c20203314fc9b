// paramtable/table_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package paramtable

import (
	"testing"

	"github.com/mmp/apsched/index"
)

func buildIndex(t *testing.T) *index.Index {
	t.Helper()
	rows := []index.Row{
		{Job: "J1", Task: 1, Plane: "N1", Duration: 3, Client: "ACME"},
	}
	ix, err := index.Build(rows, nil, index.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	return ix
}

func TestTableBuildAndAccessors(t *testing.T) {
	ix := buildIndex(t)
	pt := Build(ix)

	if got := pt.Duration("J1"); got != 3 {
		t.Errorf("Duration(J1) = %g, want 3", got)
	}
	if got := pt.PlaneOf("J1"); got != "N1" {
		t.Errorf("PlaneOf(J1) = %q, want N1", got)
	}
	if !pt.IsLastJob("J1") {
		t.Error("J1 should be the last job of N1")
	}
	if pt.IsLastJob("N1-entry") {
		t.Error("the entry dummy should not be the last job")
	}
	if got := pt.EarlyStart("N1"); got != 0 {
		t.Errorf("EarlyStart(N1) = %g, want 0", got)
	}
	if got := pt.LateFinish("N1"); got != ix.Horizon {
		t.Errorf("LateFinish(N1) = %g, want Horizon %g", got, ix.Horizon)
	}
	if !pt.OwnsAircraft("ACME", "N1") {
		t.Error("ACME should own N1")
	}
	if pt.OwnsAircraft("ACME", "N2") {
		t.Error("ACME should not own a nonexistent aircraft")
	}
}

func TestTableSnapshotIsIndependent(t *testing.T) {
	ix := buildIndex(t)
	pt := Build(ix)
	snap := pt.Snapshot()

	pt.JobDuration.Set("J1", 999.0)
	if got := snap.Duration("J1"); got != 3 {
		t.Errorf("Snapshot should be unaffected by mutations to the original: got Duration=%g, want 3", got)
	}
}

func TestTableJobIDsDeterministicOrder(t *testing.T) {
	ix := buildIndex(t)
	pt := Build(ix)
	ids := pt.JobIDs()
	if len(ids) != 3 {
		t.Fatalf("got %d job ids, want 3", len(ids))
	}
	if ids[0] != "N1-entry" || ids[2] != "N1-exit" {
		t.Errorf("unexpected job id order: %v", ids)
	}
}

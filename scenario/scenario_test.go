// scenario/scenario_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadParsesJobsAndPlanes(t *testing.T) {
	jobsPath := writeTemp(t, "jobs.csv", "job,task,plane,duration,date,client\n"+
		"J1,1,N1,2.5,0,ACME\n"+
		"J2,2,N1,1,1,ACME\n")
	planesPath := writeTemp(t, "planes.csv", "plane,early_start,late_finish\n"+
		"N1,0,100\n")

	rows, planeRows, err := Load(context.Background(), jobsPath, planesPath, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d job rows, want 2", len(rows))
	}
	if rows[0].Task != 1 || rows[0].Plane != "N1" || rows[0].Client != "ACME" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[0].Duration != 2.5 {
		t.Errorf("Duration = %g, want 2.5", rows[0].Duration)
	}

	if len(planeRows) != 1 {
		t.Fatalf("got %d plane rows, want 1", len(planeRows))
	}
	if planeRows[0].EarlyStart == nil || *planeRows[0].EarlyStart != 0 {
		t.Errorf("unexpected EarlyStart: %+v", planeRows[0].EarlyStart)
	}
	if planeRows[0].LateFinish == nil || *planeRows[0].LateFinish != 100 {
		t.Errorf("unexpected LateFinish: %+v", planeRows[0].LateFinish)
	}
}

func TestLoadMissingColumnFails(t *testing.T) {
	jobsPath := writeTemp(t, "jobs.csv", "job,task,plane,duration\nJ1,1,N1,2\n")
	planesPath := writeTemp(t, "planes.csv", "plane\nN1\n")

	if _, _, err := Load(context.Background(), jobsPath, planesPath, nil); err == nil {
		t.Error("expected an error for a jobs CSV missing the date column")
	}
}

func TestLoadInvalidTaskFails(t *testing.T) {
	jobsPath := writeTemp(t, "jobs.csv", "job,task,plane,duration,date\nJ1,notanumber,N1,2,0\n")
	planesPath := writeTemp(t, "planes.csv", "plane\nN1\n")

	if _, _, err := Load(context.Background(), jobsPath, planesPath, nil); err == nil {
		t.Error("expected an error for a non-numeric task field")
	}
}

func TestLoadInterferenceConfigDefault(t *testing.T) {
	pairs, err := LoadInterferenceConfig("")
	if err != nil {
		t.Fatalf("LoadInterferenceConfig: %v", err)
	}
	if len(pairs) == 0 {
		t.Error("expected a non-empty default interference pair set")
	}
}

func TestLoadInterferenceConfigFromFile(t *testing.T) {
	path := writeTemp(t, "interference.json", `{"pairs":[["position1","position2"]]}`)
	pairs, err := LoadInterferenceConfig(path)
	if err != nil {
		t.Fatalf("LoadInterferenceConfig: %v", err)
	}
	if len(pairs) != 1 || pairs[0].A != "position1" || pairs[0].B != "position2" {
		t.Errorf("unexpected pairs: %+v", pairs)
	}
}

func TestLoadInterferenceConfigDuplicateKey(t *testing.T) {
	path := writeTemp(t, "interference.json", `{"pairs":[["a","b"]],"pairs":[["c","d"]]}`)
	if _, err := LoadInterferenceConfig(path); err == nil {
		t.Error("expected an error for a duplicate top-level key")
	}
}

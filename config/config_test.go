// config/config_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Engine != "cpsat" {
		t.Errorf("Engine = %q, want cpsat", c.Engine)
	}
	if c.TimeLimit() != 1000*time.Second {
		t.Errorf("TimeLimit() = %v, want 1000s", c.TimeLimit())
	}
	if !c.CacheEnabled {
		t.Error("CacheEnabled should default to true")
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if c != Default() {
		t.Errorf("Load(\"\") = %+v, want Default()", c)
	}
}

func TestLoadOverridesPartialFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"engine":"mps","time_limit_seconds":60}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Engine != "mps" {
		t.Errorf("Engine = %q, want mps", c.Engine)
	}
	if c.TimeLimitSeconds != 60 {
		t.Errorf("TimeLimitSeconds = %d, want 60", c.TimeLimitSeconds)
	}
	if c.RelativeGap != Default().RelativeGap {
		t.Errorf("RelativeGap should retain the default when unspecified: got %g", c.RelativeGap)
	}
}

func TestLoadInvalidJSONFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not valid json`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestLoadUnknownFieldFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"engine":"mps","bogus_field":1}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for an unrecognized config field")
	}
}

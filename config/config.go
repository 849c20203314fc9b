// config/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config loads the JSON run configuration the CLI accepts as an
// alternative to repeating every flag: solver engine choice, time limit,
// gap, and scenario paths.
package config

import (
	"os"
	"time"

	"github.com/mmp/apsched/util"
)

// Config is the JSON-loaded, schema-checked run configuration.
type Config struct {
	JobsPath        string  `json:"jobs_path"`
	PlanesPath      string  `json:"planes_path"`
	InterferencePath string `json:"interference_path,omitempty"`

	Engine             string  `json:"engine"` // "mps" or "cpsat"
	TimeLimitSeconds   int     `json:"time_limit_seconds"`
	RelativeGap        float64 `json:"relative_gap"`
	SymmetryBreaking   bool    `json:"symmetry_breaking"`
	SolverBinaryPath   string  `json:"solver_binary_path,omitempty"`

	CacheEnabled  bool   `json:"cache_enabled"`
	CacheDir      string `json:"cache_dir,omitempty"`
	CacheMaxBytes int64  `json:"cache_max_bytes,omitempty"`

	LogLevel string `json:"log_level"`
	LogDir   string `json:"log_dir,omitempty"`
}

// Default returns the configuration used when no -config file is given.
func Default() Config {
	return Config{
		Engine:           "cpsat",
		TimeLimitSeconds: 1000,
		RelativeGap:      0.10,
		CacheEnabled:     true,
		CacheMaxBytes:    512 * 1024 * 1024,
		LogLevel:         "info",
	}
}

func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds) * time.Second
}

// Load reads and schema-checks a JSON config file, starting from
// Default() so a partial file only overrides what it specifies.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var el util.ErrorLogger
	el.Push("config")
	util.CheckJSON[Config](data, &el)
	el.Pop()
	if el.HaveErrors() {
		return cfg, &configError{el.String()}
	}

	if err := util.UnmarshalJSONBytes(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type configError struct{ msg string }

func (e *configError) Error() string { return "config: " + e.msg }

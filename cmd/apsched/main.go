// cmd/apsched/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goforj/godump"

	"github.com/mmp/apsched"
	"github.com/mmp/apsched/config"
	"github.com/mmp/apsched/index"
	"github.com/mmp/apsched/log"
	"github.com/mmp/apsched/model"
	"github.com/mmp/apsched/paramtable"
	"github.com/mmp/apsched/scenario"
	"github.com/mmp/apsched/solver"
	"github.com/mmp/apsched/solver/cpsat"
	"github.com/mmp/apsched/solver/mps"
	"github.com/mmp/apsched/util"
	"github.com/mmp/apsched/verify"
)

var (
	configPath       = flag.String("config", "", "JSON run configuration file")
	jobsPath         = flag.String("jobs", "", "jobs CSV (overrides -config)")
	planesPath       = flag.String("planes", "", "planes CSV (overrides -config)")
	interferencePath = flag.String("interference", "", "interference pairs JSON (overrides -config)")
	engineName       = flag.String("engine", "", "solver engine: mps or cpsat (overrides -config)")
	timeLimit        = flag.Int("timelimit", 0, "wall-clock solve limit in seconds (overrides -config)")
	logLevel         = flag.String("loglevel", "", "logging level: debug, info, warn, error")
	logDir           = flag.String("logdir", "", "directory for the rotated log file")
	doVerify         = flag.Bool("verify", true, "run the Verifier against the returned solution")
	dump             = flag.Bool("dump", false, "dump the solution with godump instead of JSON")
	outPath          = flag.String("out", "", "write the solution JSON here instead of stdout")
)

func errorExit(lg *log.Logger, msg string, err error) {
	lg.Errorf("%s: %v", msg, err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *jobsPath != "" {
		cfg.JobsPath = *jobsPath
	}
	if *planesPath != "" {
		cfg.PlanesPath = *planesPath
	}
	if *interferencePath != "" {
		cfg.InterferencePath = *interferencePath
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}
	if *timeLimit != 0 {
		cfg.TimeLimitSeconds = *timeLimit
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}

	lg := log.New(cfg.LogLevel, cfg.LogDir)

	if cfg.JobsPath == "" || cfg.PlanesPath == "" {
		errorExit(lg, "startup", fmt.Errorf("both -jobs and -planes (or their config equivalents) are required"))
	}

	registry := util.MakeTempFileRegistry(lg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rows, planeRows, err := scenario.Load(ctx, cfg.JobsPath, cfg.PlanesPath, lg)
	if err != nil {
		errorExit(lg, "loading scenario", err)
	}

	pairs, err := scenario.LoadInterferenceConfig(cfg.InterferencePath)
	if err != nil {
		errorExit(lg, "loading interference config", err)
	}
	opts := index.DefaultOptions()
	opts.InterferencePairs = pairs

	ix, err := index.Build(rows, planeRows, opts, lg)
	if err != nil {
		errorExit(lg, "building index", err)
	}

	pt := paramtable.Build(ix).Snapshot()

	m, err := model.Assemble(ix, pt, model.Options{SymmetryBreaking: cfg.SymmetryBreaking})
	if err != nil {
		errorExit(lg, "assembling model", err)
	}

	var eng solver.Engine
	switch cfg.Engine {
	case "mps":
		eng = &mps.Engine{BinaryPath: cfg.SolverBinaryPath, Registry: registry, Logger: lg}
	default:
		eng = &cpsat.Engine{Logger: lg}
	}

	var cache *solver.ResultCache
	if cfg.CacheEnabled {
		diskPrefix := cfg.CacheDir
		if diskPrefix == "" {
			diskPrefix = "solves"
		}
		cache, err = solver.NewResultCache(64, diskPrefix)
		if err != nil {
			lg.Warnf("disabling solve cache: %v", err)
			cache = nil
		} else if cfg.CacheMaxBytes > 0 {
			if err := util.CacheCullObjects(cfg.CacheMaxBytes); err != nil {
				lg.Warnf("culling solve cache: %v", err)
			}
		}
	}

	solveOpts := solver.DefaultOptions()
	solveOpts.TimeLimit = cfg.TimeLimit()
	solveOpts.RelativeGap = cfg.RelativeGap

	res, err := solver.Drive(ctx, eng, m, solveOpts, lg, cache)
	if err != nil {
		errorExit(lg, "solving", err)
	}
	if err := solver.ResultError(res); err != nil {
		if kind, ok := apsched.AsKind(err); ok && kind == apsched.KindSolverTimeLimit && res.Solution != nil {
			lg.Warnf("time limit reached with an incumbent; returning suboptimal solution")
		} else {
			errorExit(lg, "solve did not produce a usable solution", err)
		}
	}

	if *doVerify && res.Solution != nil {
		report, err := verify.Check(ctx, ix, pt, res.Solution)
		if err != nil {
			errorExit(lg, "verifying solution", err)
		}
		if !report.OK() {
			for _, v := range report.Violations {
				lg.Errorf("property %d violated: %s", v.Property, v.Detail)
			}
			fmt.Fprintf(os.Stderr, "solution failed verification: %d violation(s)\n", len(report.Violations))
			os.Exit(1)
		}
	}

	if err := emit(res, *dump, *outPath); err != nil {
		errorExit(lg, "writing output", err)
	}

	registry.RemoveAll()
}

func emit(res *solver.Result, dumpMode bool, outPath string) error {
	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if dumpMode {
		godump.Dump(res)
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

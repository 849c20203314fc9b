// scenario/scenario.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package scenario is the Scenario Loader (§6): it reads the two-CSV
// scenario format (jobs and aircraft) from local disk or an s3:// URI,
// loads the optional interference-pairs JSON configuration, and hands
// both to the Index Builder.
package scenario

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mmp/apsched"
	"github.com/mmp/apsched/index"
	"github.com/mmp/apsched/log"
	"github.com/mmp/apsched/util"
)

// mandatory column names for the jobs CSV, matching the reference tool's
// main.csv schema.
var jobColumns = []string{"job", "task", "plane", "duration", "date"}

// mandatory column name for the planes CSV.
const planeColumn = "plane"

// Load reads jobsPath (jobs/tasks) and planesPath (aircraft time
// windows), either of which may be an "s3://bucket/key" URI, and
// returns the parsed rows ready for index.Build. A jobs CSV column headed
// "client", if present, supplies each row's client id.
func Load(ctx context.Context, jobsPath, planesPath string, lg *log.Logger) ([]index.Row, []index.PlaneRow, error) {
	jobsData, err := fetch(ctx, jobsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario: reading %s: %w", jobsPath, err)
	}
	planesData, err := fetch(ctx, planesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario: reading %s: %w", planesPath, err)
	}

	rows, err := parseJobs(jobsData)
	if err != nil {
		return nil, nil, apsched.Wrap(apsched.KindInputInvalid, err)
	}
	planeRows, err := parsePlanes(planesData)
	if err != nil {
		return nil, nil, apsched.Wrap(apsched.KindInputInvalid, err)
	}

	lg.Infof("scenario: loaded %d job row(s), %d plane row(s)", len(rows), len(planeRows))
	return rows, planeRows, nil
}

func fetch(ctx context.Context, path string) ([]byte, error) {
	if strings.HasPrefix(path, "s3://") {
		return fetchS3(ctx, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func header(rec []string) map[string]int {
	idx := make(map[string]int, len(rec))
	for i, name := range rec {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func parseJobs(data []byte) ([]index.Row, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing jobs CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, apsched.ErrNoJobs
	}

	cols := header(records[0])
	for _, want := range jobColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("%w: %q in jobs CSV", apsched.ErrMissingColumn, want)
		}
	}
	clientIdx, hasClient := cols["client"]

	var el util.ErrorLogger
	var rows []index.Row
	for i, rec := range records[1:] {
		el.Push(fmt.Sprintf("row %d", i+2))

		task, err := strconv.Atoi(strings.TrimSpace(rec[cols["task"]]))
		if err != nil {
			el.ErrorString("invalid task %q", rec[cols["task"]])
		}
		dur, err := strconv.ParseFloat(rec[cols["duration"]], 64)
		if err != nil {
			el.ErrorString("invalid duration %q", rec[cols["duration"]])
		}
		date, err := strconv.ParseFloat(rec[cols["date"]], 64)
		if err != nil {
			el.ErrorString("invalid date %q", rec[cols["date"]])
		}

		row := index.Row{
			Job:      rec[cols["job"]],
			Task:     task,
			Plane:    rec[cols["plane"]],
			Duration: dur,
			Date:     date,
		}
		if hasClient {
			row.Client = rec[clientIdx]
		}
		rows = append(rows, row)

		el.Pop()
	}
	if el.HaveErrors() {
		return nil, fmt.Errorf("%s", el.String())
	}
	return rows, nil
}

func parsePlanes(data []byte) ([]index.PlaneRow, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing planes CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, apsched.ErrNoAircraft
	}

	cols := header(records[0])
	if _, ok := cols[planeColumn]; !ok {
		return nil, fmt.Errorf("%w: %q in planes CSV", apsched.ErrMissingColumn, planeColumn)
	}
	earlyIdx, hasEarly := cols["early_start"]
	lateIdx, hasLate := cols["late_finish"]

	var rows []index.PlaneRow
	for _, rec := range records[1:] {
		pr := index.PlaneRow{Plane: rec[cols[planeColumn]]}
		if hasEarly && strings.TrimSpace(rec[earlyIdx]) != "" {
			if v, err := strconv.ParseFloat(rec[earlyIdx], 64); err == nil {
				pr.EarlyStart = &v
			}
		}
		if hasLate && strings.TrimSpace(rec[lateIdx]) != "" {
			if v, err := strconv.ParseFloat(rec[lateIdx], 64); err == nil {
				pr.LateFinish = &v
			}
		}
		rows = append(rows, pr)
	}
	return rows, nil
}

// InterferenceConfig is the optional JSON document overriding the
// default interference-pair set (§3, §6).
type InterferenceConfig struct {
	Pairs [][2]string `json:"pairs"`
}

// LoadInterferenceConfig reads and schema-checks an interference-pairs
// JSON document, returning the default pairs if path is empty.
func LoadInterferenceConfig(path string) ([]index.InterferencePair, error) {
	if path == "" {
		return index.DefaultInterferencePairs(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading interference config: %w", err)
	}

	var el util.ErrorLogger
	el.Push("interference config")
	util.CheckJSON[InterferenceConfig](data, &el)
	el.Pop()
	if el.HaveErrors() {
		return nil, apsched.Wrap(apsched.KindInputInvalid, fmt.Errorf("%s", el.String()))
	}

	if dups := util.FindDuplicateJSONKeys(data); len(dups) > 0 {
		return nil, apsched.Wrap(apsched.KindInputInvalid, fmt.Errorf("scenario: duplicate key %q at %q in interference config", dups[0].Key, dups[0].Path))
	}

	var cfg InterferenceConfig
	if err := util.UnmarshalJSONBytes(data, &cfg); err != nil {
		return nil, apsched.Wrap(apsched.KindInputInvalid, fmt.Errorf("scenario: parsing interference config: %w", err))
	}

	pairs := make([]index.InterferencePair, len(cfg.Pairs))
	for i, p := range cfg.Pairs {
		pairs[i] = index.InterferencePair{A: index.Position(p[0]), B: index.Position(p[1])}
	}
	return pairs, nil
}

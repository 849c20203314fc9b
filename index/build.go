// index/build.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package index

import (
	"errors"
	"math"
	"sort"

	"github.com/mmp/apsched"
	"github.com/mmp/apsched/log"
	"github.com/mmp/apsched/util"
)

// Row is one line of the scenario's main sheet.
type Row struct {
	Job      string
	Task     int
	Plane    string
	Duration float64
	Date     float64
	Client   string // empty if the sheet has no client column
}

// PlaneRow is one line of the scenario's Planes sheet; EarlyStart and
// LateFinish are nil when the cell was blank.
type PlaneRow struct {
	Plane      string
	EarlyStart *float64
	LateFinish *float64
}

// Options configures aspects of index building that aren't derivable from
// the rows themselves.
type Options struct {
	Positions         []Position
	InterferencePairs []InterferencePair
}

// DefaultOptions returns the §3 defaults: 5 positions plus outside, and
// the four default interfering pairs.
func DefaultOptions() Options {
	return Options{
		Positions:         DefaultPositions(),
		InterferencePairs: DefaultInterferencePairs(),
	}
}

// Build derives the full Index from scenario rows, following §4.1's rules:
// dummy entry/exit augmentation, precedence-pair generation, last-job and
// client-of-plane derivation, time-window defaulting, and slot sizing.
//
// Validation errors are accumulated in an ErrorLogger rather than failing
// on the first bad row, so a caller sees every problem with a scenario at
// once; if any were found, Build returns a KindInputInvalid or
// KindInputEmpty error built from them.
func Build(rows []Row, planeRows []PlaneRow, opts Options, lg *log.Logger) (*Index, error) {
	var el util.ErrorLogger

	if len(rows) == 0 {
		el.Push("main sheet")
		el.Error(apsched.ErrNoJobs)
		el.Pop()
	}

	planes := uniquePlanes(rows)
	if len(planes) == 0 {
		el.Push("main sheet")
		el.Error(apsched.ErrNoAircraft)
		el.Pop()
	}

	seenJob := map[string]bool{}
	for _, r := range rows {
		el.Push("job " + r.Job)
		if r.Job == "" {
			el.Error(apsched.ErrMissingColumn)
		} else if seenJob[r.Job] {
			el.Error(apsched.ErrDuplicateJob)
		}
		seenJob[r.Job] = true
		if r.Plane == "" {
			el.Error(apsched.ErrMissingColumn)
		}
		if r.Duration < 0 {
			el.ErrorString("negative duration %g", r.Duration)
		}
		el.Pop()
	}

	if el.HaveErrors() {
		el.PrintErrors(lg)
		if len(rows) == 0 || len(planes) == 0 {
			return nil, apsched.Wrap(apsched.KindInputEmpty, errors.New(el.String()))
		}
		return nil, apsched.Wrap(apsched.KindInputInvalid, errors.New(el.String()))
	}

	jobsByPlane := map[string][]Row{}
	for _, r := range rows {
		jobsByPlane[r.Plane] = append(jobsByPlane[r.Plane], r)
	}

	var jobs []Job
	jobByID := map[JobID]Job{}
	lastJobOfPlane := map[JobID]bool{}
	maxFinishByPlane := map[string]float64{}
	addJob := func(j Job) {
		jobs = append(jobs, j)
		jobByID[j.ID] = j
	}

	for _, plane := range planes {
		rs := jobsByPlane[plane]
		maxTask := 0
		for _, r := range rs {
			if r.Task > maxTask {
				maxTask = r.Task
			}
			if fin := r.Date + r.Duration; fin > maxFinishByPlane[plane] {
				maxFinishByPlane[plane] = fin
			}
		}

		entry := Job{ID: entryJobID(AircraftID(plane)), Task: 0, Plane: AircraftID(plane), Duration: 0.01, EntryExit: true}
		addJob(entry)
		for _, r := range rs {
			addJob(Job{ID: JobID(r.Job), Task: r.Task, Plane: AircraftID(plane), Duration: r.Duration, Date: r.Date})
		}
		exit := Job{ID: exitJobID(AircraftID(plane)), Task: maxTask + 1, Plane: AircraftID(plane), Duration: 0.01, EntryExit: true}
		addJob(exit)

		// LastJobOfPlane: among the *real* jobs, the one with the maximum
		// task ordinal (ties broken by row order, matching the reference
		// implementation's "first job with that task").
		var lastReal JobID
		lastTask := -1
		for _, r := range rs {
			if r.Task > lastTask {
				lastTask = r.Task
				lastReal = JobID(r.Job)
			}
		}
		if lastReal != "" {
			lastJobOfPlane[lastReal] = true
		} else {
			// No real jobs: the exit dummy is the terminal job (S6).
			lastJobOfPlane[exit.ID] = true
		}
	}
	for _, j := range jobs {
		if _, ok := lastJobOfPlane[j.ID]; !ok {
			lastJobOfPlane[j.ID] = false
		}
	}

	// PrecedencePairs: sort each aircraft's full job list (including
	// dummies) by task ascending and link consecutive distinct tasks.
	var precedence []PrecedencePair
	for _, plane := range planes {
		var all []Job
		for _, j := range jobs {
			if string(j.Plane) == plane {
				all = append(all, j)
			}
		}
		sort.SliceStable(all, func(i, k int) bool { return all[i].Task < all[k].Task })
		for i := 0; i+1 < len(all); i++ {
			if all[i].Task < all[i+1].Task {
				precedence = append(precedence, PrecedencePair{First: all[i].ID, Second: all[i+1].ID})
			} else {
				lg.Warnf("duplicate task ordinal %d for aircraft %s between %s and %s; no precedence edge emitted",
					all[i].Task, plane, all[i].ID, all[i+1].ID)
			}
		}
	}

	horizon := 0.0
	for _, plane := range planes {
		total := 0.0
		for _, j := range jobs {
			if string(j.Plane) == plane {
				total += j.Duration
			}
		}
		if total > horizon {
			horizon = total
		}
	}
	horizon *= 1.2

	// ClientOfPlane: the plane's own client column, or itself if absent.
	clientOfPlane := map[AircraftID]ClientID{}
	clientAircraft := map[ClientID][]AircraftID{}
	haveClientColumn := false
	for _, r := range rows {
		if r.Client != "" {
			haveClientColumn = true
			break
		}
	}
	for _, plane := range planes {
		var c ClientID
		if haveClientColumn {
			for _, r := range jobsByPlane[plane] {
				if r.Client != "" {
					c = ClientID(r.Client)
					break
				}
			}
		}
		if c == "" {
			c = ClientID(plane)
		}
		clientOfPlane[AircraftID(plane)] = c
		clientAircraft[c] = append(clientAircraft[c], AircraftID(plane))
	}
	var clients []Client
	var clientIDs []string
	for c := range clientAircraft {
		clientIDs = append(clientIDs, string(c))
	}
	sort.Strings(clientIDs)
	for _, c := range clientIDs {
		clients = append(clients, Client{ID: ClientID(c), Aircraft: clientAircraft[ClientID(c)]})
	}

	// Time windows, defaulted per §4.1.
	early := map[string]float64{}
	late := map[string]float64{}
	for _, pr := range planeRows {
		if pr.EarlyStart != nil {
			early[pr.Plane] = *pr.EarlyStart
		}
		if pr.LateFinish != nil {
			late[pr.Plane] = *pr.LateFinish
		}
	}
	var aircraft []Aircraft
	aircraftByID := map[AircraftID]Aircraft{}
	for _, plane := range planes {
		es, ok := early[plane]
		if !ok {
			es = 0
		}
		lf, ok := late[plane]
		if !ok {
			lf = horizon
		}
		a := Aircraft{
			ID:              AircraftID(plane),
			Client:          clientOfPlane[AircraftID(plane)],
			EarlyStart:      es,
			LateFinish:      lf,
			PredictedFinish: maxFinishByPlane[plane],
		}
		aircraft = append(aircraft, a)
		aircraftByID[a.ID] = a
	}

	// Slot sizing, §3: K = max(ceil(|Jobs|*1.5/N) + 5, max-tasks-per-aircraft).
	n := len(opts.Positions) - 1 // positions excluding Outside
	if n < 1 {
		n = 1
	}
	n1 := int(math.Ceil(float64(len(jobs))*1.5/float64(n))) + 5
	maxTasksPerPlane := 0
	for _, plane := range planes {
		count := len(jobsByPlane[plane])
		if count > maxTasksPerPlane {
			maxTasksPerPlane = count
		}
	}
	k := n1
	if maxTasksPerPlane > k {
		k = maxTasksPerPlane
	}
	if k <= 0 {
		return nil, apsched.Wrap(apsched.KindModelBuildError, apsched.ErrZeroSlots)
	}

	slots := make([]Slot, k)
	prevSlot := map[Slot]Slot{}
	for i := 0; i < k; i++ {
		slots[i] = SlotName(i)
		if i > 0 {
			prevSlot[slots[i]] = slots[i-1]
		}
	}

	var slotSeq []SlotSequencePair
	for i := 1; i < k; i++ {
		for _, p := range opts.Positions {
			slotSeq = append(slotSeq, SlotSequencePair{Prev: slots[i-1], Slot: slots[i], Position: p})
		}
	}

	var quads []InterferenceQuadruple
	for _, s1 := range slots {
		for _, s2 := range slots {
			for _, ip := range opts.InterferencePairs {
				if ip.A != ip.B {
					quads = append(quads, InterferenceQuadruple{S1: s1, S2: s2, P1: ip.A, P2: ip.B})
				}
			}
		}
	}

	var switches []SwitchTuple
	for i := 1; i < k; i++ {
		for _, p := range opts.Positions {
			for _, ra := range planes {
				for _, rb := range planes {
					if ra != rb {
						switches = append(switches, SwitchTuple{
							Position: p, Slot: slots[i-1], NextSlot: slots[i],
							AircraftA: AircraftID(ra), AircraftB: AircraftID(rb),
						})
					}
				}
			}
		}
	}

	lg.Infof("index built: %d jobs, %d aircraft, %d clients, %d slots, horizon=%.2f",
		len(jobs), len(aircraft), len(clients), k, horizon)

	return &Index{
		Jobs:                   jobs,
		Aircraft:               aircraft,
		Clients:                clients,
		Positions:              opts.Positions,
		Slots:                  slots,
		InterferencePairs:      opts.InterferencePairs,
		PrecedencePairs:        precedence,
		InterferenceQuadruples: quads,
		SwitchTuples:           switches,
		SlotSequencePairs:      slotSeq,
		LastJobOfPlane:         lastJobOfPlane,
		ClientOfPlane:          clientOfPlane,
		Horizon:                horizon,
		jobByID:                jobByID,
		aircraftByID:           aircraftByID,
		prevSlot:               prevSlot,
	}, nil
}

func uniquePlanes(rows []Row) []string {
	seen := map[string]bool{}
	var planes []string
	for _, r := range rows {
		if r.Plane != "" && !seen[r.Plane] {
			seen[r.Plane] = true
			planes = append(planes, r.Plane)
		}
	}
	return planes
}

// verify/verify.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package verify is the Verifier (§8): it checks a returned Solution
// against universal testable properties 1-11, independently and
// concurrently, and reports every violation found rather than stopping
// at the first. RoundTrip covers property 12.
package verify

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmp/apsched/index"
	"github.com/mmp/apsched/model"
	"github.com/mmp/apsched/paramtable"
	"github.com/mmp/apsched/solver"
)

// Violation is one property failure, naming the property number and a
// human-readable description of the offending tuple.
type Violation struct {
	Property int
	Detail   string
}

// Report is the Verifier's output: empty Violations means the solution
// passed every property the Verifier checks.
type Report struct {
	Violations []Violation
}

func (r *Report) add(property int, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Property: property, Detail: fmt.Sprintf(format, args...)})
}

func (r *Report) OK() bool { return len(r.Violations) == 0 }

const epsilon = 1e-6

// Check runs properties 1-11 independently (each is read-only against ix,
// pt, and sol, so they run concurrently via errgroup) and merges their
// violations into one Report.
func Check(ctx context.Context, ix *index.Index, pt *paramtable.Table, sol *model.Solution) (*Report, error) {
	checks := []func(*index.Index, *paramtable.Table, *model.Solution) []Violation{
		checkExactlyOnePlacement,     // 1
		checkAtMostOneJobPerSlot,     // 2
		checkZeroedWhenUnassigned,    // 3
		checkDurationConservation,    // 4
		checkPrecedence,              // 5
		checkHorizonBound,             // 6
		checkAircraftOnePositionAtOnce, // 7
		checkAtMostOneAircraftPerSlot, // 8
		checkInterferenceNonOverlap,   // 9
		checkEntryExitOutside,         // 10
		checkTimeWindows,              // 11
	}

	var mu sync.Mutex
	report := &Report{}

	g, _ := errgroup.WithContext(ctx)
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			vs := check(ix, pt, sol)
			if len(vs) > 0 {
				mu.Lock()
				report.Violations = append(report.Violations, vs...)
				mu.Unlock()
			}
			_ = i
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Violations, func(a, b int) bool {
		return report.Violations[a].Property < report.Violations[b].Property
	})
	return report, nil
}

// RoundTrip is property 12: serializing the returned solution and
// re-verifying the deserialized copy must find the same zero violations
// as the original. It reuses the solver package's msgpack flatten/
// unflatten machinery (solver.EncodeSolution/DecodeSolution) rather than
// re-checking the in-memory sol, so a bug in that encoding is itself
// something this property can catch.
func RoundTrip(ctx context.Context, ix *index.Index, pt *paramtable.Table, sol *model.Solution) (*Report, error) {
	data, err := solver.EncodeSolution(sol)
	if err != nil {
		return nil, fmt.Errorf("encoding solution for round trip: %w", err)
	}
	decoded, err := solver.DecodeSolution(data)
	if err != nil {
		return nil, fmt.Errorf("decoding solution for round trip: %w", err)
	}
	return Check(ctx, ix, pt, decoded)
}

///////////////////////////////////////////////////////////////////////////

func containsJob(js []string, j string) bool {
	for _, id := range js {
		if id == j {
			return true
		}
	}
	return false
}

func jobIDs(ix *index.Index) []string {
	out := make([]string, len(ix.Jobs))
	for i, j := range ix.Jobs {
		out[i] = string(j.ID)
	}
	return out
}

// 1. Every job assigned to exactly one (slot,position).
func checkExactlyOnePlacement(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	counts := map[string]int{}
	for _, id := range jobIDs(ix) {
		counts[id] = 0
	}
	for _, js := range sol.SlotAssignment {
		for _, j := range js {
			counts[j]++
		}
	}
	for _, id := range jobIDs(ix) {
		if counts[id] != 1 {
			vs = append(vs, Violation{1, fmt.Sprintf("job %s placed %d time(s), want 1", id, counts[id])})
		}
	}
	return vs
}

// 2. At most one job per (slot,position).
func checkAtMostOneJobPerSlot(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	for key, js := range sol.SlotAssignment {
		if len(js) > 1 {
			vs = append(vs, Violation{2, fmt.Sprintf("slot %s position %s has %d jobs assigned: %v", key[0], key[1], len(js), js)})
		}
	}
	return vs
}

// 3. x=0 implies the fragment times are zero. Since ExtractSolution only
// populates start/finish/dur fragment maps when they are present in the
// raw variable set, and those variables are gated by family 3/4 to zero
// whenever x=0, a nonzero fragment entry with no corresponding
// SlotAssignment is the violation signature.
func checkZeroedWhenUnassigned(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	fragments := []struct {
		name string
		m    map[[3]string]float64
	}{{"start_j", sol.StartSlotJob}, {"finish_j", sol.FinishSlotJob}, {"dur_j", sol.DurationSlotJob}}
	for _, f := range fragments {
		for key, v := range f.m {
			s, p, j := key[0], key[1], key[2]
			if v <= epsilon {
				continue
			}
			if !containsJob(sol.SlotAssignment[[2]string{s, p}], j) {
				vs = append(vs, Violation{3, fmt.Sprintf("(%s,%s,%s) has %s=%.4g but x=0", s, p, j, f.name, v)})
			}
		}
	}
	return vs
}

// 4. Total fragment duration equals JobDuration[j]; finish-start >= dur.
func checkDurationConservation(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	for _, id := range jobIDs(ix) {
		jid := index.JobID(id)
		want := pt.Duration(jid)
		total := 0.0
		for key, v := range sol.DurationSlotJob {
			if key[2] == id {
				total += v
			}
		}
		if diff := total - want; diff > epsilon || diff < -epsilon {
			vs = append(vs, Violation{4, fmt.Sprintf("job %s total fragment duration %.4g != JobDuration %.4g", id, total, want)})
		}

		sj, fj := sol.StartJob[id], sol.FinishJob[id]
		if fj-sj < want-epsilon {
			vs = append(vs, Violation{4, fmt.Sprintf("job %s finish-start=%.4g < duration %.4g", id, fj-sj, want)})
		}
	}
	return vs
}

// 5. Precedence: finish_job[j] <= start_job[j'].
func checkPrecedence(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	for _, pp := range ix.PrecedencePairs {
		f := sol.FinishJob[string(pp.First)]
		s := sol.StartJob[string(pp.Second)]
		if f > s+epsilon {
			vs = append(vs, Violation{5, fmt.Sprintf("%s finishes at %.4g after %s starts at %.4g", pp.First, f, pp.Second, s)})
		}
	}
	return vs
}

// 6. finish[s,p] <= H.
func checkHorizonBound(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	for key, v := range sol.FinishSlot {
		if v > ix.Horizon+epsilon {
			vs = append(vs, Violation{6, fmt.Sprintf("slot %s position %s finishes at %.4g > horizon %.4g", key[0], key[1], v, ix.Horizon)})
		}
	}
	return vs
}

// 7. Aircraft present in at most one position per slot.
func checkAircraftOnePositionAtOnce(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	counts := map[[2]string]float64{} // (slot,aircraft) -> sum of presence
	for key, v := range sol.Presence {
		s, r := key[0], key[2]
		if v > 0.5 {
			counts[[2]string{s, r}] += 1
		}
	}
	for k, c := range counts {
		if c > 1+epsilon {
			vs = append(vs, Violation{7, fmt.Sprintf("aircraft %s present in %d positions at slot %s", k[1], int(c), k[0])})
		}
	}
	return vs
}

// 8. At most one aircraft present per (slot,position).
func checkAtMostOneAircraftPerSlot(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	counts := map[[2]string]int{}
	for key, v := range sol.Presence {
		s, p := key[0], key[1]
		if v > 0.5 {
			counts[[2]string{s, p}]++
		}
	}
	for k, c := range counts {
		if c > 1 {
			vs = append(vs, Violation{8, fmt.Sprintf("slot %s position %s has %d aircraft present", k[0], k[1], c)})
		}
	}
	return vs
}

// 9. Interfering positions never have overlapping presence intervals.
// Only the quadruples the solution lists in Interference (alpha=1) are
// compared; a cell's presence interval is the earliest start_pres and
// latest finish_pres recorded for it over all aircraft.
func checkInterferenceNonOverlap(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	for _, pair := range ix.InterferencePairs {
		for _, q := range ix.InterferenceQuadruples {
			if !((q.P1 == pair.A && q.P2 == pair.B) || (q.P1 == pair.B && q.P2 == pair.A)) {
				continue
			}
			overlap := false
			for _, iq := range sol.Interference {
				if iq[0] == string(q.S1) && iq[1] == string(q.S2) && iq[2] == string(q.P1) && iq[3] == string(q.P2) {
					overlap = true
					break
				}
			}
			if !overlap {
				continue
			}
			startA := presenceAnyStart(sol, string(q.S1), string(q.P1))
			finishA := presenceAnyFinish(sol, string(q.S1), string(q.P1))
			startB := presenceAnyStart(sol, string(q.S2), string(q.P2))
			finishB := presenceAnyFinish(sol, string(q.S2), string(q.P2))
			if startA < finishB-epsilon && startB < finishA-epsilon {
				vs = append(vs, Violation{9, fmt.Sprintf("interfering positions %s/%s overlap at slots %s/%s", q.P1, q.P2, q.S1, q.S2)})
			}
		}
	}
	return vs
}

func presenceAnyStart(sol *model.Solution, s, p string) float64 {
	best := 0.0
	found := false
	for key, v := range sol.StartPresence {
		if key[0] == s && key[1] == p && (!found || v < best) {
			best, found = v, true
		}
	}
	return best
}

func presenceAnyFinish(sol *model.Solution, s, p string) float64 {
	best := 0.0
	for key, v := range sol.FinishPresence {
		if key[0] == s && key[1] == p && v > best {
			best = v
		}
	}
	return best
}

// 10. Entry/exit dummy jobs assigned to Outside.
func checkEntryExitOutside(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	for key, jobs := range sol.SlotAssignment {
		for _, job := range jobs {
			if !model.IsEntryExitName(job) {
				continue
			}
			if index.Position(key[1]) != index.Outside {
				vs = append(vs, Violation{10, fmt.Sprintf("entry/exit job %s assigned to position %s, want %s", job, key[1], index.Outside)})
			}
		}
	}
	return vs
}

// 11. Job start times lie within the owning aircraft's time window, or
// the overrun is reflected in plane_delay.
func checkTimeWindows(ix *index.Index, pt *paramtable.Table, sol *model.Solution) []Violation {
	var vs []Violation
	for _, j := range ix.Jobs {
		r := j.Plane
		start := sol.StartJob[string(j.ID)]
		finish := sol.FinishJob[string(j.ID)]
		early, late := pt.EarlyStart(r), pt.LateFinish(r)
		if start < early-epsilon {
			vs = append(vs, Violation{11, fmt.Sprintf("job %s starts at %.4g before early-start %.4g for %s", j.ID, start, early, r)})
		}
		if finish > late+epsilon {
			overrun := finish - late
			delay := sol.PlaneDelay[string(r)]
			if delay < overrun-epsilon {
				vs = append(vs, Violation{11, fmt.Sprintf("job %s overruns %s's deadline by %.4g but plane_delay=%.4g", j.ID, r, overrun, delay)})
			}
		}
	}
	return vs
}

// solver/cache.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package solver

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mmp/apsched/model"
	"github.com/mmp/apsched/util"
)

// diskCacheTTL bounds how long an on-disk solve is trusted. A fingerprint
// collision across scenario or engine revisions is the failure mode this
// guards against, not ordinary cache churn, so the window is generous.
const diskCacheTTL = 30 * 24 * time.Hour

// ResultCache avoids re-solving a scenario this process has already seen:
// an in-memory LRU for repeated Drive calls on the same model within one
// run, backed by an on-disk
// msgpack+flate cache (util.CacheStoreObject/CacheRetrieveObject) so an
// identical scenario across separate process runs skips the solver
// entirely.
type ResultCache struct {
	mem        *lru.Cache[string, *Result]
	diskPrefix string // empty disables the on-disk tier
}

// NewResultCache builds a cache with the given in-memory capacity. If
// diskPrefix is non-empty, results are additionally persisted under that
// cache sub-path.
func NewResultCache(capacity int, diskPrefix string) (*ResultCache, error) {
	mem, err := lru.New[string, *Result](capacity)
	if err != nil {
		return nil, err
	}
	return &ResultCache{mem: mem, diskPrefix: diskPrefix}, nil
}

// Get returns a cached Result for fingerprint, checking memory first and
// falling back to disk.
func (c *ResultCache) Get(fingerprint string) (*Result, bool) {
	if r, ok := c.mem.Get(fingerprint); ok {
		return r, true
	}
	if c.diskPrefix == "" {
		return nil, false
	}
	var cr cacheableResult
	if _, err := util.CacheRetrieveObject(c.diskPath(fingerprint), diskCacheTTL, &cr); err != nil {
		return nil, false
	}
	r := cr.toResult()
	c.mem.Add(fingerprint, r)
	return r, true
}

// Put stores a Result under fingerprint in both tiers.
func (c *ResultCache) Put(fingerprint string, r *Result) {
	c.mem.Add(fingerprint, r)
	if c.diskPrefix == "" {
		return
	}
	_ = util.CacheStoreObject(c.diskPath(fingerprint), newCacheableResult(r))
}

func (c *ResultCache) diskPath(fingerprint string) string {
	return fmt.Sprintf("%s/%s.msgpack", c.diskPrefix, fingerprint)
}

///////////////////////////////////////////////////////////////////////////
// solutionDTO is a msgpack-friendly DTO: it flattens model.Solution's
// array-keyed maps (msgpack/JSON can't key on Go arrays) into "a|b|c"
// string keys and reassembles them on load. cacheableResult embeds it for
// the on-disk solve cache; EncodeSolution/DecodeSolution expose the same
// machinery so any caller needing a genuine serialize/deserialize round
// trip of a bare Solution (rather than a whole cached Result) doesn't have
// to reinvent the flatten/unflatten logic.

type solutionDTO struct {
	SlotAssignment  map[string][]string
	StartSlot       map[string]float64
	FinishSlot      map[string]float64
	DurationSlot    map[string]float64
	StartSlotJob    map[string]float64
	FinishSlotJob   map[string]float64
	DurationSlotJob map[string]float64
	StartJob        map[string]float64
	FinishJob       map[string]float64
	PlaneDelay      map[string]float64
	ClientDelay     map[string]float64
	Presence        map[string]float64
	Idle            map[string]float64
	PlaneInSlot     map[string]float64
	StartPresence   map[string]float64
	FinishPresence  map[string]float64
	SwitchPlanes    map[string]float64
	Interference    []string
}

type cacheableResult struct {
	Status         int
	ObjectiveValue float64
	WallClockNanos int64
	EngineName     string
	Suboptimal     bool

	Solution *solutionDTO

	InfeasibleNames []string
	Approximate     bool
}

func joinKey(parts ...string) string { return strings.Join(parts, "|") }

func newSolutionDTO(sol *model.Solution) *solutionDTO {
	dto := &solutionDTO{SlotAssignment: map[string][]string{}}
	for k, v := range sol.SlotAssignment {
		dto.SlotAssignment[joinKey(k[0], k[1])] = v
	}
	dto.StartSlot = flatten2(sol.StartSlot)
	dto.FinishSlot = flatten2(sol.FinishSlot)
	dto.DurationSlot = flatten2(sol.DurationSlot)
	dto.StartSlotJob = flatten3(sol.StartSlotJob)
	dto.FinishSlotJob = flatten3(sol.FinishSlotJob)
	dto.DurationSlotJob = flatten3(sol.DurationSlotJob)
	dto.StartJob = sol.StartJob
	dto.FinishJob = sol.FinishJob
	dto.PlaneDelay = sol.PlaneDelay
	dto.ClientDelay = sol.ClientDelay
	dto.Presence = flatten3(sol.Presence)
	dto.Idle = flatten3(sol.Idle)
	dto.PlaneInSlot = flatten3(sol.PlaneInSlot)
	dto.StartPresence = flatten3(sol.StartPresence)
	dto.FinishPresence = flatten3(sol.FinishPresence)
	dto.SwitchPlanes = flatten2(sol.SwitchPlanes)
	for _, q := range sol.Interference {
		dto.Interference = append(dto.Interference, joinKey(q[0], q[1], q[2], q[3]))
	}
	return dto
}

func (dto *solutionDTO) toSolution() *model.Solution {
	sol := &model.Solution{
		SlotAssignment:  map[[2]string][]string{},
		StartSlot:       unflatten2(dto.StartSlot),
		FinishSlot:      unflatten2(dto.FinishSlot),
		DurationSlot:    unflatten2(dto.DurationSlot),
		StartSlotJob:    unflatten3(dto.StartSlotJob),
		FinishSlotJob:   unflatten3(dto.FinishSlotJob),
		DurationSlotJob: unflatten3(dto.DurationSlotJob),
		StartJob:        dto.StartJob,
		FinishJob:       dto.FinishJob,
		PlaneDelay:      dto.PlaneDelay,
		ClientDelay:     dto.ClientDelay,
		Presence:        unflatten3(dto.Presence),
		Idle:            unflatten3(dto.Idle),
		PlaneInSlot:     unflatten3(dto.PlaneInSlot),
		StartPresence:   unflatten3(dto.StartPresence),
		FinishPresence:  unflatten3(dto.FinishPresence),
		SwitchPlanes:    unflatten2(dto.SwitchPlanes),
	}
	for k, v := range dto.SlotAssignment {
		parts := strings.SplitN(k, "|", 2)
		sol.SlotAssignment[[2]string{parts[0], parts[1]}] = v
	}
	for _, q := range dto.Interference {
		parts := strings.SplitN(q, "|", 4)
		sol.Interference = append(sol.Interference, [4]string{parts[0], parts[1], parts[2], parts[3]})
	}
	return sol
}

// EncodeSolution msgpack-serializes a Solution via the same flatten path
// the on-disk result cache uses.
func EncodeSolution(sol *model.Solution) ([]byte, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(newSolutionDTO(sol)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSolution reverses EncodeSolution.
func DecodeSolution(data []byte) (*model.Solution, error) {
	var dto solutionDTO
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&dto); err != nil {
		return nil, err
	}
	return dto.toSolution(), nil
}

func newCacheableResult(r *Result) *cacheableResult {
	cr := &cacheableResult{
		Status:         int(r.Status),
		ObjectiveValue: r.ObjectiveValue,
		WallClockNanos: int64(r.WallClock),
		EngineName:     r.EngineName,
		Suboptimal:     r.Suboptimal,
	}
	if r.Infeasibility != nil {
		cr.InfeasibleNames = r.Infeasibility.ConstraintNames
		cr.Approximate = r.Infeasibility.Approximate
	}
	if r.Solution != nil {
		cr.Solution = newSolutionDTO(r.Solution)
	}
	return cr
}

func (cr *cacheableResult) toResult() *Result {
	r := &Result{
		Status:         Status(cr.Status),
		ObjectiveValue: cr.ObjectiveValue,
		WallClock:      time.Duration(cr.WallClockNanos),
		EngineName:     cr.EngineName,
		Suboptimal:     cr.Suboptimal,
	}
	if len(cr.InfeasibleNames) > 0 {
		r.Infeasibility = &Infeasibility{ConstraintNames: cr.InfeasibleNames, Approximate: cr.Approximate}
	}
	if cr.Solution != nil {
		r.Solution = cr.Solution.toSolution()
	}
	return r
}

func flatten2(m map[[2]string]float64) map[string]float64 {
	out := map[string]float64{}
	for k, v := range m {
		out[joinKey(k[0], k[1])] = v
	}
	return out
}

func flatten3(m map[[3]string]float64) map[string]float64 {
	out := map[string]float64{}
	for k, v := range m {
		out[joinKey(k[0], k[1], k[2])] = v
	}
	return out
}

func unflatten2(m map[string]float64) map[[2]string]float64 {
	out := map[[2]string]float64{}
	for k, v := range m {
		parts := strings.SplitN(k, "|", 2)
		out[[2]string{parts[0], parts[1]}] = v
	}
	return out
}

func unflatten3(m map[string]float64) map[[3]string]float64 {
	out := map[[3]string]float64{}
	for k, v := range m {
		parts := strings.SplitN(k, "|", 3)
		out[[3]string{parts[0], parts[1], parts[2]}] = v
	}
	return out
}

// paramtable/table.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package paramtable is the pure value store of §4.2: for each index tuple
// it returns the constant needed at model-build time. A Table is built
// once from an *index.Index and is immutable and random-access from then
// on; Snapshot hands out a deep-copied read-only view so that neither the
// Model Assembler nor the Verifier can mutate the table that produced a
// given model.
package paramtable

import (
	"fmt"

	"github.com/brunoga/deep"
	"github.com/iancoleman/orderedmap"

	"github.com/mmp/apsched/index"
)

// Table is the immutable constant store backing model assembly. Every
// family is kept in an orderedmap so that iteration order matches
// insertion order from the Index Builder, which is what makes MPS output
// reproducible (§5).
type Table struct {
	JobDuration *orderedmap.OrderedMap // JobID -> float64
	TaskOfJob   *orderedmap.OrderedMap // JobID -> int
	PlaneOfJob  *orderedmap.OrderedMap // JobID -> AircraftID
	DateOfJob   *orderedmap.OrderedMap // JobID -> float64

	LastJobOfPlane *orderedmap.OrderedMap // JobID -> bool
	ClientOfPlane  *orderedmap.OrderedMap // AircraftID -> ClientID
	// PlaneOfClient[c][r] == 1 iff client c owns aircraft r.
	PlaneOfClient *orderedmap.OrderedMap // ClientID -> *orderedmap.OrderedMap (AircraftID -> bool)

	EarlyStartOfPlane      *orderedmap.OrderedMap // AircraftID -> float64
	LateFinishDeadline     *orderedmap.OrderedMap // AircraftID -> float64
	PredictedFinishOfPlane *orderedmap.OrderedMap // AircraftID -> float64

	// Horizon is the big-M alias: every big-M term in §4.3 uses this one
	// constant.
	Horizon float64
}

// Build constructs the Table from a built Index.
func Build(ix *index.Index) *Table {
	t := &Table{
		JobDuration:            orderedmap.New(),
		TaskOfJob:              orderedmap.New(),
		PlaneOfJob:             orderedmap.New(),
		DateOfJob:              orderedmap.New(),
		LastJobOfPlane:         orderedmap.New(),
		ClientOfPlane:          orderedmap.New(),
		PlaneOfClient:          orderedmap.New(),
		EarlyStartOfPlane:      orderedmap.New(),
		LateFinishDeadline:     orderedmap.New(),
		PredictedFinishOfPlane: orderedmap.New(),
		Horizon:                ix.Horizon,
	}

	for _, j := range ix.Jobs {
		t.JobDuration.Set(string(j.ID), j.Duration)
		t.TaskOfJob.Set(string(j.ID), j.Task)
		t.PlaneOfJob.Set(string(j.ID), string(j.Plane))
		t.DateOfJob.Set(string(j.ID), j.Date)
		t.LastJobOfPlane.Set(string(j.ID), ix.LastJobOfPlane[j.ID])
	}

	for _, a := range ix.Aircraft {
		t.ClientOfPlane.Set(string(a.ID), string(a.Client))
		t.EarlyStartOfPlane.Set(string(a.ID), a.EarlyStart)
		t.LateFinishDeadline.Set(string(a.ID), a.LateFinish)
		t.PredictedFinishOfPlane.Set(string(a.ID), a.PredictedFinish)
	}

	for _, c := range ix.Clients {
		owned := orderedmap.New()
		ownedSet := map[index.AircraftID]bool{}
		for _, r := range c.Aircraft {
			ownedSet[r] = true
		}
		for _, a := range ix.Aircraft {
			owned.Set(string(a.ID), ownedSet[a.ID])
		}
		t.PlaneOfClient.Set(string(c.ID), owned)
	}

	return t
}

// Snapshot returns a deep-copied, read-only view of the table, safe to
// hand to the Model Assembler or the Verifier without risking that either
// mutates the original.
func (t *Table) Snapshot() *Table {
	return deep.MustCopy(t)
}

func (t *Table) Duration(j index.JobID) float64 {
	v, ok := t.JobDuration.Get(string(j))
	if !ok {
		return 0
	}
	return v.(float64)
}

func (t *Table) Task(j index.JobID) int {
	v, ok := t.TaskOfJob.Get(string(j))
	if !ok {
		return 0
	}
	return v.(int)
}

func (t *Table) PlaneOf(j index.JobID) index.AircraftID {
	v, ok := t.PlaneOfJob.Get(string(j))
	if !ok {
		return ""
	}
	return index.AircraftID(v.(string))
}

func (t *Table) IsLastJob(j index.JobID) bool {
	v, ok := t.LastJobOfPlane.Get(string(j))
	if !ok {
		return false
	}
	return v.(bool)
}

func (t *Table) EarlyStart(r index.AircraftID) float64 {
	v, ok := t.EarlyStartOfPlane.Get(string(r))
	if !ok {
		return 0
	}
	return v.(float64)
}

func (t *Table) LateFinish(r index.AircraftID) float64 {
	v, ok := t.LateFinishDeadline.Get(string(r))
	if !ok {
		return t.Horizon
	}
	return v.(float64)
}

// OwnsAircraft reports whether client c owns aircraft r. The Model
// Assembler reads client ownership from the Index's Clients instead.
func (t *Table) OwnsAircraft(c index.ClientID, r index.AircraftID) bool {
	v, ok := t.PlaneOfClient.Get(string(c))
	if !ok {
		return false
	}
	owned := v.(*orderedmap.OrderedMap)
	b, ok := owned.Get(string(r))
	if !ok {
		return false
	}
	return b.(bool)
}

// JobIDs returns job ids in insertion (deterministic) order.
func (t *Table) JobIDs() []index.JobID {
	keys := t.JobDuration.Keys()
	out := make([]index.JobID, len(keys))
	for i, k := range keys {
		out[i] = index.JobID(k)
	}
	return out
}

// AircraftIDs returns aircraft ids in insertion order.
func (t *Table) AircraftIDs() []index.AircraftID {
	keys := t.EarlyStartOfPlane.Keys()
	out := make([]index.AircraftID, len(keys))
	for i, k := range keys {
		out[i] = index.AircraftID(k)
	}
	return out
}

// ClientIDs returns client ids in insertion order.
func (t *Table) ClientIDs() []index.ClientID {
	keys := t.PlaneOfClient.Keys()
	out := make([]index.ClientID, len(keys))
	for i, k := range keys {
		out[i] = index.ClientID(k)
	}
	return out
}

func (t *Table) String() string {
	return fmt.Sprintf("paramtable.Table{%d jobs, %d aircraft, %d clients, Horizon=%.2f}",
		len(t.JobIDs()), len(t.AircraftIDs()), len(t.ClientIDs()), t.Horizon)
}

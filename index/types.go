// index/types.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package index builds the entity tables and derived index sets (§3, §4.1
// of the model) from raw scenario rows: slots, positions, jobs, aircraft,
// clients, precedence pairs, interference quadruples, and movement tuples.
package index

import "fmt"

// Position is a physical hangar stand tag, or the conceptual OUTSIDE stand.
type Position string

// Outside is the distinguished position representing "off the hangar
// floor". Entry and exit dummy jobs are only ever assignable here.
const Outside Position = "outside"

// DefaultPositions returns the closed, ordered set of size N+1 (N=5):
// position1..position5, outside.
func DefaultPositions() []Position {
	n := 5
	pos := make([]Position, 0, n+1)
	for i := 1; i <= n; i++ {
		pos = append(pos, Position(fmt.Sprintf("position%d", i)))
	}
	return append(pos, Outside)
}

// InterferencePair is a symmetric, unordered pair of positions that cannot
// have aircraft present simultaneously.
type InterferencePair struct {
	A, B Position
}

// DefaultInterferencePairs returns the four default interfering pairs.
func DefaultInterferencePairs() []InterferencePair {
	return []InterferencePair{
		{"position3", "position5"},
		{"position4", "position5"},
		{Outside, "position4"},
		{Outside, "position5"},
	}
}

// ContainsInterference reports whether the pair set forbids simultaneous presence in p
// and q (order-independent).
func ContainsInterference(pairs []InterferencePair, p, q Position) bool {
	for _, ip := range pairs {
		if (ip.A == p && ip.B == q) || (ip.A == q && ip.B == p) {
			return true
		}
	}
	return false
}

// Slot is an ordinal time-bucket token; slots carry no intrinsic calendar
// time and are totally ordered by their numeric suffix.
type Slot string

func SlotName(i int) Slot {
	return Slot(fmt.Sprintf("slot%d", i))
}

// JobID, AircraftID and ClientID are the scenario's string identities.
type (
	JobID      string
	AircraftID string
	ClientID   string
)

// Job is a maintenance task on an aircraft, or one of the 0.01-duration
// entry/exit dummies the Index Builder adds per aircraft.
type Job struct {
	ID       JobID
	Task     int
	Plane    AircraftID
	Duration float64
	Date     float64
	// EntryExit is true for the synthetic {plane}-entry / {plane}-exit
	// jobs; they must route to Outside (constraint family 26b).
	EntryExit bool
}

// Aircraft is a fleet member with a client owner and a maintenance time
// window.
type Aircraft struct {
	ID              AircraftID
	Client          ClientID
	EarlyStart      float64
	LateFinish      float64
	PredictedFinish float64
}

// Client owns one or more aircraft.
type Client struct {
	ID       ClientID
	Aircraft []AircraftID
}

// PrecedencePair (j1, j2) means j1 must finish before j2 starts.
type PrecedencePair struct {
	First, Second JobID
}

// InterferenceQuadruple is a member of slots × slots × interfering
// position pairs, used only where family 22-24/26 are non-vacuous.
type InterferenceQuadruple struct {
	S1, S2 Slot
	P1, P2 Position
}

// SwitchTuple (position, slot, next-slot, a, b) enumerates the candidate
// occupant handoffs a position can undergo between two consecutive slots.
type SwitchTuple struct {
	Position           Position
	Slot, NextSlot     Slot
	AircraftA, AircraftB AircraftID
}

// SlotSequencePair (prev, slot, position) enumerates adjacent-slot pairs
// within a position, used by the "no empty lower slots" and slot-ordering
// families.
type SlotSequencePair struct {
	Prev, Slot Slot
	Position   Position
}

// Index is the complete set of entity tables and derived index sets that
// the Parameter Table and Model Assembler consume. It is built once per
// scenario and is immutable thereafter.
type Index struct {
	Jobs      []Job
	Aircraft  []Aircraft
	Clients   []Client
	Positions []Position
	Slots     []Slot

	InterferencePairs       []InterferencePair
	PrecedencePairs         []PrecedencePair
	InterferenceQuadruples  []InterferenceQuadruple
	SwitchTuples            []SwitchTuple
	SlotSequencePairs       []SlotSequencePair

	// LastJobOfPlane[job] is true iff job is its aircraft's real job with
	// the highest task ordinal (the first such row on ties), or the exit
	// dummy when the aircraft has no real jobs.
	LastJobOfPlane map[JobID]bool
	// ClientOfPlane maps an aircraft to its owning client.
	ClientOfPlane map[AircraftID]ClientID
	// Horizon is the big-M constant: 1.2x the longest total per-aircraft
	// job duration.
	Horizon float64

	jobByID      map[JobID]Job
	aircraftByID map[AircraftID]Aircraft
	prevSlot     map[Slot]Slot
}

// JobByID looks up a job by id.
func (ix *Index) JobByID(id JobID) (Job, bool) {
	j, ok := ix.jobByID[id]
	return j, ok
}

// AircraftByID looks up an aircraft by id.
func (ix *Index) AircraftByID(id AircraftID) (Aircraft, bool) {
	a, ok := ix.aircraftByID[id]
	return a, ok
}

// PrevSlot returns the slot immediately preceding s, and false if s is
// slot0.
func (ix *Index) PrevSlot(s Slot) (Slot, bool) {
	p, ok := ix.prevSlot[s]
	return p, ok
}

func entryJobID(plane AircraftID) JobID { return JobID(string(plane) + "-entry") }
func exitJobID(plane AircraftID) JobID  { return JobID(string(plane) + "-exit") }

// IsEntryExit reports whether a job id names a synthetic entry or exit
// dummy (testable property 10 keys off this).
func IsEntryExit(id JobID) bool {
	s := string(id)
	return len(s) > 6 && s[len(s)-6:] == "-entry" ||
		len(s) > 5 && s[len(s)-5:] == "-exit"
}

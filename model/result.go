// model/result.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package model

import "strings"

// Solution is the §6 output schema: every mapping a reporter or the
// Verifier needs, extracted from a solver's raw variable->value map.
type Solution struct {
	// SlotAssignment maps (slot,position) to every job whose x=1 there. A
	// feasible solution has at most one entry per key (property 2); the
	// slice shape lets the Verifier detect a solver returning more than one
	// without the extraction step itself discarding the evidence.
	SlotAssignment map[[2]string][]string

	StartSlot, FinishSlot, DurationSlot map[[2]string]float64 // (slot,position) -> real

	StartSlotJob, FinishSlotJob, DurationSlotJob map[[3]string]float64 // (slot,position,job) -> real

	StartJob, FinishJob map[string]float64 // job -> real

	PlaneDelay, ClientDelay map[string]float64 // id -> real

	Presence, Idle, PlaneInSlot, StartPresence, FinishPresence map[[3]string]float64 // (slot,position,aircraft) -> real/0-1

	SwitchPlanes map[[2]string]float64 // (slot,position) -> 0/1

	// Interference lists every (s,s',p,p') quadruple with alpha=1.
	Interference [][4]string
}

// ExtractSolution decodes a raw solver variable->value map (as produced by
// any solver.Engine) into the structured §6 output schema.
func ExtractSolution(values map[string]float64) *Solution {
	sol := &Solution{
		SlotAssignment: map[[2]string][]string{},
		StartSlot:      map[[2]string]float64{},
		FinishSlot:     map[[2]string]float64{},
		DurationSlot:   map[[2]string]float64{},
		StartSlotJob:   map[[3]string]float64{},
		FinishSlotJob:  map[[3]string]float64{},
		DurationSlotJob: map[[3]string]float64{},
		StartJob:       map[string]float64{},
		FinishJob:      map[string]float64{},
		PlaneDelay:     map[string]float64{},
		ClientDelay:    map[string]float64{},
		Presence:       map[[3]string]float64{},
		Idle:           map[[3]string]float64{},
		PlaneInSlot:    map[[3]string]float64{},
		StartPresence:  map[[3]string]float64{},
		FinishPresence: map[[3]string]float64{},
		SwitchPlanes:   map[[2]string]float64{},
	}

	for name, v := range values {
		family, parts := Decode(name)
		switch family {
		case famX:
			if v > 0.5 {
				key := [2]string{parts[0], parts[1]}
				sol.SlotAssignment[key] = append(sol.SlotAssignment[key], parts[2])
			}
		case famStartSlot:
			sol.StartSlot[[2]string{parts[0], parts[1]}] = v
		case famFinishSlot:
			sol.FinishSlot[[2]string{parts[0], parts[1]}] = v
		case famDurSlot:
			sol.DurationSlot[[2]string{parts[0], parts[1]}] = v
		case famStartFrag:
			sol.StartSlotJob[[3]string{parts[0], parts[1], parts[2]}] = v
		case famFinishFrag:
			sol.FinishSlotJob[[3]string{parts[0], parts[1], parts[2]}] = v
		case famDurFrag:
			sol.DurationSlotJob[[3]string{parts[0], parts[1], parts[2]}] = v
		case famStartJob:
			sol.StartJob[parts[0]] = v
		case famFinishJob:
			sol.FinishJob[parts[0]] = v
		case famPlaneDelay:
			sol.PlaneDelay[parts[0]] = v
		case famClientDelay:
			sol.ClientDelay[parts[0]] = v
		case famPres:
			sol.Presence[[3]string{parts[0], parts[1], parts[2]}] = v
		case famIdle:
			sol.Idle[[3]string{parts[0], parts[1], parts[2]}] = v
		case famYPlane:
			sol.PlaneInSlot[[3]string{parts[0], parts[1], parts[2]}] = v
		case famStartPres:
			sol.StartPresence[[3]string{parts[0], parts[1], parts[2]}] = v
		case famFinishPres:
			sol.FinishPresence[[3]string{parts[0], parts[1], parts[2]}] = v
		case famSwitch:
			sol.SwitchPlanes[[2]string{parts[0], parts[1]}] = v
		case famAlpha:
			if v > 0.5 {
				sol.Interference = append(sol.Interference, [4]string{parts[0], parts[1], parts[2], parts[3]})
			}
		}
	}

	return sol
}

// IsEntryExitName reports whether a job id (as embedded in a variable
// name) is a synthetic entry/exit dummy, without importing the index
// package (kept dependency-free so result.go has no cycle risk).
func IsEntryExitName(jobID string) bool {
	return strings.HasSuffix(jobID, "-entry") || strings.HasSuffix(jobID, "-exit")
}

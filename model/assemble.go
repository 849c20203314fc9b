// model/assemble.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package model

import (
	"fmt"

	"github.com/mmp/apsched"
	"github.com/mmp/apsched/index"
	"github.com/mmp/apsched/paramtable"
)

// Options tunes model assembly itself (as opposed to solver behavior,
// which lives in the solver package's Options).
type Options struct {
	// SymmetryBreaking, when true, adds the optional cut from the design
	// notes: slot0 at Outside is used whenever an entry job exists. Off by
	// default so the feasible region matches §4.3 exactly.
	SymmetryBreaking bool
}

// Assemble builds the full Model from an Index and its parameter Table:
// every variable of §4.3.1 and every constraint family of §4.3.2, plus the
// §4.3.3 objective.
func Assemble(ix *index.Index, pt *paramtable.Table, opts Options) (*Model, error) {
	if len(ix.Slots) == 0 {
		return nil, apsched.Wrap(apsched.KindModelBuildError, apsched.ErrZeroSlots)
	}

	m := NewModel(ix.Horizon)
	H := ix.Horizon

	slots := stringsOf(ix.Slots)
	positions := stringsOfPos(ix.Positions)
	jobs := make([]string, len(ix.Jobs))
	for i, j := range ix.Jobs {
		jobs[i] = string(j.ID)
	}
	aircraft := make([]string, len(ix.Aircraft))
	for i, a := range ix.Aircraft {
		aircraft[i] = string(a.ID)
	}
	clients := make([]string, len(ix.Clients))
	for i, c := range ix.Clients {
		clients[i] = string(c.ID)
	}

	jobsOfPlane := map[string][]string{}
	for _, j := range ix.Jobs {
		jobsOfPlane[string(j.Plane)] = append(jobsOfPlane[string(j.Plane)], string(j.ID))
	}
	aircraftOfClient := map[string][]string{}
	for _, c := range ix.Clients {
		for _, r := range c.Aircraft {
			aircraftOfClient[string(c.ID)] = append(aircraftOfClient[string(c.ID)], string(r))
		}
	}

	declareVars(m, ix, slots, positions, jobs, aircraft, clients, H)

	addFamily1(m, slots, positions, jobs)
	addFamily2to4(m, slots, positions, jobs, H)
	addFamily5(m, slots, positions, jobs, pt)
	addFamily6and7(m, slots, positions, jobs, H)
	addFamily8(m, jobs)
	addFamily9(m, ix, pt)
	addFamily10(m, clients, aircraftOfClient)
	addFamily11and12(m, slots, positions, jobs)
	addFamily13(m, ix)
	addFamily14(m, ix)
	addFamily15(m, ix, jobs)
	addFamily16(m, slots, positions, jobs)
	addFamily17(m, slots, positions, jobs, pt)
	addFamily18(m, slots, positions, jobs)
	addFamily19(m, slots, positions, aircraft, jobsOfPlane)
	addFamily20(m, ix, slots, positions, aircraft, H)
	addFamily21(m, slots, clients, positions, aircraftOfClient)
	addFamily22and23(m, ix, H)
	addFamily24(m, ix)
	addFamily25(m, ix)
	addFamily26(m, ix, jobs)
	addFamily26b(m, ix, jobs)
	addFamily27and28(m, jobs, pt)

	if opts.SymmetryBreaking {
		addSymmetryBreaking(m, ix)
	}

	addObjective(m, ix, slots, positions, jobs, aircraft, clients)

	return m, nil
}

func stringsOf(s []index.Slot) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}

func stringsOfPos(p []index.Position) []string {
	out := make([]string, len(p))
	for i, v := range p {
		out[i] = string(v)
	}
	return out
}

///////////////////////////////////////////////////////////////////////////
// 4.3.1 Decision variables.

func declareVars(m *Model, ix *index.Index, slots, positions, jobs, aircraft, clients []string, H float64) {
	for _, s := range slots {
		for _, p := range positions {
			m.AddVar(VarStartSlot(s, p), Continuous, 0, H)
			m.AddVar(VarFinishSlot(s, p), Continuous, 0, H)
			m.AddVar(VarDurSlot(s, p), Continuous, 0, H)
			m.AddVar(VarSwitch(s, p), Binary, 0, 1)

			for _, j := range jobs {
				m.AddVar(VarX(s, p, j), Binary, 0, 1)
				m.AddVar(VarStartFrag(s, p, j), Continuous, 0, H)
				m.AddVar(VarFinishFrag(s, p, j), Continuous, 0, H)
				m.AddVar(VarDurFrag(s, p, j), Continuous, 0, H)
			}
			for _, r := range aircraft {
				m.AddVar(VarYPlane(s, p, r), Binary, 0, 1)
				m.AddVar(VarPres(s, p, r), Binary, 0, 1)
				m.AddVar(VarIdle(s, p, r), Binary, 0, 1)
				m.AddVar(VarStartPres(s, p, r), Continuous, 0, H)
				m.AddVar(VarFinishPres(s, p, r), Continuous, 0, H)
				m.AddVar(VarDurPres(s, p, r), Continuous, 0, H)
			}
		}
	}
	for _, r := range aircraft {
		for _, p := range positions {
			m.AddVar(VarYPos(r, p), Binary, 0, 1)
		}
		m.AddVar(VarPlaneDelay(r), Continuous, 0, H)
	}
	for _, j := range jobs {
		m.AddVar(VarStartJob(j), Continuous, 0, H)
		m.AddVar(VarFinishJob(j), Continuous, 0, H)
	}
	for _, c := range clients {
		for _, p := range positions {
			m.AddVar(VarClientPos(c, p), Binary, 0, 1)
		}
		m.AddVar(VarClientDelay(c), Continuous, 0, H)
	}
	for _, q := range ix.InterferenceQuadruples {
		s, s2, p, p2 := string(q.S1), string(q.S2), string(q.P1), string(q.P2)
		m.AddVar(VarAlpha(s, s2, p, p2), Binary, 0, 1)
		m.AddVar(VarBetaS(s, s2, p, p2), Binary, 0, 1)
		m.AddVar(VarBetaF(s, s2, p, p2), Binary, 0, 1)
	}
}

///////////////////////////////////////////////////////////////////////////
// 4.3.2 Constraint families.

// 1. Single job per slot: sum_j x[s,p,j] <= 1.
func addFamily1(m *Model, slots, positions, jobs []string) {
	for _, s := range slots {
		for _, p := range positions {
			var terms []Term
			for _, j := range jobs {
				terms = append(terms, Term{VarX(s, p, j), 1})
			}
			m.AddConstraint(Constraint{
				Name: fmt.Sprintf("c01_single_job_per_slot__%s_%s", s, p), Family: 1,
				Terms: terms, Op: LE, RHS: 1,
			})
		}
	}
}

// 2. dur_j = finish_j - start_j.
// 3. start_j <= H*x.
// 4. finish_j <= H*x.
func addFamily2to4(m *Model, slots, positions, jobs []string, H float64) {
	for _, s := range slots {
		for _, p := range positions {
			for _, j := range jobs {
				x := VarX(s, p, j)
				sf, ff, df := VarStartFrag(s, p, j), VarFinishFrag(s, p, j), VarDurFrag(s, p, j)
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c02_fragment_duration_identity__%s_%s_%s", s, p, j), Family: 2,
					Terms: []Term{{ff, 1}, {sf, -1}, {df, -1}}, Op: EQ, RHS: 0,
				})
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c03_gate_fragment_start__%s_%s_%s", s, p, j), Family: 3,
					Terms: []Term{{sf, 1}, {x, -H}}, Op: LE, RHS: 0,
				})
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c04_gate_fragment_finish__%s_%s_%s", s, p, j), Family: 4,
					Terms: []Term{{ff, 1}, {x, -H}}, Op: LE, RHS: 0,
				})
			}
		}
	}
}

// 5. sum_{s,p} dur_j[s,p,j] = JobDuration[j].
func addFamily5(m *Model, slots, positions, jobs []string, pt *paramtable.Table) {
	for _, j := range jobs {
		var terms []Term
		for _, s := range slots {
			for _, p := range positions {
				terms = append(terms, Term{VarDurFrag(s, p, j), 1})
			}
		}
		m.AddConstraint(Constraint{
			Name: "c05_total_job_duration__" + j, Family: 5,
			Terms: terms, Op: EQ, RHS: pt.Duration(index.JobID(j)),
		})
	}
}

// 6. |start_job[j] - start_j[s,p,j]| <= M(1-x[s,p,j]).
// 7. same for finish.
func addFamily6and7(m *Model, slots, positions, jobs []string, H float64) {
	for _, j := range jobs {
		sj, fj := VarStartJob(j), VarFinishJob(j)
		for _, s := range slots {
			for _, p := range positions {
				x := VarX(s, p, j)
				sf, ff := VarStartFrag(s, p, j), VarFinishFrag(s, p, j)
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c06_global_start_upper__%s_%s_%s", s, p, j), Family: 6,
					Terms: []Term{{sj, 1}, {sf, -1}, {x, H}}, Op: LE, RHS: H,
				})
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c06_global_start_lower__%s_%s_%s", s, p, j), Family: 6,
					Terms: []Term{{sf, 1}, {sj, -1}, {x, H}}, Op: LE, RHS: H,
				})
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c07_global_finish_upper__%s_%s_%s", s, p, j), Family: 7,
					Terms: []Term{{fj, 1}, {ff, -1}, {x, H}}, Op: LE, RHS: H,
				})
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c07_global_finish_lower__%s_%s_%s", s, p, j), Family: 7,
					Terms: []Term{{ff, 1}, {fj, -1}, {x, H}}, Op: LE, RHS: H,
				})
			}
		}
	}
}

// 8. start_job[j] <= finish_job[j].
func addFamily8(m *Model, jobs []string) {
	for _, j := range jobs {
		m.AddConstraint(Constraint{
			Name: "c08_start_le_finish__" + j, Family: 8,
			Terms: []Term{{VarStartJob(j), 1}, {VarFinishJob(j), -1}}, Op: LE, RHS: 0,
		})
	}
}

// 9. plane_delay[r] >= finish_job[lastJob(r)] - LateFinish[r].
func addFamily9(m *Model, ix *index.Index, pt *paramtable.Table) {
	for _, a := range ix.Aircraft {
		r := string(a.ID)
		var last index.JobID
		for _, j := range ix.Jobs {
			if j.Plane == a.ID && pt.IsLastJob(j.ID) {
				last = j.ID
				break
			}
		}
		if last == "" {
			continue
		}
		m.AddConstraint(Constraint{
			Name: "c09_plane_tardiness__" + r, Family: 9,
			Terms: []Term{{VarPlaneDelay(r), 1}, {VarFinishJob(string(last)), -1}},
			Op:    GE, RHS: -pt.LateFinish(a.ID),
		})
	}
}

// 10. client_delay[c] = sum_r plane_delay[r] for r owned by c.
func addFamily10(m *Model, clients []string, aircraftOfClient map[string][]string) {
	for _, c := range clients {
		terms := []Term{{VarClientDelay(c), 1}}
		for _, r := range aircraftOfClient[c] {
			terms = append(terms, Term{VarPlaneDelay(r), -1})
		}
		m.AddConstraint(Constraint{
			Name: "c10_client_tardiness__" + c, Family: 10,
			Terms: terms, Op: EQ, RHS: 0,
		})
	}
}

// 11-12. start[s,p] = sum_j start_j; finish[s,p] = sum_j finish_j.
func addFamily11and12(m *Model, slots, positions, jobs []string) {
	for _, s := range slots {
		for _, p := range positions {
			startTerms := []Term{{VarStartSlot(s, p), 1}}
			finishTerms := []Term{{VarFinishSlot(s, p), 1}}
			for _, j := range jobs {
				startTerms = append(startTerms, Term{VarStartFrag(s, p, j), -1})
				finishTerms = append(finishTerms, Term{VarFinishFrag(s, p, j), -1})
			}
			m.AddConstraint(Constraint{Name: fmt.Sprintf("c11_slot_start_aggregate__%s_%s", s, p), Family: 11, Terms: startTerms, Op: EQ, RHS: 0})
			m.AddConstraint(Constraint{Name: fmt.Sprintf("c12_slot_finish_aggregate__%s_%s", s, p), Family: 12, Terms: finishTerms, Op: EQ, RHS: 0})
		}
	}
}

// 13. start[s,p] >= finish[prev,p].
func addFamily13(m *Model, ix *index.Index) {
	for _, sp := range ix.SlotSequencePairs {
		s, prev, p := string(sp.Slot), string(sp.Prev), string(sp.Position)
		m.AddConstraint(Constraint{
			Name: fmt.Sprintf("c13_slot_order__%s_%s_%s", prev, s, p), Family: 13,
			Terms: []Term{{VarStartSlot(s, p), 1}, {VarFinishSlot(prev, p), -1}}, Op: GE, RHS: 0,
		})
	}
}

// 14. start_job[j'] >= finish_job[j].
func addFamily14(m *Model, ix *index.Index) {
	for _, pp := range ix.PrecedencePairs {
		m.AddConstraint(Constraint{
			Name: fmt.Sprintf("c14_precedence__%s_before_%s", pp.First, pp.Second), Family: 14,
			Terms: []Term{{VarStartJob(string(pp.Second)), 1}, {VarFinishJob(string(pp.First)), -1}}, Op: GE, RHS: 0,
		})
	}
}

// 15. sum_j x[s,p,j] <= sum_j x[prev,p,j].
func addFamily15(m *Model, ix *index.Index, jobs []string) {
	for _, sp := range ix.SlotSequencePairs {
		s, prev, p := string(sp.Slot), string(sp.Prev), string(sp.Position)
		var terms []Term
		for _, j := range jobs {
			terms = append(terms, Term{VarX(s, p, j), 1})
		}
		for _, j := range jobs {
			terms = append(terms, Term{VarX(prev, p, j), -1})
		}
		m.AddConstraint(Constraint{
			Name: fmt.Sprintf("c15_no_empty_lower_slots__%s_%s_%s", prev, s, p), Family: 15,
			Terms: terms, Op: LE, RHS: 0,
		})
	}
}

// 16. sum_{s,p} x[s,p,j] = 1.
func addFamily16(m *Model, slots, positions, jobs []string) {
	for _, j := range jobs {
		var terms []Term
		for _, s := range slots {
			for _, p := range positions {
				terms = append(terms, Term{VarX(s, p, j), 1})
			}
		}
		m.AddConstraint(Constraint{Name: "c16_exactly_one_placement__" + j, Family: 16, Terms: terms, Op: EQ, RHS: 1})
	}
}

// 17. finish_j - start_j = JobDuration[j]*x[s,p,j].
func addFamily17(m *Model, slots, positions, jobs []string, pt *paramtable.Table) {
	for _, s := range slots {
		for _, p := range positions {
			for _, j := range jobs {
				dur := pt.Duration(index.JobID(j))
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c17_fragment_duration_if_assigned__%s_%s_%s", s, p, j), Family: 17,
					Terms: []Term{{VarFinishFrag(s, p, j), 1}, {VarStartFrag(s, p, j), -1}, {VarX(s, p, j), -dur}},
					Op:    EQ, RHS: 0,
				})
			}
		}
	}
}

// 18. dur[s,p] = sum_j dur_j[s,p,j].
func addFamily18(m *Model, slots, positions, jobs []string) {
	for _, s := range slots {
		for _, p := range positions {
			terms := []Term{{VarDurSlot(s, p), 1}}
			for _, j := range jobs {
				terms = append(terms, Term{VarDurFrag(s, p, j), -1})
			}
			m.AddConstraint(Constraint{Name: fmt.Sprintf("c18_slot_duration_aggregate__%s_%s", s, p), Family: 18, Terms: terms, Op: EQ, RHS: 0})
		}
	}
}

// 19. y_plane[s,p,r] = sum_{j: plane=r} x[s,p,j].
func addFamily19(m *Model, slots, positions, aircraft []string, jobsOfPlane map[string][]string) {
	for _, s := range slots {
		for _, p := range positions {
			for _, r := range aircraft {
				terms := []Term{{VarYPlane(s, p, r), 1}}
				for _, j := range jobsOfPlane[r] {
					terms = append(terms, Term{VarX(s, p, j), -1})
				}
				m.AddConstraint(Constraint{Name: fmt.Sprintf("c19_derive_yplane__%s_%s_%s", s, p, r), Family: 19, Terms: terms, Op: EQ, RHS: 0})
			}
		}
	}
}

// 20. y_pos/presence linkage (several subparts).
func addFamily20(m *Model, ix *index.Index, slots, positions, aircraft []string, H float64) {
	for _, r := range aircraft {
		for _, p := range positions {
			for _, s := range slots {
				// y_pos >= y_plane
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c20a_derive_ypos__%s_%s_%s", r, p, s), Family: 20,
					Terms: []Term{{VarYPos(r, p), 1}, {VarYPlane(s, p, r), -1}}, Op: GE, RHS: 0,
				})
				// pres >= y_plane
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c20b_present_if_work__%s_%s_%s", s, p, r), Family: 20,
					Terms: []Term{{VarPres(s, p, r), 1}, {VarYPlane(s, p, r), -1}}, Op: GE, RHS: 0,
				})
			}
		}
	}

	// presence accounting: for each (s,r): sum_p pres = sum_p y_plane + sum_p idle.
	for _, s := range slots {
		for _, r := range aircraft {
			terms := []Term{}
			for _, p := range positions {
				terms = append(terms, Term{VarPres(s, p, r), 1})
			}
			for _, p := range positions {
				terms = append(terms, Term{VarYPlane(s, p, r), -1})
			}
			for _, p := range positions {
				terms = append(terms, Term{VarIdle(s, p, r), -1})
			}
			m.AddConstraint(Constraint{Name: fmt.Sprintf("c20c_presence_accounting__%s_%s", s, r), Family: 20, Terms: terms, Op: EQ, RHS: 0})
		}
	}

	// one aircraft per position per slot.
	for _, s := range slots {
		for _, p := range positions {
			var terms []Term
			for _, r := range aircraft {
				terms = append(terms, Term{VarPres(s, p, r), 1})
			}
			m.AddConstraint(Constraint{Name: fmt.Sprintf("c20d_one_aircraft_per_slot__%s_%s", s, p), Family: 20, Terms: terms, Op: LE, RHS: 1})
		}
	}

	// no teleportation + idle definition + presence time linkage.
	for _, sp := range ix.SlotSequencePairs {
		s, prev, p := string(sp.Slot), string(sp.Prev), string(sp.Position)
		sw := VarSwitch(prev, p)
		for _, r := range aircraft {
			presPrev, presS := VarPres(prev, p, r), VarPres(s, p, r)
			m.AddConstraint(Constraint{
				Name: fmt.Sprintf("c20e_no_teleport_fwd__%s_%s_%s_%s", prev, s, p, r), Family: 20,
				Terms: []Term{{presPrev, 1}, {presS, -1}, {sw, -1}}, Op: LE, RHS: 0,
			})
			m.AddConstraint(Constraint{
				Name: fmt.Sprintf("c20e_no_teleport_bwd__%s_%s_%s_%s", prev, s, p, r), Family: 20,
				Terms: []Term{{presS, 1}, {presPrev, -1}, {sw, -1}}, Op: LE, RHS: 0,
			})
		}
	}

	for _, s := range slots {
		for _, p := range positions {
			for _, r := range aircraft {
				pres, yplane, idle := VarPres(s, p, r), VarYPlane(s, p, r), VarIdle(s, p, r)
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c20f_idle_lower__%s_%s_%s", s, p, r), Family: 20,
					Terms: []Term{{idle, 1}, {pres, -1}, {yplane, 1}}, Op: GE, RHS: 0,
				})
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c20f_idle_upper__%s_%s_%s", s, p, r), Family: 20,
					Terms: []Term{{idle, 1}, {pres, -1}}, Op: LE, RHS: 0,
				})

				startSlot, finishSlot := VarStartSlot(s, p), VarFinishSlot(s, p)
				startPres, finishPres := VarStartPres(s, p, r), VarFinishPres(s, p, r)
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c20g_start_presence_link__%s_%s_%s", s, p, r), Family: 20,
					Terms: []Term{{startPres, 1}, {startSlot, -1}, {pres, H}}, Op: LE, RHS: H,
				})
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c20g_finish_presence_lower__%s_%s_%s", s, p, r), Family: 20,
					Terms: []Term{{finishPres, 1}, {finishSlot, -1}, {pres, -H}}, Op: GE, RHS: -H,
				})
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c20g_finish_presence_upper__%s_%s_%s", s, p, r), Family: 20,
					Terms: []Term{{finishPres, 1}, {finishSlot, -1}, {pres, H}}, Op: LE, RHS: H,
				})
			}
		}
	}
}

// 21. client_pos[c,p] >= sum_{r owned by c} y_pos[r,p].
func addFamily21(m *Model, slots []string, clients, positions []string, aircraftOfClient map[string][]string) {
	_ = slots
	for _, c := range clients {
		for _, p := range positions {
			terms := []Term{{VarClientPos(c, p), 1}}
			for _, r := range aircraftOfClient[c] {
				terms = append(terms, Term{VarYPos(r, p), -1})
			}
			m.AddConstraint(Constraint{Name: fmt.Sprintf("c21_client_in_position__%s_%s", c, p), Family: 21, Terms: terms, Op: GE, RHS: 0})
		}
	}
}

// presSumTerms returns the per-(slot,position) sum over aircraft of a presence
// time variable family (start_pres or finish_pres), used by 22/23 in place
// of the bilinear start_pres*pres product (§4.3.4).
func presSumTerms(varFn func(s, p, r string) string, s, p string, aircraft []string) []Term {
	var terms []Term
	for _, r := range aircraft {
		terms = append(terms, Term{varFn(s, p, r), 1})
	}
	return terms
}

// 22. H*betaS + StartPresSum(s,p) - StartPresSum(s',p') >= 0.
// 23. H*betaF + StartPresSum(s',p') - FinishPresSum(s,p) >= 0.
func addFamily22and23(m *Model, ix *index.Index, H float64) {
	aircraft := make([]string, len(ix.Aircraft))
	for i, a := range ix.Aircraft {
		aircraft[i] = string(a.ID)
	}
	for _, q := range ix.InterferenceQuadruples {
		s, s2, p, p2 := string(q.S1), string(q.S2), string(q.P1), string(q.P2)
		betaS, betaF := VarBetaS(s, s2, p, p2), VarBetaF(s, s2, p, p2)

		terms22 := []Term{{betaS, H}}
		terms22 = append(terms22, presSumTerms(VarStartPres, s, p, aircraft)...)
		for _, t := range presSumTerms(VarStartPres, s2, p2, aircraft) {
			terms22 = append(terms22, Term{t.Var, -1})
		}
		m.AddConstraint(Constraint{
			Name: fmt.Sprintf("c22_betas_definition__%s_%s_%s_%s", s, s2, p, p2), Family: 22,
			Terms: terms22, Op: GE, RHS: 0,
		})

		terms23 := []Term{{betaF, H}}
		terms23 = append(terms23, presSumTerms(VarStartPres, s2, p2, aircraft)...)
		for _, t := range presSumTerms(VarFinishPres, s, p, aircraft) {
			terms23 = append(terms23, Term{t.Var, -1})
		}
		m.AddConstraint(Constraint{
			Name: fmt.Sprintf("c23_betaf_definition__%s_%s_%s_%s", s, s2, p, p2), Family: 23,
			Terms: terms23, Op: GE, RHS: 0,
		})
	}
}

// 24. 1 + alpha >= betaS + betaF.
func addFamily24(m *Model, ix *index.Index) {
	for _, q := range ix.InterferenceQuadruples {
		s, s2, p, p2 := string(q.S1), string(q.S2), string(q.P1), string(q.P2)
		alpha, betaS, betaF := VarAlpha(s, s2, p, p2), VarBetaS(s, s2, p, p2), VarBetaF(s, s2, p, p2)
		m.AddConstraint(Constraint{
			Name: fmt.Sprintf("c24_interference_activation__%s_%s_%s_%s", s, s2, p, p2), Family: 24,
			Terms: []Term{{alpha, 1}, {betaS, -1}, {betaF, -1}}, Op: GE, RHS: -1,
		})
	}
}

// 25. 1 + switch[s,p] >= pres[s,p,r] + pres[s',p,r'].
func addFamily25(m *Model, ix *index.Index) {
	for _, st := range ix.SwitchTuples {
		p, s, s2 := string(st.Position), string(st.Slot), string(st.NextSlot)
		ra, rb := string(st.AircraftA), string(st.AircraftB)
		m.AddConstraint(Constraint{
			Name: fmt.Sprintf("c25_switch_counting__%s_%s_%s_%s_%s", p, s, s2, ra, rb), Family: 25,
			Terms: []Term{{VarSwitch(s, p), 1}, {VarPres(s, p, ra), -1}, {VarPres(s2, p, rb), -1}}, Op: GE, RHS: -1,
		})
	}
}

// 26. 1 + betaS + betaF >= x[s,p,j] + x[s',p',j] over InterferenceQuadruples,
// for every job (sparse: only iterates the explicit quadruple set).
func addFamily26(m *Model, ix *index.Index, jobs []string) {
	for _, q := range ix.InterferenceQuadruples {
		if q.S1 == q.S2 && q.P1 == q.P2 {
			continue
		}
		s, s2, p, p2 := string(q.S1), string(q.S2), string(q.P1), string(q.P2)
		betaS, betaF := VarBetaS(s, s2, p, p2), VarBetaF(s, s2, p, p2)
		for _, j := range jobs {
			m.AddConstraint(Constraint{
				Name: fmt.Sprintf("c26_fragment_anti_overlap__%s_%s_%s_%s_%s", s, s2, p, p2, j), Family: 26,
				Terms: []Term{{betaS, 1}, {betaF, 1}, {VarX(s, p, j), -1}, {VarX(s2, p2, j), -1}}, Op: GE, RHS: -1,
			})
		}
	}
}

// 26b. Entry/exit jobs must route to Outside.
func addFamily26b(m *Model, ix *index.Index, jobs []string) {
	_ = jobs
	for _, j := range ix.Jobs {
		if !j.EntryExit {
			continue
		}
		for _, s := range ix.Slots {
			for _, p := range ix.Positions {
				if p == index.Outside {
					continue
				}
				m.AddConstraint(Constraint{
					Name: fmt.Sprintf("c26b_entry_exit_outside__%s_%s_%s", s, p, j.ID), Family: 26,
					Terms: []Term{{VarX(string(s), string(p), string(j.ID)), 1}}, Op: LE, RHS: 0,
				})
			}
		}
	}
}

// 27. start_job[j] >= EarlyStart[plane(j)].
// 28. finish_job[j] <= LateFinish[plane(j)].
func addFamily27and28(m *Model, jobs []string, pt *paramtable.Table) {
	for _, j := range jobs {
		r := pt.PlaneOf(index.JobID(j))
		m.AddConstraint(Constraint{
			Name: "c27_early_start_window__" + j, Family: 27,
			Terms: []Term{{VarStartJob(j), 1}}, Op: GE, RHS: pt.EarlyStart(r),
		})
		m.AddConstraint(Constraint{
			Name: "c28_late_finish_window__" + j, Family: 28,
			Terms: []Term{{VarFinishJob(j), 1}}, Op: LE, RHS: pt.LateFinish(r),
		})
	}
}

// addSymmetryBreaking adds the optional cut: slot0 at Outside is used by
// one of the aircraft's entry/exit dummies whenever at least one exists.
// Slots are interchangeable up to family 15's no-empty-lower-slots rule,
// so without this cut the solver is free to place the first entry job at
// any Outside slot that family 13/15 leave feasible; anchoring it at
// slot0 removes that symmetry without shrinking the feasible region for
// any other job, since family 26b already confines every entry/exit job
// to Outside.
func addSymmetryBreaking(m *Model, ix *index.Index) {
	if len(ix.Slots) == 0 {
		return
	}
	slot0 := string(ix.Slots[0])
	var terms []Term
	for _, j := range ix.Jobs {
		if j.EntryExit {
			terms = append(terms, Term{VarX(slot0, string(index.Outside), string(j.ID)), 1})
		}
	}
	if len(terms) == 0 {
		return
	}
	m.AddConstraint(Constraint{
		Name: "c29_symmetry_slot0_outside_entry", Family: 29,
		Terms: terms, Op: EQ, RHS: 1,
	})
}

///////////////////////////////////////////////////////////////////////////
// 4.3.3 Objective.

func addObjective(m *Model, ix *index.Index, slots, positions, jobs, aircraft, clients []string) {
	for _, s := range slots {
		for _, p := range positions {
			for _, j := range jobs {
				m.AddObjectiveTerm(VarX(s, p, j), 1)
			}
			m.AddObjectiveTerm(VarSwitch(s, p), 1)
			for _, r := range aircraft {
				m.AddObjectiveTerm(VarPres(s, p, r), 1)
				m.AddObjectiveTerm(VarIdle(s, p, r), 1)
			}
		}
	}
	for _, q := range ix.InterferenceQuadruples {
		m.AddObjectiveTerm(VarAlpha(string(q.S1), string(q.S2), string(q.P1), string(q.P2)), 1)
	}
	for _, c := range clients {
		m.AddObjectiveTerm(VarClientDelay(c), 1)
	}
}

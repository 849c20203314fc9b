// model/vars.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package model is the Model Assembler (§4.3): it instantiates every
// decision variable of §4.3.1 and emits every constraint family of §4.3.2
// as linear inequalities/equalities, plus the single linear objective of
// §4.3.3. The result is a solver-agnostic Model that any solver.Engine can
// lower to its own native representation.
package model

import "strings"

// Kind distinguishes binary decision variables from continuous ones.
type Kind int

const (
	Continuous Kind = iota
	Binary
)

// PlusInfinity is the sentinel upper bound for a variable with no finite
// cap (solvers are told to treat it as +inf rather than a literal huge
// number, avoiding spurious big-M interactions at the MPS/CP-SAT layer).
const PlusInfinity = 1e30

// Var is one decision variable, named by family and the index tuple that
// produced it (see the Var<Family> encoders below).
type Var struct {
	Name string
	Kind Kind
	LB   float64
	UB   float64
}

// Op is a linear constraint's relational operator.
type Op int

const (
	LE Op = iota
	GE
	EQ
)

// Term is one coefficient*variable addend of a constraint or the
// objective.
type Term struct {
	Var   string
	Coeff float64
}

// Constraint is one linear constraint, carrying the symbolic name that the
// MPS writer emits as a row label (so IIS diagnostics can reference it) and
// the §4.3.2 family number it belongs to.
type Constraint struct {
	Name   string
	Family int
	Terms  []Term
	Op     Op
	RHS    float64
}

// Model is the engine-agnostic assembled program: every variable, every
// constraint, and the objective row.
type Model struct {
	Vars        []Var
	Constraints []Constraint
	Objective   []Term
	// Horizon is carried for engines (e.g. cpsat) that need it to bound
	// integer domains.
	Horizon float64

	varIndex map[string]int
}

// NewModel returns an empty Model ready for AddVar/AddConstraint calls.
func NewModel(horizon float64) *Model {
	return &Model{Horizon: horizon, varIndex: make(map[string]int)}
}

// AddVar registers a variable if it hasn't been seen before; re-adding the
// same name is a no-op, which keeps the family-builder functions below
// simple (they can unconditionally declare a variable every time they
// touch it).
func (m *Model) AddVar(name string, kind Kind, lb, ub float64) {
	if _, ok := m.varIndex[name]; ok {
		return
	}
	m.varIndex[name] = len(m.Vars)
	m.Vars = append(m.Vars, Var{Name: name, Kind: kind, LB: lb, UB: ub})
}

func (m *Model) HasVar(name string) bool {
	_, ok := m.varIndex[name]
	return ok
}

// AddConstraint appends a fully-built constraint row.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// AddObjectiveTerm adds coeff*var to the (minimised) objective.
func (m *Model) AddObjectiveTerm(varName string, coeff float64) {
	m.Objective = append(m.Objective, Term{Var: varName, Coeff: coeff})
}

///////////////////////////////////////////////////////////////////////////
// Variable name encoding.
//
// Every variable is named "<family>#<index0>#<index1>#...". Solver
// engines treat names opaquely; the Verifier and result extraction
// (result.go) decode them back into their index tuples.

const sep = "#"

func encode(family string, parts ...string) string {
	return family + sep + strings.Join(parts, sep)
}

func decode(name string) (family string, parts []string) {
	fields := strings.Split(name, sep)
	return fields[0], fields[1:]
}

const (
	famX           = "x"           // x[s,p,j]
	famYPlane      = "yplane"      // y_plane[s,p,r]
	famYPos        = "ypos"        // y_pos[r,p]
	famPres        = "pres"        // pres[s,p,r]
	famIdle        = "idle"        // idle[s,p,r]
	famSwitch      = "switch"      // switch[s,p]
	famClientPos   = "clientpos"   // client_pos[c,p]
	famAlpha       = "alpha"       // alpha[s,s2,p,p2]
	famBetaS       = "betas"       // betaS[s,s2,p,p2]
	famBetaF       = "betaf"       // betaF[s,s2,p,p2]
	famStartSlot   = "startslot"   // start[s,p]
	famFinishSlot  = "finishslot"  // finish[s,p]
	famDurSlot     = "durslot"     // dur[s,p]
	famStartFrag   = "startfrag"   // start_j[s,p,j]
	famFinishFrag  = "finishfrag"  // finish_j[s,p,j]
	famDurFrag     = "durfrag"     // dur_j[s,p,j]
	famStartJob    = "startjob"    // start_job[j]
	famFinishJob   = "finishjob"   // finish_job[j]
	famStartPres   = "startpres"   // start_pres[s,p,r]
	famFinishPres  = "finishpres"  // finish_pres[s,p,r]
	famDurPres     = "durpres"     // dur_pres[s,p,r]
	famPlaneDelay  = "planedelay"  // plane_delay[r]
	famClientDelay = "clientdelay" // client_delay[c]
)

func VarX(s, p, j string) string          { return encode(famX, s, p, j) }
func VarYPlane(s, p, r string) string      { return encode(famYPlane, s, p, r) }
func VarYPos(r, p string) string           { return encode(famYPos, r, p) }
func VarPres(s, p, r string) string        { return encode(famPres, s, p, r) }
func VarIdle(s, p, r string) string        { return encode(famIdle, s, p, r) }
func VarSwitch(s, p string) string         { return encode(famSwitch, s, p) }
func VarClientPos(c, p string) string      { return encode(famClientPos, c, p) }
func VarAlpha(s, s2, p, p2 string) string  { return encode(famAlpha, s, s2, p, p2) }
func VarBetaS(s, s2, p, p2 string) string  { return encode(famBetaS, s, s2, p, p2) }
func VarBetaF(s, s2, p, p2 string) string  { return encode(famBetaF, s, s2, p, p2) }
func VarStartSlot(s, p string) string      { return encode(famStartSlot, s, p) }
func VarFinishSlot(s, p string) string     { return encode(famFinishSlot, s, p) }
func VarDurSlot(s, p string) string        { return encode(famDurSlot, s, p) }
func VarStartFrag(s, p, j string) string   { return encode(famStartFrag, s, p, j) }
func VarFinishFrag(s, p, j string) string  { return encode(famFinishFrag, s, p, j) }
func VarDurFrag(s, p, j string) string     { return encode(famDurFrag, s, p, j) }
func VarStartJob(j string) string          { return encode(famStartJob, j) }
func VarFinishJob(j string) string         { return encode(famFinishJob, j) }
func VarStartPres(s, p, r string) string   { return encode(famStartPres, s, p, r) }
func VarFinishPres(s, p, r string) string  { return encode(famFinishPres, s, p, r) }
func VarDurPres(s, p, r string) string      { return encode(famDurPres, s, p, r) }
func VarPlaneDelay(r string) string        { return encode(famPlaneDelay, r) }
func VarClientDelay(c string) string       { return encode(famClientDelay, c) }

// Decode exposes the family/parts split for consumers (result extraction,
// the verifier, MPS/CP-SAT lowering) that need to recover a variable's
// index tuple from its name.
func Decode(name string) (family string, parts []string) { return decode(name) }

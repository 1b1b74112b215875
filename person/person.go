// Package person implements the per-person capability spec.md leaves
// opaque: movement, state transition, and the infection-spreading
// predicates a PatchWorker drives each tick. The core package only ever
// calls through the Person interface; SIRPerson is one concrete, swappable
// implementation supplied so the repository runs end to end.
//
// Status vocabulary (Susceptible/Infected/Infectious/Recovered) is grounded
// on the compartmental-model status codes of a classical SIR simulation,
// split into a non-infectious incubating state (Infected) and a
// transmitting state (Infectious) per spec.md's distinct isInfected/
// isInfectious predicates.
package person

import (
	"math/rand"

	"github.com/ivanpozdin/patchsim/geometry"
)

// Status is a person's epidemiological compartment.
type Status int

const (
	Susceptible Status = iota
	Infected           // carrying the pathogen, not yet transmitting (incubating)
	Infectious         // transmitting
	Recovered
)

func (s Status) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Infected:
		return "infected"
	case Infectious:
		return "infectious"
	case Recovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Info is the externally-visible snapshot of a person, used for trace
// entries and for the scenario's initial-population input.
type Info struct {
	ID       int
	Position geometry.XY
	Status   Status
	AgeInState int
}

// Context is the per-patch capability a Person is cloned and ticked with:
// the grid bounds, the obstacle predicate, the scenario's epidemiological
// parameters, and a deterministic random source. Context is rebound on
// every cross-patch handoff rather than stored by reference on the person,
// per spec.md's design note against back-references.
type Context struct {
	Grid            geometry.Rectangle
	Obstacle        func(geometry.XY) bool
	IncubationTicks int
	RecoveryTicks   int
	Rand            *rand.Rand
}

// Person is the capability a PatchWorker needs from a simulated individual.
// Movement and state-transition rules live entirely behind this interface;
// the core never inspects a concrete Person's fields.
type Person interface {
	ID() int
	Position() geometry.XY
	Info() Info

	// Clone returns a copy of this person rebound to ctx. Used whenever a
	// person crosses a patch boundary via a padding snapshot.
	Clone(ctx Context) Person

	// Tick advances the person by one step: it proposes a new position (a
	// "ghost") and advances disease-state timers, but does not yet commit
	// the move.
	Tick(ctx Context)

	// BustGhost finalizes the pending move proposed by Tick, resolving any
	// collision against ctx's obstacles, making position final for the
	// tick.
	BustGhost(ctx Context)

	IsSusceptible() bool
	IsInfected() bool
	IsInfectious() bool
	IsRecovered() bool
	IsCoughing() bool
	IsBreathing() bool

	// Infect marks the person infected if (and only if) currently
	// susceptible; a no-op otherwise, so repeated or redundant infection
	// attempts from multiple infectious neighbors are harmless.
	Infect()
}

// SIRPerson is a bounded random-walk person: each tick it proposes moving
// one cell along a single random axis (mirroring the single-cell-per-tick
// movement envelope spec.md's cycle-duration derivation assumes), then
// commits the move unless the destination is an obstacle, in which case it
// stays put for the tick.
type SIRPerson struct {
	id         int
	pos        geometry.XY
	ghost      geometry.XY
	status     Status
	ageInState int
}

// NewSIRPerson returns a susceptible person at pos with the given id.
func NewSIRPerson(id int, pos geometry.XY) *SIRPerson {
	return &SIRPerson{id: id, pos: pos, ghost: pos, status: Susceptible}
}

func (p *SIRPerson) ID() int                  { return p.id }
func (p *SIRPerson) Position() geometry.XY    { return p.pos }

func (p *SIRPerson) Info() Info {
	return Info{ID: p.id, Position: p.pos, Status: p.status, AgeInState: p.ageInState}
}

func (p *SIRPerson) Clone(ctx Context) Person {
	clone := *p
	return &clone
}

func (p *SIRPerson) Tick(ctx Context) {
	p.advanceState(ctx)
	p.ghost = p.proposeMove(ctx)
}

// advanceState moves the person through Infected -> Infectious ->
// Recovered on the scenario's incubation/recovery schedule.
func (p *SIRPerson) advanceState(ctx Context) {
	p.ageInState++
	switch p.status {
	case Infected:
		if p.ageInState >= ctx.IncubationTicks {
			p.status = Infectious
			p.ageInState = 0
		}
	case Infectious:
		if p.ageInState >= ctx.RecoveryTicks {
			p.status = Recovered
			p.ageInState = 0
		}
	}
}

// proposeMove returns a candidate next position one cell away along a
// single random axis, clamped to ctx's grid.
func (p *SIRPerson) proposeMove(ctx Context) geometry.XY {
	if ctx.Rand == nil {
		return p.pos
	}
	dx, dy := 0, 0
	if ctx.Rand.Intn(2) == 0 {
		dx = ctx.Rand.Intn(3) - 1
	} else {
		dy = ctx.Rand.Intn(3) - 1
	}
	candidate := geometry.XY{X: p.pos.X + dx, Y: p.pos.Y + dy}
	if !ctx.Grid.Contains(candidate) {
		return p.pos
	}
	return candidate
}

func (p *SIRPerson) BustGhost(ctx Context) {
	if ctx.Obstacle != nil && ctx.Obstacle(p.ghost) {
		p.ghost = p.pos
	}
	p.pos = p.ghost
}

func (p *SIRPerson) IsSusceptible() bool { return p.status == Susceptible }
func (p *SIRPerson) IsInfected() bool    { return p.status == Infected || p.status == Infectious }
func (p *SIRPerson) IsInfectious() bool  { return p.status == Infectious }
func (p *SIRPerson) IsRecovered() bool   { return p.status == Recovered }
func (p *SIRPerson) IsCoughing() bool    { return p.status == Infectious }
func (p *SIRPerson) IsBreathing() bool   { return p.status != Recovered }

func (p *SIRPerson) Infect() {
	if p.status == Susceptible {
		p.status = Infected
		p.ageInState = 0
	}
}

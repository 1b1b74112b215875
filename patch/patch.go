// Package patch implements the per-patch simulation unit: the immutable
// Patch description an orchestrator builds once, the cycle-duration
// derivation that bounds how long a patch may run locally between padding
// exchanges, and the OutputEntry/Statistics types a PatchWorker emits every
// tick.
package patch

import (
	"github.com/ivanpozdin/patchsim/geometry"
	"github.com/ivanpozdin/patchsim/padding"
	"github.com/ivanpozdin/patchsim/person"
	"github.com/ivanpozdin/patchsim/scenario"
	"github.com/ivanpozdin/patchsim/simerr"
)

// Patch is one partition cell plus everything a worker needs to simulate it,
// built once by the orchestrator and never mutated afterward.
type Patch struct {
	ID                int
	Area              geometry.Rectangle
	PaddedArea        geometry.Rectangle
	InitialPopulation []person.Person
	InnerChannels     []*padding.Channel
	OuterChannels     []*padding.Channel
	Queries           []scenario.Query
	CycleDuration     int
}

// CycleDuration returns the largest K >= 1 satisfying
// padding >= 2*K + ceil(K/incubationTicks)*infectionRadius, or
// simerr.ErrInsufficientPadding if no such K exists.
func CycleDuration(paddingWidth, incubationTicks, infectionRadius int) (int, error) {
	best := 0
	for k := 1; k <= paddingWidth; k++ {
		needed := 2*k + ceilDiv(k, incubationTicks)*infectionRadius
		if needed > paddingWidth {
			continue
		}
		best = k
	}
	if best == 0 {
		return 0, simerr.ErrInsufficientPadding
	}
	return best, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Statistics is the per-query SIR tally a PatchWorker produces each tick.
type Statistics struct {
	Susceptible int
	Infected    int
	Infectious  int
	Recovered   int
}

// Add returns the pointwise sum of s and o.
func (s Statistics) Add(o Statistics) Statistics {
	return Statistics{
		Susceptible: s.Susceptible + o.Susceptible,
		Infected:    s.Infected + o.Infected,
		Infectious:  s.Infectious + o.Infectious,
		Recovered:   s.Recovered + o.Recovered,
	}
}

// TraceEntry is the person-identifying-information-stripped snapshot the
// collector emits in a globally sorted trace.
type TraceEntry struct {
	Position   geometry.XY
	Status     person.Status
	AgeInState int
}

// TracedPerson pairs a TraceEntry with the id needed to sort-merge traces
// from multiple patches before the id is discarded.
type TracedPerson struct {
	ID    int
	Entry TraceEntry
}

// OutputEntry is the value a PatchWorker emits once per tick: the tick
// index, per-query statistics, and (when tracing is enabled) the patch's
// own unordered slice of traced persons.
type OutputEntry struct {
	Tick    int
	PatchID int
	Stats   map[string]Statistics
	Trace   []TracedPerson
}

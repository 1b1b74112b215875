package patch

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivanpozdin/patchsim/geometry"
	"github.com/ivanpozdin/patchsim/person"
	"github.com/ivanpozdin/patchsim/scenario"
	"github.com/ivanpozdin/patchsim/simerr"
	"github.com/ivanpozdin/patchsim/validator"
)

func singlePatchWorker(t *testing.T, population []person.Person, ticks int, sink chan OutputEntry) *Worker {
	t.Helper()
	grid := geometry.NewRectangle(geometry.XY{}, geometry.XY{X: 10, Y: 10})
	p := &Patch{
		ID:                0,
		Area:              grid,
		PaddedArea:        grid,
		InitialPopulation: population,
		Queries: []scenario.Query{
			{Name: "all", Area: grid},
		},
		CycleDuration: 2,
	}
	return &Worker{
		Patch:           p,
		Grid:            grid,
		Obstacle:        func(geometry.XY) bool { return false },
		Ticks:           ticks,
		InfectionRadius: 1,
		IncubationTicks: 2,
		RecoveryTicks:   3,
		TraceEnabled:    true,
		Validator:       validator.Noop{},
		Rand:            rand.New(rand.NewSource(1)),
		Sink:            sink,
	}
}

func TestWorker_Run_EmitsTicksPlusOneEntries(t *testing.T) {
	sink := make(chan OutputEntry, 10)
	population := []person.Person{person.NewSIRPerson(0, geometry.XY{X: 5, Y: 5})}
	w := singlePatchWorker(t, population, 4, sink)

	require.NoError(t, w.Run(context.Background()))
	close(sink)

	var entries []OutputEntry
	for e := range sink {
		entries = append(entries, e)
	}
	require.Len(t, entries, 5)
	for i, e := range entries {
		require.Equal(t, i, e.Tick)
	}
	require.Equal(t, 1, entries[0].Stats["all"].Susceptible)
}

func TestWorker_Run_InfectionSpreadsWithinRadius(t *testing.T) {
	sink := make(chan OutputEntry, 10)
	infectious := person.NewSIRPerson(0, geometry.XY{X: 5, Y: 5})
	infectious.Infect()
	// Drive the carrier straight to infectious so it can transmit; block
	// movement so both persons stay at the same cell for the assertion.
	ctx := person.Context{
		Grid:            geometry.NewRectangle(geometry.XY{}, geometry.XY{X: 10, Y: 10}),
		Obstacle:        func(geometry.XY) bool { return true },
		IncubationTicks: 0,
		RecoveryTicks:   1000,
	}
	infectious.Tick(ctx)
	infectious.BustGhost(ctx)
	require.True(t, infectious.IsInfectious())

	susceptible := person.NewSIRPerson(1, geometry.XY{X: 5, Y: 5})
	population := []person.Person{infectious, susceptible}
	w := singlePatchWorker(t, population, 1, sink)
	w.Obstacle = func(geometry.XY) bool { return true }

	require.NoError(t, w.Run(context.Background()))
	close(sink)

	var last OutputEntry
	for e := range sink {
		last = e
	}
	stats := last.Stats["all"]
	require.Equal(t, 1, stats.Infectious)
	require.Equal(t, 1, stats.Infected)
	require.Equal(t, 0, stats.Susceptible)
}

func TestWorker_Run_CancelledContextSurfacesWorkerInterrupted(t *testing.T) {
	sink := make(chan OutputEntry) // unbuffered, no reader: first emit must block
	population := []person.Person{person.NewSIRPerson(0, geometry.XY{X: 1, Y: 1})}
	w := singlePatchWorker(t, population, 1, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Run(ctx)
	require.ErrorIs(t, err, simerr.ErrWorkerInterrupted)
}

func TestSortMerge_DuplicateIDIsProgrammerAssertion(t *testing.T) {
	a := []person.Person{person.NewSIRPerson(1, geometry.XY{})}
	b := []person.Person{person.NewSIRPerson(1, geometry.XY{})}
	_, err := sortMerge(a, b)
	require.ErrorIs(t, err, simerr.ErrProgrammerAssertion)
}

func TestSortMerge_DisjointIDsMergeInOrder(t *testing.T) {
	a := []person.Person{person.NewSIRPerson(1, geometry.XY{}), person.NewSIRPerson(3, geometry.XY{})}
	b := []person.Person{person.NewSIRPerson(2, geometry.XY{})}
	merged, err := sortMerge(a, b)
	require.NoError(t, err)
	require.Len(t, merged, 3)
	require.Equal(t, []int{1, 2, 3}, []int{merged[0].ID(), merged[1].ID(), merged[2].ID()})
}

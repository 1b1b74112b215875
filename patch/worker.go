package patch

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/ivanpozdin/patchsim/geometry"
	"github.com/ivanpozdin/patchsim/logging"
	"github.com/ivanpozdin/patchsim/padding"
	"github.com/ivanpozdin/patchsim/person"
	"github.com/ivanpozdin/patchsim/simerr"
	"github.com/ivanpozdin/patchsim/validator"
)

// MetricsRecorder is the instrumentation surface a Worker reports to. The
// metrics package's Metrics type satisfies it; Worker depends only on this
// interface so the core stays free of a Prometheus import.
type MetricsRecorder interface {
	WorkerStarted()
	WorkerStopped()
	ObserveSync(seconds float64)
	RecordTick(patchID string, seconds float64)
}

type noopMetrics struct{}

func (noopMetrics) WorkerStarted()                              {}
func (noopMetrics) WorkerStopped()                              {}
func (noopMetrics) ObserveSync(seconds float64)                 {}
func (noopMetrics) RecordTick(patchID string, seconds float64) {}

// Worker drives one Patch through its full tick schedule, emitting an
// OutputEntry per tick to Sink. One Worker owns exactly one goroutine; all
// of its state (P, C) is local to that goroutine and touched by no other.
type Worker struct {
	Patch           *Patch
	Grid            geometry.Rectangle
	Obstacle        func(geometry.XY) bool
	Ticks           int
	InfectionRadius int
	IncubationTicks int
	RecoveryTicks   int
	TraceEnabled    bool
	Validator       validator.Validator
	Rand            *rand.Rand
	Sink            chan<- OutputEntry
	Logger          *logging.Logger
	Metrics         MetricsRecorder
}

func (w *Worker) metrics() MetricsRecorder {
	if w.Metrics == nil {
		return noopMetrics{}
	}
	return w.Metrics
}

func (w *Worker) logf() *logging.Logger {
	if w.Logger == nil {
		return logging.New(logging.Config{Level: logging.LevelError})
	}
	return w.Logger
}

// Run simulates this worker's patch for Ticks ticks, emitting Ticks+1
// OutputEntry values (tick 0 through Ticks inclusive) to Sink in ascending
// order. It returns an error wrapping simerr.ErrWorkerInterrupted if ctx is
// cancelled while blocked, or one wrapping simerr.ErrProgrammerAssertion if
// an internal invariant breaks.
func (w *Worker) Run(ctx context.Context) error {
	patchID := strconv.Itoa(w.Patch.ID)
	w.metrics().WorkerStarted()
	defer w.metrics().WorkerStopped()

	P := sortedClone(w.Patch.InitialPopulation)
	if err := w.emit(ctx, 0, P); err != nil {
		return err
	}

	var C []person.Person
	for tick := 0; tick < w.Ticks; tick++ {
		start := time.Now()
		if tick%w.Patch.CycleDuration == 0 {
			syncStart := time.Now()
			merged, err := w.synchronize(ctx, P)
			w.metrics().ObserveSync(time.Since(syncStart).Seconds())
			if err != nil {
				w.logf().WithPatch(w.Patch.ID).WithTick(tick).Error("synchronization failed", err)
				return err
			}
			C = merged
		}

		w.Validator.OnPatchTick(tick, w.Patch.ID)

		pctx := w.personContext()
		for _, p := range C {
			w.Validator.OnPersonTick(tick, w.Patch.ID, p.ID())
			p.Tick(pctx)
		}
		for _, p := range C {
			p.BustGhost(pctx)
		}
		w.spreadInfection(C)

		P = filterByArea(C, w.Patch.Area)
		if err := w.emit(ctx, tick+1, P); err != nil {
			return err
		}
		w.metrics().RecordTick(patchID, time.Since(start).Seconds())
	}
	return nil
}

// synchronize performs one boundary exchange: inner channels are written
// before any outer channel is read (the deadlock-freedom invariant), then
// every outer snapshot and P itself are sort-merged by id into a fresh C.
func (w *Worker) synchronize(ctx context.Context, P []person.Person) ([]person.Person, error) {
	for _, inner := range w.Patch.InnerChannels {
		subset := filterByArea(P, inner.Area())
		if err := inner.Write(ctx, padding.Detach(subset)); err != nil {
			return nil, wrapInterrupted(err)
		}
	}

	C := []person.Person{}
	neutral := w.personContext()
	for _, outer := range w.Patch.OuterChannels {
		snap, err := outer.Read(ctx)
		if err != nil {
			return nil, wrapInterrupted(err)
		}
		merged, err := sortMerge(C, snap.Attach(neutral))
		if err != nil {
			return nil, err
		}
		C = merged
	}

	merged, err := sortMerge(C, P)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (w *Worker) personContext() person.Context {
	return person.Context{
		Grid:            w.Grid,
		Obstacle:        w.Obstacle,
		IncubationTicks: w.IncubationTicks,
		RecoveryTicks:   w.RecoveryTicks,
		Rand:            w.Rand,
	}
}

// spreadInfection visits every unordered pair in C within the infection
// radius exactly once and applies the symmetric coughing/breathing rule.
func (w *Worker) spreadInfection(C []person.Person) {
	for i := 0; i < len(C); i++ {
		for j := i + 1; j < len(C); j++ {
			if geometry.ManhattanDistance(C[i].Position(), C[j].Position()) > w.InfectionRadius {
				continue
			}
			if C[i].IsInfectious() && C[i].IsCoughing() && C[j].IsBreathing() {
				C[j].Infect()
			}
			if C[j].IsInfectious() && C[j].IsCoughing() && C[i].IsBreathing() {
				C[i].Infect()
			}
		}
	}
}

func (w *Worker) emit(ctx context.Context, tick int, P []person.Person) error {
	entry := OutputEntry{
		Tick:    tick,
		PatchID: w.Patch.ID,
		Stats:   w.statistics(P),
	}
	if w.TraceEnabled {
		entry.Trace = buildTrace(P)
	}
	select {
	case w.Sink <- entry:
		return nil
	case <-ctx.Done():
		return wrapInterrupted(ctx.Err())
	}
}

// statistics counts P bucketed by SIR status, for every query whose area
// overlaps this patch's padded area. Queries configured elsewhere in the
// grid (no overlap) are omitted from the entry entirely.
func (w *Worker) statistics(P []person.Person) map[string]Statistics {
	out := make(map[string]Statistics, len(w.Patch.Queries))
	for _, q := range w.Patch.Queries {
		if !q.Area.Overlaps(w.Patch.PaddedArea) {
			continue
		}
		var s Statistics
		for _, p := range P {
			if !q.Area.Contains(p.Position()) {
				continue
			}
			switch p.Info().Status {
			case person.Susceptible:
				s.Susceptible++
			case person.Infected:
				s.Infected++
			case person.Infectious:
				s.Infectious++
			case person.Recovered:
				s.Recovered++
			}
		}
		out[q.Name] = s
	}
	return out
}

func buildTrace(P []person.Person) []TracedPerson {
	out := make([]TracedPerson, len(P))
	for i, p := range P {
		info := p.Info()
		out[i] = TracedPerson{
			ID: info.ID,
			Entry: TraceEntry{
				Position:   info.Position,
				Status:     info.Status,
				AgeInState: info.AgeInState,
			},
		}
	}
	return out
}

func filterByArea(people []person.Person, area geometry.Rectangle) []person.Person {
	out := make([]person.Person, 0, len(people))
	for _, p := range people {
		if area.Contains(p.Position()) {
			out = append(out, p)
		}
	}
	return out
}

func sortedClone(people []person.Person) []person.Person {
	out := make([]person.Person, len(people))
	copy(out, people)
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// sortMerge merges two id-ascending slices into one id-ascending slice,
// failing with simerr.ErrProgrammerAssertion if the same id appears in
// both: patch areas are disjoint, so a person may only ever originate from
// exactly one patch's P.
func sortMerge(a, b []person.Person) ([]person.Person, error) {
	out := make([]person.Person, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].ID() < b[j].ID():
			out = append(out, a[i])
			i++
		case b[j].ID() < a[i].ID():
			out = append(out, b[j])
			j++
		default:
			return nil, fmt.Errorf("%w: duplicate person id %d across patch boundaries", simerr.ErrProgrammerAssertion, a[i].ID())
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out, nil
}

func wrapInterrupted(err error) error {
	return fmt.Errorf("%w: %v", simerr.ErrWorkerInterrupted, err)
}

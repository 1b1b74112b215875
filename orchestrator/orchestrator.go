// Package orchestrator builds a scenario's patches, padding channels, and
// reachability table, then spawns and joins the worker and collector
// goroutines that carry out the simulation. It implements the Simulation
// contract spec.md exposes to callers: construct once, Run to completion,
// GetOutput to retrieve the finalized result.
package orchestrator

import (
	"context"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ivanpozdin/patchsim/collector"
	"github.com/ivanpozdin/patchsim/dashboard"
	"github.com/ivanpozdin/patchsim/geometry"
	"github.com/ivanpozdin/patchsim/logging"
	"github.com/ivanpozdin/patchsim/metrics"
	"github.com/ivanpozdin/patchsim/padding"
	"github.com/ivanpozdin/patchsim/patch"
	"github.com/ivanpozdin/patchsim/person"
	"github.com/ivanpozdin/patchsim/reachability"
	"github.com/ivanpozdin/patchsim/scenario"
	"github.com/ivanpozdin/patchsim/validator"
)

// outputQueueCapacity bounds each worker's output queue under Design B,
// giving the collector's lockstep drain natural backpressure over a worker
// that would otherwise race arbitrarily far ahead.
const outputQueueCapacity = 4

// Simulation is the external contract a CLI or test harness drives: Run
// executes to completion, GetOutput returns the finalized result (valid
// only after Run returns nil).
type Simulation struct {
	scenario  *scenario.Scenario
	validator validator.Validator
	logger    *logging.Logger
	metrics   *metrics.Metrics
	dashboard *dashboard.Dashboard
	patches   []*patch.Patch
	cycleK    int
	output    *collector.Output
}

// New constructs a Simulation for sc, wiring patches, padding channels, and
// reachability pruning. It fails with simerr.ErrInsufficientPadding if the
// scenario's parameters admit no cycle duration K >= 1. log may be nil, in
// which case a quiet error-level logger is used. m may be nil, in which case
// the simulation runs unmetered. dash may be nil, in which case no live
// stream is published.
func New(sc *scenario.Scenario, v validator.Validator, log *logging.Logger, m *metrics.Metrics, dash *dashboard.Dashboard) (*Simulation, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if v == nil {
		v = validator.Noop{}
	}
	if log == nil {
		log = logging.New(logging.Config{Level: logging.LevelError})
	}

	k, err := patch.CycleDuration(sc.Parameters.Padding, sc.Parameters.IncubationTicks, sc.Parameters.InfectionRadius)
	if err != nil {
		return nil, err
	}

	population := buildPopulation(sc.InitialPopulation)

	grid := sc.Grid()
	areas := sc.Patches()
	patches := make([]*patch.Patch, len(areas))
	for i, area := range areas {
		patches[i] = &patch.Patch{
			ID:                i,
			Area:              area,
			PaddedArea:        geometry.Padded(area, sc.Parameters.Padding, grid),
			InitialPopulation: peopleInArea(population, area),
			Queries:           sc.Queries,
			CycleDuration:     k,
		}
	}

	gr, err := reachability.New(sc.GridSize, sc.Obstacles, sc.InitialPopulation, sc.Parameters.InfectionRadius)
	if err != nil {
		return nil, err
	}
	wireChannels(patches, gr)

	return &Simulation{scenario: sc, validator: v, logger: log, metrics: m, dashboard: dash, patches: patches, cycleK: k}, nil
}

// buildPopulation assigns sequential ids 0..N-1 by insertion order, the
// order the scenario's initial-population list was given in.
func buildPopulation(positions []geometry.XY) []person.Person {
	out := make([]person.Person, len(positions))
	for i, p := range positions {
		out[i] = person.NewSIRPerson(i, p)
	}
	return out
}

func peopleInArea(population []person.Person, area geometry.Rectangle) []person.Person {
	var out []person.Person
	for _, p := range population {
		if area.Contains(p.Position()) {
			out = append(out, p)
		}
	}
	return out
}

// wireChannels creates one PaddingChannel per ordered pair of distinct
// patches whose padded/patch-area intersection reachability does not prune,
// registering it as an outer channel of the patch providing the padding and
// an inner channel of the patch supplying the data.
func wireChannels(patches []*patch.Patch, gr *reachability.GridReachability) {
	for _, outer := range patches {
		for _, inner := range patches {
			if outer.ID == inner.ID {
				continue
			}
			intersection, ok := inner.Area.Intersect(outer.PaddedArea)
			if !ok {
				continue
			}
			if !gr.MayPropagateFrom(intersection, outer.Area) {
				continue
			}
			ch := padding.New(intersection)
			outer.OuterChannels = append(outer.OuterChannels, ch)
			inner.InnerChannels = append(inner.InnerChannels, ch)
		}
	}
}

// Run executes the simulation to completion: it spawns one worker goroutine
// per patch plus the collector, using ctx for cancellation, and returns the
// first fatal error encountered (if any). GetOutput is valid only after Run
// returns nil.
func (s *Simulation) Run(ctx context.Context) error {
	s.logger.Info("simulation starting")
	group, groupCtx := errgroup.WithContext(ctx)

	sinks := make([]chan patch.OutputEntry, len(s.patches))
	sources := make([]<-chan patch.OutputEntry, len(s.patches))
	for i := range s.patches {
		sink := make(chan patch.OutputEntry, outputQueueCapacity)
		sinks[i] = sink
		if s.dashboard == nil {
			sources[i] = sink
			continue
		}
		collectorSide := make(chan patch.OutputEntry, outputQueueCapacity)
		sources[i] = collectorSide
		go teeToDashboard(sink, collectorSide, s.dashboard)
	}

	grid := s.scenario.Grid()
	obstacle := obstaclePredicate(s.scenario.Obstacles)
	var recorder patch.MetricsRecorder
	if s.metrics != nil {
		recorder = s.metrics
	}
	for i, p := range s.patches {
		i, p := i, p
		worker := &patch.Worker{
			Patch:           p,
			Grid:            grid,
			Obstacle:        obstacle,
			Ticks:           s.scenario.Ticks,
			InfectionRadius: s.scenario.Parameters.InfectionRadius,
			IncubationTicks: s.scenario.Parameters.IncubationTicks,
			RecoveryTicks:   s.scenario.Parameters.RecoveryTicks,
			TraceEnabled:    s.scenario.TraceEnabled,
			Validator:       s.validator,
			Rand:            newPatchRand(s.scenario.Parameters.Seed, i),
			Sink:            sinks[i],
			Logger:          s.logger.WithPatch(p.ID),
			Metrics:         recorder,
		}
		group.Go(func() error {
			defer close(sinks[i])
			return worker.Run(groupCtx)
		})
	}

	coll := s.newCollector(sources)
	var output *collector.Output
	group.Go(func() error {
		out, err := coll.Collect(groupCtx)
		if err != nil {
			return err
		}
		output = out
		return nil
	})

	if err := group.Wait(); err != nil {
		s.logger.Error("simulation failed", err)
		return err
	}

	output.Scenario = s.scenario
	s.output = output
	s.logger.Info("simulation complete")
	return nil
}

// GetOutput returns the finalized Output. Only valid after Run has returned
// nil.
func (s *Simulation) GetOutput() *collector.Output {
	return s.output
}

// Metrics returns the Metrics instance this Simulation reports to, or nil if
// none was supplied to New.
func (s *Simulation) Metrics() *metrics.Metrics {
	return s.metrics
}

// Dashboard returns the live-stream Dashboard this Simulation publishes to,
// or nil if none was supplied to New.
func (s *Simulation) Dashboard() *dashboard.Dashboard {
	return s.dashboard
}

// teeToDashboard forwards every entry from worker to both the collector's
// source channel and the dashboard, closing collectorSide once worker
// closes so the collector still observes normal channel closure.
func teeToDashboard(worker <-chan patch.OutputEntry, collectorSide chan<- patch.OutputEntry, dash *dashboard.Dashboard) {
	defer close(collectorSide)
	for entry := range worker {
		dash.Publish(entry)
		collectorSide <- entry
	}
}

func (s *Simulation) newCollector(sources []<-chan patch.OutputEntry) collector.Collector {
	queryNames := make([]string, len(s.scenario.Queries))
	for i, q := range s.scenario.Queries {
		queryNames[i] = q.Name
	}
	sort.Strings(queryNames)

	if s.scenario.Parameters.CollectorDesign == scenario.CollectorFanIn {
		return &collector.FanInCollector{
			Sources:      sources,
			Ticks:        s.scenario.Ticks,
			NumPatches:   len(s.patches),
			QueryNames:   queryNames,
			TraceEnabled: s.scenario.TraceEnabled,
		}
	}
	return &collector.LockstepCollector{
		Sources:      sources,
		Ticks:        s.scenario.Ticks,
		QueryNames:   queryNames,
		TraceEnabled: s.scenario.TraceEnabled,
	}
}

func obstaclePredicate(obstacles []geometry.Rectangle) func(geometry.XY) bool {
	return func(c geometry.XY) bool {
		for _, o := range obstacles {
			if o.Contains(c) {
				return true
			}
		}
		return false
	}
}

func newPatchRand(seed int64, patchID int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(patchID)*1_000_003))
}

// Package collector assembles the per-tick OutputEntry values emitted by
// every PatchWorker into one globally ordered Output. Two designs coexist,
// as spec.md allows: LockstepCollector (Design B, the specified default,
// per-worker bounded queues drained in lockstep) and FanInCollector (Design
// A, a single fan-in queue, permitted as long as its tick buckets match
// Design B's). Both satisfy the Collector interface and produce
// bit-identical Output values for the same input.
package collector

import (
	"context"

	"github.com/ivanpozdin/patchsim/patch"
	"github.com/ivanpozdin/patchsim/scenario"
)

// Output is the finalized simulation result: the scenario that produced it,
// a globally sorted trace per tick (empty when tracing was disabled), and
// summed per-query statistics per tick.
type Output struct {
	Scenario          *scenario.Scenario
	Trace             [][]patch.TraceEntry
	StatisticsByQuery map[string][]patch.Statistics
}

// Collector drains worker output channels to completion and returns the
// finalized Output, or the first fatal error encountered.
type Collector interface {
	Collect(ctx context.Context) (*Output, error)
}

func newOutput(ticks int, queryNames []string) *Output {
	out := &Output{
		Trace:             make([][]patch.TraceEntry, ticks+1),
		StatisticsByQuery: make(map[string][]patch.Statistics, len(queryNames)),
	}
	for _, q := range queryNames {
		out.StatisticsByQuery[q] = make([]patch.Statistics, ticks+1)
	}
	return out
}

func mergeStats(out *Output, tick int, stats map[string]patch.Statistics) {
	for q, s := range stats {
		bucket, ok := out.StatisticsByQuery[q]
		if !ok {
			bucket = make([]patch.Statistics, len(out.Trace))
			out.StatisticsByQuery[q] = bucket
		}
		bucket[tick] = bucket[tick].Add(s)
	}
}

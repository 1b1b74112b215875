package collector

import (
	"context"
	"fmt"
	"sort"

	"github.com/ivanpozdin/patchsim/patch"
	"github.com/ivanpozdin/patchsim/simerr"
)

// LockstepCollector implements Design B: one bounded queue per worker,
// drained one entry at a time in tick order. A slow collector applies
// natural backpressure to every worker, bounding memory to O(numPatches)
// regardless of how far ahead a fast worker could otherwise race.
type LockstepCollector struct {
	Sources      []<-chan patch.OutputEntry
	Ticks        int
	QueryNames   []string
	TraceEnabled bool
}

// Collect dequeues one entry from every source per tick, merges statistics
// additively, and sort-merges traces by id before stripping ids.
func (c *LockstepCollector) Collect(ctx context.Context) (*Output, error) {
	out := newOutput(c.Ticks, c.QueryNames)

	for tick := 0; tick <= c.Ticks; tick++ {
		var traced []patch.TracedPerson
		for _, src := range c.Sources {
			entry, err := receive(ctx, src)
			if err != nil {
				return nil, err
			}
			if entry.Tick != tick {
				return nil, fmt.Errorf("%w: worker emitted tick %d, collector expected %d", simerr.ErrProgrammerAssertion, entry.Tick, tick)
			}
			mergeStats(out, tick, entry.Stats)
			if c.TraceEnabled {
				traced = append(traced, entry.Trace...)
			}
		}
		if c.TraceEnabled {
			out.Trace[tick] = sortAndStrip(traced)
		}
	}
	return out, nil
}

func receive(ctx context.Context, src <-chan patch.OutputEntry) (patch.OutputEntry, error) {
	select {
	case e, ok := <-src:
		if !ok {
			return patch.OutputEntry{}, fmt.Errorf("%w: worker channel closed before its tick was drained", simerr.ErrProgrammerAssertion)
		}
		return e, nil
	case <-ctx.Done():
		return patch.OutputEntry{}, fmt.Errorf("%w: %v", simerr.ErrWorkerInterrupted, ctx.Err())
	}
}

func sortAndStrip(traced []patch.TracedPerson) []patch.TraceEntry {
	sort.Slice(traced, func(i, j int) bool { return traced[i].ID < traced[j].ID })
	out := make([]patch.TraceEntry, len(traced))
	for i, tp := range traced {
		out[i] = tp.Entry
	}
	return out
}

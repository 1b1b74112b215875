package collector

import (
	"context"
	"fmt"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/ivanpozdin/patchsim/patch"
	"github.com/ivanpozdin/patchsim/simerr"
)

// FanInCollector implements Design A: every worker's queue is fanned into
// one merged stream (the same channerics.Merge fan-in the training loop
// uses to pool independent agent-episode producers into a single consumer
// stream), and entries are bucketed by tick as they arrive in whatever
// order workers happen to complete them. Workers never stall on output, at
// the cost of unbounded memory if one patch runs far ahead of another.
type FanInCollector struct {
	Sources      []<-chan patch.OutputEntry
	Ticks        int
	NumPatches   int
	QueryNames   []string
	TraceEnabled bool
}

// Collect drains the fanned-in stream until every tick has one entry per
// patch, then finalizes ticks in ascending order. The bucketing makes the
// final Output identical to LockstepCollector's regardless of the
// nondeterministic arrival order.
func (c *FanInCollector) Collect(ctx context.Context) (*Output, error) {
	merged := channerics.Merge(ctx.Done(), c.Sources...)

	buckets := make(map[int][]patch.OutputEntry, c.Ticks+1)
	total := (c.Ticks + 1) * c.NumPatches
	for received := 0; received < total; {
		select {
		case e, ok := <-merged:
			if !ok {
				return nil, fmt.Errorf("%w: merged worker stream closed before every tick was complete", simerr.ErrProgrammerAssertion)
			}
			buckets[e.Tick] = append(buckets[e.Tick], e)
			received++
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", simerr.ErrWorkerInterrupted, ctx.Err())
		}
	}

	out := newOutput(c.Ticks, c.QueryNames)
	for tick := 0; tick <= c.Ticks; tick++ {
		entries := buckets[tick]
		if len(entries) != c.NumPatches {
			return nil, fmt.Errorf("%w: tick %d has %d entries, want %d", simerr.ErrProgrammerAssertion, tick, len(entries), c.NumPatches)
		}
		var traced []patch.TracedPerson
		for _, e := range entries {
			mergeStats(out, tick, e.Stats)
			if c.TraceEnabled {
				traced = append(traced, e.Trace...)
			}
		}
		if c.TraceEnabled {
			out.Trace[tick] = sortAndStrip(traced)
		}
	}
	return out, nil
}

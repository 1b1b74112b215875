// Package padding implements the capacity-1 rendezvous channel a PatchWorker
// uses to exchange border-population snapshots with its neighbors at the
// start of every simulation cycle. The blocking discipline (write suspends
// while a value is pending, read suspends while empty) falls directly out of
// a buffered Go channel of capacity one; cancellation is layered on top with
// a context select, the same idiom the teacher's websocket client uses for
// its ctx.Done()-guarded read/write loop.
package padding

import (
	"context"
	"fmt"

	"github.com/ivanpozdin/patchsim/geometry"
	"github.com/ivanpozdin/patchsim/person"
)

// Snapshot is the ordered list of persons one patch hands to another across
// a shared border region. Snapshots are always person clones, never shared
// references: Detach produces one for writing, Attach produces one for a
// reader to merge into its own combined population.
type Snapshot []person.Person

// Detach clones people with their context reassigned to neutral, severing
// any reference to the writer's own patch before the snapshot crosses a
// channel. The neutral Context carries no obstacle predicate and no RNG: a
// snapshot in flight is inert data, not a person still being simulated.
func Detach(people []person.Person) Snapshot {
	neutral := person.Context{}
	out := make(Snapshot, len(people))
	for i, p := range people {
		out[i] = p.Clone(neutral)
	}
	return out
}

// Attach clones every person in a snapshot with ctx bound, producing people
// ready to be merged into the reading patch's combined population.
func (s Snapshot) Attach(ctx person.Context) []person.Person {
	out := make([]person.Person, len(s))
	for i, p := range s {
		out[i] = p.Clone(ctx)
	}
	return out
}

// CancelledError is returned when a worker blocked on Read or Write is
// cancelled; the worker must surface it as a fatal error, never retry.
type CancelledError struct {
	Op  string
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("padding: %s cancelled: %v", e.Op, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// Channel is a one-slot synchronous handoff between exactly one writer
// patch and one reader patch, fixed to a single area for its whole
// lifetime.
type Channel struct {
	area geometry.Rectangle
	slot chan Snapshot
}

// New returns a Channel covering area. area is immutable thereafter.
func New(area geometry.Rectangle) *Channel {
	return &Channel{area: area, slot: make(chan Snapshot, 1)}
}

// Area returns the rectangle this channel carries snapshots for.
func (c *Channel) Area() geometry.Rectangle {
	return c.area
}

// Write suspends until the slot is empty (no prior snapshot pending), then
// stores snapshot and returns. It unblocks early with a *CancelledError if
// ctx is cancelled first.
func (c *Channel) Write(ctx context.Context, snapshot Snapshot) error {
	select {
	case c.slot <- snapshot:
		return nil
	case <-ctx.Done():
		return &CancelledError{Op: "write", Err: ctx.Err()}
	}
}

// Read suspends until a snapshot is available, consumes it, and returns it.
// It unblocks early with a *CancelledError if ctx is cancelled first.
func (c *Channel) Read(ctx context.Context) (Snapshot, error) {
	select {
	case s := <-c.slot:
		return s, nil
	case <-ctx.Done():
		return nil, &CancelledError{Op: "read", Err: ctx.Err()}
	}
}

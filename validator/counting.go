package validator

import "sync/atomic"

// Counting is a thread-safe Validator that tallies how many times each hook
// fired, for use in tests that assert a worker visited every tick and every
// person it owns without introducing a data race into the assertion itself.
type Counting struct {
	patchTicks  atomic.Int64
	personTicks atomic.Int64
}

func (c *Counting) OnPatchTick(tick int, patchID int) {
	c.patchTicks.Add(1)
}

func (c *Counting) OnPersonTick(tick int, patchID int, personID int) {
	c.personTicks.Add(1)
}

// PatchTicks returns the number of OnPatchTick calls observed so far.
func (c *Counting) PatchTicks() int64 { return c.patchTicks.Load() }

// PersonTicks returns the number of OnPersonTick calls observed so far.
func (c *Counting) PersonTicks() int64 { return c.personTicks.Load() }

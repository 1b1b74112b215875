// Package simerr defines the three fatal error classes the simulation core
// can raise: insufficient padding at construction time, a worker interrupted
// while blocked on a channel, and a broken internal invariant. All three are
// fatal by design — the core has no notion of a recoverable error.
package simerr

import "errors"

var (
	// ErrInsufficientPadding is raised when no cycle duration K >= 1
	// satisfies the padding formula for the scenario's parameters.
	ErrInsufficientPadding = errors.New("simerr: insufficient padding for any cycle duration K >= 1")

	// ErrWorkerInterrupted wraps a cancellation observed while a worker was
	// blocked reading or writing a padding channel, or enqueuing output.
	ErrWorkerInterrupted = errors.New("simerr: worker interrupted")

	// ErrProgrammerAssertion marks a broken invariant: a person outside
	// every partition cell, a duplicate id surviving a sort-merge, or
	// similar conditions that can only indicate a bug in the core itself.
	ErrProgrammerAssertion = errors.New("simerr: programmer assertion violated")
)

// ============================================================================
// Actor-Exec Demo Actor - Counter
// ============================================================================
//
// Package: internal/demoactor
// File: counter.go
// Purpose: The running-total actor spec.md §8's testable properties are
//          described against, shared by cmd/actorctl and registered under a
//          stable name so the process variant's spawned child can rebuild
//          the exact same actor (processworker.Register, spec.md §4.1).
//
// ============================================================================

package demoactor

import (
	"fmt"

	"github.com/ChuLiYu/actor-exec/internal/processworker"
)

// CounterName is the registered name for the process-backed Counter actor.
const CounterName = "counter"

// Delta is the message type: add Amount to the running total (or, if Reset
// is set, zero it first).
type Delta struct {
	Amount int
	Reset  bool
}

// Total is the running total after a Delta has been applied.
type Total struct {
	Value int
}

// Counter is a minimal stateful actor: it holds a running total across
// every Handle call, the same way spec.md §8's scenarios describe.
type Counter struct {
	total int
}

// NewCounter constructs a fresh Counter starting at zero.
func NewCounter() *Counter { return &Counter{} }

// Handle applies one Delta and returns the new Total. A Delta that would
// drive the total negative is rejected with an error and leaves the total
// unchanged.
func (c *Counter) Handle(d Delta) (Total, error) {
	base := c.total
	if d.Reset {
		base = 0
	}
	if base+d.Amount < 0 {
		return Total{}, fmt.Errorf("demoactor: counter would go negative (delta %d against total %d)", d.Amount, base)
	}
	c.total = base + d.Amount
	return Total{Value: c.total}, nil
}

func init() {
	processworker.Register[Delta, Total](CounterName, func() processworker.Actor[Delta, Total] {
		return NewCounter()
	})
}

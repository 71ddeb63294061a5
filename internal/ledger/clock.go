package ledger

import (
	"sync"
	"time"
)

// Clock supplies "today" for open-ended records and for the join date check.
type Clock interface {
	Today() Date
}

// SystemClock reads today's date from the local wall clock.
type SystemClock struct{}

// Today returns the current local calendar date.
func (SystemClock) Today() Date {
	return DateOf(time.Now())
}

// FixedClock always returns the same date.
type FixedClock Date

// Today returns the fixed date.
func (c FixedClock) Today() Date {
	return Date(c)
}

// IDGenerator assigns ids to new records.
//
// The ledger additionally bumps any generated id that is not above the
// largest id it holds, so generators only need to be increasing on their own.
type IDGenerator interface {
	Next() ID
}

// MillisIDs derives ids from the Unix millisecond timestamp.
//
// Two calls within the same millisecond still get distinct, increasing ids.
//
// Thread-safety: MillisIDs is safe for concurrent use.
type MillisIDs struct {
	mu   sync.Mutex
	last ID
	now  func() time.Time
}

// NewMillisIDs creates a generator reading the system clock.
func NewMillisIDs() *MillisIDs {
	return &MillisIDs{now: time.Now}
}

// Next returns max(now in ms, previous+1).
func (g *MillisIDs) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now
	if g.now != nil {
		now = g.now
	}
	id := ID(now().UnixMilli())
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

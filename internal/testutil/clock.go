package testutil

import (
	"sync"
	"time"

	"github.com/roach88/tenure/internal/ledger"
)

// Calendar is a settable clock for tests.
//
// Unlike ledger.SystemClock, Calendar never moves on its own. Tests set the
// date explicitly or advance it by whole days.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Calendar struct {
	mu    sync.Mutex
	today ledger.Date
}

// NewCalendar creates a calendar fixed at the given date.
func NewCalendar(today ledger.Date) *Calendar {
	return &Calendar{today: today}
}

// MustCalendar creates a calendar from a YYYY-MM-DD string and panics on a
// malformed date.
func MustCalendar(today string) *Calendar {
	d, err := ledger.ParseDate(today)
	if err != nil {
		panic(err)
	}
	return NewCalendar(d)
}

// Today returns the current calendar date.
//
// Implements ledger.Clock interface.
func (c *Calendar) Today() ledger.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.today
}

// Set moves the calendar to d.
func (c *Calendar) Set(d ledger.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = d
}

// Advance moves the calendar forward by the given number of days.
// Negative values move it back.
func (c *Calendar) Advance(days int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = ledger.DateOf(c.today.Time().Add(time.Duration(days) * 24 * time.Hour))
}

// Sequence hands out record ids 1, 2, 3, ...
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sequence struct {
	mu  sync.Mutex
	seq int64
}

// NewSequence creates a sequence whose first id is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments and returns the next id.
//
// Implements ledger.IDGenerator interface.
func (s *Sequence) Next() ledger.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return ledger.ID(s.seq)
}

// Current returns the last id handed out without incrementing.
func (s *Sequence) Current() ledger.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.ID(s.seq)
}

// Reset restarts the sequence. After Reset(), the next call to Next() returns 1.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}

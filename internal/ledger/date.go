package ledger

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date layout used for input and persistence.
const DateLayout = "2006-01-02"

// Present is the persisted form of an open-ended leave date.
const Present = "Present"

// MinYear is the earliest year ParseDate accepts. Earlier years are almost
// always typos, and year 1 would collide with the zero Date.
const MinYear = 1000

const secondsPerDay = 24 * 60 * 60

// Date is a calendar date without time of day.
//
// The zero Date means "no date". For a leave date that reads as "still
// employed" and is serialized as Present.
type Date struct {
	t time.Time // midnight UTC
}

// NewDate returns the date for the given year, month and day.
// Out-of-range values are normalized the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	if t.Year() < MinYear {
		return Date{}, fmt.Errorf("parse date %q: year before %d", s, MinYear)
	}
	return Date{t: t}, nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return d.t
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// Format formats d with a time layout. The zero Date formats as Present.
func (d Date) Format(layout string) string {
	if d.IsZero() {
		return Present
	}
	return d.t.Format(layout)
}

// String returns the ISO form of d, or Present for the zero Date.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes d as an ISO date string, or "Present" when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts an ISO date string, "Present" or "".
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" || s == Present {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// daysBetween returns the absolute distance between a and b in whole days,
// rounding a partial day up.
//
// Works on Unix seconds rather than time.Duration, which cannot span more
// than about 292 years.
func daysBetween(a, b Date) int {
	secs := b.t.Unix() - a.t.Unix()
	if secs < 0 {
		secs = -secs
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 {
		days++
	}
	return int(days)
}

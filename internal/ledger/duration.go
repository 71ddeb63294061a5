package ledger

import "fmt"

// Fixed divisors of the duration approximation.
const (
	daysPerYear   = 365
	daysPerMonth  = 30
	monthsPerYear = 12
)

// Duration is an approximate years/months/days breakdown of elapsed time.
type Duration struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// FromDays breaks a day count down with the fixed 365/30 divisors.
//
// Note that Days is days%30 of the whole count, not of the remainder after
// years, so 366 days is 1 year, 0 months and 6 days.
func FromDays(days int) Duration {
	if days < 0 {
		days = -days
	}
	return Duration{
		Years:  days / daysPerYear,
		Months: (days % daysPerYear) / daysPerMonth,
		Days:   days % daysPerMonth,
	}
}

// Between returns the duration from join to leave. The order of the two
// dates does not matter.
func Between(join, leave Date) Duration {
	return FromDays(daysBetween(join, leave))
}

// Plus adds two durations component-wise without carrying.
func (d Duration) Plus(other Duration) Duration {
	return Duration{
		Years:  d.Years + other.Years,
		Months: d.Months + other.Months,
		Days:   d.Days + other.Days,
	}
}

// Normalize carries days into months (30) and then months into years (12).
func (d Duration) Normalize() Duration {
	d.Months += d.Days / daysPerMonth
	d.Days %= daysPerMonth
	d.Years += d.Months / monthsPerYear
	d.Months %= monthsPerYear
	return d
}

// Sum adds all durations and normalizes the result.
func Sum(ds ...Duration) Duration {
	var total Duration
	for _, d := range ds {
		total = total.Plus(d)
	}
	return total.Normalize()
}

// IsZero reports whether all components are zero.
func (d Duration) IsZero() bool {
	return d == Duration{}
}

// String renders d for display. The years component is omitted when zero;
// months and days are always shown.
func (d Duration) String() string {
	if d.Years > 0 {
		return fmt.Sprintf("%d years, %d months, and %d days", d.Years, d.Months, d.Days)
	}
	return fmt.Sprintf("%d months, and %d days", d.Months, d.Days)
}

package billing

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (all billing math is whole-day)
// =============================================================================

type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.normalize().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.normalize().AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// DaysBetween returns the number of whole days from one date to another.
// Same day = 0.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(d Date) Date { return NewDate(d.Year(), d.Month(), 1) }

// =============================================================================
// DATE INTERVAL - Inclusive [Start, End], open-ended when End is nil
// =============================================================================

// DateInterval is an inclusive date range. A nil End means the interval is
// still open and extends indefinitely into the future.
type DateInterval struct {
	Start Date
	End   *Date
}

func ClosedInterval(start, end Date) DateInterval {
	return DateInterval{Start: start, End: &end}
}

func OpenInterval(start Date) DateInterval {
	return DateInterval{Start: start}
}

// IsOpen reports whether the interval has no end date.
func (iv DateInterval) IsOpen() bool { return iv.End == nil }

// Contains reports whether the date falls inside the interval, treating an
// absent end as +infinity.
func (iv DateInterval) Contains(d Date) bool {
	if d.Before(iv.Start) {
		return false
	}
	return iv.End == nil || d.BeforeOrEqual(*iv.End)
}

// Overlaps reports whether two intervals share at least one day.
func (iv DateInterval) Overlaps(other DateInterval) bool {
	if other.End != nil && other.End.Before(iv.Start) {
		return false
	}
	if iv.End != nil && iv.End.Before(other.Start) {
		return false
	}
	return true
}

// Clip intersects the interval with the closed period [from, to].
// The second return value is false when they do not intersect.
func (iv DateInterval) Clip(from, to Date) (Date, Date, bool) {
	if !iv.Overlaps(ClosedInterval(from, to)) {
		return Date{}, Date{}, false
	}
	start := MaxDate(iv.Start, from)
	end := to
	if iv.End != nil {
		end = MinDate(*iv.End, to)
	}
	return start, end, true
}

// Validate checks that the end, when present, is not before the start.
func (iv DateInterval) Validate() error {
	if iv.Start.IsZero() {
		return &ValidationError{Field: "start", Message: "start date is required"}
	}
	if iv.End != nil && iv.End.Before(iv.Start) {
		return &ValidationError{Field: "end", Message: "end date is before start date"}
	}
	return nil
}

func (iv DateInterval) String() string {
	if iv.End == nil {
		return "[" + iv.Start.String() + ", ...)"
	}
	return "[" + iv.Start.String() + ", " + iv.End.String() + "]"
}

// MonthsTouched counts the calendar months that intersect [from, to].
// A sub-range touching a month for a single day still counts that month in
// full; billing never pro-rates inside a month.
func MonthsTouched(from, to Date) int {
	months := 0
	cursor := StartOfMonth(from)
	for !cursor.After(to) {
		months++
		cursor = cursor.AddMonths(1)
	}
	return months
}

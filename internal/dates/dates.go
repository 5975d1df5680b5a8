// Package dates provides calendar-date parsing and day arithmetic for
// scheduling. A Date is a whole calendar day; there is no sub-day resolution
// anywhere in the chart model, so all values normalize to UTC midnight.
package dates

import (
	"fmt"
	"time"

	"github.com/ganttkit/ganttkit/internal/errors"
)

// Layout is the canonical wire format for dates.
const Layout = "2006-01-02"

// Date represents a single calendar day at UTC midnight.
type Date struct {
	t time.Time
}

// New returns the date for the given year, month and day.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in UTC.
func Today() Date {
	return FromTime(time.Now().UTC())
}

// FromTime truncates a time.Time to its calendar day.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Parse parses a date in YYYY-MM-DD form. RFC 3339 timestamps are accepted
// and truncated to their day, so re-imported exports round-trip.
func Parse(s string) (Date, error) {
	if t, err := time.Parse(Layout, s); err == nil {
		return FromTime(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t.UTC()), nil
	}
	return Date{}, errors.ErrInvalidDate("calendar", s)
}

// ParseField is Parse with the field name carried into the error.
func ParseField(field, s string) (Date, error) {
	d, err := Parse(s)
	if err != nil {
		return Date{}, errors.ErrInvalidDate(field, s)
	}
	return d, nil
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.t.Format(Layout)
}

// Time returns the underlying time at UTC midnight.
func (d Date) Time() time.Time {
	return d.t
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return FromTime(d.t.AddDate(0, 0, n))
}

// Before reports whether d is before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether two dates are the same day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// Max returns the later of two dates.
func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

// DaysBetween returns the signed number of days from a to b, exclusive:
// DaysBetween(d, d) == 0.
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t) / (24 * time.Hour))
}

// InclusiveDays returns the day count of the span [a, b] counting both
// endpoints: a same-day span is 1 day.
func InclusiveDays(a, b Date) int {
	return DaysBetween(a, b) + 1
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD (or RFC 3339) string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return errors.ErrInvalidDate("calendar", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

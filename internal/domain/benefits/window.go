package benefits

import (
	"fmt"
	"time"
)

// MonthDay is a calendar date without a year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses an MM-DD string such as "10-15".
func ParseMonthDay(s string) (MonthDay, error) {
	t, err := time.Parse("01-02", s)
	if err != nil {
		return MonthDay{}, fmt.Errorf("invalid month-day %q: want MM-DD", s)
	}
	return MonthDay{Month: t.Month(), Day: t.Day()}, nil
}

func (m MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(m.Month), m.Day)
}

func (m MonthDay) ordinal() int {
	return int(m.Month)*100 + m.Day
}

// RenewalWindow is the closed range of calendar dates, within a single year,
// during which next-year documents are offered.
type RenewalWindow struct {
	Start MonthDay
	End   MonthDay
}

// DefaultRenewalWindow is Oct 15 through Dec 31.
var DefaultRenewalWindow = RenewalWindow{
	Start: MonthDay{Month: time.October, Day: 15},
	End:   MonthDay{Month: time.December, Day: 31},
}

// NewRenewalWindow parses MM-DD bounds. The window may not wrap the year end.
func NewRenewalWindow(start, end string) (RenewalWindow, error) {
	s, err := ParseMonthDay(start)
	if err != nil {
		return RenewalWindow{}, err
	}
	e, err := ParseMonthDay(end)
	if err != nil {
		return RenewalWindow{}, err
	}
	if s.ordinal() > e.ordinal() {
		return RenewalWindow{}, fmt.Errorf("renewal window start %s is after end %s", s, e)
	}
	return RenewalWindow{Start: s, End: e}, nil
}

// Contains reports whether now's calendar date, in now's location, falls
// inside the window. Both bounds are inclusive for the whole day.
func (w RenewalWindow) Contains(now time.Time) bool {
	d := MonthDay{Month: now.Month(), Day: now.Day()}.ordinal()
	return d >= w.Start.ordinal() && d <= w.End.ordinal()
}

// IsWithinRenewalWindow reports whether now falls in DefaultRenewalWindow.
func IsWithinRenewalWindow(now time.Time) bool {
	return DefaultRenewalWindow.Contains(now)
}

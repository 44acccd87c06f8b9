// Package schedule evaluates recurrence descriptors for tracked items.
//
// A Descriptor is a tagged variant: the Kind selects which payload fields
// are meaningful. Descriptors are parsed and validated once when an item is
// saved (see Parse); evaluation is pure and never re-parses text.
//
// Month-level checks for the anchored cycles (monthly excepted) deliberately
// ignore the day component: an obligation anchored on the 31st is still
// reported as due in a 30-day month even though no day-level occurrence
// exists there. The day-level and month-level checks are asymmetric on
// purpose; see OccursInMonth.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the recurrence cycle of a descriptor.
type Kind string

// Supported cycle kinds.
const (
	Daily      Kind = "daily"
	Weekly     Kind = "weekly"
	Monthly    Kind = "monthly"
	Quarterly  Kind = "quarterly"
	HalfYearly Kind = "half-yearly"
	Yearly     Kind = "yearly"
	Once       Kind = "once"
)

// ErrInvalidDescriptor is returned when a descriptor's payload does not
// match its kind.
var ErrInvalidDescriptor = errors.New("invalid schedule descriptor")

// Descriptor describes how often and on what calendar basis an item recurs.
// Only the fields relevant to Kind are set:
//
//	daily:       nothing
//	weekly:      Weekdays
//	monthly:     MonthDay
//	quarterly:   AnchorDay, AnchorMonth
//	half-yearly: AnchorDay, AnchorMonth
//	yearly:      AnchorDay, AnchorMonth
//	once:        AnchorDay, AnchorMonth, Year
type Descriptor struct {
	Kind        Kind           `json:"kind"`
	Weekdays    []time.Weekday `json:"weekdays,omitempty"`
	MonthDay    int            `json:"monthDay,omitempty"`
	AnchorDay   int            `json:"anchorDay,omitempty"`
	AnchorMonth time.Month     `json:"anchorMonth,omitempty"`
	Year        int            `json:"year,omitempty"`
}

// Validate reports whether the descriptor's payload is consistent with its
// kind. A zero Descriptor (unknown kind) is invalid.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case Daily:
		return nil
	case Weekly:
		if len(d.Weekdays) == 0 {
			return fmt.Errorf("%w: weekly cycle needs at least one weekday", ErrInvalidDescriptor)
		}
		for _, wd := range d.Weekdays {
			if wd < time.Sunday || wd > time.Saturday {
				return fmt.Errorf("%w: unknown weekday %d", ErrInvalidDescriptor, wd)
			}
		}
		return nil
	case Monthly:
		if d.MonthDay < 1 || d.MonthDay > 31 {
			return fmt.Errorf("%w: day of month %d out of range", ErrInvalidDescriptor, d.MonthDay)
		}
		return nil
	case Quarterly, HalfYearly, Yearly:
		return validAnchor(d.AnchorDay, d.AnchorMonth)
	case Once:
		if err := validAnchor(d.AnchorDay, d.AnchorMonth); err != nil {
			return err
		}
		if d.Year < 1 {
			return fmt.Errorf("%w: year %d out of range", ErrInvalidDescriptor, d.Year)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown cycle kind %q", ErrInvalidDescriptor, d.Kind)
	}
}

func validAnchor(day int, month time.Month) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: anchor day %d out of range", ErrInvalidDescriptor, day)
	}
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: anchor month %d out of range", ErrInvalidDescriptor, month)
	}
	return nil
}

// OccursOn reports whether the descriptor has an occurrence on the given
// calendar date. The day component is honored here, unlike OccursInMonth.
func (d Descriptor) OccursOn(date time.Time) bool {
	switch d.Kind {
	case Daily:
		return true
	case Weekly:
		for _, wd := range d.Weekdays {
			if wd == date.Weekday() {
				return true
			}
		}
		return false
	case Monthly:
		return d.MonthDay == date.Day()
	case Quarterly:
		return d.AnchorDay == date.Day() && monthOnCycle(date.Month(), d.AnchorMonth, 3)
	case HalfYearly:
		return d.AnchorDay == date.Day() && monthOnCycle(date.Month(), d.AnchorMonth, 6)
	case Yearly:
		return d.AnchorDay == date.Day() && d.AnchorMonth == date.Month()
	case Once:
		return d.AnchorDay == date.Day() && d.AnchorMonth == date.Month() && d.Year == date.Year()
	default:
		return false
	}
}

// OccursInMonth reports whether the descriptor has any occurrence in the
// given month of the given year.
//
// For the anchored cycles (quarterly, half-yearly, yearly, once) only the
// anchor month is tested; the anchor day is ignored even when it exceeds
// the month's day count. Monthly cycles are the exception: a day past the
// end of the month means the occurrence is skipped for that month, not
// rolled to the last day.
func (d Descriptor) OccursInMonth(month time.Month, year int) bool {
	switch d.Kind {
	case Daily:
		return true
	case Weekly:
		// Every weekday occurs at least once in any month.
		return len(d.Weekdays) > 0
	case Monthly:
		return d.MonthDay >= 1 && d.MonthDay <= daysIn(month, year)
	case Quarterly:
		return monthOnCycle(month, d.AnchorMonth, 3)
	case HalfYearly:
		return monthOnCycle(month, d.AnchorMonth, 6)
	case Yearly:
		return d.AnchorMonth == month
	case Once:
		return d.AnchorMonth == month && d.Year == year
	default:
		return false
	}
}

// monthOnCycle reports whether month falls on the cycle that starts at
// anchor and repeats every step months, wrapping around the year.
func monthOnCycle(month, anchor time.Month, step int) bool {
	diff := (int(month) - int(anchor) + 12) % 12
	return diff%step == 0
}

// daysIn returns the number of days in the given month of the given year.
func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

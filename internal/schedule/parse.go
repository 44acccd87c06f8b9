package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Parse builds a Descriptor from a cycle kind and its textual date
// descriptor, the format users type and legacy exports carry:
//
//	daily:       empty
//	weekly:      weekday names, comma separated ("Monday" or "Monday,Friday")
//	monthly:     day of month ("5" or "05")
//	quarterly:   "DD/MM" anchor
//	half-yearly: "DD/MM" anchor
//	yearly:      "DD/MM" anchor
//	once:        "DD/MM/YYYY"
//
// The result is validated; callers can store it without re-checking.
func Parse(kind Kind, text string) (Descriptor, error) {
	text = strings.TrimSpace(text)
	d := Descriptor{Kind: kind}

	switch kind {
	case Daily:
		// No date descriptor.

	case Weekly:
		for _, part := range strings.Split(text, ",") {
			name := strings.ToLower(strings.TrimSpace(part))
			if name == "" {
				continue
			}
			wd, ok := weekdayNames[name]
			if !ok {
				return Descriptor{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidDescriptor, part)
			}
			d.Weekdays = append(d.Weekdays, wd)
		}

	case Monthly:
		day, err := strconv.Atoi(text)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: day of month %q", ErrInvalidDescriptor, text)
		}
		d.MonthDay = day

	case Quarterly, HalfYearly, Yearly:
		day, month, err := parseDayMonth(text)
		if err != nil {
			return Descriptor{}, err
		}
		d.AnchorDay, d.AnchorMonth = day, month

	case Once:
		parts := strings.Split(text, "/")
		if len(parts) != 3 {
			return Descriptor{}, fmt.Errorf("%w: want DD/MM/YYYY, got %q", ErrInvalidDescriptor, text)
		}
		day, month, err := parseDayMonth(parts[0] + "/" + parts[1])
		if err != nil {
			return Descriptor{}, err
		}
		year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: year %q", ErrInvalidDescriptor, parts[2])
		}
		d.AnchorDay, d.AnchorMonth, d.Year = day, month, year

	default:
		return Descriptor{}, fmt.Errorf("%w: unknown cycle kind %q", ErrInvalidDescriptor, kind)
	}

	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func parseDayMonth(text string) (int, time.Month, error) {
	parts := strings.Split(text, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: want DD/MM, got %q", ErrInvalidDescriptor, text)
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: day %q", ErrInvalidDescriptor, parts[0])
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: month %q", ErrInvalidDescriptor, parts[1])
	}
	return day, time.Month(month), nil
}

// Label renders the descriptor for display ("Monthly on day 5",
// "Weekly on Monday, Friday").
func (d Descriptor) Label() string {
	switch d.Kind {
	case Daily:
		return "Daily"
	case Weekly:
		names := make([]string, len(d.Weekdays))
		for i, wd := range d.Weekdays {
			names[i] = wd.String()
		}
		return "Weekly on " + strings.Join(names, ", ")
	case Monthly:
		return fmt.Sprintf("Monthly on day %d", d.MonthDay)
	case Quarterly:
		return fmt.Sprintf("Quarterly from %02d/%02d", d.AnchorDay, d.AnchorMonth)
	case HalfYearly:
		return fmt.Sprintf("Half-yearly from %02d/%02d", d.AnchorDay, d.AnchorMonth)
	case Yearly:
		return fmt.Sprintf("Yearly on %02d/%02d", d.AnchorDay, d.AnchorMonth)
	case Once:
		return fmt.Sprintf("Once on %02d/%02d/%04d", d.AnchorDay, d.AnchorMonth, d.Year)
	default:
		return string(d.Kind)
	}
}

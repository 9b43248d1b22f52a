package sequencer

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// Policy decides which weekdays qualify for a delivery.
type Policy struct {
	name  string
	allow func(time.Weekday) bool
}

// Name returns the canonical policy string (e.g. "daily", "custom:mon,wed,fri").
func (p Policy) Name() string {
	return p.name
}

// Allows reports whether the policy accepts the given weekday.
func (p Policy) Allows(d time.Weekday) bool {
	if p.allow == nil {
		return true
	}
	return p.allow(d)
}

// Daily accepts every day of the week.
func Daily() Policy {
	return Policy{name: "daily", allow: func(time.Weekday) bool { return true }}
}

// Weekdays accepts Monday through Friday.
func Weekdays() Policy {
	return Policy{name: "weekdays", allow: func(d time.Weekday) bool {
		return d != time.Saturday && d != time.Sunday
	}}
}

// Custom accepts only the listed weekdays.
func Custom(days ...time.Weekday) Policy {
	mask := make(map[time.Weekday]bool, len(days))
	names := make([]string, 0, len(days))
	for _, d := range days {
		mask[d] = true
		names = append(names, strings.ToLower(d.String()[:3]))
	}
	return Policy{
		name:  "custom:" + strings.Join(names, ","),
		allow: func(d time.Weekday) bool { return mask[d] },
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParsePolicy builds a Policy from the frequency string stored on a
// subscription plan: "daily", "weekdays" or "custom:mon,wed,fri". An empty
// string means daily.
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == "daily":
		return Daily(), nil
	case s == "weekdays":
		return Weekdays(), nil
	case strings.HasPrefix(s, "custom:"):
		parts := strings.Split(strings.TrimPrefix(s, "custom:"), ",")
		days := make([]time.Weekday, 0, len(parts))
		for _, part := range parts {
			day, ok := weekdayNames[strings.TrimSpace(part)]
			if !ok {
				return Policy{}, fmt.Errorf("unknown weekday %q in frequency %q", part, s)
			}
			days = append(days, day)
		}
		if len(days) == 0 {
			return Policy{}, fmt.Errorf("frequency %q names no weekdays", s)
		}
		return Custom(days...), nil
	default:
		return Policy{}, fmt.Errorf("unknown frequency %q", s)
	}
}

// Sequence expands a subscription window into the ordered calendar dates a
// delivery should go out on. It is a pure function of its inputs: the clock
// is injected as today, so identical calls yield identical output.
//
// The start date is clamped to tomorrow; a delivery is never scheduled for
// today or the past. The scan covers exactly durationDays calendar days from
// the clamped start, filtered by the policy: a plan that only delivers on
// some weekdays yields fewer dates, never a longer window. The short return
// reports such a shortfall and the caller decides how to surface it. A safety
// ceiling guards termination independently of the window arithmetic.
func Sequence(start, today time.Time, durationDays int, policy Policy) (dates []time.Time, short bool) {
	if durationDays <= 0 {
		return nil, false
	}

	tomorrow := now.With(today).BeginningOfDay().AddDate(0, 0, 1)
	cursor := now.With(start).BeginningOfDay()
	if cursor.Before(tomorrow) {
		cursor = tomorrow
	}

	end := cursor.AddDate(0, 0, durationDays)
	ceiling := durationDays*3 + 7

	dates = make([]time.Time, 0, durationDays)
	for scanned := 0; cursor.Before(end) && scanned < ceiling; scanned++ {
		if policy.Allows(cursor.Weekday()) {
			dates = append(dates, cursor)
		}
		cursor = cursor.AddDate(0, 0, 1)
	}

	return dates, len(dates) < durationDays
}

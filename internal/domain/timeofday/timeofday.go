// Package timeofday normalizes the backend's ambiguously typed schedule
// value into clock components.
//
// The scheduled_time field arrives in one of two shapes: a bare clock time
// ("18:30", "18:30:00") or a full timestamp. The discriminator is inherited
// from the upstream data: a value containing ':' with length <= 8 is a bare
// time (a real timestamp is always longer), anything else is attempted as a
// timestamp. The heuristic is deliberately isolated behind Parse so it can
// be replaced by a stricter schema without touching the projector.
package timeofday

import (
	"strconv"
	"strings"
	"time"
)

// bareTimeMaxLen is the length boundary of the bare-time heuristic.
// "HH:MM:SS" is exactly 8 characters, so the comparison must be inclusive.
const bareTimeMaxLen = 8

// TimeOfDay holds the clock components extracted from a schedule value.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// timestampLayouts are the wire timestamp shapes observed upstream, tried
// in order. Zoneless layouts are interpreted in local time, matching how
// the display surfaces historically read them.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parse extracts hour and minute from a schedule value. The second return
// is false when the value matches neither shape; callers fall back to
// midnight. Parse never panics and never returns an error.
func Parse(value string) (TimeOfDay, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return TimeOfDay{}, false
	}

	if strings.Contains(value, ":") && len(value) <= bareTimeMaxLen {
		return parseBare(value)
	}

	if t, ok := ParseTimestamp(value); ok {
		local := t.In(time.Local)
		return TimeOfDay{Hour: local.Hour(), Minute: local.Minute()}, true
	}
	return TimeOfDay{}, false
}

// ParseTimestamp parses an absolute schedule timestamp. Zoneless layouts
// are anchored in local time.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, value)
		} else {
			t, err = time.ParseInLocation(layout, value, time.Local)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseBare handles "HH:MM" and "HH:MM:SS"; seconds are ignored.
func parseBare(value string) (TimeOfDay, bool) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: hour, Minute: minute}, true
}

// Package rule reconciles the backend weekday convention with the calendar
// convention and evaluates recurrence rules against calendar weekdays.
//
// The backend numbers weekdays 0=Monday through 6=Sunday while time.Weekday
// runs 0=Sunday through 6=Saturday. Every conversion between the two MUST go
// through ToCalendarWeekday; ad hoc arithmetic at call sites is how the two
// conventions drift apart.
package rule

import (
	"fmt"
	"time"

	"github.com/marquee-live/marquee/internal/domain/model"
)

// Backend weekday bounds.
const (
	minBackendDay = 0
	maxBackendDay = 6
)

// ToCalendarWeekday converts a backend weekday (0=Monday..6=Sunday) to the
// platform time.Weekday (0=Sunday..6=Saturday). This is the single
// authoritative implementation of the conversion.
func ToCalendarWeekday(backendDay int) (time.Weekday, error) {
	if backendDay < minBackendDay || backendDay > maxBackendDay {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDayIndex, backendDay)
	}
	return time.Weekday((backendDay + 1) % 7), nil
}

// Matches reports whether the rule fires on the given calendar weekday.
// A SPECIFIC_DAY rule with an out-of-range anchor returns ErrInvalidDayIndex;
// callers treat that as "the entity produces no occurrences" rather than
// failing the whole projection batch.
func Matches(r model.RecurrenceRule, d time.Weekday) (bool, error) {
	switch r.Kind {
	case model.KindDaily:
		return true, nil
	case model.KindWeekdays:
		return d >= time.Monday && d <= time.Friday, nil
	case model.KindWeekends:
		return d == time.Saturday || d == time.Sunday, nil
	case model.KindSpecificDay:
		want, err := ToCalendarWeekday(r.AnchorDay)
		if err != nil {
			return false, err
		}
		return d == want, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
}

// ParseKind maps a backend recurrence_type string onto a RuleKind.
func ParseKind(s string) (model.RuleKind, error) {
	switch model.RuleKind(s) {
	case model.KindDaily, model.KindWeekdays, model.KindWeekends, model.KindSpecificDay:
		return model.RuleKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

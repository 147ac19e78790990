// Package projector turns one schedulable entity plus one date window into
// concrete calendar occurrences.
//
// Projection is a pure computation: no clock reads, no I/O, no shared
// state. For a fixed entity and window the output is identical on every
// call, which is what makes calendar views reproducible under test.
package projector

import (
	"time"

	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/internal/domain/rule"
	"github.com/marquee-live/marquee/internal/domain/timeofday"
)

// defaultOccurrenceCap bounds the number of occurrences emitted for a
// single entity, guarding against absurdly wide windows.
const defaultOccurrenceCap = 5000

// SkipReason classifies why an entity contributed no occurrences.
type SkipReason string

// Known skip reasons.
const (
	SkipMissingRule SkipReason = "missing_rule"
	SkipInvalidRule SkipReason = "invalid_rule"
	SkipBadSchedule SkipReason = "bad_schedule"
	SkipBadWindow   SkipReason = "bad_window"
	SkipCapExceeded SkipReason = "cap_exceeded"
)

// Skip is a soft diagnostic for an entity excluded from projection.
// Skips are reported to callers, never raised as errors: one malformed
// entity must not block the rest of the calendar.
type Skip struct {
	EntityID   string
	EntityType model.EntityType
	Reason     SkipReason
	Detail     string
}

// Option applies a configuration option to the Projector.
type Option func(*Projector)

// WithOccurrenceCap bounds occurrences emitted per entity per call.
func WithOccurrenceCap(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.occurrenceCap = n
		}
	}
}

// Projector enumerates window days and emits occurrences matching an
// entity's recurrence rule.
type Projector struct {
	occurrenceCap int
}

// New constructs a Projector with configuration options.
func New(opts ...Option) *Projector {
	p := &Projector{
		occurrenceCap: defaultOccurrenceCap,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project returns the occurrences of a single entity inside the half-open
// window [Start, End). The second return carries a diagnostic when the
// entity was skipped or truncated; it is nil on a clean projection.
func (p *Projector) Project(e model.Entity, w model.Window) ([]model.Occurrence, *Skip) {
	if !w.Valid() {
		return nil, &Skip{EntityID: e.ID, EntityType: e.Type, Reason: SkipBadWindow, Detail: "window end not after start"}
	}

	if !e.Recurring {
		return p.projectOneOff(e, w)
	}

	if e.Rule == nil {
		// Recurring with no rule is malformed upstream data, not an error.
		return nil, &Skip{EntityID: e.ID, EntityType: e.Type, Reason: SkipMissingRule}
	}
	return p.projectRecurring(e, w)
}

// projectOneOff emits at most one occurrence for a non-recurring entity.
// The start bound is compared at calendar-day granularity, the end bound at
// the exact instant: an anchor at window end is excluded, one millisecond
// earlier is included.
func (p *Projector) projectOneOff(e model.Entity, w model.Window) ([]model.Occurrence, *Skip) {
	at, ok := timeofday.ParseTimestamp(e.Schedule)
	if !ok {
		return nil, &Skip{EntityID: e.ID, EntityType: e.Type, Reason: SkipBadSchedule, Detail: e.Schedule}
	}

	if model.StartOfDay(at).Before(model.StartOfDay(w.Start)) || !at.Before(w.End) {
		return nil, nil
	}
	return []model.Occurrence{occurrence(e, at)}, nil
}

// projectRecurring walks every calendar day in the window and tests the
// rule against the platform weekday.
func (p *Projector) projectRecurring(e model.Entity, w model.Window) ([]model.Occurrence, *Skip) {
	tod, parsed := timeofday.Parse(e.Schedule)
	if !parsed {
		// Unparsable time of day degrades to midnight; the entity still
		// occurs on its matching days.
		tod = timeofday.TimeOfDay{}
	}

	var out []model.Occurrence
	for d := model.StartOfDay(w.Start); d.Before(w.End); d = d.AddDate(0, 0, 1) {
		match, err := rule.Matches(*e.Rule, d.Weekday())
		if err != nil {
			// Invalid rule: drop the entity, keep the batch alive.
			return nil, &Skip{EntityID: e.ID, EntityType: e.Type, Reason: SkipInvalidRule, Detail: err.Error()}
		}
		if !match {
			continue
		}
		if len(out) >= p.occurrenceCap {
			return out, &Skip{EntityID: e.ID, EntityType: e.Type, Reason: SkipCapExceeded}
		}
		at := time.Date(d.Year(), d.Month(), d.Day(), tod.Hour, tod.Minute, 0, 0, d.Location())
		out = append(out, occurrence(e, at))
	}
	return out, nil
}

func occurrence(e model.Entity, at time.Time) model.Occurrence {
	return model.Occurrence{
		EntityID:   e.ID,
		EntityType: e.Type,
		At:         at,
		Metadata:   e.Metadata,
	}
}

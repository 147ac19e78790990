// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"time"
)

// EntityType tags a schedulable entity. Entities of different types with
// the same ID are distinct.
type EntityType string

// Known entity types.
const (
	TypeShow  EntityType = "show"
	TypeEvent EntityType = "event"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	return t == TypeShow || t == TypeEvent
}

// RuleKind selects the repeat pattern of a recurrence rule.
type RuleKind string

// Known recurrence kinds.
const (
	KindDaily       RuleKind = "daily"
	KindWeekdays    RuleKind = "weekdays"
	KindWeekends    RuleKind = "weekends"
	KindSpecificDay RuleKind = "specific_day"
)

// RecurrenceRule is the declarative repeat pattern attached to an entity.
// AnchorDay is only meaningful for KindSpecificDay and is stored in the
// backend weekday convention: 0=Monday through 6=Sunday.
type RecurrenceRule struct {
	Kind      RuleKind `json:"kind"`
	AnchorDay int      `json:"anchor_day"`
}

// Entity is a show or event eligible for calendar placement.
//
// Schedule holds the anchor schedule exactly as received from the backend:
// a bare clock time ("18:30") for recurring entities, or an absolute
// timestamp for one-off entities. Metadata is an opaque display payload
// carried through projection untouched.
type Entity struct {
	ID        string          `json:"id"`
	Type      EntityType      `json:"type"`
	Recurring bool            `json:"recurring"`
	Rule      *RecurrenceRule `json:"rule,omitempty"`
	Schedule  string          `json:"schedule"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// Key returns the identity key of the entity within the catalog.
func (e Entity) Key() string {
	return string(e.Type) + "/" + e.ID
}

// Occurrence is one concrete calendar appearance of an entity.
type Occurrence struct {
	EntityID   string          `json:"entity_id"`
	EntityType EntityType      `json:"entity_type"`
	At         time.Time       `json:"at"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// dayKeyLayout is the calendar-day granularity used for deduplication.
const dayKeyLayout = "2006-01-02"

// DayKey returns the calendar day of the occurrence in its own location.
// Together with the entity identity it forms the dedupe key: at most one
// occurrence per entity per calendar day survives a projection call.
func (o Occurrence) DayKey() string {
	return o.At.Format(dayKeyLayout)
}

// DedupeKey returns the full (entity, type, calendar day) dedupe key.
func (o Occurrence) DedupeKey() string {
	return o.EntityID + "|" + string(o.EntityType) + "|" + o.DayKey()
}

// Window is the half-open projection range [Start, End). The engine never
// reads the clock; callers construct windows, including any notion of
// "today", at the call site.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from explicit bounds.
func NewWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// RollingWindow builds an N-day window starting at today's midnight in
// today's location. The caller supplies "today" so projections stay
// reproducible.
func RollingWindow(today time.Time, days int) Window {
	start := StartOfDay(today)
	return Window{Start: start, End: start.AddDate(0, 0, days)}
}

// Valid reports whether the window is non-empty and well ordered.
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}

// Days returns the number of calendar days enumerated by the window.
func (w Window) Days() int {
	n := 0
	for d := StartOfDay(w.Start); d.Before(w.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

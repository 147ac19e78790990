// Package types contains wire-facing types shared across the application.
package types

import (
	"encoding/json"
	"time"

	"github.com/marquee-live/marquee/internal/domain/model"
)

// WireEntity mirrors the backend REST shape of a schedulable record.
// Field names follow the upstream API: is_recurring, recurrence_type,
// day_of_week, scheduled_time.
type WireEntity struct {
	SubmissionID string          `json:"submission_id,omitempty"`
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	IsRecurring  bool            `json:"is_recurring"`
	Recurrence   string          `json:"recurrence_type,omitempty"`
	DayOfWeek    *int            `json:"day_of_week,omitempty"`
	Scheduled    string          `json:"scheduled_time"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// OccurrenceView is the JSON row returned by calendar queries.
type OccurrenceView struct {
	EntityID   string          `json:"entity_id"`
	EntityType string          `json:"entity_type"`
	At         string          `json:"at"`
	Day        string          `json:"day"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// ViewOf renders a domain occurrence as its API row.
func ViewOf(o model.Occurrence) OccurrenceView {
	return OccurrenceView{
		EntityID:   o.EntityID,
		EntityType: string(o.EntityType),
		At:         o.At.Format(time.RFC3339),
		Day:        o.DayKey(),
		Metadata:   o.Metadata,
	}
}

// Package normalize defines the contract for turning wire records into
// catalog-ready domain entities.
package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/internal/domain/rule"
	"github.com/marquee-live/marquee/internal/domain/timeofday"
	"github.com/marquee-live/marquee/internal/domain/types"
)

// Normalizer validates a wire record and maps it onto the domain model.
type Normalizer interface {
	// Normalize maps a wire record, honoring ctx for cancellation.
	Normalize(ctx context.Context, in types.WireEntity) (model.Entity, error)
}

// Option applies a configuration option to the WireNormalizer.
type Option func(*WireNormalizer)

// WithStrictSchedule rejects recurring records whose scheduled_time parses
// as neither a bare clock time nor a timestamp. When disabled such records
// are accepted and later projected at midnight.
func WithStrictSchedule(strict bool) Option {
	return func(n *WireNormalizer) {
		n.strictSchedule = strict
	}
}

// WireNormalizer implements Normalizer for the backend REST shape.
type WireNormalizer struct {
	strictSchedule bool
}

// New creates a normalizer with configuration options.
func New(opts ...Option) *WireNormalizer {
	n := &WireNormalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize validates identity, recurrence rule and schedule shape.
// Rule-level problems that projection would tolerate (midnight fallback)
// only fail here under WithStrictSchedule.
func (n *WireNormalizer) Normalize(ctx context.Context, in types.WireEntity) (model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return model.Entity{}, fmt.Errorf("normalize cancelled: %w", err)
	}

	if strings.TrimSpace(in.ID) == "" {
		return model.Entity{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	entityType := model.EntityType(strings.ToLower(strings.TrimSpace(in.Type)))
	if !entityType.Valid() {
		return model.Entity{}, fmt.Errorf("%w: type %q", ErrInvalidRecord, in.Type)
	}

	out := model.Entity{
		ID:        in.ID,
		Type:      entityType,
		Recurring: in.IsRecurring,
		Schedule:  strings.TrimSpace(in.Scheduled),
		Metadata:  in.Metadata,
	}

	if !in.IsRecurring {
		if _, ok := timeofday.ParseTimestamp(out.Schedule); !ok {
			return model.Entity{}, fmt.Errorf("%w: scheduled_time %q is not a timestamp", ErrInvalidRecord, in.Scheduled)
		}
		return out, nil
	}

	kind, err := rule.ParseKind(strings.ToLower(strings.TrimSpace(in.Recurrence)))
	if err != nil {
		return model.Entity{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	r := &model.RecurrenceRule{Kind: kind}
	if kind == model.KindSpecificDay {
		if in.DayOfWeek == nil {
			return model.Entity{}, fmt.Errorf("%w: specific_day without day_of_week", ErrInvalidRecord)
		}
		if _, err := rule.ToCalendarWeekday(*in.DayOfWeek); err != nil {
			return model.Entity{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		r.AnchorDay = *in.DayOfWeek
	}
	out.Rule = r

	if n.strictSchedule {
		if _, ok := timeofday.Parse(out.Schedule); !ok {
			return model.Entity{}, fmt.Errorf("%w: unparsable scheduled_time %q", ErrInvalidRecord, in.Scheduled)
		}
	}
	return out, nil
}

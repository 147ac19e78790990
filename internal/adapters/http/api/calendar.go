// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/internal/domain/types"
)

// CalendarHandler serves projection queries as JSON.
type CalendarHandler struct {
	deps    Dependencies
	windows WindowConfig
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(deps Dependencies, windows WindowConfig) *CalendarHandler {
	return &CalendarHandler{deps: deps, windows: windows}
}

// HandleGetCalendar handles GET /calendar requests.
// Query parameters: from/to (RFC3339), days (rolling window length), and
// type (show|event). With no bounds the window rolls from now; the clock
// is read here, at the call site, never inside the engine.
func (h *CalendarHandler) HandleGetCalendar(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_calendar"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	window, filter, err := parseWindowQuery(r, h.windows, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	occ, err := h.deps.Project(r.Context(), window, filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	views := make([]types.OccurrenceView, len(occ))
	for i, o := range occ {
		views[i] = types.ViewOf(o)
	}
	writeJSON(w, http.StatusOK, calendarResponse{
		From:        window.Start.Format(time.RFC3339),
		To:          window.End.Format(time.RFC3339),
		Occurrences: views,
	})
}

// parseWindowQuery builds the projection window from query parameters.
// Precedence: explicit from/to, then from+days, then a rolling window of
// days (or the default horizon) anchored at now.
func parseWindowQuery(r *http.Request, cfg WindowConfig, now time.Time) (model.Window, model.EntityType, error) {
	q := r.URL.Query()

	var filter model.EntityType
	if t := q.Get("type"); t != "" {
		filter = model.EntityType(t)
		if !filter.Valid() {
			return model.Window{}, "", fmt.Errorf("unknown type %q", t)
		}
	}

	days := cfg.DefaultHorizonDays
	if d := q.Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			return model.Window{}, "", fmt.Errorf("invalid days %q", d)
		}
		days = n
	}

	var window model.Window
	fromStr, toStr := q.Get("from"), q.Get("to")
	switch {
	case fromStr != "" && toStr != "":
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return model.Window{}, "", fmt.Errorf("invalid from: %w", err)
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return model.Window{}, "", fmt.Errorf("invalid to: %w", err)
		}
		window = model.NewWindow(from, to)
	case fromStr != "":
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return model.Window{}, "", fmt.Errorf("invalid from: %w", err)
		}
		window = model.RollingWindow(from, days)
	case toStr != "":
		return model.Window{}, "", fmt.Errorf("to given without from")
	default:
		window = model.RollingWindow(now, days)
	}

	if !window.Valid() {
		return model.Window{}, "", fmt.Errorf("window end not after start")
	}
	if cfg.MaxWindowDays > 0 && window.Days() > cfg.MaxWindowDays {
		return model.Window{}, "", fmt.Errorf("window exceeds %d days", cfg.MaxWindowDays)
	}
	return window, filter, nil
}

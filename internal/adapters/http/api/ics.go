// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/marquee-live/marquee/internal/domain/model"
)

// defaultEventDuration is used for exported events; the engine only knows
// start instants, not durations.
const defaultEventDuration = time.Hour

// ICSHandler serves projection queries as an iCalendar feed.
type ICSHandler struct {
	deps    Dependencies
	windows WindowConfig
}

// NewICSHandler creates a new ICS handler.
func NewICSHandler(deps Dependencies, windows WindowConfig) *ICSHandler {
	return &ICSHandler{deps: deps, windows: windows}
}

// HandleGetICS handles GET /calendar.ics requests. It accepts the same
// query parameters as GET /calendar and renders the occurrences as VEVENTs.
func (h *ICSHandler) HandleGetICS(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_calendar_ics"
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

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//marquee//calendar//EN")

	for _, o := range occ {
		uid := fmt.Sprintf("%s-%s-%s@marquee", o.EntityType, o.EntityID, o.DayKey())
		ev := cal.AddEvent(uid)
		ev.SetStartAt(o.At)
		ev.SetEndAt(o.At.Add(defaultEventDuration))
		ev.SetSummary(displayTitle(o))
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(cal.Serialize()))
}

// displayTitle peeks into the opaque metadata for a title. Projection
// itself never inspects metadata; this is a rendering-surface concern.
func displayTitle(o model.Occurrence) string {
	if len(o.Metadata) > 0 {
		var meta struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(o.Metadata, &meta); err == nil && meta.Title != "" {
			return meta.Title
		}
	}
	return fmt.Sprintf("%s %s", o.EntityType, o.EntityID)
}

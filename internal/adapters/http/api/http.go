// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/internal/domain/types"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// SeenAndRecord / Unrecord implement submission idempotency.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)

	// Enqueue pushes a wire record for async normalization.
	// Returns false on backpressure.
	Enqueue(ctx context.Context, sub types.WireEntity) bool

	// Project computes occurrences for the catalog over a window.
	Project(ctx context.Context, w model.Window, filter model.EntityType) ([]model.Occurrence, error)
}

// WindowConfig carries the window limits handlers enforce.
type WindowConfig struct {
	// DefaultHorizonDays is used when a query has no explicit bounds.
	DefaultHorizonDays int
	// MaxWindowDays caps any requested window.
	MaxWindowDays int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	entitiesHandler *EntitiesHandler
	calendarHandler *CalendarHandler
	icsHandler      *ICSHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, windows WindowConfig) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		entitiesHandler: NewEntitiesHandler(deps),
		calendarHandler: NewCalendarHandler(deps, windows),
		icsHandler:      NewICSHandler(deps, windows),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/entities", MetricsMiddleware(s.entitiesHandler.HandlePostEntity, "entities"))
	mux.HandleFunc("/calendar", MetricsMiddleware(s.calendarHandler.HandleGetCalendar, "calendar"))
	mux.HandleFunc("/calendar.ics", MetricsMiddleware(s.icsHandler.HandleGetICS, "calendar_ics"))
}

// submissionRequest mirrors the ingest schema for POST /entities.
type submissionRequest = types.WireEntity

func validateSubmission(r submissionRequest) error {
	switch {
	case strings.TrimSpace(r.SubmissionID) == "":
		return errors.New("missing submission_id")
	case strings.TrimSpace(r.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(r.Type) == "":
		return errors.New("missing type")
	case strings.TrimSpace(r.Scheduled) == "":
		return errors.New("missing scheduled_time")
	}
	if r.IsRecurring && strings.TrimSpace(r.Recurrence) == "" {
		return errors.New("recurring record missing recurrence_type")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type calendarResponse struct {
	From        string                 `json:"from"`
	To          string                 `json:"to"`
	Occurrences []types.OccurrenceView `json:"occurrences"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// EntitiesHandler handles ingest requests.
type EntitiesHandler struct {
	deps Dependencies
}

// NewEntitiesHandler creates a new entities handler.
func NewEntitiesHandler(deps Dependencies) *EntitiesHandler {
	return &EntitiesHandler{deps: deps}
}

// HandlePostEntity handles POST /entities requests.
func (h *EntitiesHandler) HandlePostEntity(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_entity"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateSubmission(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check: mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), req); !ok {
		// Roll back the seen status so the client can retry.
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/adapters/repository"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/types"
)

// AssessmentsHandler handles the assessment collection and its resources.
type AssessmentsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps Dependencies, maxLimit int) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleCollection handles POST /assessments and GET /assessments.
func (h *AssessmentsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AssessmentsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req types.CreateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	switch {
	case strings.TrimSpace(req.Title) == "":
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing title"))
		return
	case strings.TrimSpace(req.AssessorID) == "":
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing assessor_id"))
		return
	case strings.TrimSpace(req.AssesseeName) == "":
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing assessee_name"))
		return
	}
	rec, err := h.deps.CreateAssessment(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleList handles GET /assessments?assessee=NAME&limit=N.
func (h *AssessmentsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		limit = n
	}
	recs, err := h.deps.ListAssessments(r.Context(), r.URL.Query().Get("assessee"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if recs == nil {
		recs = []repository.Assessment{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// HandleResource dispatches /assessments/{id}[/...] routes.
func (h *AssessmentsHandler) HandleResource(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/assessments/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	id := parts[0]
	rest := parts[1:]

	switch {
	case len(rest) == 0:
		h.handleGet(w, r, id)
	case len(rest) == 1 && rest[0] == "snapshot":
		h.handleSnapshot(w, r, id)
	case len(rest) == 1 && rest[0] == "radar":
		h.handleRadar(w, r, id)
	case len(rest) == 1 && rest[0] == "report":
		h.handleReport(w, r, id)
	case len(rest) == 1 && rest[0] == "notes":
		h.handleNotes(w, r, id)
	case len(rest) == 1 && rest[0] == "saves":
		h.handleSaves(w, r)
	case len(rest) == 2 && rest[0] == "saves" && rest[1] == "retry":
		h.handleSavesRetry(w, r)
	case len(rest) == 2 && rest[0] == "behaviors":
		h.handleToggle(w, r, id, rest[1])
	case len(rest) == 3 && rest[0] == "steps" && rest[2] == "override":
		h.handleOverride(w, r, id, rest[1])
	default:
		http.NotFound(w, r)
	}
}

func (h *AssessmentsHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rec, err := h.deps.GetAssessment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/adapters/repository"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/scoring"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/session"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateAssessment(ctx context.Context, req types.CreateAssessmentRequest) (repository.Assessment, error)
	GetAssessment(ctx context.Context, id string) (repository.Assessment, error)
	ListAssessments(ctx context.Context, assesseeName string, limit int) ([]repository.Assessment, error)

	ToggleBehavior(ctx context.Context, assessmentID string, behaviorID int, checked bool) (bool, error)
	SetStepOverride(ctx context.Context, assessmentID string, stepID, level int) error
	SaveNotes(ctx context.Context, assessmentID string, notes map[string]string) error

	Snapshot(ctx context.Context, assessmentID string) (session.Snapshot, error)
	Radar(ctx context.Context, assessmentID string) (types.Radar, error)
	Export(ctx context.Context, assessmentID string) (string, error)

	SaveStatus(ctx context.Context) types.SaveStatus
	RetrySaves(ctx context.Context) int
}

// Server wires HTTP routes for the business API.
type Server struct {
	assessmentsHandler *AssessmentsHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	return &Server{
		assessmentsHandler: NewAssessmentsHandler(deps, maxListLimit),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		dashboardHandler:   newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/openapi.yaml", s.dashboardHandler.HandleOpenAPI)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/assessments", MetricsMiddleware(s.assessmentsHandler.HandleCollection, "assessments"))
	mux.HandleFunc("/assessments/", MetricsMiddleware(s.assessmentsHandler.HandleResource, "assessment"))
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

// writeDomainError translates service errors into HTTP responses: missing
// records map to 404, references outside the rubric to 409, invalid levels
// and malformed input to 400, everything else to 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, session.ErrUnknownBehavior), errors.Is(err, session.ErrUnknownStep):
		writeError(w, http.StatusConflict, "not_in_rubric", err)
	case errors.Is(err, session.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, scoring.ErrConfiguration):
		writeError(w, http.StatusConflict, "configuration_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

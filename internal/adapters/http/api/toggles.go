// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// toggleRequest mirrors the body of PUT /assessments/{id}/behaviors/{bid}.
type toggleRequest struct {
	Checked bool `json:"checked"`
}

// toggleResponse acknowledges a behavior toggle. Changed is false when the
// flag was already in the requested state.
type toggleResponse struct {
	BehaviorID int  `json:"behavior_id"`
	Checked    bool `json:"checked"`
	Changed    bool `json:"changed"`
}

// overrideRequest mirrors the body of PUT /assessments/{id}/steps/{sid}/override.
// Level 0 clears the override.
type overrideRequest struct {
	Level int `json:"level"`
}

func (h *AssessmentsHandler) handleToggle(w http.ResponseWriter, r *http.Request, id, behaviorStr string) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	behaviorID, err := strconv.Atoi(behaviorStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	changed, err := h.deps.ToggleBehavior(r.Context(), id, behaviorID, req.Checked)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{
		BehaviorID: behaviorID,
		Checked:    req.Checked,
		Changed:    changed,
	})
}

func (h *AssessmentsHandler) handleOverride(w http.ResponseWriter, r *http.Request, id, stepStr string) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	stepID, err := strconv.Atoi(stepStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.SetStepOverride(r.Context(), id, stepID, req.Level); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"step_id": stepID, "level": req.Level})
}

// handleNotes handles PUT /assessments/{id}/notes: saving the free-text
// coaching fields finalizes the assessment.
func (h *AssessmentsHandler) handleNotes(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var notes map[string]string
	if err := json.NewDecoder(r.Body).Decode(&notes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.SaveNotes(r.Context(), id, notes); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

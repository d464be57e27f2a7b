// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

func (h *AssessmentsHandler) handleSnapshot(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap, err := h.deps.Snapshot(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *AssessmentsHandler) handleRadar(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	radar, err := h.deps.Radar(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, radar)
}

// handleReport serves the plain-text export document.
func (h *AssessmentsHandler) handleReport(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	doc, err := h.deps.Export(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// handleSaves reports the toggle save pipeline for the "not saved"
// indicator.
func (h *AssessmentsHandler) handleSaves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SaveStatus(r.Context()))
}

func (h *AssessmentsHandler) handleSavesRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	retried := h.deps.RetrySaves(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"retried": retried})
}

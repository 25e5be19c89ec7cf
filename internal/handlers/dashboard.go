package handlers

import (
	"net/http"

	"github.com/daytrack/daytrack/internal/services/tracking"
	"github.com/gorilla/mux"
)

// DashboardHandler handles dashboard aggregation requests
type DashboardHandler struct {
	dashboard *tracking.Dashboard
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *tracking.Dashboard) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// RegisterRoutes registers dashboard routes on the given router.
// The router should already have the /dashboard prefix.
func (h *DashboardHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/summary", h.Summary).Methods("GET")
	r.HandleFunc("/tasks-by-status", h.TasksByStatus).Methods("GET")
	r.HandleFunc("/time-per-task", h.TimePerTask).Methods("GET")
	r.HandleFunc("/productivity-trend", h.ProductivityTrend).Methods("GET")
	r.HandleFunc("/metrics", h.Metrics).Methods("GET")
}

// Summary returns the headline numbers for one date
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// TasksByStatus returns the completed/pending partition for one date
func (h *DashboardHandler) TasksByStatus(w http.ResponseWriter, r *http.Request) {
	byStatus, err := h.dashboard.TasksByStatus(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, byStatus)
}

// TimePerTask returns per-task tracked time for one date
func (h *DashboardHandler) TimePerTask(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboard.TimePerTask(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// ProductivityTrend returns one point per day over [from, to]
func (h *DashboardHandler) ProductivityTrend(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	points, err := h.dashboard.ProductivityTrend(r.Context(), query.Get("from"), query.Get("to"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, points)
}

// Metrics returns the combined dashboard payload for one date
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboard.Metrics(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

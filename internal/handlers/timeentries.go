package handlers

import (
	"net/http"

	"github.com/daytrack/daytrack/internal/database"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TimeEntryHandler handles direct time-entry requests. Entries are created
// and closed exclusively through the task timer endpoints; this handler only
// reads and deletes.
type TimeEntryHandler struct {
	entryRepo database.TimeEntryStore
}

// NewTimeEntryHandler creates a new time entry handler
func NewTimeEntryHandler(entryRepo database.TimeEntryStore) *TimeEntryHandler {
	return &TimeEntryHandler{entryRepo: entryRepo}
}

// RegisterRoutes registers time entry routes on the given router.
// The router should already have the /time-entries prefix.
func (h *TimeEntryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEntries).Methods("GET")
	r.HandleFunc("/{id}", h.GetEntry).Methods("GET")
	r.HandleFunc("/{id}", h.DeleteEntry).Methods("DELETE")
}

// ListEntries lists the time entries of one task, oldest first
func (h *TimeEntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.URL.Query().Get("task"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Query parameter 'task' must be a task ID")
		return
	}

	entries, err := h.entryRepo.ListByTask(r.Context(), taskID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve time entries")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetEntry returns a single time entry
func (h *TimeEntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	entry, err := h.entryRepo.GetByID(r.Context(), entryID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// DeleteEntry removes a time entry from its task's ledger
func (h *TimeEntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	if err := h.entryRepo.Delete(r.Context(), entryID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": entryID.String()})
}

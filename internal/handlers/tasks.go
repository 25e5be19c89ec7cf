package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/models"
	"github.com/daytrack/daytrack/internal/services/tracking"
	"github.com/daytrack/daytrack/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TaskHandler handles task-related requests, including the timer endpoints.
type TaskHandler struct {
	taskRepo  database.TaskStore
	entryRepo database.TimeEntryStore
	tracker   *tracking.Tracker
	rollup    *tracking.Rollup
	dashboard *tracking.Dashboard
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskStore, entryRepo database.TimeEntryStore, tracker *tracking.Tracker, rollup *tracking.Rollup, dashboard *tracking.Dashboard) *TaskHandler {
	return &TaskHandler{
		taskRepo:  taskRepo,
		entryRepo: entryRepo,
		tracker:   tracker,
		rollup:    rollup,
		dashboard: dashboard,
	}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/populate", h.Populate).Methods("POST")
	r.HandleFunc("/stats", h.Stats).Methods("GET")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteTask).Methods("POST")
	r.HandleFunc("/{id}/start-timer", h.StartTimer).Methods("POST")
	r.HandleFunc("/{id}/stop-timer", h.StopTimer).Methods("POST")
	r.HandleFunc("/{id}/time-entries", h.ListTimeEntries).Methods("GET")
}

const (
	// MaxTitleLength is the maximum length for task titles
	MaxTitleLength = 200
	// MaxDescriptionLength is the maximum length for task descriptions
	MaxDescriptionLength = 2000
)

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=200"`
	Description   string `json:"description" validate:"max=2000"`
	Date          string `json:"date" validate:"required,datekey"`
	TargetSeconds int    `json:"target_seconds" validate:"gte=0"`
}

// UpdateTaskRequest represents an update task request. The date of a task is
// immutable and therefore absent here.
type UpdateTaskRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	TargetSeconds *int    `json:"target_seconds,omitempty" validate:"omitempty,gte=0"`
	Completed     *bool   `json:"completed,omitempty"`
}

// PopulateRequest represents a rollup request for one date
type PopulateRequest struct {
	Date string `json:"date" validate:"required,datekey"`
}

// PopulateResponse reports how many tasks the rollup created
type PopulateResponse struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
}

// ListTasks lists the tasks of one date, with derived timer fields.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date := r.URL.Query().Get("date")
	if err := validation.ValidateDateKey(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	tasks, err := h.taskRepo.ListByDate(ctx, date)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	closedTotals, err := h.entryRepo.ClosedTotalsByDate(ctx, date)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tracked time")
		return
	}

	details, err := h.tracker.Details(ctx, tasks, closedTotals, h.tracker.Now())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to project tasks")
		return
	}

	respondJSON(w, http.StatusOK, details)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	req.Description = validation.SanitizeText(req.Description)

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	task := &models.Task{
		ID:            uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		Date:          req.Date,
		TargetSeconds: req.TargetSeconds,
	}

	if err := h.taskRepo.Create(r.Context(), task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	detail := tracking.Project(task, 0, nil, h.tracker.Now())
	respondJSON(w, http.StatusCreated, detail)
}

// GetTask returns a single task with derived timer fields
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	task, err := h.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	detail, err := h.tracker.Detail(ctx, task, h.tracker.Now())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to project task")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// UpdateTask applies a partial update. The task's date never changes.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if req.Title != nil {
		sanitized := validation.SanitizeText(*req.Title)
		req.Title = &sanitized
	}
	if req.Description != nil {
		sanitized := validation.SanitizeText(*req.Description)
		req.Description = &sanitized
	}

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	ctx := r.Context()
	task, err := h.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.TargetSeconds != nil {
		task.TargetSeconds = *req.TargetSeconds
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := h.taskRepo.Update(ctx, task); err != nil {
		respondServiceError(w, err)
		return
	}

	detail, err := h.tracker.Detail(ctx, task, h.tracker.Now())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to project task")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// DeleteTask deletes a task and its whole time-entry ledger
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	if err := h.tracker.DeleteTask(r.Context(), taskID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": taskID.String()})
}

// CompleteTask marks a task as completed. Completion is independent of the
// timer: a running timer keeps running.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	task, err := h.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	task.Completed = true
	if err := h.taskRepo.Update(ctx, task); err != nil {
		respondServiceError(w, err)
		return
	}

	detail, err := h.tracker.Detail(ctx, task, h.tracker.Now())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to project task")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// StartTimer opens a time entry for the task
func (h *TaskHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	entry, err := h.tracker.Start(r.Context(), taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// StopTimer closes the task's open time entry
func (h *TaskHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	entry, err := h.tracker.Stop(r.Context(), taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// ListTimeEntries lists a task's time entries in chronological order
func (h *TaskHandler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if _, err := h.taskRepo.GetByID(ctx, taskID); err != nil {
		respondServiceError(w, err)
		return
	}

	entries, err := h.entryRepo.ListByTask(ctx, taskID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve time entries")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Populate runs the daily rollup for a date
func (h *TaskHandler) Populate(w http.ResponseWriter, r *http.Request) {
	var req PopulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	created, err := h.rollup.Populate(r.Context(), req.Date)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PopulateResponse{Date: req.Date, Created: created})
}

// Stats returns the completed/pending counts for a date
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	stats, err := h.dashboard.Stats(r.Context(), date)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// parseIDVar extracts and parses the {id} path variable, responding with a
// 400 when it is not a UUID.
func parseIDVar(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/models"
	"github.com/daytrack/daytrack/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// HabitTemplateHandler handles habit template requests
type HabitTemplateHandler struct {
	templateRepo database.HabitTemplateStore
}

// NewHabitTemplateHandler creates a new habit template handler
func NewHabitTemplateHandler(templateRepo database.HabitTemplateStore) *HabitTemplateHandler {
	return &HabitTemplateHandler{templateRepo: templateRepo}
}

// RegisterRoutes registers habit template routes on the given router.
// The router should already have the /habit-templates prefix.
func (h *HabitTemplateHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTemplates).Methods("GET")
	r.HandleFunc("", h.CreateTemplate).Methods("POST")
	r.HandleFunc("/{id}", h.GetTemplate).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTemplate).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTemplate).Methods("DELETE")
}

// CreateTemplateRequest represents a create habit template request
type CreateTemplateRequest struct {
	Title                string `json:"title" validate:"required,min=1,max=200"`
	Description          string `json:"description" validate:"max=2000"`
	DefaultTargetSeconds int    `json:"default_target_seconds" validate:"gte=0"`
	IsActive             *bool  `json:"is_active,omitempty"`
}

// UpdateTemplateRequest represents an update habit template request
type UpdateTemplateRequest struct {
	Title                *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description          *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	DefaultTargetSeconds *int    `json:"default_target_seconds,omitempty" validate:"omitempty,gte=0"`
	IsActive             *bool   `json:"is_active,omitempty"`
}

// ListTemplates lists all habit templates
func (h *HabitTemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateRepo.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve habit templates")
		return
	}

	respondJSON(w, http.StatusOK, templates)
}

// CreateTemplate creates a new habit template. Templates are active by
// default; editing or deactivating one later never touches already
// generated tasks.
func (h *HabitTemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	req.Description = validation.SanitizeText(req.Description)

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	tmpl := &models.HabitTemplate{
		ID:                   uuid.New(),
		Title:                req.Title,
		Description:          req.Description,
		DefaultTargetSeconds: req.DefaultTargetSeconds,
		IsActive:             isActive,
	}

	if err := h.templateRepo.Create(r.Context(), tmpl); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create habit template")
		return
	}

	respondJSON(w, http.StatusCreated, tmpl)
}

// GetTemplate returns a single habit template
func (h *HabitTemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	tmpl, err := h.templateRepo.GetByID(r.Context(), templateID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tmpl)
}

// UpdateTemplate applies a partial update to a habit template
func (h *HabitTemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	var req UpdateTemplateRequest
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
	tmpl, err := h.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if req.Title != nil {
		tmpl.Title = *req.Title
	}
	if req.Description != nil {
		tmpl.Description = *req.Description
	}
	if req.DefaultTargetSeconds != nil {
		tmpl.DefaultTargetSeconds = *req.DefaultTargetSeconds
	}
	if req.IsActive != nil {
		tmpl.IsActive = *req.IsActive
	}

	if err := h.templateRepo.Update(ctx, tmpl); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tmpl)
}

// DeleteTemplate deletes a habit template. Tasks generated from it survive
// with their template reference cleared.
func (h *HabitTemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := parseIDVar(w, r)
	if !ok {
		return
	}

	if err := h.templateRepo.Delete(r.Context(), templateID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": templateID.String()})
}

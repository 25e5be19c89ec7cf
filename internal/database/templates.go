package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daytrack/daytrack/internal/models"
	"github.com/google/uuid"
)

// HabitTemplateRepository handles habit template database operations
type HabitTemplateRepository struct {
	db *DB
}

// NewHabitTemplateRepository creates a new habit template repository
func NewHabitTemplateRepository(db *DB) *HabitTemplateRepository {
	return &HabitTemplateRepository{db: db}
}

// Create creates a new habit template
func (r *HabitTemplateRepository) Create(ctx context.Context, tmpl *models.HabitTemplate) error {
	query := `
		INSERT INTO habit_templates (id, title, description, default_target_seconds, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		tmpl.ID,
		tmpl.Title,
		tmpl.Description,
		tmpl.DefaultTargetSeconds,
		tmpl.IsActive,
		now,
		now,
	).Scan(&tmpl.CreatedAt, &tmpl.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create habit template: %w", err)
	}

	return nil
}

// GetByID retrieves a habit template by ID
func (r *HabitTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.HabitTemplate, error) {
	query := `
		SELECT id, title, description, default_target_seconds, is_active, created_at, updated_at
		FROM habit_templates
		WHERE id = $1
	`

	tmpl, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("habit template %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit template: %w", err)
	}

	return tmpl, nil
}

// List retrieves all habit templates, newest first.
func (r *HabitTemplateRepository) List(ctx context.Context) ([]*models.HabitTemplate, error) {
	return r.list(ctx, `
		SELECT id, title, description, default_target_seconds, is_active, created_at, updated_at
		FROM habit_templates
		ORDER BY created_at DESC
	`)
}

// ListActive retrieves the templates eligible for daily rollup.
func (r *HabitTemplateRepository) ListActive(ctx context.Context) ([]*models.HabitTemplate, error) {
	return r.list(ctx, `
		SELECT id, title, description, default_target_seconds, is_active, created_at, updated_at
		FROM habit_templates
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`)
}

func (r *HabitTemplateRepository) list(ctx context.Context, query string) ([]*models.HabitTemplate, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.HabitTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit template: %w", err)
		}
		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habit templates: %w", err)
	}

	return templates, nil
}

// Update updates an existing habit template
func (r *HabitTemplateRepository) Update(ctx context.Context, tmpl *models.HabitTemplate) error {
	query := `
		UPDATE habit_templates
		SET title = $2, description = $3, default_target_seconds = $4, is_active = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		tmpl.ID,
		tmpl.Title,
		tmpl.Description,
		tmpl.DefaultTargetSeconds,
		tmpl.IsActive,
		time.Now(),
	).Scan(&tmpl.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("habit template %s: %w", tmpl.ID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update habit template: %w", err)
	}

	return nil
}

// Delete deletes a habit template. Tasks generated from it keep existing;
// their habit_template_id is nulled by the schema's ON DELETE SET NULL.
func (r *HabitTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM habit_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("habit template %s: %w", id, models.ErrNotFound)
	}

	return nil
}

func scanTemplate(row rowScanner) (*models.HabitTemplate, error) {
	tmpl := &models.HabitTemplate{}

	err := row.Scan(
		&tmpl.ID,
		&tmpl.Title,
		&tmpl.Description,
		&tmpl.DefaultTargetSeconds,
		&tmpl.IsActive,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return tmpl, nil
}

package tracking

import (
	"context"
	"fmt"

	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/models"
	"github.com/daytrack/daytrack/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rollup materializes a date's task list from the active habit templates.
type Rollup struct {
	tasks     database.TaskStore
	templates database.HabitTemplateStore
	log       *zap.Logger
}

// NewRollup creates a new rollup generator
func NewRollup(tasks database.TaskStore, templates database.HabitTemplateStore, log *zap.Logger) *Rollup {
	return &Rollup{tasks: tasks, templates: templates, log: log}
}

// Populate ensures every active template has a task on the given date and
// returns how many tasks were actually created. Idempotent: a template that
// already generated a task for the date is skipped, so a second call for the
// same date creates nothing. Inactive templates are skipped entirely.
func (r *Rollup) Populate(ctx context.Context, date string) (int, error) {
	if err := validation.ValidateDateKey(date); err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	templates, err := r.templates.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := r.tasks.TemplateIDsForDate(ctx, date)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, tmpl := range templates {
		if existing[tmpl.ID] {
			continue
		}

		templateID := tmpl.ID
		task := &models.Task{
			ID:              uuid.New(),
			Title:           tmpl.Title,
			Description:     tmpl.Description,
			HabitTemplateID: &templateID,
			Date:            date,
			TargetSeconds:   tmpl.DefaultTargetSeconds,
			Completed:       false,
		}
		if err := r.tasks.Create(ctx, task); err != nil {
			return created, err
		}
		created++
	}

	r.log.Info("rollup_populated",
		zap.String("date", date),
		zap.Int("created", created),
		zap.Int("active_templates", len(templates)),
	)

	return created, nil
}

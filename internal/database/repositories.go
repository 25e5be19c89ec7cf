package database

import (
	"context"
	"time"

	"github.com/daytrack/daytrack/internal/models"
	"github.com/google/uuid"
)

// TaskStore is the task storage interface consumed by the services.
// It enables mock implementations in tests.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByDate(ctx context.Context, date string) ([]*models.Task, error)
	TemplateIDsForDate(ctx context.Context, date string) (map[uuid.UUID]bool, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TimeEntryStore is the interval ledger interface: it owns the start/stop
// entries for every task and answers accumulation queries over them.
type TimeEntryStore interface {
	Create(ctx context.Context, entry *models.TimeEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.TimeEntry, error)
	OpenByTask(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error)
	Close(ctx context.Context, id uuid.UUID, endTime time.Time, durationSeconds int) error
	ClosedTotalByTask(ctx context.Context, taskID uuid.UUID) (int, error)
	ClosedTotalsByDate(ctx context.Context, date string) (map[uuid.UUID]int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForTask(ctx context.Context, taskID uuid.UUID) error
}

// HabitTemplateStore is the habit template storage interface.
type HabitTemplateStore interface {
	Create(ctx context.Context, tmpl *models.HabitTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.HabitTemplate, error)
	List(ctx context.Context) ([]*models.HabitTemplate, error)
	ListActive(ctx context.Context) ([]*models.HabitTemplate, error)
	Update(ctx context.Context, tmpl *models.HabitTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var (
	_ TaskStore          = (*TaskRepository)(nil)
	_ TimeEntryStore     = (*TimeEntryRepository)(nil)
	_ HabitTemplateStore = (*HabitTemplateRepository)(nil)
)

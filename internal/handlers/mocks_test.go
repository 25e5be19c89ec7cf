package handlers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/models"
	"github.com/google/uuid"
)

// stubClock returns a fixed time; handler tests never advance it.
type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

type fakeStores struct {
	tasks     map[uuid.UUID]*models.Task
	entries   map[uuid.UUID]*models.TimeEntry
	templates map[uuid.UUID]*models.HabitTemplate
	failAll   bool
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		tasks:     make(map[uuid.UUID]*models.Task),
		entries:   make(map[uuid.UUID]*models.TimeEntry),
		templates: make(map[uuid.UUID]*models.HabitTemplate),
	}
}

func (f *fakeStores) TaskStore() database.TaskStore             { return &fakeTaskStore{f} }
func (f *fakeStores) EntryStore() database.TimeEntryStore       { return &fakeEntryStore{f} }
func (f *fakeStores) TemplateStore() database.HabitTemplateStore { return &fakeTemplateStore{f} }

var errStoreDown = fmt.Errorf("store unavailable")

type fakeTaskStore struct{ f *fakeStores }

func (s *fakeTaskStore) Create(ctx context.Context, task *models.Task) error {
	if s.f.failAll {
		return errStoreDown
	}
	task.CreatedAt = time.Now()
	c := *task
	s.f.tasks[task.ID] = &c
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if s.f.failAll {
		return nil, errStoreDown
	}
	task, ok := s.f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	c := *task
	return &c, nil
}

func (s *fakeTaskStore) ListByDate(ctx context.Context, date string) ([]*models.Task, error) {
	if s.f.failAll {
		return nil, errStoreDown
	}
	var out []*models.Task
	for _, task := range s.f.tasks {
		if task.Date == date {
			c := *task
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) TemplateIDsForDate(ctx context.Context, date string) (map[uuid.UUID]bool, error) {
	existing := make(map[uuid.UUID]bool)
	for _, task := range s.f.tasks {
		if task.Date == date && task.HabitTemplateID != nil {
			existing[*task.HabitTemplateID] = true
		}
	}
	return existing, nil
}

func (s *fakeTaskStore) Update(ctx context.Context, task *models.Task) error {
	stored, ok := s.f.tasks[task.ID]
	if !ok {
		return fmt.Errorf("task %s: %w", task.ID, models.ErrNotFound)
	}
	stored.Title = task.Title
	stored.Description = task.Description
	stored.TargetSeconds = task.TargetSeconds
	stored.Completed = task.Completed
	return nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.f.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	delete(s.f.tasks, id)
	return nil
}

type fakeEntryStore struct{ f *fakeStores }

func (s *fakeEntryStore) Create(ctx context.Context, entry *models.TimeEntry) error {
	entry.CreatedAt = time.Now()
	c := *entry
	s.f.entries[entry.ID] = &c
	return nil
}

func (s *fakeEntryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	entry, ok := s.f.entries[id]
	if !ok {
		return nil, fmt.Errorf("time entry %s: %w", id, models.ErrNotFound)
	}
	c := *entry
	return &c, nil
}

func (s *fakeEntryStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.TimeEntry, error) {
	var out []*models.TimeEntry
	for _, entry := range s.f.entries {
		if entry.TaskID == taskID {
			c := *entry
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *fakeEntryStore) OpenByTask(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error) {
	for _, entry := range s.f.entries {
		if entry.TaskID == taskID && entry.EndTime == nil {
			c := *entry
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeEntryStore) Close(ctx context.Context, id uuid.UUID, endTime time.Time, durationSeconds int) error {
	entry, ok := s.f.entries[id]
	if !ok || entry.EndTime != nil {
		return fmt.Errorf("open time entry %s: %w", id, models.ErrNotFound)
	}
	end := endTime
	entry.EndTime = &end
	entry.DurationSeconds = durationSeconds
	return nil
}

func (s *fakeEntryStore) ClosedTotalByTask(ctx context.Context, taskID uuid.UUID) (int, error) {
	total := 0
	for _, entry := range s.f.entries {
		if entry.TaskID == taskID && entry.EndTime != nil {
			total += entry.DurationSeconds
		}
	}
	return total, nil
}

func (s *fakeEntryStore) ClosedTotalsByDate(ctx context.Context, date string) (map[uuid.UUID]int, error) {
	totals := make(map[uuid.UUID]int)
	for _, task := range s.f.tasks {
		if task.Date == date {
			totals[task.ID] = 0
		}
	}
	for _, entry := range s.f.entries {
		if entry.EndTime == nil {
			continue
		}
		if _, ok := totals[entry.TaskID]; ok {
			totals[entry.TaskID] += entry.DurationSeconds
		}
	}
	return totals, nil
}

func (s *fakeEntryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.f.entries[id]; !ok {
		return fmt.Errorf("time entry %s: %w", id, models.ErrNotFound)
	}
	delete(s.f.entries, id)
	return nil
}

func (s *fakeEntryStore) DeleteAllForTask(ctx context.Context, taskID uuid.UUID) error {
	for id, entry := range s.f.entries {
		if entry.TaskID == taskID {
			delete(s.f.entries, id)
		}
	}
	return nil
}

type fakeTemplateStore struct{ f *fakeStores }

func (s *fakeTemplateStore) Create(ctx context.Context, tmpl *models.HabitTemplate) error {
	tmpl.CreatedAt = time.Now()
	tmpl.UpdatedAt = tmpl.CreatedAt
	c := *tmpl
	s.f.templates[tmpl.ID] = &c
	return nil
}

func (s *fakeTemplateStore) GetByID(ctx context.Context, id uuid.UUID) (*models.HabitTemplate, error) {
	tmpl, ok := s.f.templates[id]
	if !ok {
		return nil, fmt.Errorf("habit template %s: %w", id, models.ErrNotFound)
	}
	c := *tmpl
	return &c, nil
}

func (s *fakeTemplateStore) List(ctx context.Context) ([]*models.HabitTemplate, error) {
	var out []*models.HabitTemplate
	for _, tmpl := range s.f.templates {
		c := *tmpl
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *fakeTemplateStore) ListActive(ctx context.Context) ([]*models.HabitTemplate, error) {
	all, _ := s.List(ctx)
	var out []*models.HabitTemplate
	for _, tmpl := range all {
		if tmpl.IsActive {
			out = append(out, tmpl)
		}
	}
	return out, nil
}

func (s *fakeTemplateStore) Update(ctx context.Context, tmpl *models.HabitTemplate) error {
	stored, ok := s.f.templates[tmpl.ID]
	if !ok {
		return fmt.Errorf("habit template %s: %w", tmpl.ID, models.ErrNotFound)
	}
	stored.Title = tmpl.Title
	stored.Description = tmpl.Description
	stored.DefaultTargetSeconds = tmpl.DefaultTargetSeconds
	stored.IsActive = tmpl.IsActive
	return nil
}

func (s *fakeTemplateStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.f.templates[id]; !ok {
		return fmt.Errorf("habit template %s: %w", id, models.ErrNotFound)
	}
	delete(s.f.templates, id)
	return nil
}

package tracking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/models"
	"github.com/google/uuid"
)

// fakeClock is a manually advanced clock for deterministic projections.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memDB holds shared in-memory state; the typed store views below implement
// the storage interfaces over it.
type memDB struct {
	mu        sync.Mutex
	tasks     map[uuid.UUID]*models.Task
	taskOrder []uuid.UUID
	entries   map[uuid.UUID]*models.TimeEntry
	templates map[uuid.UUID]*models.HabitTemplate
	tmplOrder []uuid.UUID
}

func newMemDB() *memDB {
	return &memDB{
		tasks:     make(map[uuid.UUID]*models.Task),
		entries:   make(map[uuid.UUID]*models.TimeEntry),
		templates: make(map[uuid.UUID]*models.HabitTemplate),
	}
}

func (db *memDB) TaskStore() database.TaskStore              { return &memTaskStore{db} }
func (db *memDB) EntryStore() database.TimeEntryStore        { return &memEntryStore{db} }
func (db *memDB) TemplateStore() database.HabitTemplateStore { return &memTemplateStore{db} }

func copyTask(t *models.Task) *models.Task {
	c := *t
	if t.HabitTemplateID != nil {
		id := *t.HabitTemplateID
		c.HabitTemplateID = &id
	}
	return &c
}

func copyEntry(e *models.TimeEntry) *models.TimeEntry {
	c := *e
	if e.EndTime != nil {
		end := *e.EndTime
		c.EndTime = &end
	}
	return &c
}

type memTaskStore struct{ db *memDB }

var _ database.TaskStore = (*memTaskStore)(nil)

func (s *memTaskStore) Create(ctx context.Context, task *models.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	task.CreatedAt = time.Now()
	s.db.tasks[task.ID] = copyTask(task)
	s.db.taskOrder = append(s.db.taskOrder, task.ID)
	return nil
}

func (s *memTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	task, ok := s.db.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	return copyTask(task), nil
}

func (s *memTaskStore) ListByDate(ctx context.Context, date string) ([]*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*models.Task
	// Newest first, matching the repository's created_at DESC ordering.
	for i := len(s.db.taskOrder) - 1; i >= 0; i-- {
		task, ok := s.db.tasks[s.db.taskOrder[i]]
		if ok && task.Date == date {
			out = append(out, copyTask(task))
		}
	}
	return out, nil
}

func (s *memTaskStore) TemplateIDsForDate(ctx context.Context, date string) (map[uuid.UUID]bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	existing := make(map[uuid.UUID]bool)
	for _, task := range s.db.tasks {
		if task.Date == date && task.HabitTemplateID != nil {
			existing[*task.HabitTemplateID] = true
		}
	}
	return existing, nil
}

func (s *memTaskStore) Update(ctx context.Context, task *models.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.tasks[task.ID]
	if !ok {
		return fmt.Errorf("task %s: %w", task.ID, models.ErrNotFound)
	}
	stored.Title = task.Title
	stored.Description = task.Description
	stored.TargetSeconds = task.TargetSeconds
	stored.Completed = task.Completed
	return nil
}

func (s *memTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	delete(s.db.tasks, id)
	return nil
}

type memEntryStore struct{ db *memDB }

var _ database.TimeEntryStore = (*memEntryStore)(nil)

func (s *memEntryStore) Create(ctx context.Context, entry *models.TimeEntry) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if entry.EndTime == nil {
		// Mirror the partial unique index: one open entry per task.
		for _, existing := range s.db.entries {
			if existing.TaskID == entry.TaskID && existing.EndTime == nil {
				return fmt.Errorf("duplicate open entry for task %s", entry.TaskID)
			}
		}
	}
	entry.CreatedAt = time.Now()
	s.db.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (s *memEntryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	entry, ok := s.db.entries[id]
	if !ok {
		return nil, fmt.Errorf("time entry %s: %w", id, models.ErrNotFound)
	}
	return copyEntry(entry), nil
}

func (s *memEntryStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.TimeEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*models.TimeEntry
	for _, entry := range s.db.entries {
		if entry.TaskID == taskID {
			out = append(out, copyEntry(entry))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *memEntryStore) OpenByTask(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, entry := range s.db.entries {
		if entry.TaskID == taskID && entry.EndTime == nil {
			return copyEntry(entry), nil
		}
	}
	return nil, nil
}

func (s *memEntryStore) Close(ctx context.Context, id uuid.UUID, endTime time.Time, durationSeconds int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	entry, ok := s.db.entries[id]
	if !ok || entry.EndTime != nil {
		return fmt.Errorf("open time entry %s: %w", id, models.ErrNotFound)
	}
	end := endTime
	entry.EndTime = &end
	entry.DurationSeconds = durationSeconds
	return nil
}

func (s *memEntryStore) ClosedTotalByTask(ctx context.Context, taskID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	total := 0
	for _, entry := range s.db.entries {
		if entry.TaskID == taskID && entry.EndTime != nil {
			total += entry.DurationSeconds
		}
	}
	return total, nil
}

func (s *memEntryStore) ClosedTotalsByDate(ctx context.Context, date string) (map[uuid.UUID]int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	totals := make(map[uuid.UUID]int)
	for _, task := range s.db.tasks {
		if task.Date == date {
			totals[task.ID] = 0
		}
	}
	for _, entry := range s.db.entries {
		if entry.EndTime == nil {
			continue
		}
		if _, ok := totals[entry.TaskID]; ok {
			totals[entry.TaskID] += entry.DurationSeconds
		}
	}
	return totals, nil
}

func (s *memEntryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.entries[id]; !ok {
		return fmt.Errorf("time entry %s: %w", id, models.ErrNotFound)
	}
	delete(s.db.entries, id)
	return nil
}

func (s *memEntryStore) DeleteAllForTask(ctx context.Context, taskID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, entry := range s.db.entries {
		if entry.TaskID == taskID {
			delete(s.db.entries, id)
		}
	}
	return nil
}

type memTemplateStore struct{ db *memDB }

var _ database.HabitTemplateStore = (*memTemplateStore)(nil)

func (s *memTemplateStore) Create(ctx context.Context, tmpl *models.HabitTemplate) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	tmpl.CreatedAt = time.Now()
	tmpl.UpdatedAt = tmpl.CreatedAt
	c := *tmpl
	s.db.templates[tmpl.ID] = &c
	s.db.tmplOrder = append(s.db.tmplOrder, tmpl.ID)
	return nil
}

func (s *memTemplateStore) GetByID(ctx context.Context, id uuid.UUID) (*models.HabitTemplate, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	tmpl, ok := s.db.templates[id]
	if !ok {
		return nil, fmt.Errorf("habit template %s: %w", id, models.ErrNotFound)
	}
	c := *tmpl
	return &c, nil
}

func (s *memTemplateStore) List(ctx context.Context) ([]*models.HabitTemplate, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*models.HabitTemplate
	for i := len(s.db.tmplOrder) - 1; i >= 0; i-- {
		if tmpl, ok := s.db.templates[s.db.tmplOrder[i]]; ok {
			c := *tmpl
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memTemplateStore) ListActive(ctx context.Context) ([]*models.HabitTemplate, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.HabitTemplate
	for _, tmpl := range all {
		if tmpl.IsActive {
			out = append(out, tmpl)
		}
	}
	return out, nil
}

func (s *memTemplateStore) Update(ctx context.Context, tmpl *models.HabitTemplate) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.templates[tmpl.ID]
	if !ok {
		return fmt.Errorf("habit template %s: %w", tmpl.ID, models.ErrNotFound)
	}
	stored.Title = tmpl.Title
	stored.Description = tmpl.Description
	stored.DefaultTargetSeconds = tmpl.DefaultTargetSeconds
	stored.IsActive = tmpl.IsActive
	return nil
}

func (s *memTemplateStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.templates[id]; !ok {
		return fmt.Errorf("habit template %s: %w", id, models.ErrNotFound)
	}
	delete(s.db.templates, id)
	// Weak reference semantics: tasks keep existing, the pointer is nulled.
	for _, task := range s.db.tasks {
		if task.HabitTemplateID != nil && *task.HabitTemplateID == id {
			task.HabitTemplateID = nil
		}
	}
	return nil
}

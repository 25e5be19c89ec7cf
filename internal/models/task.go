package models

import (
	"time"

	"github.com/google/uuid"
)

// HabitTemplate is a reusable definition that generates one task per day
// while it is active. Title, description and target are copied onto the
// generated task so past days stay stable when the template changes.
type HabitTemplate struct {
	ID                   uuid.UUID `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description,omitempty"`
	DefaultTargetSeconds int       `json:"default_target_seconds"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Task is one date-scoped unit of trackable work.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`

	// HabitTemplateID is a weak reference to the template this task was
	// generated from. It is a lookup key only: deleting the template nulls
	// it and never deletes the task.
	HabitTemplateID *uuid.UUID `json:"habit_template_id,omitempty"`

	// Date is the opaque calendar-day key (YYYY-MM-DD), immutable after
	// creation.
	Date string `json:"date"`

	// TargetSeconds is the daily goal for this task; 0 means no target.
	TargetSeconds int `json:"target_seconds"`

	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeEntry is one contiguous start/stop span of timer activity on a task.
// A nil EndTime means the entry is open (timer running). DurationSeconds is
// persisted only when the entry is closed; for open entries elapsed time is
// always computed against a caller-supplied sample time.
type TimeEntry struct {
	ID              uuid.UUID  `json:"id"`
	TaskID          uuid.UUID  `json:"task_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds int        `json:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Open reports whether the entry has no recorded end, i.e. the timer is
// still running.
func (e *TimeEntry) Open() bool {
	return e.EndTime == nil
}

// TaskDetail is a Task together with its derived timer fields. The derived
// fields are never stored; they are projected at read time from the task's
// time entries and a sample timestamp.
type TaskDetail struct {
	Task

	TotalTimeSeconds     int        `json:"total_time_seconds"`
	HasActiveTimer       bool       `json:"has_active_timer"`
	ActiveEntryStartTime *time.Time `json:"active_entry_start_time,omitempty"`

	ProgressSeconds  int     `json:"progress_seconds"`
	RemainingSeconds int     `json:"remaining_seconds"`
	ProgressPercent  float64 `json:"progress_percent"`
	TargetReached    bool    `json:"target_reached"`
}

package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/daytrack/daytrack/internal/clock"
	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tracker enforces the timer contract per task: a task is either idle (no
// open entry) or running (exactly one open entry), and Start/Stop are the
// only mutations of that state. All timestamps come from the injected clock
// so elapsed-time behavior is reproducible.
type Tracker struct {
	tasks   database.TaskStore
	entries database.TimeEntryStore
	clk     clock.Clock
	log     *zap.Logger
}

// NewTracker creates a new tracker service
func NewTracker(tasks database.TaskStore, entries database.TimeEntryStore, clk clock.Clock, log *zap.Logger) *Tracker {
	return &Tracker{tasks: tasks, entries: entries, clk: clk, log: log}
}

// Start opens a new time entry for the task at the current clock time.
// Fails with ErrTimerAlreadyRunning if the task already has an open entry;
// the ledger is left untouched in that case.
func (t *Tracker) Start(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error) {
	task, err := t.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	open, err := t.entries.OpenByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, ErrTimerAlreadyRunning)
	}

	entry := &models.TimeEntry{
		ID:        uuid.New(),
		TaskID:    task.ID,
		StartTime: t.clk.Now(),
	}
	if err := t.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	t.log.Info("timer_started",
		zap.String("task_id", task.ID.String()),
		zap.String("entry_id", entry.ID.String()),
	)

	return entry, nil
}

// Stop seals the task's open entry at the current clock time. Closing is
// terminal: the entry's duration becomes part of the closed total and its
// end time is never unset. Fails with ErrTimerNotRunning when idle.
func (t *Tracker) Stop(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error) {
	task, err := t.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	open, err := t.entries.OpenByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, ErrTimerNotRunning)
	}

	now := t.clk.Now()
	duration := elapsedSeconds(open.StartTime, now)

	if err := t.entries.Close(ctx, open.ID, now, duration); err != nil {
		return nil, err
	}

	open.EndTime = &now
	open.DurationSeconds = duration

	t.log.Info("timer_stopped",
		zap.String("task_id", task.ID.String()),
		zap.String("entry_id", open.ID.String()),
		zap.Int("duration_seconds", duration),
	)

	return open, nil
}

// DeleteTask removes a task and every time entry in its ledger.
func (t *Tracker) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	if _, err := t.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}
	if err := t.entries.DeleteAllForTask(ctx, taskID); err != nil {
		return err
	}
	if err := t.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	t.log.Info("task_deleted", zap.String("task_id", taskID.String()))
	return nil
}

// Detail projects a task's derived timer fields at the given sample time.
func (t *Tracker) Detail(ctx context.Context, task *models.Task, now time.Time) (*models.TaskDetail, error) {
	closedTotal, err := t.entries.ClosedTotalByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	open, err := t.entries.OpenByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	var activeStart *time.Time
	if open != nil {
		activeStart = &open.StartTime
	}

	detail := Project(task, closedTotal, activeStart, now)
	return &detail, nil
}

// Details projects derived fields for a batch of tasks that share one
// closed-total map (as returned by ClosedTotalsByDate) and one sample time.
func (t *Tracker) Details(ctx context.Context, tasks []*models.Task, closedTotals map[uuid.UUID]int, now time.Time) ([]*models.TaskDetail, error) {
	details := make([]*models.TaskDetail, 0, len(tasks))
	for _, task := range tasks {
		open, err := t.entries.OpenByTask(ctx, task.ID)
		if err != nil {
			return nil, err
		}

		var activeStart *time.Time
		if open != nil {
			activeStart = &open.StartTime
		}

		detail := Project(task, closedTotals[task.ID], activeStart, now)
		details = append(details, &detail)
	}
	return details, nil
}

// Now exposes the tracker's clock sample for callers that need a consistent
// projection timestamp across several reads.
func (t *Tracker) Now() time.Time {
	return t.clk.Now()
}

// LiveProgress is the projection every reader uses for progress: the closed
// total plus elapsed time on the open entry at the sample time. It never
// clamps against the target; clamping is applied only to the percentage.
func LiveProgress(closedTotalSeconds int, activeStart *time.Time, now time.Time) int {
	if activeStart == nil {
		return closedTotalSeconds
	}
	return closedTotalSeconds + elapsedSeconds(*activeStart, now)
}

// Project computes a task's derived fields from its closed total, the open
// entry's start time (nil when idle) and a sample time. Pure by design:
// repeated polling with increasing sample times yields monotonically
// increasing progress without coordinating a shared clock tick.
func Project(task *models.Task, closedTotalSeconds int, activeStart *time.Time, now time.Time) models.TaskDetail {
	progress := LiveProgress(closedTotalSeconds, activeStart, now)

	remaining := task.TargetSeconds - progress
	if remaining < 0 {
		remaining = 0
	}

	var percent float64
	if task.TargetSeconds > 0 {
		percent = float64(progress) / float64(task.TargetSeconds) * 100.0
		if percent > 100.0 {
			percent = 100.0
		}
	}

	return models.TaskDetail{
		Task:                 *task,
		TotalTimeSeconds:     closedTotalSeconds,
		HasActiveTimer:       activeStart != nil,
		ActiveEntryStartTime: activeStart,
		ProgressSeconds:      progress,
		RemainingSeconds:     remaining,
		ProgressPercent:      percent,
		TargetReached:        task.TargetSeconds > 0 && progress >= task.TargetSeconds,
	}
}

// elapsedSeconds returns whole seconds between start and now, floored at 0
// so a clock skew can never produce negative durations.
func elapsedSeconds(start, now time.Time) int {
	seconds := int(now.Sub(start) / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}

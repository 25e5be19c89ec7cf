package tracking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/daytrack/daytrack/internal/clock"
	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/models"
	"github.com/daytrack/daytrack/internal/validation"
)

// TrendWindowDays is how far back the combined dashboard payload's
// productivity trend reaches, ending at the requested date.
const TrendWindowDays = 7

// Dashboard produces read-only per-day summaries and multi-day trends. It
// never mutates anything and never fails on an empty date: a date without
// tasks yields a well-formed all-zero result.
type Dashboard struct {
	tasks   database.TaskStore
	entries database.TimeEntryStore
	clk     clock.Clock
}

// NewDashboard creates a new dashboard aggregator
func NewDashboard(tasks database.TaskStore, entries database.TimeEntryStore, clk clock.Clock) *Dashboard {
	return &Dashboard{tasks: tasks, entries: entries, clk: clk}
}

// Summary computes the per-day headline numbers. Tracked seconds and
// targets-reached use live progress sampled at call time, so a running
// timer counts toward both.
func (d *Dashboard) Summary(ctx context.Context, date string) (*models.DashboardSummary, error) {
	if err := validation.ValidateDateKey(date); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	tasks, err := d.tasks.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	closedTotals, err := d.entries.ClosedTotalsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	now := d.clk.Now()
	summary := &models.DashboardSummary{TasksCount: len(tasks)}

	for _, task := range tasks {
		if task.Completed {
			summary.TasksCompleted++
		}
		summary.TotalTargetSeconds += task.TargetSeconds

		progress, err := d.liveProgress(ctx, task, closedTotals[task.ID], now)
		if err != nil {
			return nil, err
		}

		summary.TotalTrackedSeconds += progress
		if task.TargetSeconds > 0 && progress >= task.TargetSeconds {
			summary.TargetsReached++
		}
	}

	return summary, nil
}

// TasksByStatus partitions the date's tasks into completed and pending.
// Both rows are always present, even at count zero.
func (d *Dashboard) TasksByStatus(ctx context.Context, date string) ([]models.StatusCount, error) {
	if err := validation.ValidateDateKey(date); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	tasks, err := d.tasks.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, task := range tasks {
		if task.Completed {
			completed++
		}
	}

	return []models.StatusCount{
		{Status: "completed", Count: completed},
		{Status: "pending", Count: len(tasks) - completed},
	}, nil
}

// TimePerTask returns one row per task on the date, sorted by title.
// TotalTime counts closed entries only: unlike live progress, these rollups
// must not move between polls while a timer runs.
func (d *Dashboard) TimePerTask(ctx context.Context, date string) ([]models.TaskTimeRow, error) {
	if err := validation.ValidateDateKey(date); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	tasks, err := d.tasks.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	closedTotals, err := d.entries.ClosedTotalsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	rows := make([]models.TaskTimeRow, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, models.TaskTimeRow{
			TaskID:            task.ID,
			TaskTitle:         task.Title,
			TaskTargetSeconds: task.TargetSeconds,
			TotalTime:         closedTotals[task.ID],
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].TaskTitle < rows[j].TaskTitle })

	return rows, nil
}

// ProductivityTrend returns one point per day in the inclusive [from, to]
// range, chronological. Each point sums the closed totals of that day's
// tasks; days without tasks contribute a zero point, never a gap.
func (d *Dashboard) ProductivityTrend(ctx context.Context, from, to string) ([]models.TrendPoint, error) {
	days, err := validation.DateRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	points := make([]models.TrendPoint, 0, len(days))
	for _, day := range days {
		closedTotals, err := d.entries.ClosedTotalsByDate(ctx, day)
		if err != nil {
			return nil, err
		}

		total := 0
		for _, seconds := range closedTotals {
			total += seconds
		}

		points = append(points, models.TrendPoint{Date: day, TotalTime: total})
	}

	return points, nil
}

// Stats is the minimal count view, kept separate from Summary so callers
// asking only for counts do not pay for duration aggregation.
func (d *Dashboard) Stats(ctx context.Context, date string) (*models.TaskStats, error) {
	if err := validation.ValidateDateKey(date); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	}

	tasks, err := d.tasks.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	stats := &models.TaskStats{Date: date, Total: len(tasks)}
	for _, task := range tasks {
		if task.Completed {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed

	return stats, nil
}

// Metrics assembles the full dashboard payload for a date: summary, status
// partition, per-task time, and the trailing trend window ending at the date.
func (d *Dashboard) Metrics(ctx context.Context, date string) (*models.DashboardMetrics, error) {
	summary, err := d.Summary(ctx, date)
	if err != nil {
		return nil, err
	}

	byStatus, err := d.TasksByStatus(ctx, date)
	if err != nil {
		return nil, err
	}

	perTask, err := d.TimePerTask(ctx, date)
	if err != nil {
		return nil, err
	}

	day, _ := time.Parse(validation.DateKeyLayout, date)
	from := day.AddDate(0, 0, -(TrendWindowDays - 1)).Format(validation.DateKeyLayout)
	trend, err := d.ProductivityTrend(ctx, from, date)
	if err != nil {
		return nil, err
	}

	return &models.DashboardMetrics{
		Date:              date,
		Summary:           *summary,
		TasksByStatus:     byStatus,
		TimePerTask:       perTask,
		ProductivityTrend: trend,
	}, nil
}

func (d *Dashboard) liveProgress(ctx context.Context, task *models.Task, closedTotal int, now time.Time) (int, error) {
	open, err := d.entries.OpenByTask(ctx, task.ID)
	if err != nil {
		return 0, err
	}

	var activeStart *time.Time
	if open != nil {
		activeStart = &open.StartTime
	}

	return LiveProgress(closedTotal, activeStart, now), nil
}

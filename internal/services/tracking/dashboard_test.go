package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daytrack/daytrack/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// closeEntry appends a closed entry of the given length to a task's ledger.
func closeEntry(t *testing.T, db *memDB, clk *fakeClock, tracker *Tracker, taskID uuid.UUID, d time.Duration) {
	t.Helper()
	if _, err := tracker.Start(context.Background(), taskID); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(d)
	if _, err := tracker.Stop(context.Background(), taskID); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestDashboard_EmptyDate(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), newFakeClock(testEpoch))
	ctx := context.Background()

	summary, err := dash.Summary(ctx, "2026-08-30")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if *summary != (models.DashboardSummary{}) {
		t.Errorf("expected all-zero summary, got %+v", summary)
	}

	byStatus, err := dash.TasksByStatus(ctx, "2026-08-30")
	if err != nil {
		t.Fatalf("tasks by status: %v", err)
	}
	if len(byStatus) != 2 {
		t.Fatalf("expected both status rows on an empty date, got %d", len(byStatus))
	}
	if byStatus[0].Status != "completed" || byStatus[0].Count != 0 {
		t.Errorf("unexpected completed row: %+v", byStatus[0])
	}
	if byStatus[1].Status != "pending" || byStatus[1].Count != 0 {
		t.Errorf("unexpected pending row: %+v", byStatus[1])
	}

	perTask, err := dash.TimePerTask(ctx, "2026-08-30")
	if err != nil {
		t.Fatalf("time per task: %v", err)
	}
	if len(perTask) != 0 {
		t.Errorf("expected no per-task rows, got %d", len(perTask))
	}

	stats, err := dash.Stats(ctx, "2026-08-30")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 || stats.Completed != 0 || stats.Pending != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if stats.Date != "2026-08-30" {
		t.Errorf("expected stats to echo the date, got %q", stats.Date)
	}
}

func TestDashboard_Summary(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	clk := newFakeClock(testEpoch)
	tracker := NewTracker(db.TaskStore(), db.EntryStore(), clk, zap.NewNop())
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), clk)
	ctx := context.Background()

	const date = "2026-08-30"

	// Task A: 100s tracked against a 100s target, reached and completed.
	// Task B: 200s tracked against a 500s target, not reached.
	taskA := &models.Task{ID: uuid.New(), Title: "A", Date: date, TargetSeconds: 100, Completed: true}
	taskB := &models.Task{ID: uuid.New(), Title: "B", Date: date, TargetSeconds: 500}
	for _, task := range []*models.Task{taskA, taskB} {
		if err := db.TaskStore().Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	closeEntry(t, db, clk, tracker, taskA.ID, 100*time.Second)
	closeEntry(t, db, clk, tracker, taskB.ID, 200*time.Second)

	summary, err := dash.Summary(ctx, date)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	want := models.DashboardSummary{
		TasksCount:          2,
		TasksCompleted:      1,
		TargetsReached:      1,
		TotalTargetSeconds:  600,
		TotalTrackedSeconds: 300,
	}
	if *summary != want {
		t.Errorf("summary mismatch:\n got %+v\nwant %+v", *summary, want)
	}
}

func TestDashboard_Summary_CountsRunningTimer(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	clk := newFakeClock(testEpoch)
	tracker := NewTracker(db.TaskStore(), db.EntryStore(), clk, zap.NewNop())
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), clk)
	ctx := context.Background()

	const date = "2026-08-30"
	task := &models.Task{ID: uuid.New(), Title: "A", Date: date, TargetSeconds: 300}
	if err := db.TaskStore().Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	closeEntry(t, db, clk, tracker, task.ID, 100*time.Second)
	if _, err := tracker.Start(ctx, task.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(250 * time.Second)

	summary, err := dash.Summary(ctx, date)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalTrackedSeconds != 350 {
		t.Errorf("expected live tracked 350, got %d", summary.TotalTrackedSeconds)
	}
	if summary.TargetsReached != 1 {
		t.Errorf("expected running timer to push the target over, got %d reached", summary.TargetsReached)
	}

	// The closed-total view stays put while the timer runs.
	perTask, err := dash.TimePerTask(ctx, date)
	if err != nil {
		t.Fatalf("time per task: %v", err)
	}
	if len(perTask) != 1 || perTask[0].TotalTime != 100 {
		t.Errorf("expected closed total 100 in per-task view, got %+v", perTask)
	}
}

func TestDashboard_TimePerTask_SortedByTitle(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	clk := newFakeClock(testEpoch)
	tracker := NewTracker(db.TaskStore(), db.EntryStore(), clk, zap.NewNop())
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), clk)
	ctx := context.Background()

	const date = "2026-08-30"
	writing := &models.Task{ID: uuid.New(), Title: "Writing", Date: date, TargetSeconds: 900}
	exercise := &models.Task{ID: uuid.New(), Title: "Exercise", Date: date, TargetSeconds: 1200}
	reading := &models.Task{ID: uuid.New(), Title: "Reading", Date: date}
	for _, task := range []*models.Task{writing, exercise, reading} {
		if err := db.TaskStore().Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	// Two sessions on one task must fold into a single row.
	closeEntry(t, db, clk, tracker, writing.ID, 300*time.Second)
	closeEntry(t, db, clk, tracker, writing.ID, 150*time.Second)
	closeEntry(t, db, clk, tracker, exercise.ID, 600*time.Second)

	rows, err := dash.TimePerTask(ctx, date)
	if err != nil {
		t.Fatalf("time per task: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected one row per task, got %d", len(rows))
	}

	wantTitles := []string{"Exercise", "Reading", "Writing"}
	wantTotals := []int{600, 0, 450}
	for i := range rows {
		if rows[i].TaskTitle != wantTitles[i] {
			t.Errorf("row %d: expected title %q, got %q", i, wantTitles[i], rows[i].TaskTitle)
		}
		if rows[i].TotalTime != wantTotals[i] {
			t.Errorf("row %d (%s): expected total %d, got %d", i, rows[i].TaskTitle, wantTotals[i], rows[i].TotalTime)
		}
	}
	if rows[0].TaskTargetSeconds != 1200 {
		t.Errorf("expected target carried onto the row, got %d", rows[0].TaskTargetSeconds)
	}
}

func TestDashboard_ProductivityTrend_ZeroFillsGaps(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	clk := newFakeClock(testEpoch)
	tracker := NewTracker(db.TaskStore(), db.EntryStore(), clk, zap.NewNop())
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), clk)
	ctx := context.Background()

	// Tasks on the 28th and 30th, nothing on the 29th. Trend groups by the
	// task's date, not by when the entries were recorded.
	early := &models.Task{ID: uuid.New(), Title: "Early", Date: "2026-08-28"}
	late := &models.Task{ID: uuid.New(), Title: "Late", Date: "2026-08-30"}
	for _, task := range []*models.Task{early, late} {
		if err := db.TaskStore().Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	closeEntry(t, db, clk, tracker, early.ID, 120*time.Second)
	closeEntry(t, db, clk, tracker, late.ID, 60*time.Second)
	closeEntry(t, db, clk, tracker, late.ID, 30*time.Second)

	points, err := dash.ProductivityTrend(ctx, "2026-08-28", "2026-08-30")
	if err != nil {
		t.Fatalf("trend: %v", err)
	}

	want := []models.TrendPoint{
		{Date: "2026-08-28", TotalTime: 120},
		{Date: "2026-08-29", TotalTime: 0},
		{Date: "2026-08-30", TotalTime: 90},
	}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d: expected %+v, got %+v", i, want[i], points[i])
		}
	}
}

func TestDashboard_ProductivityTrend_BadRange(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), newFakeClock(testEpoch))
	ctx := context.Background()

	if _, err := dash.ProductivityTrend(ctx, "2026-08-30", "2026-08-28"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("reversed range: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := dash.ProductivityTrend(ctx, "bogus", "2026-08-30"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("bad from: expected ErrInvalidArgument, got %v", err)
	}
}

func TestDashboard_Stats(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), newFakeClock(testEpoch))
	ctx := context.Background()

	const date = "2026-08-30"
	for i, completed := range []bool{true, true, false} {
		task := &models.Task{ID: uuid.New(), Title: "t", Date: date, Completed: completed}
		if err := db.TaskStore().Create(ctx, task); err != nil {
			t.Fatalf("create task %d: %v", i, err)
		}
	}

	stats, err := dash.Stats(ctx, date)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Completed != 2 || stats.Pending != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestDashboard_Metrics(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	clk := newFakeClock(testEpoch)
	tracker := NewTracker(db.TaskStore(), db.EntryStore(), clk, zap.NewNop())
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), clk)
	ctx := context.Background()

	const date = "2026-08-30"
	task := &models.Task{ID: uuid.New(), Title: "A", Date: date, TargetSeconds: 60, Completed: true}
	if err := db.TaskStore().Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	closeEntry(t, db, clk, tracker, task.ID, 60*time.Second)

	metrics, err := dash.Metrics(ctx, date)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	if metrics.Date != date {
		t.Errorf("expected date %q, got %q", date, metrics.Date)
	}
	if metrics.Summary.TasksCount != 1 || metrics.Summary.TargetsReached != 1 {
		t.Errorf("unexpected summary: %+v", metrics.Summary)
	}
	if len(metrics.TasksByStatus) != 2 {
		t.Errorf("expected both status rows, got %d", len(metrics.TasksByStatus))
	}
	if len(metrics.TimePerTask) != 1 || metrics.TimePerTask[0].TotalTime != 60 {
		t.Errorf("unexpected per-task rows: %+v", metrics.TimePerTask)
	}
	if len(metrics.ProductivityTrend) != TrendWindowDays {
		t.Fatalf("expected a %d-day trend, got %d points", TrendWindowDays, len(metrics.ProductivityTrend))
	}
	if first := metrics.ProductivityTrend[0].Date; first != "2026-08-24" {
		t.Errorf("expected trend window to open at 2026-08-24, got %q", first)
	}
	if last := metrics.ProductivityTrend[TrendWindowDays-1]; last.Date != date || last.TotalTime != 60 {
		t.Errorf("expected trend to end at %s with 60s, got %+v", date, last)
	}
}

func TestDashboard_InvalidDate(t *testing.T) {
	t.Parallel()

	db := newMemDB()
	dash := NewDashboard(db.TaskStore(), db.EntryStore(), newFakeClock(testEpoch))
	ctx := context.Background()

	if _, err := dash.Summary(ctx, "08/30/2026"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("summary: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := dash.TasksByStatus(ctx, ""); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("tasks by status: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := dash.Stats(ctx, "2026-8-3"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("stats: expected ErrInvalidArgument, got %v", err)
	}
}

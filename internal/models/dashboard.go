package models

import "github.com/google/uuid"

// DashboardSummary holds the per-day headline numbers.
type DashboardSummary struct {
	TasksCount          int `json:"tasks_count"`
	TasksCompleted      int `json:"tasks_completed"`
	TargetsReached      int `json:"targets_reached"`
	TotalTargetSeconds  int `json:"total_target_seconds"`
	TotalTrackedSeconds int `json:"total_tracked_seconds"`
}

// StatusCount is one row of the completed/pending partition. Both statuses
// are always present, even with a zero count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// TaskTimeRow is the tracked time for a single task on a day. TotalTime
// covers closed entries only so rollups stay stable against poll timing.
type TaskTimeRow struct {
	TaskID            uuid.UUID `json:"task_id"`
	TaskTitle         string    `json:"task_title"`
	TaskTargetSeconds int       `json:"task_target_seconds"`
	TotalTime         int       `json:"total_time"`
}

// TrendPoint is one day of the productivity trend. Days without tasks yield
// a zero TotalTime, never an absent point.
type TrendPoint struct {
	Date      string `json:"date"`
	TotalTime int    `json:"total_time"`
}

// TaskStats is the minimal count view used by the status chart.
type TaskStats struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

// DashboardMetrics is the full dashboard payload for one date.
type DashboardMetrics struct {
	Date              string           `json:"date"`
	Summary           DashboardSummary `json:"summary"`
	TasksByStatus     []StatusCount    `json:"tasks_by_status"`
	TimePerTask       []TaskTimeRow    `json:"time_per_task"`
	ProductivityTrend []TrendPoint     `json:"productivity_trend"`
}

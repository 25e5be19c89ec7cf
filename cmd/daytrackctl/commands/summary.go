package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/daytrack/daytrack/internal/clock"
	"github.com/daytrack/daytrack/internal/config"
	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/services/tracking"
	"github.com/spf13/cobra"
)

// NewSummaryCmd creates the summary command, printing one date's dashboard
// numbers and per-task tracked time.
func NewSummaryCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard summary for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			dashboard := tracking.NewDashboard(
				database.NewTaskRepository(db),
				database.NewTimeEntryRepository(db),
				clock.System{},
			)

			ctx := context.Background()
			summary, err := dashboard.Summary(ctx, date)
			if err != nil {
				return fmt.Errorf("summary for %s: %w", date, err)
			}

			fmt.Printf("Summary for %s:\n", date)
			fmt.Printf("  Tasks:           %d\n", summary.TasksCount)
			fmt.Printf("  Completed:       %d\n", summary.TasksCompleted)
			fmt.Printf("  Targets reached: %d\n", summary.TargetsReached)
			fmt.Printf("  Target total:    %s\n", formatSeconds(summary.TotalTargetSeconds))
			fmt.Printf("  Tracked total:   %s\n", formatSeconds(summary.TotalTrackedSeconds))

			rows, err := dashboard.TimePerTask(ctx, date)
			if err != nil {
				return fmt.Errorf("time per task for %s: %w", date, err)
			}

			if len(rows) == 0 {
				return nil
			}

			fmt.Println("\nTime per task:")
			for _, row := range rows {
				fmt.Printf("  - %-30s %s", row.TaskTitle, formatSeconds(row.TotalTime))
				if row.TaskTargetSeconds > 0 {
					fmt.Printf(" / %s", formatSeconds(row.TaskTargetSeconds))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to summarize (YYYY-MM-DD, defaults to today UTC)")
	return cmd
}

func formatSeconds(s int) string {
	return (time.Duration(s) * time.Second).String()
}

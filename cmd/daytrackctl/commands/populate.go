package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/daytrack/daytrack/internal/config"
	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/queue"
	"github.com/daytrack/daytrack/internal/services/tracking"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewPopulateCmd creates the populate command. It runs the daily rollup for
// one date, either inline against the database or via the job queue.
func NewPopulateCmd() *cobra.Command {
	var date string
	var enqueue bool

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Run the daily rollup for a date",
		Long:  "Create tasks for a date from the active habit templates. Idempotent: templates that already have a task for the date are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := context.Background()

			if enqueue {
				jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
				if err != nil {
					return fmt.Errorf("connect to RabbitMQ: %w", err)
				}
				defer func() { _ = jobQueue.Close() }()

				job := queue.NewRollupJob(date)
				if err := jobQueue.Enqueue(ctx, job); err != nil {
					return fmt.Errorf("enqueue rollup job: %w", err)
				}
				fmt.Printf("Enqueued rollup job %s for %s\n", job.ID, date)
				return nil
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

			rollup := tracking.NewRollup(
				database.NewTaskRepository(db),
				database.NewHabitTemplateRepository(db),
				zap.NewNop(),
			)

			created, err := rollup.Populate(ctx, date)
			if err != nil {
				return fmt.Errorf("populate %s: %w", date, err)
			}

			fmt.Printf("Populated %s: %d task(s) created\n", date, created)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to populate (YYYY-MM-DD, defaults to today UTC)")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Enqueue a rollup job instead of running inline")
	return cmd
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daytrack/daytrack/internal/config"
	"github.com/daytrack/daytrack/internal/database"
	"github.com/daytrack/daytrack/internal/logger"
	"github.com/daytrack/daytrack/internal/queue"
	"github.com/daytrack/daytrack/internal/services/tracking"
	"github.com/daytrack/daytrack/internal/workers"
	"go.uber.org/zap"
)

// scheduleInterval controls how often the worker enqueues a rollup job for
// the current UTC date. The rollup is idempotent, so overlapping jobs are
// harmless; the hourly cadence also heals missed midnight runs.
const scheduleInterval = 1 * time.Hour

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database")

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_rabbitmq")

	taskRepo := database.NewTaskRepository(db)
	templateRepo := database.NewHabitTemplateRepository(db)
	rollup := tracking.NewRollup(taskRepo, templateRepo, zapLogger)

	rollupWorker := workers.NewRollupWorker(rollup, jobQueue, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	zapLogger.Info("worker_started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}

				if err := rollupWorker.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("job_processing_failed",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	// Enqueue a rollup job for today, then re-enqueue on a fixed cadence so
	// each new UTC date gets populated without an external scheduler.
	go scheduleRollups(ctx, jobQueue, zapLogger)

	<-sigChan
	zapLogger.Info("shutdown_signal_received")

	cancel()

	zapLogger.Info("worker_stopped")
}

func scheduleRollups(ctx context.Context, jobQueue queue.JobQueue, log *zap.Logger) {
	enqueue := func() {
		date := time.Now().UTC().Format("2006-01-02")
		job := queue.NewRollupJob(date)
		if err := jobQueue.Enqueue(ctx, job); err != nil {
			log.Error("failed_to_enqueue_rollup_job",
				zap.Error(err),
				zap.String("date", date),
			)
			return
		}
		log.Info("rollup_job_enqueued",
			zap.String("job_id", job.ID.String()),
			zap.String("date", date),
		)
	}

	enqueue()

	ticker := time.NewTicker(scheduleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

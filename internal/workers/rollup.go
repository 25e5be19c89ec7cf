package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/daytrack/daytrack/internal/queue"
	"go.uber.org/zap"
)

// Populator materializes one date's tasks from the active habit templates.
// Implemented by tracking.Rollup.
type Populator interface {
	Populate(ctx context.Context, date string) (int, error)
}

// RollupWorker consumes rollup jobs from the queue
type RollupWorker struct {
	populator Populator
	jobQueue  queue.JobQueue // For re-enqueueing jobs with delays
	log       *zap.Logger
}

// NewRollupWorker creates a new rollup worker
func NewRollupWorker(populator Populator, jobQueue queue.JobQueue, log *zap.Logger) *RollupWorker {
	return &RollupWorker{
		populator: populator,
		jobQueue:  jobQueue,
		log:       log,
	}
}

// ProcessJob processes a single queue message, acknowledging or rejecting it
// based on the outcome. Errors are returned for logging only; the message's
// fate is already settled when this returns.
func (w *RollupWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.IsExpired() {
		w.log.Warn("job_expired",
			zap.String("job_id", job.ID.String()),
			zap.String("date", job.Date),
		)
		if nackErr := msg.Nack(false); nackErr != nil { // Expired, send to DLQ
			w.log.Error("job_nack_failed", zap.Error(nackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeRollup:
		if err := w.processRollup(ctx, job); err != nil {
			return w.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			w.log.Error("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// processRollup runs the idempotent rollup for the job's date
func (w *RollupWorker) processRollup(ctx context.Context, job *queue.Job) error {
	created, err := w.populator.Populate(ctx, job.Date)
	if err != nil {
		return fmt.Errorf("rollup for %s: %w", job.Date, err)
	}

	w.log.Info("rollup_job_processed",
		zap.String("job_id", job.ID.String()),
		zap.String("date", job.Date),
		zap.Int("created", created),
	)
	return nil
}

// handleJobError retries failed jobs with a delay, falling back to the DLQ
// once retries are exhausted. The rollup is idempotent, so a retry that races
// an earlier partial run is harmless.
func (w *RollupWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if !job.CanRetry() || w.jobQueue == nil {
		w.log.Error("rollup_job_failed",
			zap.Error(err),
			zap.String("job_id", job.ID.String()),
			zap.String("date", job.Date),
			zap.Int("retry_count", job.RetryCount),
		)
		if nackErr := msg.Nack(false); nackErr != nil { // Retries exhausted, send to DLQ
			w.log.Error("job_nack_failed", zap.Error(nackErr))
		}
		return err
	}

	retryDelay := time.Duration(job.RetryCount+1) * 30 * time.Second
	notBefore := time.Now().Add(retryDelay)

	delayedJob := &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		Date:       job.Date,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}

	if ackErr := msg.Ack(); ackErr != nil {
		w.log.Error("job_ack_failed", zap.Error(ackErr))
	}

	if enqueueErr := w.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
		w.log.Error("job_reenqueue_failed",
			zap.Error(enqueueErr),
			zap.String("job_id", job.ID.String()),
		)
		return fmt.Errorf("failed to re-enqueue job %s: %w", job.ID, enqueueErr)
	}

	w.log.Warn("rollup_job_retry_scheduled",
		zap.Error(err),
		zap.String("job_id", job.ID.String()),
		zap.String("date", job.Date),
		zap.Int("retry_count", delayedJob.RetryCount),
		zap.Duration("delay", retryDelay),
	)
	return err
}

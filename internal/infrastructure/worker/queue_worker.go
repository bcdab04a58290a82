package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"go.uber.org/zap"
)

// JobHandler executes one claimed job. An error makes the worker
// reschedule the job with backoff, or fail it permanently once its
// attempt limit is reached.
type JobHandler func(ctx context.Context, job *entity.Job) error

// QueueWorkerConfig holds configuration for a queue worker
type QueueWorkerConfig struct {
	Queue          string
	PollInterval   time.Duration
	BatchSize      int
	ProcessTimeout time.Duration
	// BackoffBase is the first retry delay; each further attempt doubles
	// it (base, 2x, 4x, ...).
	BackoffBase time.Duration
}

// DefaultQueueWorkerConfig returns default configuration for a queue
func DefaultQueueWorkerConfig(queue string) QueueWorkerConfig {
	return QueueWorkerConfig{
		Queue:          queue,
		PollInterval:   5 * time.Second,
		BatchSize:      10,
		ProcessTimeout: 60 * time.Second,
		BackoffBase:    30 * time.Second,
	}
}

// QueueWorker polls one named job queue, claims due jobs and dispatches
// them to a handler. Retries are explicit: a failed job is rescheduled
// with exponential backoff until its attempt limit, then marked failed.
type QueueWorker struct {
	config  QueueWorkerConfig
	jobRepo port.JobRepository
	handler JobHandler
	logger  *zap.Logger
	now     func() time.Time

	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	isRunning      bool
	processedCount int
	failedCount    int
}

// NewQueueWorker creates a worker over a named queue
func NewQueueWorker(config QueueWorkerConfig, jobRepo port.JobRepository, handler JobHandler, logger *zap.Logger) *QueueWorker {
	return &QueueWorker{
		config:  config,
		jobRepo: jobRepo,
		handler: handler,
		logger:  logger,
		now:     time.Now,
	}
}

// Start begins the worker polling loop
func (w *QueueWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("%s worker already running", w.config.Queue)
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("Queue worker started",
		zap.String("queue", w.config.Queue),
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))

	go w.pollLoop()

	return nil
}

// Stop gracefully terminates the worker
func (w *QueueWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}

	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("Queue worker stopped",
		zap.String("queue", w.config.Queue),
		zap.Int("processed_count", w.processedCount),
		zap.Int("failed_count", w.failedCount))

	return nil
}

// Name returns the worker name for identification
func (w *QueueWorker) Name() string {
	return fmt.Sprintf("QueueWorker(%s)", w.config.Queue)
}

// GetProcessedCount returns the number of jobs completed since start
func (w *QueueWorker) GetProcessedCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.processedCount
}

// GetFailedCount returns the number of jobs that exhausted their attempts
func (w *QueueWorker) GetFailedCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.failedCount
}

func (w *QueueWorker) pollLoop() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Poll loop context cancelled", zap.String("queue", w.config.Queue))
			return

		case <-ticker.C:
			if err := w.processBatch(); err != nil {
				w.logger.Error("Failed to process job batch",
					zap.String("queue", w.config.Queue),
					zap.Error(err))
			}
		}
	}
}

// processBatch claims due jobs and runs each through the handler.
func (w *QueueWorker) processBatch() error {
	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	jobs, err := w.jobRepo.ClaimPending(ctx, w.config.Queue, w.config.BatchSize, w.now())
	if err != nil {
		return fmt.Errorf("claim pending jobs: %w", err)
	}

	for _, job := range jobs {
		w.processJob(ctx, job)
	}
	return nil
}

func (w *QueueWorker) processJob(ctx context.Context, job *entity.Job) {
	jobCtx, cancel := context.WithTimeout(ctx, w.config.ProcessTimeout)
	defer cancel()

	// Completion writes must survive shutdown: the poll context may be
	// cancelled while a job is mid-flight, and a claimed job that never
	// reaches done/pending/failed stays invisible until the stale-claim
	// timeout.
	markCtx := context.WithoutCancel(ctx)

	w.logger.Debug("Processing job",
		zap.Int64("job_id", job.ID),
		zap.String("queue", job.Queue),
		zap.String("kind", job.Kind),
		zap.Int("attempt", job.Attempts))

	err := w.handler(jobCtx, job)
	if err == nil {
		if markErr := w.jobRepo.MarkDone(markCtx, job.ID); markErr != nil {
			w.logger.Error("Failed to mark job done", zap.Int64("job_id", job.ID), zap.Error(markErr))
			return
		}
		w.mu.Lock()
		w.processedCount++
		w.mu.Unlock()
		return
	}

	if job.Attempts >= job.MaxAttempts {
		w.logger.Error("Job failed permanently, attempts exhausted",
			zap.Int64("job_id", job.ID),
			zap.String("queue", job.Queue),
			zap.String("kind", job.Kind),
			zap.Int("attempts", job.Attempts),
			zap.Error(err))
		if markErr := w.jobRepo.MarkFailed(markCtx, job.ID, err.Error()); markErr != nil {
			w.logger.Error("Failed to mark job failed", zap.Int64("job_id", job.ID), zap.Error(markErr))
		}
		w.mu.Lock()
		w.failedCount++
		w.mu.Unlock()
		return
	}

	runAt := w.now().Add(w.backoff(job.Attempts))
	w.logger.Warn("Job failed, rescheduling",
		zap.Int64("job_id", job.ID),
		zap.String("queue", job.Queue),
		zap.Int("attempt", job.Attempts),
		zap.Int("max_attempts", job.MaxAttempts),
		zap.Time("run_at", runAt),
		zap.Error(err))
	if rescheduleErr := w.jobRepo.Reschedule(markCtx, job.ID, runAt, err.Error()); rescheduleErr != nil {
		w.logger.Error("Failed to reschedule job", zap.Int64("job_id", job.ID), zap.Error(rescheduleErr))
	}
}

// backoff returns the delay before the next attempt: base doubled per
// completed attempt beyond the first.
func (w *QueueWorker) backoff(attempts int) time.Duration {
	delay := w.config.BackoffBase
	for i := 1; i < attempts; i++ {
		delay *= 2
	}
	return delay
}

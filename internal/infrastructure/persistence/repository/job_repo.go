package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// JobRepository implements port.JobRepository over the jobs table.
type JobRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *sqlite.DB, logger *zap.Logger) port.JobRepository {
	return &JobRepository{db: db, logger: logger}
}

const jobColumns = `id, queue, kind, payload, status, attempts, max_attempts, run_at, last_error, created_at, updated_at`

// staleClaimAfter is the visibility timeout on claimed jobs. A job left
// in processing longer than this belongs to a worker that crashed or was
// killed between claim and completion, and becomes claimable again.
const staleClaimAfter = 10 * time.Minute

// Enqueue inserts a pending job and backfills its id.
func (r *JobRepository) Enqueue(ctx context.Context, job *entity.Job) error {
	if job.Status == "" {
		job.Status = entity.JobStatusPending
	}
	if job.RunAt.IsZero() {
		job.RunAt = time.Now().UTC()
	}
	query := `
		INSERT INTO jobs (queue, kind, payload, status, attempts, max_attempts, run_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		job.Queue, job.Kind, job.Payload, job.Status, job.Attempts, job.MaxAttempts, job.RunAt)
	if err != nil {
		r.logger.Error("Failed to enqueue job",
			zap.String("queue", job.Queue),
			zap.String("kind", job.Kind),
			zap.Error(err))
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	job.ID = id
	return nil
}

// ClaimPending marks up to limit due jobs of the queue as processing and
// returns them. The select and update run in one transaction so two
// workers polling the same queue never claim the same job. Each claim
// increments the attempt counter. Processing jobs whose claim is older
// than the visibility timeout are claimed too, so a crash between claim
// and completion cannot strand a job forever.
func (r *JobRepository) ClaimPending(ctx context.Context, queue string, limit int, now time.Time) ([]*entity.Job, error) {
	var jobs []*entity.Job
	err := r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		// The stale cutoff is computed from the database clock because the
		// claim timestamp is written with CURRENT_TIMESTAMP.
		staleBefore := fmt.Sprintf("-%d seconds", int(staleClaimAfter/time.Second))
		query := `
			SELECT ` + jobColumns + ` FROM jobs
			WHERE queue = ? AND (
				(status = ? AND run_at <= ?)
				OR (status = ? AND updated_at <= datetime('now', ?))
			)
			ORDER BY run_at, id LIMIT ?
		`
		rows, err := r.db.Executor(txCtx).QueryContext(txCtx, query,
			queue, entity.JobStatusPending, now, entity.JobStatusProcessing, staleBefore, limit)
		if err != nil {
			return fmt.Errorf("failed to select pending jobs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			job, err := scanJob(rows)
			if err != nil {
				return fmt.Errorf("failed to scan job: %w", err)
			}
			jobs = append(jobs, job)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, job := range jobs {
			update := `UPDATE jobs SET status = ?, attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
			if _, err := r.db.Executor(txCtx).ExecContext(txCtx, update, entity.JobStatusProcessing, job.ID); err != nil {
				return fmt.Errorf("failed to claim job %d: %w", job.ID, err)
			}
			job.Status = entity.JobStatusProcessing
			job.Attempts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkDone completes a job.
func (r *JobRepository) MarkDone(ctx context.Context, id int64) error {
	query := `UPDATE jobs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.JobStatusDone, id); err != nil {
		return fmt.Errorf("failed to mark job %d done: %w", id, err)
	}
	return nil
}

// Reschedule returns a job to pending to run again at runAt. The attempt
// counter was already incremented by the claim.
func (r *JobRepository) Reschedule(ctx context.Context, id int64, runAt time.Time, lastError string) error {
	query := `UPDATE jobs SET status = ?, run_at = ?, last_error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.JobStatusPending, runAt, lastError, id); err != nil {
		return fmt.Errorf("failed to reschedule job %d: %w", id, err)
	}
	return nil
}

// MarkFailed closes a job after its attempts are exhausted.
func (r *JobRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	query := `UPDATE jobs SET status = ?, last_error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.JobStatusFailed, lastError, id); err != nil {
		return fmt.Errorf("failed to mark job %d failed: %w", id, err)
	}
	return nil
}

func scanJob(row rowScanner) (*entity.Job, error) {
	var j entity.Job
	var lastError sql.NullString
	err := row.Scan(&j.ID, &j.Queue, &j.Kind, &j.Payload, &j.Status,
		&j.Attempts, &j.MaxAttempts, &j.RunAt, &lastError, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastError.Valid {
		j.LastError = lastError.String
	}
	return &j, nil
}

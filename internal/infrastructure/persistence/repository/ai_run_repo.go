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

// AiRunRepository implements port.AiRunRepository
type AiRunRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAiRunRepository creates a new AI run repository
func NewAiRunRepository(db *sqlite.DB, logger *zap.Logger) port.AiRunRepository {
	return &AiRunRepository{db: db, logger: logger}
}

const aiRunColumns = `id, company_id, document_id, document_version_id, triggered_by,
	provider, model, status, task, input_hash, prompt_version,
	summary, error_message, started_at, completed_at, created_at, updated_at`

// Create inserts a run row and backfills its id.
func (r *AiRunRepository) Create(ctx context.Context, run *entity.DocumentAiRun) error {
	query := `
		INSERT INTO document_ai_runs (
			company_id, document_id, document_version_id, triggered_by,
			provider, model, status, task, input_hash, prompt_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		run.CompanyID, run.DocumentID, run.DocumentVersionID, run.TriggeredBy,
		run.Provider, run.Model, run.Status, run.Task, run.InputHash, run.PromptVersion)
	if err != nil {
		r.logger.Error("Failed to create AI run",
			zap.Int64("document_id", run.DocumentID),
			zap.Int64("document_version_id", run.DocumentVersionID),
			zap.Error(err))
		return fmt.Errorf("failed to create AI run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	run.ID = id
	return nil
}

// GetByID retrieves a run by id, nil when absent.
func (r *AiRunRepository) GetByID(ctx context.Context, id int64) (*entity.DocumentAiRun, error) {
	query := `SELECT ` + aiRunColumns + ` FROM document_ai_runs WHERE id = ?`
	run, err := scanAiRun(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get AI run %d: %w", id, err)
	}
	return run, nil
}

// ListByInputHash returns the tenant's runs sharing an input hash, most
// recent first.
func (r *AiRunRepository) ListByInputHash(ctx context.Context, companyID int64, inputHash string) ([]*entity.DocumentAiRun, error) {
	query := `SELECT ` + aiRunColumns + ` FROM document_ai_runs WHERE company_id = ? AND input_hash = ? ORDER BY id DESC`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID, inputHash)
	if err != nil {
		return nil, fmt.Errorf("failed to list AI runs by hash: %w", err)
	}
	defer rows.Close()

	var runs []*entity.DocumentAiRun
	for rows.Next() {
		run, err := scanAiRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan AI run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// MarkRunning transitions a queued run to running.
func (r *AiRunRepository) MarkRunning(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE document_ai_runs SET status = ?, started_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.AiRunStatusRunning, at, id); err != nil {
		return fmt.Errorf("failed to mark AI run %d running: %w", id, err)
	}
	return nil
}

// MarkSucceeded records the summary and closes the run.
func (r *AiRunRepository) MarkSucceeded(ctx context.Context, id int64, summary string, at time.Time) error {
	query := `UPDATE document_ai_runs SET status = ?, summary = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.AiRunStatusSucceeded, summary, at, id); err != nil {
		return fmt.Errorf("failed to mark AI run %d succeeded: %w", id, err)
	}
	return nil
}

// MarkFailed records the error and closes the run.
func (r *AiRunRepository) MarkFailed(ctx context.Context, id int64, errMsg string, at time.Time) error {
	query := `UPDATE document_ai_runs SET status = ?, error_message = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, entity.AiRunStatusFailed, errMsg, at, id); err != nil {
		return fmt.Errorf("failed to mark AI run %d failed: %w", id, err)
	}
	return nil
}

func scanAiRun(row rowScanner) (*entity.DocumentAiRun, error) {
	var run entity.DocumentAiRun
	var summary, errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(&run.ID, &run.CompanyID, &run.DocumentID, &run.DocumentVersionID, &run.TriggeredBy,
		&run.Provider, &run.Model, &run.Status, &run.Task, &run.InputHash, &run.PromptVersion,
		&summary, &errorMessage, &startedAt, &completedAt, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if summary.Valid {
		run.Summary = summary.String
	}
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return &run, nil
}

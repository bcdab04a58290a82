package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// StatusRepository implements port.StatusRepository
type StatusRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewStatusRepository creates a new status repository
func NewStatusRepository(db *sqlite.DB, logger *zap.Logger) port.StatusRepository {
	return &StatusRepository{db: db, logger: logger}
}

const statusColumns = `id, company_id, name, slug, color, is_initial, is_final, active, created_at, updated_at`

// Create inserts a status row and backfills its id.
func (r *StatusRepository) Create(ctx context.Context, status *entity.Status) error {
	query := `
		INSERT INTO statuses (company_id, name, slug, color, is_initial, is_final, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		status.CompanyID, status.Name, status.Slug, status.Color,
		status.IsInitial, status.IsFinal, status.Active)
	if err != nil {
		r.logger.Error("Failed to create status",
			zap.Int64("company_id", status.CompanyID),
			zap.String("slug", status.Slug),
			zap.Error(err))
		return fmt.Errorf("failed to create status: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	status.ID = id
	return nil
}

// GetByID retrieves a status by id, nil when absent.
func (r *StatusRepository) GetByID(ctx context.Context, id int64) (*entity.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM statuses WHERE id = ?`
	status, err := scanStatus(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status %d: %w", id, err)
	}
	return status, nil
}

// GetBySlug retrieves a tenant's status by slug, nil when absent.
func (r *StatusRepository) GetBySlug(ctx context.Context, companyID int64, slug string) (*entity.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM statuses WHERE company_id = ? AND slug = ?`
	status, err := scanStatus(r.db.Executor(ctx).QueryRowContext(ctx, query, companyID, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status %q: %w", slug, err)
	}
	return status, nil
}

// ListByCompany returns all of a tenant's statuses.
func (r *StatusRepository) ListByCompany(ctx context.Context, companyID int64) ([]*entity.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM statuses WHERE company_id = ? ORDER BY id`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*entity.Status
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStatus(row rowScanner) (*entity.Status, error) {
	var s entity.Status
	err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Slug, &s.Color,
		&s.IsInitial, &s.IsFinal, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

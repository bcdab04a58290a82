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

// DocumentRepository implements port.DocumentRepository
type DocumentRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sqlite.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

const documentColumns = `id, company_id, branch_id, department_id, status_id, priority,
	title, description, assigned_to, created_by, due_at, completed_at,
	document_number, deleted_at, created_at, updated_at`

// Create inserts a document row and backfills its id.
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (
			company_id, branch_id, department_id, status_id, priority,
			title, description, assigned_to, created_by, due_at, document_number
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		doc.CompanyID, doc.BranchID, doc.DepartmentID, doc.StatusID, doc.Priority,
		doc.Title, doc.Description, doc.AssignedTo, doc.CreatedBy, doc.DueAt, doc.DocumentNumber)
	if err != nil {
		r.logger.Error("Failed to create document",
			zap.Int64("company_id", doc.CompanyID),
			zap.String("document_number", doc.DocumentNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	doc.ID = id
	return nil
}

// GetByID retrieves a document by id, nil when absent. Soft-deleted rows
// are still returned so restore and audit flows can reach them.
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	doc, err := scanDocument(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %d: %w", id, err)
	}
	return doc, nil
}

// Update persists the mutable fields of a document. DocumentNumber,
// CompanyID and CreatedBy are immutable and never written here.
func (r *DocumentRepository) Update(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents SET
			branch_id = ?, department_id = ?, status_id = ?, priority = ?,
			title = ?, description = ?, assigned_to = ?, due_at = ?,
			completed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		doc.BranchID, doc.DepartmentID, doc.StatusID, doc.Priority,
		doc.Title, doc.Description, doc.AssignedTo, doc.DueAt,
		doc.CompletedAt, doc.ID)
	if err != nil {
		r.logger.Error("Failed to update document",
			zap.Int64("document_id", doc.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update document %d: %w", doc.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d not found", doc.ID)
	}
	return nil
}

// SoftDelete marks a document as deleted without removing the row.
func (r *DocumentRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE documents SET deleted_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete document %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d not found or already deleted", id)
	}
	return nil
}

// Restore clears the deletion mark of a soft-deleted document.
func (r *DocumentRepository) Restore(ctx context.Context, id int64) error {
	query := `UPDATE documents SET deleted_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NOT NULL`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to restore document %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d not found or not deleted", id)
	}
	return nil
}

// LastDocumentNumber returns the highest document number assigned to the
// company under the given monthly prefix, or "" when none exists. The
// fixed-width sequence makes lexicographic order match numeric order.
func (r *DocumentRepository) LastDocumentNumber(ctx context.Context, companyID int64, prefix string) (string, error) {
	query := `
		SELECT document_number FROM documents
		WHERE company_id = ? AND document_number LIKE ? || '%'
		ORDER BY document_number DESC LIMIT 1
	`
	var number string
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, companyID, prefix).Scan(&number)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last document number: %w", err)
	}
	return number, nil
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var d entity.Document
	var branchID, departmentID, assignedTo sql.NullInt64
	var dueAt, completedAt, deletedAt sql.NullTime
	var description sql.NullString

	err := row.Scan(&d.ID, &d.CompanyID, &branchID, &departmentID, &d.StatusID, &d.Priority,
		&d.Title, &description, &assignedTo, &d.CreatedBy, &dueAt, &completedAt,
		&d.DocumentNumber, &deletedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if branchID.Valid {
		d.BranchID = &branchID.Int64
	}
	if departmentID.Valid {
		d.DepartmentID = &departmentID.Int64
	}
	if assignedTo.Valid {
		d.AssignedTo = &assignedTo.Int64
	}
	if description.Valid {
		d.Description = description.String
	}
	if dueAt.Valid {
		d.DueAt = &dueAt.Time
	}
	if completedAt.Valid {
		d.CompletedAt = &completedAt.Time
	}
	if deletedAt.Valid {
		d.DeletedAt = &deletedAt.Time
	}
	return &d, nil
}

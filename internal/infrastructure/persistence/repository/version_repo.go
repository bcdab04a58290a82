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

// DocumentVersionRepository implements port.DocumentVersionRepository
type DocumentVersionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDocumentVersionRepository creates a new document version repository
func NewDocumentVersionRepository(db *sqlite.DB, logger *zap.Logger) port.DocumentVersionRepository {
	return &DocumentVersionRepository{db: db, logger: logger}
}

// Create appends a version snapshot. Versions are never updated.
func (r *DocumentVersionRepository) Create(ctx context.Context, version *entity.DocumentVersion) error {
	query := `INSERT INTO document_versions (document_id, content, created_by) VALUES (?, ?, ?)`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		version.DocumentID, version.Content, version.CreatedBy)
	if err != nil {
		r.logger.Error("Failed to create document version",
			zap.Int64("document_id", version.DocumentID),
			zap.Error(err))
		return fmt.Errorf("failed to create document version: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	version.ID = id
	return nil
}

// GetByID retrieves a version by id, nil when absent.
func (r *DocumentVersionRepository) GetByID(ctx context.Context, id int64) (*entity.DocumentVersion, error) {
	query := `SELECT id, document_id, content, created_by, created_at FROM document_versions WHERE id = ?`
	var v entity.DocumentVersion
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.DocumentID, &v.Content, &v.CreatedBy, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document version %d: %w", id, err)
	}
	return &v, nil
}

// ListByDocument returns a document's versions oldest first.
func (r *DocumentVersionRepository) ListByDocument(ctx context.Context, documentID int64) ([]*entity.DocumentVersion, error) {
	query := `SELECT id, document_id, content, created_by, created_at FROM document_versions WHERE document_id = ? ORDER BY id`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document versions: %w", err)
	}
	defer rows.Close()

	var versions []*entity.DocumentVersion
	for rows.Next() {
		var v entity.DocumentVersion
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Content, &v.CreatedBy, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document version: %w", err)
		}
		versions = append(versions, &v)
	}
	return versions, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ActivityRepository implements port.ActivityRepository
type ActivityRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sqlite.DB, logger *zap.Logger) port.ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

// Create appends one audit record. Properties serialize to JSON TEXT.
func (r *ActivityRepository) Create(ctx context.Context, entry *entity.ActivityEntry) error {
	var propsJSON sql.NullString
	if entry.Properties != nil {
		raw, err := json.Marshal(entry.Properties)
		if err != nil {
			return fmt.Errorf("failed to marshal activity properties: %w", err)
		}
		propsJSON = sql.NullString{String: string(raw), Valid: true}
	}

	query := `
		INSERT INTO activity_log (company_id, event, subject_type, subject_id, causer_id, properties)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entry.CompanyID, entry.Event, entry.SubjectType, entry.SubjectID, entry.CauserID, propsJSON)
	if err != nil {
		r.logger.Error("Failed to create activity entry",
			zap.String("event", entry.Event),
			zap.Int64("subject_id", entry.SubjectID),
			zap.Error(err))
		return fmt.Errorf("failed to create activity entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListBySubject returns a subject's audit trail oldest first, matching
// insertion order.
func (r *ActivityRepository) ListBySubject(ctx context.Context, subjectType string, subjectID int64) ([]*entity.ActivityEntry, error) {
	query := `
		SELECT id, company_id, event, subject_type, subject_id, causer_id, properties, created_at
		FROM activity_log WHERE subject_type = ? AND subject_id = ? ORDER BY id
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, subjectType, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ActivityEntry
	for rows.Next() {
		var e entity.ActivityEntry
		var causerID sql.NullInt64
		var propsJSON sql.NullString
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Event, &e.SubjectType, &e.SubjectID,
			&causerID, &propsJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		if causerID.Valid {
			e.CauserID = &causerID.Int64
		}
		if propsJSON.Valid {
			if err := json.Unmarshal([]byte(propsJSON.String), &e.Properties); err != nil {
				return nil, fmt.Errorf("failed to unmarshal properties for entry %d: %w", e.ID, err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

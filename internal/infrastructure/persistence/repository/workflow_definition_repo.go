package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// WorkflowDefinitionRepository implements port.WorkflowDefinitionRepository
type WorkflowDefinitionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewWorkflowDefinitionRepository creates a new workflow definition repository
func NewWorkflowDefinitionRepository(db *sqlite.DB, logger *zap.Logger) port.WorkflowDefinitionRepository {
	return &WorkflowDefinitionRepository{db: db, logger: logger}
}

const definitionColumns = `id, company_id, from_status_id, to_status_id, name, description,
	roles_allowed, requires_approval, requires_comment, sla_hours, active,
	deleted_at, created_at, updated_at`

// Create inserts a definition row. RolesAllowed serializes to a JSON
// array; nil stays NULL, meaning any role.
func (r *WorkflowDefinitionRepository) Create(ctx context.Context, def *entity.WorkflowDefinition) error {
	var rolesJSON sql.NullString
	if def.RolesAllowed != nil {
		raw, err := json.Marshal(def.RolesAllowed)
		if err != nil {
			return fmt.Errorf("failed to marshal roles: %w", err)
		}
		rolesJSON = sql.NullString{String: string(raw), Valid: true}
	}

	var slaHours sql.NullInt64
	if def.SLAHours != nil {
		slaHours = sql.NullInt64{Int64: int64(*def.SLAHours), Valid: true}
	}

	query := `
		INSERT INTO workflow_definitions (
			company_id, from_status_id, to_status_id, name, description,
			roles_allowed, requires_approval, requires_comment, sla_hours, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		def.CompanyID, def.FromStatusID, def.ToStatusID, def.Name, def.Description,
		rolesJSON, def.RequiresApproval, def.RequiresComment, slaHours, def.Active)
	if err != nil {
		r.logger.Error("Failed to create workflow definition",
			zap.Int64("company_id", def.CompanyID),
			zap.Int64("from_status_id", def.FromStatusID),
			zap.Int64("to_status_id", def.ToStatusID),
			zap.Error(err))
		return fmt.Errorf("failed to create workflow definition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	def.ID = id
	return nil
}

// GetByID retrieves a definition by id, nil when absent.
func (r *WorkflowDefinitionRepository) GetByID(ctx context.Context, id int64) (*entity.WorkflowDefinition, error) {
	query := `SELECT ` + definitionColumns + ` FROM workflow_definitions WHERE id = ?`
	def, err := scanDefinition(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow definition %d: %w", id, err)
	}
	return def, nil
}

// ListByCompany returns all of a tenant's definitions, including
// soft-deleted and inactive rows; the catalog filters them.
func (r *WorkflowDefinitionRepository) ListByCompany(ctx context.Context, companyID int64) ([]*entity.WorkflowDefinition, error) {
	query := `SELECT ` + definitionColumns + ` FROM workflow_definitions WHERE company_id = ? ORDER BY id`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow definitions: %w", err)
	}
	defer rows.Close()

	var defs []*entity.WorkflowDefinition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow definition: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// SoftDelete marks a definition as deleted without removing the row.
func (r *WorkflowDefinitionRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE workflow_definitions SET deleted_at = ?, active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to soft delete workflow definition %d: %w", id, err)
	}
	return nil
}

func scanDefinition(row rowScanner) (*entity.WorkflowDefinition, error) {
	var d entity.WorkflowDefinition
	var rolesJSON sql.NullString
	var description sql.NullString
	var slaHours sql.NullInt64
	var deletedAt sql.NullTime

	err := row.Scan(&d.ID, &d.CompanyID, &d.FromStatusID, &d.ToStatusID, &d.Name, &description,
		&rolesJSON, &d.RequiresApproval, &d.RequiresComment, &slaHours, &d.Active,
		&deletedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		d.Description = description.String
	}
	if rolesJSON.Valid {
		if err := json.Unmarshal([]byte(rolesJSON.String), &d.RolesAllowed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roles for definition %d: %w", d.ID, err)
		}
	}
	if slaHours.Valid {
		h := int(slaHours.Int64)
		d.SLAHours = &h
	}
	if deletedAt.Valid {
		d.DeletedAt = &deletedAt.Time
	}
	return &d, nil
}

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

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlite.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, company_id, branch_id, department_id, name, email, roles, is_active, created_at, updated_at`

// GetByID retrieves a user by id, nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// ListActiveByRole returns the company's active users holding the role.
// Roles are stored as a JSON array; the LIKE filter narrows candidates
// and the decoded roles confirm the match. departmentID, when non-nil,
// scopes the result to one department.
func (r *UserRepository) ListActiveByRole(ctx context.Context, companyID int64, role entity.Role, departmentID *int64) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE company_id = ? AND is_active = 1 AND roles LIKE ?`
	args := []interface{}{companyID, `%"` + string(role) + `"%`}
	if departmentID != nil {
		query += ` AND department_id = ?`
		args = append(args, *departmentID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if user.HasRole(role) {
			users = append(users, user)
		}
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var branchID, departmentID sql.NullInt64
	var rolesJSON string

	err := row.Scan(&u.ID, &u.CompanyID, &branchID, &departmentID, &u.Name, &u.Email,
		&rolesJSON, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if branchID.Valid {
		u.BranchID = &branchID.Int64
	}
	if departmentID.Valid {
		u.DepartmentID = &departmentID.Int64
	}
	if err := json.Unmarshal([]byte(rolesJSON), &u.Roles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roles for user %d: %w", u.ID, err)
	}
	return &u, nil
}

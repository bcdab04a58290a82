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

// AISettingRepository implements port.AISettingRepository
type AISettingRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAISettingRepository creates a new AI setting repository
func NewAISettingRepository(db *sqlite.DB, logger *zap.Logger) port.AISettingRepository {
	return &AISettingRepository{db: db, logger: logger}
}

// GetByCompany retrieves a tenant's AI settings, nil when the tenant has
// never configured AI. Callers treat nil as disabled.
func (r *AISettingRepository) GetByCompany(ctx context.Context, companyID int64) (*entity.CompanyAISetting, error) {
	query := `
		SELECT id, company_id, provider, model, is_enabled, api_key, redact_pii, created_at, updated_at
		FROM company_ai_settings WHERE company_id = ?
	`
	var s entity.CompanyAISetting
	var model, apiKey sql.NullString
	var redactPII sql.NullBool
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, companyID).Scan(
		&s.ID, &s.CompanyID, &s.Provider, &model, &s.IsEnabled, &apiKey, &redactPII,
		&s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get AI settings for company %d: %w", companyID, err)
	}

	if model.Valid {
		s.Model = model.String
	}
	if apiKey.Valid {
		s.APIKey = apiKey.String
	}
	if redactPII.Valid {
		s.RedactPII = &redactPII.Bool
	}
	return &s, nil
}

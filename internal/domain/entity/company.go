package entity

import "time"

// Company is the tenant boundary. All catalog and document data is
// scoped by CompanyID.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyAISetting holds a tenant's AI processing configuration.
// AI processing is opt-in per tenant; a missing row, IsEnabled=false
// or Provider "none" all disable the pipeline.
type CompanyAISetting struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	IsEnabled bool      `json:"is_enabled"`
	APIKey    string    `json:"-"`
	RedactPII *bool     `json:"redact_pii,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedactionEnabled reports whether PII redaction applies. Unset defaults
// to true.
func (s *CompanyAISetting) RedactionEnabled() bool {
	if s.RedactPII == nil {
		return true
	}
	return *s.RedactPII
}

// Enabled reports whether AI processing is active for the tenant.
func (s *CompanyAISetting) Enabled() bool {
	return s != nil && s.IsEnabled && s.Provider != AiProviderNone && s.Provider != ""
}

package entity

import "time"

// DocumentAiRun tracks one attempt to run AI processing against a
// specific document version. InputHash identifies logically identical
// requests (same content and tenant configuration); it is a detection
// key, not a uniqueness constraint.
type DocumentAiRun struct {
	ID                int64      `json:"id"`
	CompanyID         int64      `json:"company_id"`
	DocumentID        int64      `json:"document_id"`
	DocumentVersionID int64      `json:"document_version_id"`
	TriggeredBy       int64      `json:"triggered_by"`
	Provider          string     `json:"provider"`
	Model             string     `json:"model"`
	Status            string     `json:"status"`
	Task              string     `json:"task"`
	InputHash         string     `json:"input_hash"`
	PromptVersion     string     `json:"prompt_version"`
	Summary           string     `json:"summary,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsTerminal returns true if the run reached a final status.
func (r *DocumentAiRun) IsTerminal() bool {
	return r.Status == AiRunStatusSucceeded || r.Status == AiRunStatusFailed
}

package entity

import "time"

// Job is one unit of queued background work. Jobs live in named queues
// and are claimed by polling workers; Attempts counts executions so the
// per-queue retry limit can be enforced with explicit backoff.
type Job struct {
	ID          int64     `json:"id"`
	Queue       string    `json:"queue"`
	Kind        string    `json:"kind"`
	Payload     string    `json:"payload"`
	Status      string    `json:"status"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	RunAt       time.Time `json:"run_at"`
	LastError   string    `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Job kind constants
const (
	JobKindDocumentUpdated = "document_updated"
	JobKindStatusChanged   = "status_changed"
	JobKindAiTrigger       = "ai_trigger"
	JobKindAiRun           = "ai_run"
)

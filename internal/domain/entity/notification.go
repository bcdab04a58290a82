package entity

import "time"

// Notification is one per-recipient delivery record. A row is written
// for every resolved recipient; delivery outcome is tracked on the row
// so a failure for one recipient never hides the others.
type Notification struct {
	ID           int64      `json:"id"`
	CompanyID    int64      `json:"company_id"`
	UserID       int64      `json:"user_id"`
	DocumentID   int64      `json:"document_id"`
	Type         string     `json:"type"`
	Payload      string     `json:"payload"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

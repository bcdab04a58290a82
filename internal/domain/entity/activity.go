package entity

import "time"

// ActivityEntry is one append-only audit record: who did what to which
// document and when. Properties carries event-specific context such as
// the aggregated change map of an update.
type ActivityEntry struct {
	ID          int64                  `json:"id"`
	CompanyID   int64                  `json:"company_id"`
	Event       string                 `json:"event"`
	SubjectType string                 `json:"subject_type"`
	SubjectID   int64                  `json:"subject_id"`
	CauserID    *int64                 `json:"causer_id,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Subject type constants for ActivityEntry
const (
	SubjectDocument = "document"
)

package entity

import "time"

// Priority classifies how urgently a document must be resolved.
// Each priority carries a default SLA window used when a transition
// does not define its own deadline.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var validPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// IsValid returns true if the priority is one of the defined variants.
func (p Priority) IsValid() bool {
	return validPriorities[p]
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// SLAHours returns the default resolution window for the priority.
func (p Priority) SLAHours() time.Duration {
	switch p {
	case PriorityLow:
		return 72 * time.Hour
	case PriorityMedium:
		return 48 * time.Hour
	case PriorityHigh:
		return 24 * time.Hour
	case PriorityUrgent:
		return 8 * time.Hour
	default:
		return 48 * time.Hour
	}
}

// Label returns the display name for the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Baja"
	case PriorityMedium:
		return "Media"
	case PriorityHigh:
		return "Alta"
	case PriorityUrgent:
		return "Urgente"
	default:
		return string(p)
	}
}

// Color returns the UI color token associated with the priority.
func (p Priority) Color() string {
	switch p {
	case PriorityLow:
		return "gray"
	case PriorityMedium:
		return "blue"
	case PriorityHigh:
		return "orange"
	case PriorityUrgent:
		return "red"
	default:
		return "gray"
	}
}

// Status constants for DocumentAiRun
const (
	AiRunStatusQueued    = "queued"
	AiRunStatusRunning   = "running"
	AiRunStatusSucceeded = "succeeded"
	AiRunStatusFailed    = "failed"
)

// Task constants for DocumentAiRun
const (
	AiTaskSummarize = "summarize"
)

// AI provider constants for CompanyAISetting
const (
	AiProviderOpenAI = "openai"
	AiProviderGemini = "gemini"
	AiProviderNone   = "none"
)

// Audit event constants for ActivityEntry
const (
	ActivityCreated           = "created"
	ActivityUpdated           = "updated"
	ActivityStatusChanged     = "status_changed"
	ActivityAssigned          = "assigned"
	ActivityDeleted           = "deleted"
	ActivityRestored          = "restored"
	ActivityApprovalRequested = "approval_requested"
)

// Queue names for background jobs
const (
	QueueNotifications = "notifications"
	QueueAiProcessing  = "ai-processing"
)

// Job status constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusDone       = "done"
	JobStatusFailed     = "failed"
)

// Notification status constants
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Notification type constants
const (
	NotificationDocumentUpdated = "document_updated"
	NotificationStatusChange    = "document_status_changed"
)

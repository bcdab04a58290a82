package service

// Job payloads exchanged between the request path and the queue workers.
// Payloads carry ids plus the staged change-set; workers re-load fresh
// state for everything else.

// DocumentUpdatedPayload is the fan-out job body on the notifications
// queue.
type DocumentUpdatedPayload struct {
	DocumentID int64     `json:"document_id"`
	ActorID    int64     `json:"actor_id"`
	Changes    ChangeSet `json:"changes"`
	Comment    string    `json:"comment,omitempty"`
}

// StatusChangedPayload is the assignee notification job body written
// when a status change resolved both its statuses.
type StatusChangedPayload struct {
	DocumentID int64  `json:"document_id"`
	ActorID    int64  `json:"actor_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	Comment    string `json:"comment,omitempty"`
}

// AiTriggerPayload is the trigger job body enqueued when a document
// version is created. The worker re-loads the version and evaluates the
// tenant AI setting there, so a transient trigger failure is retried
// like any other queued work.
type AiTriggerPayload struct {
	VersionID int64 `json:"version_id"`
	ActorID   int64 `json:"actor_id"`
}

// AiRunPayload is the ai-processing job body. Only the run id crosses
// the queue so the worker re-loads fresh run state.
type AiRunPayload struct {
	RunID int64 `json:"run_id"`
}

// Attempt limits per queue.
const (
	NotificationMaxAttempts = 3
	AiRunMaxAttempts        = 2
)

package port

import (
	"context"
	"time"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

// TransactionManager executes a function within a database transaction.
// Nested calls reuse the surrounding transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// StatusRepository defines persistence operations for Status.
type StatusRepository interface {
	Create(ctx context.Context, status *entity.Status) error
	GetByID(ctx context.Context, id int64) (*entity.Status, error)
	GetBySlug(ctx context.Context, companyID int64, slug string) (*entity.Status, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*entity.Status, error)
}

// WorkflowDefinitionRepository defines persistence operations for
// WorkflowDefinition rows. The engine only reads; rows are administered
// out of band and soft-deleted rather than removed.
type WorkflowDefinitionRepository interface {
	Create(ctx context.Context, def *entity.WorkflowDefinition) error
	GetByID(ctx context.Context, id int64) (*entity.WorkflowDefinition, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*entity.WorkflowDefinition, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

// DocumentRepository defines persistence operations for Document.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id int64) (*entity.Document, error)
	Update(ctx context.Context, doc *entity.Document) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	Restore(ctx context.Context, id int64) error
	// LastDocumentNumber returns the most recently assigned document
	// number for the company within the DOC-YYYYMM prefix, or "" when the
	// month has none yet.
	LastDocumentNumber(ctx context.Context, companyID int64, prefix string) (string, error)
}

// DocumentVersionRepository defines persistence operations for the
// append-only DocumentVersion table.
type DocumentVersionRepository interface {
	Create(ctx context.Context, version *entity.DocumentVersion) error
	GetByID(ctx context.Context, id int64) (*entity.DocumentVersion, error)
	ListByDocument(ctx context.Context, documentID int64) ([]*entity.DocumentVersion, error)
}

// AiRunRepository defines persistence operations for DocumentAiRun.
type AiRunRepository interface {
	Create(ctx context.Context, run *entity.DocumentAiRun) error
	GetByID(ctx context.Context, id int64) (*entity.DocumentAiRun, error)
	ListByInputHash(ctx context.Context, companyID int64, inputHash string) ([]*entity.DocumentAiRun, error)
	MarkRunning(ctx context.Context, id int64, at time.Time) error
	MarkSucceeded(ctx context.Context, id int64, summary string, at time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string, at time.Time) error
}

// ActivityRepository defines persistence operations for the append-only
// audit log.
type ActivityRepository interface {
	Create(ctx context.Context, entry *entity.ActivityEntry) error
	ListBySubject(ctx context.Context, subjectType string, subjectID int64) ([]*entity.ActivityEntry, error)
}

// UserRepository defines the lookups the core needs over users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	// ListActiveByRole returns active users of the company holding the
	// role. departmentID, when non-nil, further scopes the match to the
	// user's department.
	ListActiveByRole(ctx context.Context, companyID int64, role entity.Role, departmentID *int64) ([]*entity.User, error)
}

// NotificationRepository defines persistence operations for per-recipient
// notification rows.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	MarkSent(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error)
}

// AISettingRepository defines lookups over tenant AI settings.
type AISettingRepository interface {
	GetByCompany(ctx context.Context, companyID int64) (*entity.CompanyAISetting, error)
}

// JobRepository defines the DB-backed work queue. Workers poll a named
// queue, claim due jobs, and either complete them or reschedule with
// backoff until the attempt limit is reached.
type JobRepository interface {
	Enqueue(ctx context.Context, job *entity.Job) error
	// ClaimPending atomically marks up to limit due jobs of the queue as
	// processing and returns them.
	ClaimPending(ctx context.Context, queue string, limit int, now time.Time) ([]*entity.Job, error)
	MarkDone(ctx context.Context, id int64) error
	// Reschedule returns a job to pending with its attempt count already
	// incremented by the claim, to run again at runAt.
	Reschedule(ctx context.Context, id int64, runAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
}

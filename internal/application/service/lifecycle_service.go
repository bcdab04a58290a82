package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"go.uber.org/zap"
)

// LifecycleService is the explicit document lifecycle pipeline: it
// replaces implicit before/after persistence hooks with functions the
// caller invokes around each mutation. Audit entries are written
// synchronously, in the same transaction as the mutation and before any
// notification job is enqueued, so audit history is always at least as
// fresh as anything a recipient receives.
type LifecycleService interface {
	CreateDocument(ctx context.Context, doc *entity.Document, actor *entity.User) error
	UpdateDocument(ctx context.Context, updated *entity.Document, actor *entity.User, comment string) (ChangeSet, error)
	DeleteDocument(ctx context.Context, documentID int64, actor *entity.User) error
	RestoreDocument(ctx context.Context, documentID int64, actor *entity.User) error
	CreateVersion(ctx context.Context, documentID int64, content string, actor *entity.User) (*entity.DocumentVersion, error)
}

// VersionHook runs in the same transaction as the version insert. The
// AI pipeline registers a hook that enqueues its trigger work as a job,
// so the version row and the trigger job commit or roll back together
// and a transient failure cannot silently drop the AI request.
type VersionHook func(ctx context.Context, version *entity.DocumentVersion, actor *entity.User) error

type lifecycleService struct {
	txManager   port.TransactionManager
	docRepo     port.DocumentRepository
	versionRepo port.DocumentVersionRepository
	statusRepo  port.StatusRepository
	userRepo    port.UserRepository
	jobRepo     port.JobRepository
	audit       AuditService
	sequencer   *numberSequencer
	versionHook VersionHook
	logger      *zap.Logger
	now         func() time.Time
}

// NewLifecycleService wires the lifecycle pipeline. versionHook may be
// nil when no AI pipeline is configured.
func NewLifecycleService(
	txManager port.TransactionManager,
	docRepo port.DocumentRepository,
	versionRepo port.DocumentVersionRepository,
	statusRepo port.StatusRepository,
	userRepo port.UserRepository,
	jobRepo port.JobRepository,
	audit AuditService,
	versionHook VersionHook,
	logger *zap.Logger,
) LifecycleService {
	return &lifecycleService{
		txManager:   txManager,
		docRepo:     docRepo,
		versionRepo: versionRepo,
		statusRepo:  statusRepo,
		userRepo:    userRepo,
		jobRepo:     jobRepo,
		audit:       audit,
		sequencer:   newNumberSequencer(docRepo),
		versionHook: versionHook,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateDocument applies creation defaults, assigns the document number
// and writes the created audit entry. The initial status must already be
// set by the caller (the transition service resolves the tenant's
// initial status when none is supplied).
func (s *lifecycleService) CreateDocument(ctx context.Context, doc *entity.Document, actor *entity.User) error {
	if doc.CreatedBy == 0 {
		doc.CreatedBy = actor.ID
	}
	if doc.CompanyID == 0 {
		doc.CompanyID = actor.CompanyID
	}
	if doc.Priority == "" {
		doc.Priority = entity.PriorityMedium
	}
	if doc.DueAt == nil {
		// Priority supplies the default resolution deadline when the
		// caller did not set one.
		due := s.now().Add(doc.Priority.SLAHours())
		doc.DueAt = &due
	}

	if doc.DocumentNumber == "" {
		number, err := s.sequencer.Next(ctx, doc.CompanyID, s.now())
		if err != nil {
			return err
		}
		doc.DocumentNumber = number
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.audit.RecordDocumentEvent(txCtx, doc, entity.ActivityCreated, &actor.ID, map[string]interface{}{
			"document_number": doc.DocumentNumber,
			"status_id":       doc.StatusID,
			"priority":        string(doc.Priority),
		})
	})
}

// UpdateDocument diffs the updated document against its persisted
// original over the four tracked fields, persists it, writes one
// aggregated updated entry plus field-specific entries, and enqueues the
// notification fan-out. Returns the staged change set.
func (s *lifecycleService) UpdateDocument(ctx context.Context, updated *entity.Document, actor *entity.User, comment string) (ChangeSet, error) {
	original, err := s.docRepo.GetByID(ctx, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", updated.ID, err)
	}
	if original == nil {
		return nil, fmt.Errorf("document %d not found", updated.ID)
	}

	changes := DiffDocuments(original, updated)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Update(txCtx, updated); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if len(changes) == 0 {
			return nil
		}

		// One aggregated entry per update, regardless of how many tracked
		// fields changed.
		if err := s.audit.RecordDocumentEvent(txCtx, updated, entity.ActivityUpdated, &actor.ID, map[string]interface{}{
			"changes": changes.Properties(),
		}); err != nil {
			return err
		}

		if changes.Has(FieldStatus) {
			if err := s.handleStatusChange(txCtx, original, updated, actor, comment); err != nil {
				return err
			}
		}
		if changes.Has(FieldAssignee) {
			if err := s.handleAssigneeChange(txCtx, original, updated, actor); err != nil {
				return err
			}
		}
		if changes.Has(FieldPriority) {
			s.handlePriorityChange(original, updated)
		}
		if changes.Has(FieldDueAt) {
			s.handleDueDateChange(updated)
		}

		payload, err := json.Marshal(DocumentUpdatedPayload{
			DocumentID: updated.ID,
			ActorID:    actor.ID,
			Changes:    changes,
			Comment:    comment,
		})
		if err != nil {
			return fmt.Errorf("marshal notification payload: %w", err)
		}
		return s.jobRepo.Enqueue(txCtx, &entity.Job{
			Queue:       entity.QueueNotifications,
			Kind:        entity.JobKindDocumentUpdated,
			Payload:     string(payload),
			Status:      entity.JobStatusPending,
			MaxAttempts: NotificationMaxAttempts,
			RunAt:       s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	return changes, nil
}

// handleStatusChange resolves the old and new status rows, always writes
// the dedicated status_changed entry, and enqueues the assignee
// notification unless the old status failed to resolve.
func (s *lifecycleService) handleStatusChange(ctx context.Context, original, updated *entity.Document, actor *entity.User, comment string) error {
	oldStatus, oldErr := s.statusRepo.GetByID(ctx, original.StatusID)
	newStatus, newErr := s.statusRepo.GetByID(ctx, updated.StatusID)

	props := map[string]interface{}{
		"old_status_id": original.StatusID,
		"new_status_id": updated.StatusID,
	}
	if oldStatus != nil {
		props["old_status"] = oldStatus.Name
	}
	if newStatus != nil {
		props["new_status"] = newStatus.Name
	}
	if comment != "" {
		props["comment"] = comment
	}

	// The audit entry is written even when a status row cannot be
	// resolved; only the notification is skipped.
	if err := s.audit.RecordDocumentEvent(ctx, updated, entity.ActivityStatusChanged, &actor.ID, props); err != nil {
		return err
	}

	if newErr != nil || newStatus == nil {
		s.logger.Warn("New status did not resolve, skipping status notification",
			zap.Int64("document_id", updated.ID),
			zap.Int64("status_id", updated.StatusID),
			zap.Error(newErr))
		return nil
	}
	if oldErr != nil || oldStatus == nil {
		s.logger.Warn("Old status did not resolve, skipping status notification",
			zap.Int64("document_id", updated.ID),
			zap.Int64("status_id", original.StatusID),
			zap.Error(oldErr))
		return nil
	}

	payload, err := json.Marshal(StatusChangedPayload{
		DocumentID: updated.ID,
		ActorID:    actor.ID,
		OldStatus:  oldStatus.Name,
		NewStatus:  newStatus.Name,
		Comment:    comment,
	})
	if err != nil {
		return fmt.Errorf("marshal status payload: %w", err)
	}
	return s.jobRepo.Enqueue(ctx, &entity.Job{
		Queue:       entity.QueueNotifications,
		Kind:        entity.JobKindStatusChanged,
		Payload:     string(payload),
		Status:      entity.JobStatusPending,
		MaxAttempts: NotificationMaxAttempts,
		RunAt:       s.now(),
	})
}

// handleAssigneeChange writes the assigned entry with resolved user
// names. No notification object is sent for assignee changes; the
// fan-out job already reaches the new assignee.
func (s *lifecycleService) handleAssigneeChange(ctx context.Context, original, updated *entity.Document, actor *entity.User) error {
	props := map[string]interface{}{
		"old_assignee": s.resolveUserName(ctx, original.AssignedTo),
		"new_assignee": s.resolveUserName(ctx, updated.AssignedTo),
	}
	if err := s.audit.RecordDocumentEvent(ctx, updated, entity.ActivityAssigned, &actor.ID, props); err != nil {
		return err
	}
	s.logger.Info("Document reassigned",
		zap.Int64("document_id", updated.ID),
		zap.Any("old_assignee", props["old_assignee"]),
		zap.Any("new_assignee", props["new_assignee"]))
	return nil
}

func (s *lifecycleService) handlePriorityChange(original, updated *entity.Document) {
	if updated.Priority == entity.PriorityHigh && original.Priority != entity.PriorityHigh {
		s.logger.Info("Document escalated to high priority",
			zap.Int64("document_id", updated.ID),
			zap.String("old_priority", string(original.Priority)))
	}
}

func (s *lifecycleService) handleDueDateChange(updated *entity.Document) {
	if updated.DueAt == nil {
		return
	}
	now := s.now()
	if updated.DueAt.After(now) && updated.DueAt.Before(now.Add(24*time.Hour)) {
		s.logger.Warn("Document due within 24 hours",
			zap.Int64("document_id", updated.ID),
			zap.Time("due_at", *updated.DueAt))
	}
}

func (s *lifecycleService) resolveUserName(ctx context.Context, userID *int64) interface{} {
	if userID == nil {
		return nil
	}
	user, err := s.userRepo.GetByID(ctx, *userID)
	if err != nil || user == nil {
		s.logger.Warn("Failed to resolve user name for audit entry",
			zap.Int64("user_id", *userID))
		return *userID
	}
	return user.Name
}

// DeleteDocument soft-deletes the document and writes the deleted entry.
// Versions and AI runs are not cascaded.
func (s *lifecycleService) DeleteDocument(ctx context.Context, documentID int64, actor *entity.User) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %d: %w", documentID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %d not found", documentID)
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.SoftDelete(txCtx, documentID, s.now()); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return s.audit.RecordDocumentEvent(txCtx, doc, entity.ActivityDeleted, &actor.ID, nil)
	})
}

// RestoreDocument restores a soft-deleted document and writes the
// restored entry.
func (s *lifecycleService) RestoreDocument(ctx context.Context, documentID int64, actor *entity.User) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %d: %w", documentID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %d not found", documentID)
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Restore(txCtx, documentID); err != nil {
			return fmt.Errorf("restore document: %w", err)
		}
		return s.audit.RecordDocumentEvent(txCtx, doc, entity.ActivityRestored, &actor.ID, nil)
	})
}

// CreateVersion appends an immutable content snapshot and runs the
// version hook in the same transaction, so the snapshot and any trigger
// job it enqueues land atomically.
func (s *lifecycleService) CreateVersion(ctx context.Context, documentID int64, content string, actor *entity.User) (*entity.DocumentVersion, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", documentID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d not found", documentID)
	}

	version := &entity.DocumentVersion{
		DocumentID: documentID,
		Content:    content,
		CreatedBy:  actor.ID,
		CreatedAt:  s.now(),
	}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.versionRepo.Create(txCtx, version); err != nil {
			return fmt.Errorf("create version: %w", err)
		}
		if s.versionHook != nil {
			if err := s.versionHook(txCtx, version, actor); err != nil {
				return fmt.Errorf("version hook: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return version, nil
}

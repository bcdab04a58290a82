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

// NotificationService resolves recipients for document lifecycle changes
// and dispatches per-recipient notifications. It runs inside the
// notifications queue worker; an error from NotifyDocumentUpdated makes
// the queue retry the whole job, while per-recipient delivery failures
// are caught and logged so one recipient never blocks the rest.
type NotificationService interface {
	NotifyDocumentUpdated(ctx context.Context, payload DocumentUpdatedPayload) error
	NotifyStatusChanged(ctx context.Context, payload StatusChangedPayload) error
}

type notificationService struct {
	docRepo          port.DocumentRepository
	userRepo         port.UserRepository
	notificationRepo port.NotificationRepository
	policy           port.DocumentPolicy
	emailSender      port.EmailSender
	logger           *zap.Logger
	now              func() time.Time
}

// NewNotificationService creates the fan-out service.
func NewNotificationService(
	docRepo port.DocumentRepository,
	userRepo port.UserRepository,
	notificationRepo port.NotificationRepository,
	policy port.DocumentPolicy,
	emailSender port.EmailSender,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		docRepo:          docRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		policy:           policy,
		emailSender:      emailSender,
		logger:           logger,
		now:              time.Now,
	}
}

// NotifyDocumentUpdated resolves the recipient set and dispatches one
// notification per recipient. A failure to even build the recipient list
// propagates so the queue retries; individual deliveries are isolated.
func (s *notificationService) NotifyDocumentUpdated(ctx context.Context, payload DocumentUpdatedPayload) error {
	doc, err := s.docRepo.GetByID(ctx, payload.DocumentID)
	if err != nil {
		return fmt.Errorf("load document %d: %w", payload.DocumentID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %d not found", payload.DocumentID)
	}

	recipients, err := s.ResolveRecipients(ctx, doc, payload.ActorID)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}

	body := s.buildUpdateBody(doc, payload)
	for _, recipient := range recipients {
		s.deliver(ctx, recipient, doc, entity.NotificationDocumentUpdated, body, payload)
	}
	return nil
}

// NotifyStatusChanged sends the dedicated status-change notification to
// the document's current assignee.
func (s *notificationService) NotifyStatusChanged(ctx context.Context, payload StatusChangedPayload) error {
	doc, err := s.docRepo.GetByID(ctx, payload.DocumentID)
	if err != nil {
		return fmt.Errorf("load document %d: %w", payload.DocumentID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %d not found", payload.DocumentID)
	}
	if doc.AssignedTo == nil || *doc.AssignedTo == payload.ActorID {
		return nil
	}

	assignee, err := s.userRepo.GetByID(ctx, *doc.AssignedTo)
	if err != nil {
		return fmt.Errorf("load assignee %d: %w", *doc.AssignedTo, err)
	}
	if assignee == nil || !assignee.IsActive || !s.policy.CanView(assignee, doc) {
		return nil
	}

	body := fmt.Sprintf("El documento %s cambió de estado: %s → %s", doc.DocumentNumber, payload.OldStatus, payload.NewStatus)
	if payload.Comment != "" {
		body += fmt.Sprintf("\nComentario: %s", payload.Comment)
	}
	s.deliver(ctx, assignee, doc, entity.NotificationStatusChange, body, payload)
	return nil
}

// ResolveRecipients builds the recipient set in order — assignee,
// creator, department supervisors, company admins — deduplicated by user
// id and excluding the actor. Only active recipients that may view the
// document are returned; missing roles skip silently.
func (s *notificationService) ResolveRecipients(ctx context.Context, doc *entity.Document, actorID int64) ([]*entity.User, error) {
	seen := make(map[int64]bool)
	var recipients []*entity.User

	add := func(u *entity.User) {
		if u == nil || u.ID == actorID || seen[u.ID] {
			return
		}
		seen[u.ID] = true
		if !u.IsActive {
			return
		}
		if !s.policy.CanView(u, doc) {
			s.logger.Debug("Recipient not authorized to view document, skipping",
				zap.Int64("user_id", u.ID),
				zap.Int64("document_id", doc.ID))
			return
		}
		recipients = append(recipients, u)
	}

	if doc.AssignedTo != nil {
		assignee, err := s.userRepo.GetByID(ctx, *doc.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("load assignee %d: %w", *doc.AssignedTo, err)
		}
		add(assignee)
	}

	if doc.CreatedBy != 0 {
		creator, err := s.userRepo.GetByID(ctx, doc.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("load creator %d: %w", doc.CreatedBy, err)
		}
		add(creator)
	}

	if doc.DepartmentID != nil {
		supervisors, err := s.userRepo.ListActiveByRole(ctx, doc.CompanyID, entity.RoleSupervisor, doc.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("list supervisors: %w", err)
		}
		for _, u := range supervisors {
			add(u)
		}
	}

	admins, err := s.userRepo.ListActiveByRole(ctx, doc.CompanyID, entity.RoleAdmin, nil)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	for _, u := range admins {
		add(u)
	}

	return recipients, nil
}

// deliver writes the notification row and attempts email delivery.
// Failures are recorded on the row and logged; they never propagate.
func (s *notificationService) deliver(ctx context.Context, recipient *entity.User, doc *entity.Document, kind, body string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal notification payload",
			zap.Int64("user_id", recipient.ID),
			zap.Error(err))
		return
	}

	n := &entity.Notification{
		CompanyID:  doc.CompanyID,
		UserID:     recipient.ID,
		DocumentID: doc.ID,
		Type:       kind,
		Payload:    string(raw),
		Status:     entity.NotificationStatusPending,
		CreatedAt:  s.now(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification record",
			zap.Int64("user_id", recipient.ID),
			zap.Int64("document_id", doc.ID),
			zap.Error(err))
		return
	}

	subject := fmt.Sprintf("Documento %s actualizado", doc.DocumentNumber)
	if err := s.emailSender.Send(ctx, recipient.Email, subject, body); err != nil {
		s.logger.Error("Failed to deliver notification",
			zap.Int64("user_id", recipient.ID),
			zap.Int64("document_id", doc.ID),
			zap.String("type", kind),
			zap.Error(err))
		if markErr := s.notificationRepo.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
			s.logger.Error("Failed to mark notification failed", zap.Int64("id", n.ID), zap.Error(markErr))
		}
		return
	}

	if err := s.notificationRepo.MarkSent(ctx, n.ID, s.now()); err != nil {
		s.logger.Error("Failed to mark notification sent", zap.Int64("id", n.ID), zap.Error(err))
	}
}

func (s *notificationService) buildUpdateBody(doc *entity.Document, payload DocumentUpdatedPayload) string {
	body := fmt.Sprintf("El documento %s (%s) fue actualizado.", doc.DocumentNumber, doc.Title)
	for field, change := range payload.Changes {
		body += fmt.Sprintf("\n- %s: %v → %v", field, change.Old, change.New)
	}
	if payload.Comment != "" {
		body += fmt.Sprintf("\nComentario: %s", payload.Comment)
	}
	return body
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"go.uber.org/zap"
)

// AuditService writes append-only activity entries. Audit writes are
// deliberately not wrapped in recovery: a failed audit write is fatal to
// the surrounding operation, because audit history must stay at least as
// fresh as anything a recipient later observes.
type AuditService interface {
	Record(ctx context.Context, entry *entity.ActivityEntry) error
	RecordDocumentEvent(ctx context.Context, doc *entity.Document, event string, causerID *int64, properties map[string]interface{}) error
}

type auditService struct {
	activityRepo port.ActivityRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuditService creates an AuditService backed by the activity log.
func NewAuditService(activityRepo port.ActivityRepository, logger *zap.Logger) AuditService {
	return &auditService{
		activityRepo: activityRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *auditService) Record(ctx context.Context, entry *entity.ActivityEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to write activity entry",
			zap.String("event", entry.Event),
			zap.Int64("subject_id", entry.SubjectID),
			zap.Error(err))
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (s *auditService) RecordDocumentEvent(ctx context.Context, doc *entity.Document, event string, causerID *int64, properties map[string]interface{}) error {
	return s.Record(ctx, &entity.ActivityEntry{
		CompanyID:   doc.CompanyID,
		Event:       event,
		SubjectType: entity.SubjectDocument,
		SubjectID:   doc.ID,
		CauserID:    causerID,
		Properties:  properties,
	})
}

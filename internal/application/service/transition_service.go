package service

import (
	"context"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/domain/workflow"
	"go.uber.org/zap"
)

// TransitionService loads the tenant catalog, runs the workflow engine
// and applies successful transitions through the lifecycle pipeline.
// Validation failures surface as the engine's typed errors; they are
// expected user-facing outcomes, never logged as system failures.
type TransitionService interface {
	Transition(ctx context.Context, documentID, targetStatusID int64, actor *entity.User, comment string) (*workflow.TransitionResult, error)
	PermittedTransitions(ctx context.Context, documentID int64, actor *entity.User) ([]*entity.WorkflowDefinition, error)
}

type transitionService struct {
	docRepo    port.DocumentRepository
	statusRepo port.StatusRepository
	defRepo    port.WorkflowDefinitionRepository
	lifecycle  LifecycleService
	audit      AuditService
	logger     *zap.Logger
	now        func() time.Time
}

// NewTransitionService wires catalog loading, engine evaluation and the
// lifecycle pipeline together.
func NewTransitionService(
	docRepo port.DocumentRepository,
	statusRepo port.StatusRepository,
	defRepo port.WorkflowDefinitionRepository,
	lifecycle LifecycleService,
	audit AuditService,
	logger *zap.Logger,
) TransitionService {
	return &transitionService{
		docRepo:    docRepo,
		statusRepo: statusRepo,
		defRepo:    defRepo,
		lifecycle:  lifecycle,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *transitionService) loadEngine(ctx context.Context, companyID int64) (*workflow.Engine, error) {
	statuses, err := s.statusRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load statuses for company %d: %w", companyID, err)
	}
	defs, err := s.defRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load workflow definitions for company %d: %w", companyID, err)
	}
	catalog, err := workflow.NewCatalog(companyID, statuses, defs)
	if err != nil {
		return nil, fmt.Errorf("build catalog for company %d: %w", companyID, err)
	}
	return workflow.NewEngine(catalog).WithClock(s.now), nil
}

// Transition attempts to move the document to the target status. On a
// pending-approval outcome the document is left untouched and an
// approval_requested entry is recorded; on success the status (and SLA
// due date, and completion time for final statuses) is applied through
// the lifecycle pipeline so audit and notifications follow.
func (s *transitionService) Transition(ctx context.Context, documentID, targetStatusID int64, actor *entity.User, comment string) (*workflow.TransitionResult, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", documentID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d not found", documentID)
	}

	engine, err := s.loadEngine(ctx, doc.CompanyID)
	if err != nil {
		return nil, err
	}

	result, err := engine.AttemptTransition(doc, targetStatusID, actor, comment)
	if err != nil {
		return nil, err
	}

	if result.PendingApproval {
		props := map[string]interface{}{
			"transition":   result.Definition.Name,
			"to_status_id": result.NewStatusID,
		}
		if result.Comment != "" {
			props["comment"] = result.Comment
		}
		if err := s.audit.RecordDocumentEvent(ctx, doc, entity.ActivityApprovalRequested, &actor.ID, props); err != nil {
			return nil, err
		}
		s.logger.Info("Transition held for approval",
			zap.Int64("document_id", doc.ID),
			zap.String("transition", result.Definition.Name))
		return result, nil
	}

	updated := doc.Clone()
	updated.StatusID = result.NewStatusID
	if result.DueAt != nil {
		updated.DueAt = result.DueAt
	}
	if result.Completed {
		completedAt := s.now()
		updated.CompletedAt = &completedAt
	}

	if _, err := s.lifecycle.UpdateDocument(ctx, updated, actor, result.Comment); err != nil {
		return nil, err
	}
	return result, nil
}

// PermittedTransitions lists the transitions the actor could execute
// from the document's current status.
func (s *transitionService) PermittedTransitions(ctx context.Context, documentID int64, actor *entity.User) ([]*entity.WorkflowDefinition, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", documentID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d not found", documentID)
	}
	engine, err := s.loadEngine(ctx, doc.CompanyID)
	if err != nil {
		return nil, err
	}
	return engine.PermittedTransitions(doc, actor), nil
}

package service

import (
	"context"
	"fmt"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/domain/workflow"
	"go.uber.org/zap"
)

// CatalogService installs and resolves tenant workflow catalogs.
type CatalogService interface {
	// InstallBasicWorkflow creates the standard status set and transitions
	// for a tenant that has no catalog yet.
	InstallBasicWorkflow(ctx context.Context, companyID int64) error
	// InitialStatus resolves the tenant's is_initial status for document
	// creation.
	InitialStatus(ctx context.Context, companyID int64) (*entity.Status, error)
}

type catalogService struct {
	txManager  port.TransactionManager
	statusRepo port.StatusRepository
	defRepo    port.WorkflowDefinitionRepository
	logger     *zap.Logger
}

// NewCatalogService creates the catalog administration service.
func NewCatalogService(
	txManager port.TransactionManager,
	statusRepo port.StatusRepository,
	defRepo port.WorkflowDefinitionRepository,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		txManager:  txManager,
		statusRepo: statusRepo,
		defRepo:    defRepo,
		logger:     logger,
	}
}

// InstallBasicWorkflow persists the standard status set and transitions for the
// tenant, resolving transition endpoints by slug after the statuses have
// their ids assigned. The whole install is one transaction.
func (s *catalogService) InstallBasicWorkflow(ctx context.Context, companyID int64) error {
	existing, err := s.statusRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("list statuses for company %d: %w", companyID, err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("company %d already has %d statuses", companyID, len(existing))
	}

	statusSpecs, transitionSpecs := workflow.BasicWorkflowSpec()

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		bySlug := make(map[string]*entity.Status, len(statusSpecs))
		for _, spec := range statusSpecs {
			status := &entity.Status{
				CompanyID: companyID,
				Name:      spec.Name,
				Slug:      spec.Slug,
				Color:     spec.Color,
				IsInitial: spec.Initial,
				IsFinal:   spec.Final,
				Active:    true,
			}
			if err := s.statusRepo.Create(txCtx, status); err != nil {
				return fmt.Errorf("create status %q: %w", spec.Slug, err)
			}
			bySlug[spec.Slug] = status
		}

		for _, spec := range transitionSpecs {
			from, ok := bySlug[spec.From]
			if !ok {
				return fmt.Errorf("%w: slug %q", workflow.ErrStatusNotFound, spec.From)
			}
			to, ok := bySlug[spec.To]
			if !ok {
				return fmt.Errorf("%w: slug %q", workflow.ErrStatusNotFound, spec.To)
			}
			def := &entity.WorkflowDefinition{
				CompanyID:        companyID,
				FromStatusID:     from.ID,
				ToStatusID:       to.ID,
				Name:             spec.Name,
				RolesAllowed:     spec.Roles,
				RequiresApproval: spec.RequiresApproval,
				RequiresComment:  spec.RequiresComment,
				SLAHours:         spec.SLAHours,
				Active:           true,
			}
			if err := s.defRepo.Create(txCtx, def); err != nil {
				return fmt.Errorf("create transition %q: %w", spec.Name, err)
			}
		}

		s.logger.Info("Installed basic workflow",
			zap.Int64("company_id", companyID),
			zap.Int("statuses", len(statusSpecs)),
			zap.Int("transitions", len(transitionSpecs)))
		return nil
	})
}

// InitialStatus returns the tenant's active is_initial status.
func (s *catalogService) InitialStatus(ctx context.Context, companyID int64) (*entity.Status, error) {
	statuses, err := s.statusRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list statuses for company %d: %w", companyID, err)
	}
	for _, status := range statuses {
		if status.Active && status.IsInitial {
			return status, nil
		}
	}
	return nil, workflow.ErrNoInitialStatus
}

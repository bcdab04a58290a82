package service

import (
	"context"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"go.uber.org/zap"
)

// AiRunService executes queued AI runs. It lives on the worker side of
// the ai-processing queue: the job carries only the run id, so the
// executor re-loads fresh state before calling the provider.
type AiRunService interface {
	Execute(ctx context.Context, runID int64) error
}

type aiRunService struct {
	runRepo     port.AiRunRepository
	versionRepo port.DocumentVersionRepository
	docRepo     port.DocumentRepository
	settingRepo port.AISettingRepository
	summarizers port.SummarizerFactory
	logger      *zap.Logger
	now         func() time.Time
}

// NewAiRunService creates the run executor.
func NewAiRunService(
	runRepo port.AiRunRepository,
	versionRepo port.DocumentVersionRepository,
	docRepo port.DocumentRepository,
	settingRepo port.AISettingRepository,
	summarizers port.SummarizerFactory,
	logger *zap.Logger,
) AiRunService {
	return &aiRunService{
		runRepo:     runRepo,
		versionRepo: versionRepo,
		docRepo:     docRepo,
		settingRepo: settingRepo,
		summarizers: summarizers,
		logger:      logger,
		now:         time.Now,
	}
}

// Execute runs one queued AI run to completion. Runs already in a
// terminal or running state are skipped, which keeps queue retries
// idempotent. Provider errors mark the run failed and propagate so the
// queue can retry within its attempt limit.
func (s *aiRunService) Execute(ctx context.Context, runID int64) error {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load ai run %d: %w", runID, err)
	}
	if run == nil {
		return fmt.Errorf("ai run %d not found", runID)
	}
	if run.Status != entity.AiRunStatusQueued {
		s.logger.Info("AI run not in queued state, skipping",
			zap.Int64("run_id", runID),
			zap.String("status", run.Status))
		return nil
	}

	if err := s.runRepo.MarkRunning(ctx, runID, s.now()); err != nil {
		return fmt.Errorf("mark run %d running: %w", runID, err)
	}

	summary, err := s.run(ctx, run)
	if err != nil {
		if markErr := s.runRepo.MarkFailed(ctx, runID, err.Error(), s.now()); markErr != nil {
			s.logger.Error("Failed to mark ai run failed", zap.Int64("run_id", runID), zap.Error(markErr))
		}
		return err
	}

	if err := s.runRepo.MarkSucceeded(ctx, runID, summary, s.now()); err != nil {
		return fmt.Errorf("mark run %d succeeded: %w", runID, err)
	}
	s.logger.Info("AI run completed",
		zap.Int64("run_id", runID),
		zap.String("provider", run.Provider),
		zap.Int("summary_length", len(summary)))
	return nil
}

func (s *aiRunService) run(ctx context.Context, run *entity.DocumentAiRun) (string, error) {
	version, err := s.versionRepo.GetByID(ctx, run.DocumentVersionID)
	if err != nil {
		return "", fmt.Errorf("load version %d: %w", run.DocumentVersionID, err)
	}
	if version == nil {
		return "", fmt.Errorf("version %d not found", run.DocumentVersionID)
	}

	doc, err := s.docRepo.GetByID(ctx, run.DocumentID)
	if err != nil {
		return "", fmt.Errorf("load document %d: %w", run.DocumentID, err)
	}
	if doc == nil {
		return "", fmt.Errorf("document %d not found", run.DocumentID)
	}

	setting, err := s.settingRepo.GetByCompany(ctx, run.CompanyID)
	if err != nil {
		return "", fmt.Errorf("load ai setting for company %d: %w", run.CompanyID, err)
	}
	if !setting.Enabled() {
		return "", fmt.Errorf("ai processing disabled for company %d", run.CompanyID)
	}

	summarizer, err := s.summarizers.ForSetting(setting)
	if err != nil {
		return "", fmt.Errorf("resolve provider %q: %w", setting.Provider, err)
	}

	content := version.Content
	if setting.RedactionEnabled() {
		content = RedactPII(content)
	}

	summary, err := summarizer.Summarize(ctx, port.SummarizeRequest{
		Content:       content,
		Title:         doc.Title,
		Description:   doc.Description,
		Model:         run.Model,
		PromptVersion: run.PromptVersion,
	})
	if err != nil {
		return "", fmt.Errorf("summarize via %s: %w", setting.Provider, err)
	}
	return summary, nil
}

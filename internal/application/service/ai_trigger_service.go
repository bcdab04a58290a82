package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"go.uber.org/zap"
)

// HashInput is the canonical input of one AI run. Field order is fixed
// so the JSON encoding — and therefore the hash — is deterministic for a
// given tuple.
type HashInput struct {
	Content       string `json:"content"`
	Title         string `json:"document_title"`
	Description   string `json:"document_description"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	PromptVersion string `json:"prompt_version"`
	RedactPII     bool   `json:"redact_pii"`
}

// ComputeInputHash returns the sha-256 of the canonical JSON encoding of
// the input. Two runs with the same hash represent a logically identical
// request; the hash is a detection key, not a uniqueness gate.
func ComputeInputHash(input HashInput) string {
	raw, _ := json.Marshal(input)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// AiTriggerConfig carries the configuration the trigger resolves per
// run: the prompt version and each provider's default model.
type AiTriggerConfig struct {
	PromptVersion string
	DefaultModels map[string]string
}

// AiTriggerService reacts to new document versions: when the tenant has
// AI enabled it records a queued DocumentAiRun with the computed input
// hash and enqueues the processing job keyed by run id only.
type AiTriggerService interface {
	// EnqueueVersionCreated records the trigger evaluation itself as a
	// queued job. The request path only enqueues; HandleVersionCreated
	// runs on the ai-processing queue and inherits its retry contract.
	EnqueueVersionCreated(ctx context.Context, version *entity.DocumentVersion, triggeredBy int64) error
	HandleVersionCreated(ctx context.Context, version *entity.DocumentVersion, triggeredBy int64) (*entity.DocumentAiRun, error)
}

type aiTriggerService struct {
	docRepo     port.DocumentRepository
	settingRepo port.AISettingRepository
	runRepo     port.AiRunRepository
	jobRepo     port.JobRepository
	txManager   port.TransactionManager
	config      AiTriggerConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewAiTriggerService creates the trigger.
func NewAiTriggerService(
	docRepo port.DocumentRepository,
	settingRepo port.AISettingRepository,
	runRepo port.AiRunRepository,
	jobRepo port.JobRepository,
	txManager port.TransactionManager,
	config AiTriggerConfig,
	logger *zap.Logger,
) AiTriggerService {
	if config.PromptVersion == "" {
		config.PromptVersion = "v1.0.0"
	}
	return &aiTriggerService{
		docRepo:     docRepo,
		settingRepo: settingRepo,
		runRepo:     runRepo,
		jobRepo:     jobRepo,
		txManager:   txManager,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// EnqueueVersionCreated stores the trigger work on the ai-processing
// queue. It is called from the version-creation transaction, so the
// version row and this job commit together.
func (s *aiTriggerService) EnqueueVersionCreated(ctx context.Context, version *entity.DocumentVersion, triggeredBy int64) error {
	payload, err := json.Marshal(AiTriggerPayload{VersionID: version.ID, ActorID: triggeredBy})
	if err != nil {
		return fmt.Errorf("marshal ai trigger payload: %w", err)
	}
	return s.jobRepo.Enqueue(ctx, &entity.Job{
		Queue:       entity.QueueAiProcessing,
		Kind:        entity.JobKindAiTrigger,
		Payload:     string(payload),
		Status:      entity.JobStatusPending,
		MaxAttempts: AiRunMaxAttempts,
		RunAt:       s.now(),
	})
}

// HandleVersionCreated checks the tenant's AI setting and, when enabled,
// creates exactly one queued run for the version plus its processing
// job. AI is opt-in per tenant: a missing or disabled setting is a
// silent no-op returning (nil, nil).
func (s *aiTriggerService) HandleVersionCreated(ctx context.Context, version *entity.DocumentVersion, triggeredBy int64) (*entity.DocumentAiRun, error) {
	doc, err := s.docRepo.GetByID(ctx, version.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", version.DocumentID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d not found", version.DocumentID)
	}

	setting, err := s.settingRepo.GetByCompany(ctx, doc.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load ai setting for company %d: %w", doc.CompanyID, err)
	}
	if !setting.Enabled() {
		s.logger.Debug("AI processing disabled for company, skipping",
			zap.Int64("company_id", doc.CompanyID),
			zap.Int64("version_id", version.ID))
		return nil, nil
	}

	model := setting.Model
	if model == "" {
		model = s.config.DefaultModels[setting.Provider]
	}

	hash := ComputeInputHash(HashInput{
		Content:       version.Content,
		Title:         doc.Title,
		Description:   doc.Description,
		Provider:      setting.Provider,
		Model:         model,
		PromptVersion: s.config.PromptVersion,
		RedactPII:     setting.RedactionEnabled(),
	})

	if existing, err := s.runRepo.ListByInputHash(ctx, doc.CompanyID, hash); err == nil && len(existing) > 0 {
		// Identical work was requested before. Recorded for observability
		// only; the new run is still created.
		s.logger.Info("AI run requested for previously seen input hash",
			zap.Int64("document_id", doc.ID),
			zap.String("input_hash", hash),
			zap.Int("prior_runs", len(existing)))
	}

	run := &entity.DocumentAiRun{
		CompanyID:         doc.CompanyID,
		DocumentID:        doc.ID,
		DocumentVersionID: version.ID,
		TriggeredBy:       triggeredBy,
		Provider:          setting.Provider,
		Model:             model,
		Status:            entity.AiRunStatusQueued,
		Task:              entity.AiTaskSummarize,
		InputHash:         hash,
		PromptVersion:     s.config.PromptVersion,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.runRepo.Create(txCtx, run); err != nil {
			return fmt.Errorf("create ai run: %w", err)
		}
		payload, err := json.Marshal(AiRunPayload{RunID: run.ID})
		if err != nil {
			return fmt.Errorf("marshal ai run payload: %w", err)
		}
		return s.jobRepo.Enqueue(txCtx, &entity.Job{
			Queue:       entity.QueueAiProcessing,
			Kind:        entity.JobKindAiRun,
			Payload:     string(payload),
			Status:      entity.JobStatusPending,
			MaxAttempts: AiRunMaxAttempts,
			RunAt:       s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("AI run queued",
		zap.Int64("run_id", run.ID),
		zap.Int64("document_id", doc.ID),
		zap.String("provider", run.Provider),
		zap.String("input_hash", hash))
	return run, nil
}

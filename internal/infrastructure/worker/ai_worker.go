package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/application/service"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"go.uber.org/zap"
)

// NewAiWorker builds the worker for the ai-processing queue. Two kinds
// travel on it: ai_trigger jobs evaluate the tenant setting for a new
// version and record a queued run; ai_run jobs execute that run against
// the configured provider. Both carry only ids so the worker re-loads
// fresh state.
func NewAiWorker(
	config QueueWorkerConfig,
	jobRepo port.JobRepository,
	runs service.AiRunService,
	trigger service.AiTriggerService,
	versionRepo port.DocumentVersionRepository,
	logger *zap.Logger,
) *QueueWorker {
	handler := func(ctx context.Context, job *entity.Job) error {
		switch job.Kind {
		case entity.JobKindAiTrigger:
			var payload service.AiTriggerPayload
			if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
				return fmt.Errorf("decode ai_trigger payload: %w", err)
			}
			version, err := versionRepo.GetByID(ctx, payload.VersionID)
			if err != nil {
				return fmt.Errorf("load version %d: %w", payload.VersionID, err)
			}
			if version == nil {
				return fmt.Errorf("version %d not found", payload.VersionID)
			}
			_, err = trigger.HandleVersionCreated(ctx, version, payload.ActorID)
			return err

		case entity.JobKindAiRun:
			var payload service.AiRunPayload
			if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
				return fmt.Errorf("decode ai_run payload: %w", err)
			}
			return runs.Execute(ctx, payload.RunID)

		default:
			return fmt.Errorf("unknown job kind %q on ai-processing queue", job.Kind)
		}
	}

	return NewQueueWorker(config, jobRepo, handler, logger)
}

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

// NewNotificationWorker builds the worker for the notifications queue.
// It decodes fan-out and status-change payloads and hands them to the
// notification service.
func NewNotificationWorker(
	config QueueWorkerConfig,
	jobRepo port.JobRepository,
	notifications service.NotificationService,
	logger *zap.Logger,
) *QueueWorker {
	handler := func(ctx context.Context, job *entity.Job) error {
		switch job.Kind {
		case entity.JobKindDocumentUpdated:
			var payload service.DocumentUpdatedPayload
			if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
				return fmt.Errorf("decode document_updated payload: %w", err)
			}
			return notifications.NotifyDocumentUpdated(ctx, payload)

		case entity.JobKindStatusChanged:
			var payload service.StatusChangedPayload
			if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
				return fmt.Errorf("decode status_changed payload: %w", err)
			}
			return notifications.NotifyStatusChanged(ctx, payload)

		default:
			return fmt.Errorf("unknown job kind %q on notifications queue", job.Kind)
		}
	}

	return NewQueueWorker(config, jobRepo, handler, logger)
}

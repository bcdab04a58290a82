package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/docuflow/docuflow/internal/application/service"
	"github.com/docuflow/docuflow/internal/domain/entity"
)

type mockNotificationService struct {
	updated []service.DocumentUpdatedPayload
	status  []service.StatusChangedPayload
}

func (m *mockNotificationService) NotifyDocumentUpdated(ctx context.Context, payload service.DocumentUpdatedPayload) error {
	m.updated = append(m.updated, payload)
	return nil
}

func (m *mockNotificationService) NotifyStatusChanged(ctx context.Context, payload service.StatusChangedPayload) error {
	m.status = append(m.status, payload)
	return nil
}

type mockRunService struct {
	executed []int64
}

func (m *mockRunService) Execute(ctx context.Context, runID int64) error {
	m.executed = append(m.executed, runID)
	return nil
}

type mockTriggerService struct {
	handled  []int64
	enqueued []int64
}

func (m *mockTriggerService) EnqueueVersionCreated(ctx context.Context, version *entity.DocumentVersion, triggeredBy int64) error {
	m.enqueued = append(m.enqueued, version.ID)
	return nil
}

func (m *mockTriggerService) HandleVersionCreated(ctx context.Context, version *entity.DocumentVersion, triggeredBy int64) (*entity.DocumentAiRun, error) {
	m.handled = append(m.handled, version.ID)
	return &entity.DocumentAiRun{ID: 1, DocumentVersionID: version.ID, TriggeredBy: triggeredBy}, nil
}

type mockVersionRepo struct {
	versions map[int64]*entity.DocumentVersion
}

func (m *mockVersionRepo) Create(ctx context.Context, version *entity.DocumentVersion) error {
	return nil
}

func (m *mockVersionRepo) GetByID(ctx context.Context, id int64) (*entity.DocumentVersion, error) {
	return m.versions[id], nil
}

func (m *mockVersionRepo) ListByDocument(ctx context.Context, documentID int64) ([]*entity.DocumentVersion, error) {
	return nil, nil
}

func TestNotificationWorkerDispatchesByKind(t *testing.T) {
	repo := &mockJobRepo{}
	_ = repo.Enqueue(context.Background(), &entity.Job{
		Queue: entity.QueueNotifications, Kind: entity.JobKindDocumentUpdated,
		Payload: `{"document_id":1,"actor_id":5}`, Status: entity.JobStatusPending, MaxAttempts: 3,
	})
	_ = repo.Enqueue(context.Background(), &entity.Job{
		Queue: entity.QueueNotifications, Kind: entity.JobKindStatusChanged,
		Payload: `{"document_id":1,"actor_id":5,"old_status":"Recibido","new_status":"En Proceso"}`,
		Status:  entity.JobStatusPending, MaxAttempts: 3,
	})

	notifications := &mockNotificationService{}
	worker := NewNotificationWorker(testConfig(), repo, notifications, zap.NewNop())

	if err := worker.processBatch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifications.updated) != 1 || notifications.updated[0].DocumentID != 1 {
		t.Errorf("expected one fan-out dispatch, got %v", notifications.updated)
	}
	if len(notifications.status) != 1 || notifications.status[0].NewStatus != "En Proceso" {
		t.Errorf("expected one status dispatch, got %v", notifications.status)
	}
	if len(repo.done) != 2 {
		t.Errorf("expected both jobs done, got %d", len(repo.done))
	}
}

func TestNotificationWorkerRejectsUnknownKind(t *testing.T) {
	repo := &mockJobRepo{}
	_ = repo.Enqueue(context.Background(), &entity.Job{
		Queue: entity.QueueNotifications, Kind: "mystery",
		Payload: `{}`, Status: entity.JobStatusPending, MaxAttempts: 1,
	})

	worker := NewNotificationWorker(testConfig(), repo, &mockNotificationService{}, zap.NewNop())

	if err := worker.processBatch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.failed) != 1 {
		t.Errorf("expected unknown kind to fail the job, got %v", repo.failed)
	}
}

func TestAiWorkerExecutesRun(t *testing.T) {
	config := testConfig()
	config.Queue = entity.QueueAiProcessing

	repo := &mockJobRepo{}
	_ = repo.Enqueue(context.Background(), &entity.Job{
		Queue: entity.QueueAiProcessing, Kind: entity.JobKindAiRun,
		Payload: `{"run_id":42}`, Status: entity.JobStatusPending, MaxAttempts: 2,
	})

	runs := &mockRunService{}
	worker := NewAiWorker(config, repo, runs, &mockTriggerService{}, &mockVersionRepo{}, zap.NewNop())

	if err := worker.processBatch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runs.executed) != 1 || runs.executed[0] != 42 {
		t.Errorf("expected run 42 executed, got %v", runs.executed)
	}
	if len(repo.done) != 1 {
		t.Errorf("expected job done, got %d", len(repo.done))
	}
}

func TestAiWorkerRunsTriggerForVersion(t *testing.T) {
	config := testConfig()
	config.Queue = entity.QueueAiProcessing

	repo := &mockJobRepo{}
	_ = repo.Enqueue(context.Background(), &entity.Job{
		Queue: entity.QueueAiProcessing, Kind: entity.JobKindAiTrigger,
		Payload: `{"version_id":7,"actor_id":5}`, Status: entity.JobStatusPending, MaxAttempts: 2,
	})

	trigger := &mockTriggerService{}
	versions := &mockVersionRepo{versions: map[int64]*entity.DocumentVersion{
		7: {ID: 7, DocumentID: 1, Content: "texto"},
	}}
	worker := NewAiWorker(config, repo, &mockRunService{}, trigger, versions, zap.NewNop())

	if err := worker.processBatch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trigger.handled) != 1 || trigger.handled[0] != 7 {
		t.Errorf("expected trigger evaluated for version 7, got %v", trigger.handled)
	}
	if len(repo.done) != 1 {
		t.Errorf("expected job done, got %d", len(repo.done))
	}
}

func TestAiWorkerMissingVersionRetries(t *testing.T) {
	config := testConfig()
	config.Queue = entity.QueueAiProcessing

	repo := &mockJobRepo{}
	_ = repo.Enqueue(context.Background(), &entity.Job{
		Queue: entity.QueueAiProcessing, Kind: entity.JobKindAiTrigger,
		Payload: `{"version_id":99,"actor_id":5}`, Status: entity.JobStatusPending, MaxAttempts: 2,
	})

	worker := NewAiWorker(config, repo, &mockRunService{}, &mockTriggerService{}, &mockVersionRepo{}, zap.NewNop())

	if err := worker.processBatch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job := repo.jobs[0]
	if job.Status != entity.JobStatusPending {
		t.Errorf("expected job rescheduled for retry, got status %q", job.Status)
	}
}

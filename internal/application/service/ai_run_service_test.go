package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
)

type mockSummarizer struct {
	provider string
	summary  string
	err      error
	requests []port.SummarizeRequest
}

func (m *mockSummarizer) Provider() string { return m.provider }

func (m *mockSummarizer) Summarize(ctx context.Context, req port.SummarizeRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.summary, nil
}

type mockSummarizerFactory struct {
	summarizer *mockSummarizer
	err        error
}

func (m *mockSummarizerFactory) ForSetting(setting *entity.CompanyAISetting) (port.Summarizer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summarizer, nil
}

func runFixture(summarizer *mockSummarizer, setting *entity.CompanyAISetting) (*mockAiRunRepo, AiRunService) {
	runRepo := &mockAiRunRepo{}
	versionRepo := &mockVersionRepo{}
	_ = versionRepo.Create(context.Background(), &entity.DocumentVersion{
		DocumentID: 1,
		Content:    "Contactar a maria@example.com sobre el contrato",
	})
	docRepo := newMockDocumentRepo(&entity.Document{
		ID: 1, CompanyID: 1, StatusID: 1, Title: "Contrato", Description: "Acuerdo",
	})
	settingRepo := &mockAISettingRepo{settings: map[int64]*entity.CompanyAISetting{}}
	if setting != nil {
		settingRepo.settings[setting.CompanyID] = setting
	}
	svc := NewAiRunService(runRepo, versionRepo, docRepo, settingRepo,
		&mockSummarizerFactory{summarizer: summarizer}, zap.NewNop())
	return runRepo, svc
}

func queuedRun() *entity.DocumentAiRun {
	return &entity.DocumentAiRun{
		CompanyID: 1, DocumentID: 1, DocumentVersionID: 1, TriggeredBy: 5,
		Provider: entity.AiProviderOpenAI, Model: "gpt-4o-mini",
		Status: entity.AiRunStatusQueued, Task: entity.AiTaskSummarize,
		InputHash: "abc", PromptVersion: "v1.0.0",
	}
}

func TestExecuteRunSucceeds(t *testing.T) {
	summarizer := &mockSummarizer{provider: entity.AiProviderOpenAI, summary: "Resumen del contrato"}
	runRepo, svc := runFixture(summarizer, enabledSetting())
	run := queuedRun()
	_ = runRepo.Create(context.Background(), run)

	if err := svc.Execute(context.Background(), run.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.Status != entity.AiRunStatusSucceeded {
		t.Errorf("expected succeeded, got %q", run.Status)
	}
	if run.Summary != "Resumen del contrato" {
		t.Errorf("expected stored summary, got %q", run.Summary)
	}
	if run.StartedAt == nil || run.CompletedAt == nil {
		t.Error("expected timing fields set")
	}
	if len(summarizer.requests) != 1 {
		t.Fatalf("expected one provider call, got %d", len(summarizer.requests))
	}
	req := summarizer.requests[0]
	if req.Model != "gpt-4o-mini" || req.PromptVersion != "v1.0.0" {
		t.Errorf("expected run configuration on the request, got %+v", req)
	}
}

func TestExecuteRunRedactsContent(t *testing.T) {
	summarizer := &mockSummarizer{provider: entity.AiProviderOpenAI, summary: "ok"}
	runRepo, svc := runFixture(summarizer, enabledSetting())
	run := queuedRun()
	_ = runRepo.Create(context.Background(), run)

	if err := svc.Execute(context.Background(), run.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content := summarizer.requests[0].Content
	if strings.Contains(content, "maria@example.com") {
		t.Errorf("expected PII removed before the provider call, got %q", content)
	}
}

func TestExecuteRunRedactionDisabled(t *testing.T) {
	off := false
	setting := enabledSetting()
	setting.RedactPII = &off

	summarizer := &mockSummarizer{provider: entity.AiProviderOpenAI, summary: "ok"}
	runRepo, svc := runFixture(summarizer, setting)
	run := queuedRun()
	_ = runRepo.Create(context.Background(), run)

	if err := svc.Execute(context.Background(), run.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(summarizer.requests[0].Content, "maria@example.com") {
		t.Error("expected raw content when redaction is disabled")
	}
}

func TestExecuteRunProviderFailure(t *testing.T) {
	summarizer := &mockSummarizer{provider: entity.AiProviderOpenAI, err: errors.New("rate limited")}
	runRepo, svc := runFixture(summarizer, enabledSetting())
	run := queuedRun()
	_ = runRepo.Create(context.Background(), run)

	err := svc.Execute(context.Background(), run.ID)
	if err == nil {
		t.Fatal("expected error to propagate for queue retry")
	}

	if run.Status != entity.AiRunStatusFailed {
		t.Errorf("expected failed status, got %q", run.Status)
	}
	if run.ErrorMessage == "" {
		t.Error("expected error message on the run")
	}
}

func TestExecuteRunSkipsNonQueuedStates(t *testing.T) {
	for _, status := range []string{entity.AiRunStatusRunning, entity.AiRunStatusSucceeded, entity.AiRunStatusFailed} {
		t.Run(status, func(t *testing.T) {
			summarizer := &mockSummarizer{provider: entity.AiProviderOpenAI, summary: "ok"}
			runRepo, svc := runFixture(summarizer, enabledSetting())
			run := queuedRun()
			run.Status = status
			_ = runRepo.Create(context.Background(), run)

			if err := svc.Execute(context.Background(), run.ID); err != nil {
				t.Fatalf("retry of a %s run must be a no-op, got %v", status, err)
			}
			if len(summarizer.requests) != 0 {
				t.Error("expected no provider call")
			}
			if run.Status != status {
				t.Errorf("expected status unchanged, got %q", run.Status)
			}
		})
	}
}

func TestExecuteRunDisabledTenantFails(t *testing.T) {
	summarizer := &mockSummarizer{provider: entity.AiProviderOpenAI, summary: "ok"}
	runRepo, svc := runFixture(summarizer, nil)
	run := queuedRun()
	_ = runRepo.Create(context.Background(), run)

	if err := svc.Execute(context.Background(), run.ID); err == nil {
		t.Fatal("expected error when the tenant disabled AI after queuing")
	}
	if run.Status != entity.AiRunStatusFailed {
		t.Errorf("expected failed status, got %q", run.Status)
	}
}

func TestExecuteRunUnknownRun(t *testing.T) {
	_, svc := runFixture(&mockSummarizer{}, enabledSetting())

	if err := svc.Execute(context.Background(), 404); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

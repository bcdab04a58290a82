package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/domain/workflow"
)

func TestInstallBasicWorkflow(t *testing.T) {
	statusRepo := &mockStatusRepo{statuses: make(map[int64]*entity.Status)}
	defRepo := &mockDefinitionRepo{}
	svc := NewCatalogService(&mockTxManager{}, statusRepo, defRepo, zap.NewNop())

	if err := svc.InstallBasicWorkflow(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses, _ := statusRepo.ListByCompany(context.Background(), 1)
	if len(statuses) != 6 {
		t.Errorf("expected 6 statuses, got %d", len(statuses))
	}
	defs, _ := defRepo.ListByCompany(context.Background(), 1)
	if len(defs) != 6 {
		t.Errorf("expected 6 transitions, got %d", len(defs))
	}

	// The persisted rows must form a valid catalog.
	catalog, err := workflow.NewCatalog(1, statuses, defs)
	if err != nil {
		t.Fatalf("installed rows do not build a catalog: %v", err)
	}
	initial, err := catalog.Initial()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if initial.Slug != "received" {
		t.Errorf("expected received as initial, got %q", initial.Slug)
	}

	// Transition endpoints reference the assigned status ids.
	for _, def := range defs {
		if catalog.Status(def.FromStatusID) == nil || catalog.Status(def.ToStatusID) == nil {
			t.Errorf("transition %q references unknown status ids", def.Name)
		}
	}
}

func TestInstallBasicWorkflowRejectsExistingCatalog(t *testing.T) {
	statusRepo := &mockStatusRepo{statuses: map[int64]*entity.Status{
		1: {ID: 1, CompanyID: 1, Slug: "received", Active: true},
	}}
	defRepo := &mockDefinitionRepo{}
	svc := NewCatalogService(&mockTxManager{}, statusRepo, defRepo, zap.NewNop())

	if err := svc.InstallBasicWorkflow(context.Background(), 1); err == nil {
		t.Fatal("expected error when the tenant already has statuses")
	}
}

func TestInitialStatus(t *testing.T) {
	statusRepo := &mockStatusRepo{statuses: map[int64]*entity.Status{
		1: {ID: 1, CompanyID: 1, Slug: "retired", Active: false, IsInitial: true},
		2: {ID: 2, CompanyID: 1, Slug: "received", Active: true, IsInitial: true},
		3: {ID: 3, CompanyID: 1, Slug: "done", Active: true, IsFinal: true},
	}}
	svc := NewCatalogService(&mockTxManager{}, statusRepo, &mockDefinitionRepo{}, zap.NewNop())

	initial, err := svc.InitialStatus(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if initial.ID != 2 {
		t.Errorf("expected the active initial status, got %d", initial.ID)
	}
}

func TestInitialStatusMissing(t *testing.T) {
	statusRepo := &mockStatusRepo{statuses: map[int64]*entity.Status{
		1: {ID: 1, CompanyID: 1, Slug: "middle", Active: true},
	}}
	svc := NewCatalogService(&mockTxManager{}, statusRepo, &mockDefinitionRepo{}, zap.NewNop())

	if _, err := svc.InitialStatus(context.Background(), 1); !errors.Is(err, workflow.ErrNoInitialStatus) {
		t.Fatalf("expected ErrNoInitialStatus, got %v", err)
	}
}

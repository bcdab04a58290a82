package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

func TestNewCatalogRejectsCrossTenantRows(t *testing.T) {
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Name: "Recibido", Slug: "received", Active: true, IsInitial: true},
		{ID: 2, CompanyID: 2, Name: "Ajeno", Slug: "foreign", Active: true},
	}

	_, err := NewCatalog(1, statuses, nil)
	if !errors.Is(err, ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
}

func TestNewCatalogRejectsCrossTenantDefinition(t *testing.T) {
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Slug: "a", Active: true, IsInitial: true},
		{ID: 2, CompanyID: 1, Slug: "b", Active: true},
	}
	defs := []*entity.WorkflowDefinition{
		{ID: 1, CompanyID: 2, FromStatusID: 1, ToStatusID: 2, Active: true},
	}

	_, err := NewCatalog(1, statuses, defs)
	if !errors.Is(err, ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
}

func TestNewCatalogRejectsDuplicateSlug(t *testing.T) {
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Slug: "received", Active: true},
		{ID: 2, CompanyID: 1, Slug: "received", Active: true},
	}

	_, err := NewCatalog(1, statuses, nil)
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestNewCatalogAllowsInactiveDuplicateSlug(t *testing.T) {
	// A soft-retired status may share a slug with its replacement.
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Slug: "received", Active: false},
		{ID: 2, CompanyID: 1, Slug: "received", Active: true},
	}

	catalog, err := NewCatalog(1, statuses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := catalog.StatusBySlug("received"); got == nil || got.ID != 2 {
		t.Errorf("expected slug lookup to resolve the active status")
	}
}

func TestNewCatalogRejectsDuplicateTransition(t *testing.T) {
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Slug: "a", Active: true},
		{ID: 2, CompanyID: 1, Slug: "b", Active: true},
	}
	defs := []*entity.WorkflowDefinition{
		{ID: 1, CompanyID: 1, FromStatusID: 1, ToStatusID: 2, Active: true},
		{ID: 2, CompanyID: 1, FromStatusID: 1, ToStatusID: 2, Active: true},
	}

	_, err := NewCatalog(1, statuses, defs)
	if !errors.Is(err, ErrDuplicateTransition) {
		t.Fatalf("expected ErrDuplicateTransition, got %v", err)
	}
}

func TestNewCatalogSkipsInactiveAndDeletedDefinitions(t *testing.T) {
	now := time.Now()
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Slug: "a", Active: true},
		{ID: 2, CompanyID: 1, Slug: "b", Active: true},
		{ID: 3, CompanyID: 1, Slug: "c", Active: true},
	}
	defs := []*entity.WorkflowDefinition{
		{ID: 1, CompanyID: 1, FromStatusID: 1, ToStatusID: 2, Active: false},
		{ID: 2, CompanyID: 1, FromStatusID: 1, ToStatusID: 3, Active: true, DeletedAt: &now},
		{ID: 3, CompanyID: 1, FromStatusID: 2, ToStatusID: 3, Active: true},
	}

	catalog, err := NewCatalog(1, statuses, defs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if catalog.Transition(1, 2) != nil {
		t.Error("inactive definition should not be loaded")
	}
	if catalog.Transition(1, 3) != nil {
		t.Error("soft-deleted definition should not be loaded")
	}
	if catalog.Transition(2, 3) == nil {
		t.Error("active definition should be loaded")
	}
}

func TestCatalogInitial(t *testing.T) {
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Slug: "received", Active: true, IsInitial: true},
		{ID: 2, CompanyID: 1, Slug: "done", Active: true, IsFinal: true},
	}

	catalog, err := NewCatalog(1, statuses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	initial, err := catalog.Initial()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if initial.ID != 1 {
		t.Errorf("expected initial status 1, got %d", initial.ID)
	}
}

func TestCatalogInitialMissing(t *testing.T) {
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Slug: "received", Active: true},
	}

	catalog, err := NewCatalog(1, statuses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := catalog.Initial(); !errors.Is(err, ErrNoInitialStatus) {
		t.Fatalf("expected ErrNoInitialStatus, got %v", err)
	}
}

func TestCatalogInitialIgnoresInactiveStatus(t *testing.T) {
	statuses := []*entity.Status{
		{ID: 1, CompanyID: 1, Slug: "old-start", Active: false, IsInitial: true},
		{ID: 2, CompanyID: 1, Slug: "start", Active: true, IsInitial: true},
	}

	catalog, err := NewCatalog(1, statuses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	initial, err := catalog.Initial()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if initial.ID != 2 {
		t.Errorf("expected active initial status 2, got %d", initial.ID)
	}
}

func TestBuilderRejectsUnknownSlug(t *testing.T) {
	b := NewBuilder(1)
	b.AddStatus(StatusSpec{Name: "Draft", Slug: "draft", Initial: true})

	err := b.AddTransition(TransitionSpec{From: "draft", To: "missing", Name: "Broken"})
	if !errors.Is(err, ErrStatusNotFound) {
		t.Fatalf("expected ErrStatusNotFound, got %v", err)
	}
}

func TestBuildBasicWorkflow(t *testing.T) {
	catalog, err := BuildBasic(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if catalog.CompanyID() != 7 {
		t.Errorf("expected company 7, got %d", catalog.CompanyID())
	}

	initial, err := catalog.Initial()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if initial.Slug != "received" {
		t.Errorf("expected initial slug received, got %q", initial.Slug)
	}

	archived := catalog.StatusBySlug("archived")
	if archived == nil || !archived.IsFinal {
		t.Error("expected archived to be the final status")
	}

	reject := catalog.Transition(
		catalog.StatusBySlug("under_review").ID,
		catalog.StatusBySlug("rejected").ID,
	)
	if reject == nil {
		t.Fatal("expected a reject transition")
	}
	if !reject.RequiresComment {
		t.Error("expected rejection to require a comment")
	}
	if reject.RolesAllowed == nil {
		t.Error("expected rejection to be role restricted")
	}
}

package service

import (
	"testing"
	"time"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

func TestDiffDocuments(t *testing.T) {
	oldAssignee, newAssignee := int64(3), int64(4)
	due := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	original := &entity.Document{
		ID: 1, StatusID: 1, Priority: entity.PriorityMedium,
		AssignedTo: &oldAssignee, Title: "Contrato",
	}

	updated := original.Clone()
	updated.StatusID = 2
	updated.AssignedTo = &newAssignee
	updated.Priority = entity.PriorityUrgent
	updated.DueAt = &due
	updated.Title = "Contrato renombrado"
	updated.Description = "nueva descripción"

	changes := DiffDocuments(original, updated)

	if len(changes) != 4 {
		t.Fatalf("expected exactly the 4 tracked fields, got %d: %v", len(changes), changes)
	}

	if c := changes[FieldStatus]; c.Old != int64(1) || c.New != int64(2) {
		t.Errorf("unexpected status change %v", c)
	}
	if c := changes[FieldAssignee]; c.Old != int64(3) || c.New != int64(4) {
		t.Errorf("unexpected assignee change %v", c)
	}
	if c := changes[FieldPriority]; c.Old != "medium" || c.New != "urgent" {
		t.Errorf("unexpected priority change %v", c)
	}
	if !changes.Has(FieldDueAt) {
		t.Error("expected due date change")
	}
}

func TestDiffDocumentsNoChanges(t *testing.T) {
	assignee := int64(3)
	due := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	original := &entity.Document{
		ID: 1, StatusID: 1, Priority: entity.PriorityMedium,
		AssignedTo: &assignee, DueAt: &due,
	}

	changes := DiffDocuments(original, original.Clone())
	if len(changes) != 0 {
		t.Errorf("expected empty change set, got %v", changes)
	}
}

func TestDiffDocumentsNilTransitions(t *testing.T) {
	assignee := int64(3)

	original := &entity.Document{ID: 1, StatusID: 1, Priority: entity.PriorityMedium}
	updated := original.Clone()
	updated.AssignedTo = &assignee

	changes := DiffDocuments(original, updated)
	if !changes.Has(FieldAssignee) {
		t.Fatal("expected nil to value transition to register")
	}
	if changes[FieldAssignee].Old != nil {
		t.Errorf("expected nil old value, got %v", changes[FieldAssignee].Old)
	}

	// And back to nil.
	cleared := updated.Clone()
	cleared.AssignedTo = nil
	changes = DiffDocuments(updated, cleared)
	if changes[FieldAssignee].New != nil {
		t.Errorf("expected nil new value, got %v", changes[FieldAssignee].New)
	}
}

func TestChangeSetProperties(t *testing.T) {
	changes := ChangeSet{
		FieldPriority: {Old: "medium", New: "high"},
	}

	props := changes.Properties()
	nested, ok := props[FieldPriority].(map[string]interface{})
	if !ok {
		t.Fatalf("expected nested map, got %T", props[FieldPriority])
	}
	if nested["old"] != "medium" || nested["new"] != "high" {
		t.Errorf("unexpected properties %v", nested)
	}
}

package service

import (
	"time"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

// Tracked field names. Only these four fields are diffed by the
// lifecycle pipeline; other edits are persisted without side effects.
const (
	FieldStatus   = "status_id"
	FieldAssignee = "assigned_to"
	FieldPriority = "priority"
	FieldDueAt    = "due_at"
)

// Change records the old and new value of one tracked field.
type Change struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// ChangeSet maps tracked field names to their staged changes.
type ChangeSet map[string]Change

// Has reports whether the field changed.
func (c ChangeSet) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// DiffDocuments stages the changes between an original document and its
// updated form for exactly the four tracked fields.
func DiffDocuments(original, updated *entity.Document) ChangeSet {
	changes := make(ChangeSet)

	if original.StatusID != updated.StatusID {
		changes[FieldStatus] = Change{Old: original.StatusID, New: updated.StatusID}
	}
	if !equalInt64Ptr(original.AssignedTo, updated.AssignedTo) {
		changes[FieldAssignee] = Change{Old: int64PtrValue(original.AssignedTo), New: int64PtrValue(updated.AssignedTo)}
	}
	if original.Priority != updated.Priority {
		changes[FieldPriority] = Change{Old: string(original.Priority), New: string(updated.Priority)}
	}
	if !equalTimePtr(original.DueAt, updated.DueAt) {
		changes[FieldDueAt] = Change{Old: timePtrValue(original.DueAt), New: timePtrValue(updated.DueAt)}
	}

	return changes
}

// Properties renders the change set as an audit property map.
func (c ChangeSet) Properties() map[string]interface{} {
	props := make(map[string]interface{}, len(c))
	for field, change := range c {
		props[field] = map[string]interface{}{"old": change.Old, "new": change.New}
	}
	return props
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func int64PtrValue(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func timePtrValue(p *time.Time) interface{} {
	if p == nil {
		return nil
	}
	return p.UTC().Format(time.RFC3339)
}

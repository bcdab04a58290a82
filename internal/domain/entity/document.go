package entity

import "time"

// Document is the subject entity moved through a tenant's workflow.
// StatusID always references a Status row of the same company.
// DocumentNumber is assigned exactly once at creation and never mutated.
type Document struct {
	ID             int64      `json:"id"`
	CompanyID      int64      `json:"company_id"`
	BranchID       *int64     `json:"branch_id,omitempty"`
	DepartmentID   *int64     `json:"department_id,omitempty"`
	StatusID       int64      `json:"status_id"`
	Priority       Priority   `json:"priority"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignedTo     *int64     `json:"assigned_to,omitempty"`
	CreatedBy      int64      `json:"created_by"`
	DueAt          *time.Time `json:"due_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	DocumentNumber string     `json:"document_number"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Clone returns a shallow copy with pointer fields duplicated, so the
// lifecycle pipeline can diff an updated document against its original.
func (d *Document) Clone() *Document {
	c := *d
	if d.BranchID != nil {
		v := *d.BranchID
		c.BranchID = &v
	}
	if d.DepartmentID != nil {
		v := *d.DepartmentID
		c.DepartmentID = &v
	}
	if d.AssignedTo != nil {
		v := *d.AssignedTo
		c.AssignedTo = &v
	}
	if d.DueAt != nil {
		v := *d.DueAt
		c.DueAt = &v
	}
	if d.CompletedAt != nil {
		v := *d.CompletedAt
		c.CompletedAt = &v
	}
	if d.DeletedAt != nil {
		v := *d.DeletedAt
		c.DeletedAt = &v
	}
	return &c
}

// DocumentVersion is an immutable snapshot of document content, created
// on every content-changing edit. Versions are append-only.
type DocumentVersion struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	Content    string    `json:"content"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

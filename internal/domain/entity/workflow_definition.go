package entity

import "time"

// WorkflowDefinition is a directed, role-gated edge between two statuses
// of the same tenant. At most one definition exists per ordered
// (company, from, to) status pair. Definitions are created by
// administrators and never mutated by the engine; they are soft-deletable.
type WorkflowDefinition struct {
	ID           int64      `json:"id"`
	CompanyID    int64      `json:"company_id"`
	FromStatusID int64      `json:"from_status_id"`
	ToStatusID   int64      `json:"to_status_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	// RolesAllowed restricts who may execute the transition.
	// nil means any role.
	RolesAllowed     []Role     `json:"roles_allowed,omitempty"`
	RequiresApproval bool       `json:"requires_approval"`
	RequiresComment  bool       `json:"requires_comment"`
	SLAHours         *int       `json:"sla_hours,omitempty"`
	Active           bool       `json:"active"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AllowsUser reports whether the acting user may execute the transition.
// A nil RolesAllowed set means any role; super admins always pass.
func (d *WorkflowDefinition) AllowsUser(u *User) bool {
	if u.IsSuperAdmin() {
		return true
	}
	if d.RolesAllowed == nil {
		return true
	}
	return u.HasAnyRole(d.RolesAllowed)
}

// Deadline returns the due time implied by the transition's SLA hours,
// or nil if the transition carries none.
func (d *WorkflowDefinition) Deadline(from time.Time) *time.Time {
	if d.SLAHours == nil {
		return nil
	}
	due := from.Add(time.Duration(*d.SLAHours) * time.Hour)
	return &due
}

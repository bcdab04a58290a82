package entity

import "time"

// User is an acting user within a company. Role assignments are scoped
// to the user's company; department and branch refine where supervisor
// and branch-admin roles apply.
type User struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	BranchID     *int64    `json:"branch_id,omitempty"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Roles        []Role    `json:"roles"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole returns true if the user holds the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole returns true if the user holds at least one of the roles.
func (u *User) HasAnyRole(roles []Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsSuperAdmin returns true if the user bypasses authorization checks.
func (u *User) IsSuperAdmin() bool {
	return u.HasRole(RoleSuperAdmin)
}

// Can returns true if any of the user's roles grants the permission.
// Super admins pass every permission check.
func (u *User) Can(p Permission) bool {
	if u.IsSuperAdmin() {
		return true
	}
	for _, r := range u.Roles {
		if r.Has(p) {
			return true
		}
	}
	return false
}

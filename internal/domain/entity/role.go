package entity

// Role is one of the fixed roles a user can hold within a company.
// The hierarchy is closed: there are exactly seven roles, each with a
// static permission set. RoleSuperAdmin bypasses all authorization checks.
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleAdmin         Role = "admin"
	RoleBranchAdmin   Role = "branch_admin"
	RoleOfficeManager Role = "office_manager"
	RoleSupervisor    Role = "supervisor"
	RoleRegularUser   Role = "regular_user"
	RoleGuest         Role = "guest"
)

var validRoles = map[Role]bool{
	RoleSuperAdmin:    true,
	RoleAdmin:         true,
	RoleBranchAdmin:   true,
	RoleOfficeManager: true,
	RoleSupervisor:    true,
	RoleRegularUser:   true,
	RoleGuest:         true,
}

// IsValid returns true if the role is one of the defined variants.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Permission names a capability granted by a role.
type Permission string

const (
	PermViewDocuments   Permission = "documents.view"
	PermCreateDocuments Permission = "documents.create"
	PermEditDocuments   Permission = "documents.edit"
	PermDeleteDocuments Permission = "documents.delete"
	PermManageWorkflow  Permission = "workflow.manage"
	PermManageUsers     Permission = "users.manage"
	PermViewActivity    Permission = "activity.view"
	PermRunAi           Permission = "ai.run"
)

// Permissions returns the static permission set for the role.
// RoleSuperAdmin is handled by callers as an unconditional bypass and
// therefore returns the full set.
func (r Role) Permissions() []Permission {
	switch r {
	case RoleSuperAdmin, RoleAdmin:
		return []Permission{
			PermViewDocuments, PermCreateDocuments, PermEditDocuments,
			PermDeleteDocuments, PermManageWorkflow, PermManageUsers,
			PermViewActivity, PermRunAi,
		}
	case RoleBranchAdmin:
		return []Permission{
			PermViewDocuments, PermCreateDocuments, PermEditDocuments,
			PermDeleteDocuments, PermManageWorkflow, PermViewActivity, PermRunAi,
		}
	case RoleOfficeManager:
		return []Permission{
			PermViewDocuments, PermCreateDocuments, PermEditDocuments,
			PermViewActivity, PermRunAi,
		}
	case RoleSupervisor:
		return []Permission{
			PermViewDocuments, PermCreateDocuments, PermEditDocuments,
			PermViewActivity,
		}
	case RoleRegularUser:
		return []Permission{PermViewDocuments, PermCreateDocuments}
	case RoleGuest:
		return []Permission{PermViewDocuments}
	default:
		return nil
	}
}

// Has returns true if the role grants the permission.
func (r Role) Has(p Permission) bool {
	for _, granted := range r.Permissions() {
		if granted == p {
			return true
		}
	}
	return false
}

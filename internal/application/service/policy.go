package service

import (
	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
)

// documentPolicy implements the document view-authorization contract:
// same-tenant check first, then role-based rules with department and
// branch scoping.
type documentPolicy struct{}

// NewDocumentPolicy returns the default document authorization policy.
func NewDocumentPolicy() port.DocumentPolicy {
	return &documentPolicy{}
}

// CanView decides whether the user may view the document.
// Rules, in order: cross-tenant access is never allowed (super admins
// excepted); admins see everything in their company; branch admins see
// their branch; supervisors see their department; everyone sees
// documents they created or are assigned to; office managers see all
// company documents; otherwise access requires the view permission and
// an unscoped document.
func (p *documentPolicy) CanView(user *entity.User, doc *entity.Document) bool {
	if user.IsSuperAdmin() {
		return true
	}
	if user.CompanyID != doc.CompanyID {
		return false
	}
	if user.HasRole(entity.RoleAdmin) || user.HasRole(entity.RoleOfficeManager) {
		return true
	}
	if user.HasRole(entity.RoleBranchAdmin) {
		if doc.BranchID == nil || user.BranchID == nil {
			return true
		}
		return *doc.BranchID == *user.BranchID
	}
	if doc.CreatedBy == user.ID {
		return true
	}
	if doc.AssignedTo != nil && *doc.AssignedTo == user.ID {
		return true
	}
	if user.HasRole(entity.RoleSupervisor) && doc.DepartmentID != nil && user.DepartmentID != nil {
		return *doc.DepartmentID == *user.DepartmentID
	}
	return user.Can(entity.PermViewDocuments) && doc.DepartmentID == nil && doc.BranchID == nil
}

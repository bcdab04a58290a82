package service

import (
	"testing"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

func TestDocumentPolicyCanView(t *testing.T) {
	branch1, branch2 := int64(1), int64(2)
	dept1, dept2 := int64(10), int64(20)

	policy := NewDocumentPolicy()

	tests := []struct {
		name string
		user *entity.User
		doc  *entity.Document
		want bool
	}{
		{
			name: "super admin crosses tenants",
			user: &entity.User{ID: 1, CompanyID: 2, Roles: []entity.Role{entity.RoleSuperAdmin}},
			doc:  &entity.Document{CompanyID: 1},
			want: true,
		},
		{
			name: "cross tenant denied",
			user: &entity.User{ID: 1, CompanyID: 2, Roles: []entity.Role{entity.RoleAdmin}},
			doc:  &entity.Document{CompanyID: 1},
			want: false,
		},
		{
			name: "admin sees everything in company",
			user: &entity.User{ID: 1, CompanyID: 1, Roles: []entity.Role{entity.RoleAdmin}},
			doc:  &entity.Document{CompanyID: 1, BranchID: &branch2, DepartmentID: &dept2},
			want: true,
		},
		{
			name: "office manager sees all company documents",
			user: &entity.User{ID: 1, CompanyID: 1, Roles: []entity.Role{entity.RoleOfficeManager}},
			doc:  &entity.Document{CompanyID: 1, DepartmentID: &dept2},
			want: true,
		},
		{
			name: "branch admin sees own branch",
			user: &entity.User{ID: 1, CompanyID: 1, BranchID: &branch1, Roles: []entity.Role{entity.RoleBranchAdmin}},
			doc:  &entity.Document{CompanyID: 1, BranchID: &branch1},
			want: true,
		},
		{
			name: "branch admin denied other branch",
			user: &entity.User{ID: 1, CompanyID: 1, BranchID: &branch1, Roles: []entity.Role{entity.RoleBranchAdmin}},
			doc:  &entity.Document{CompanyID: 1, BranchID: &branch2},
			want: false,
		},
		{
			name: "creator always sees own document",
			user: &entity.User{ID: 7, CompanyID: 1, Roles: []entity.Role{entity.RoleRegularUser}},
			doc:  &entity.Document{CompanyID: 1, CreatedBy: 7, DepartmentID: &dept2},
			want: true,
		},
		{
			name: "assignee always sees assigned document",
			user: &entity.User{ID: 7, CompanyID: 1, Roles: []entity.Role{entity.RoleGuest}},
			doc:  &entity.Document{CompanyID: 1, CreatedBy: 2, AssignedTo: ptrInt64(7), DepartmentID: &dept2},
			want: true,
		},
		{
			name: "supervisor sees own department",
			user: &entity.User{ID: 7, CompanyID: 1, DepartmentID: &dept1, Roles: []entity.Role{entity.RoleSupervisor}},
			doc:  &entity.Document{CompanyID: 1, CreatedBy: 2, DepartmentID: &dept1},
			want: true,
		},
		{
			name: "supervisor denied other department",
			user: &entity.User{ID: 7, CompanyID: 1, DepartmentID: &dept1, Roles: []entity.Role{entity.RoleSupervisor}},
			doc:  &entity.Document{CompanyID: 1, CreatedBy: 2, DepartmentID: &dept2},
			want: false,
		},
		{
			name: "regular user sees unscoped documents",
			user: &entity.User{ID: 7, CompanyID: 1, Roles: []entity.Role{entity.RoleRegularUser}},
			doc:  &entity.Document{CompanyID: 1, CreatedBy: 2},
			want: true,
		},
		{
			name: "regular user denied scoped document",
			user: &entity.User{ID: 7, CompanyID: 1, Roles: []entity.Role{entity.RoleRegularUser}},
			doc:  &entity.Document{CompanyID: 1, CreatedBy: 2, DepartmentID: &dept1},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanView(tt.user, tt.doc); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func ptrInt64(v int64) *int64 { return &v }

package workflow

import (
	"fmt"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

// StatusSpec describes a status to create for a tenant.
type StatusSpec struct {
	Name    string
	Slug    string
	Color   string
	Initial bool
	Final   bool
}

// TransitionSpec describes a transition to create, referencing statuses
// by slug so the spec is independent of assigned ids.
type TransitionSpec struct {
	From             string
	To               string
	Name             string
	Roles            []entity.Role
	RequiresApproval bool
	RequiresComment  bool
	SLAHours         *int
}

func hours(h int) *int { return &h }

// BasicWorkflowSpec returns the standard document workflow installed for
// new tenants: received -> in_process -> under_review -> approved/rejected
// -> archived. Review decisions are restricted to managerial roles and
// rejections always demand a comment.
func BasicWorkflowSpec() ([]StatusSpec, []TransitionSpec) {
	statuses := []StatusSpec{
		{Name: "Recibido", Slug: "received", Color: "blue", Initial: true},
		{Name: "En Proceso", Slug: "in_process", Color: "yellow"},
		{Name: "En Revisión", Slug: "under_review", Color: "orange"},
		{Name: "Aprobado", Slug: "approved", Color: "green"},
		{Name: "Rechazado", Slug: "rejected", Color: "red"},
		{Name: "Archivado", Slug: "archived", Color: "gray", Final: true},
	}

	reviewRoles := []entity.Role{entity.RoleOfficeManager, entity.RoleBranchAdmin, entity.RoleAdmin}

	transitions := []TransitionSpec{
		{From: "received", To: "in_process", Name: "Iniciar trámite", SLAHours: hours(24)},
		{From: "in_process", To: "under_review", Name: "Enviar a revisión", SLAHours: hours(48)},
		{From: "under_review", To: "approved", Name: "Aprobar", Roles: reviewRoles, SLAHours: hours(24)},
		{From: "under_review", To: "rejected", Name: "Rechazar", Roles: reviewRoles, RequiresComment: true, SLAHours: hours(24)},
		{From: "approved", To: "archived", Name: "Archivar", Roles: reviewRoles},
		{From: "rejected", To: "archived", Name: "Archivar", Roles: reviewRoles},
	}

	return statuses, transitions
}

// Builder assembles an in-memory catalog from specs, assigning sequential
// ids. Persistence-backed creation resolves the same specs through the
// catalog service instead; the builder exists for engine construction in
// tests and for previewing a workflow before installing it.
type Builder struct {
	companyID int64
	statuses  []*entity.Status
	defs      []*entity.WorkflowDefinition
	bySlug    map[string]*entity.Status
	nextID    int64
}

// NewBuilder creates a builder for the given tenant.
func NewBuilder(companyID int64) *Builder {
	return &Builder{
		companyID: companyID,
		bySlug:    make(map[string]*entity.Status),
		nextID:    1,
	}
}

// AddStatus registers a status node.
func (b *Builder) AddStatus(spec StatusSpec) *Builder {
	s := &entity.Status{
		ID:        b.nextID,
		CompanyID: b.companyID,
		Name:      spec.Name,
		Slug:      spec.Slug,
		Color:     spec.Color,
		IsInitial: spec.Initial,
		IsFinal:   spec.Final,
		Active:    true,
	}
	b.nextID++
	b.statuses = append(b.statuses, s)
	b.bySlug[spec.Slug] = s
	return b
}

// AddTransition registers a directed edge between two previously added
// statuses.
func (b *Builder) AddTransition(spec TransitionSpec) error {
	from, ok := b.bySlug[spec.From]
	if !ok {
		return fmt.Errorf("%w: slug %q", ErrStatusNotFound, spec.From)
	}
	to, ok := b.bySlug[spec.To]
	if !ok {
		return fmt.Errorf("%w: slug %q", ErrStatusNotFound, spec.To)
	}

	b.defs = append(b.defs, &entity.WorkflowDefinition{
		ID:               b.nextID,
		CompanyID:        b.companyID,
		FromStatusID:     from.ID,
		ToStatusID:       to.ID,
		Name:             spec.Name,
		RolesAllowed:     spec.Roles,
		RequiresApproval: spec.RequiresApproval,
		RequiresComment:  spec.RequiresComment,
		SLAHours:         spec.SLAHours,
		Active:           true,
	})
	b.nextID++
	return nil
}

// Build assembles the catalog from the registered statuses and edges.
func (b *Builder) Build() (*Catalog, error) {
	return NewCatalog(b.companyID, b.statuses, b.defs)
}

// BuildBasic constructs the standard workflow catalog for a tenant.
func BuildBasic(companyID int64) (*Catalog, error) {
	statuses, transitions := BasicWorkflowSpec()
	b := NewBuilder(companyID)
	for _, s := range statuses {
		b.AddStatus(s)
	}
	for _, t := range transitions {
		if err := b.AddTransition(t); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

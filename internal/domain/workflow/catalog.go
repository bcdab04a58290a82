package workflow

import (
	"fmt"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

// edgeKey identifies a directed transition between two statuses.
type edgeKey struct {
	from int64
	to   int64
}

// Catalog is one tenant's workflow graph loaded into memory: the set of
// statuses (nodes) and workflow definitions (edges). A catalog is built
// once per transition evaluation and treated as an immutable snapshot;
// concurrent catalog edits are not visible mid-evaluation.
type Catalog struct {
	companyID int64
	statuses  map[int64]*entity.Status
	bySlug    map[string]*entity.Status
	edges     map[edgeKey]*entity.WorkflowDefinition
	initial   *entity.Status
}

// NewCatalog builds a catalog from a tenant's statuses and definitions.
// Inactive and soft-deleted definitions are skipped; inactive statuses
// are kept for lookups (a document may still sit on one) but never used
// as the initial status.
func NewCatalog(companyID int64, statuses []*entity.Status, defs []*entity.WorkflowDefinition) (*Catalog, error) {
	c := &Catalog{
		companyID: companyID,
		statuses:  make(map[int64]*entity.Status, len(statuses)),
		bySlug:    make(map[string]*entity.Status, len(statuses)),
		edges:     make(map[edgeKey]*entity.WorkflowDefinition, len(defs)),
	}

	for _, s := range statuses {
		if s.CompanyID != companyID {
			return nil, fmt.Errorf("%w: status %d (company %d)", ErrTenantMismatch, s.ID, s.CompanyID)
		}
		if s.Active {
			if _, dup := c.bySlug[s.Slug]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateSlug, s.Slug)
			}
			c.bySlug[s.Slug] = s
			if s.IsInitial && c.initial == nil {
				c.initial = s
			}
		}
		c.statuses[s.ID] = s
	}

	for _, d := range defs {
		if d.CompanyID != companyID {
			return nil, fmt.Errorf("%w: definition %d (company %d)", ErrTenantMismatch, d.ID, d.CompanyID)
		}
		if !d.Active || d.DeletedAt != nil {
			continue
		}
		key := edgeKey{from: d.FromStatusID, to: d.ToStatusID}
		if _, dup := c.edges[key]; dup {
			return nil, fmt.Errorf("%w: %d -> %d", ErrDuplicateTransition, d.FromStatusID, d.ToStatusID)
		}
		c.edges[key] = d
	}

	return c, nil
}

// CompanyID returns the tenant the catalog belongs to.
func (c *Catalog) CompanyID() int64 {
	return c.companyID
}

// Status returns the status with the given id, or nil if unknown to the
// catalog.
func (c *Catalog) Status(id int64) *entity.Status {
	return c.statuses[id]
}

// StatusBySlug returns the active status with the given slug, or nil.
func (c *Catalog) StatusBySlug(slug string) *entity.Status {
	return c.bySlug[slug]
}

// Initial returns the tenant's initial status, assigned at document
// creation when none is specified.
func (c *Catalog) Initial() (*entity.Status, error) {
	if c.initial == nil {
		return nil, ErrNoInitialStatus
	}
	return c.initial, nil
}

// Transition returns the active definition connecting from to, or nil
// when the edge is not modeled.
func (c *Catalog) Transition(from, to int64) *entity.WorkflowDefinition {
	return c.edges[edgeKey{from: from, to: to}]
}

// OutgoingFrom returns all active definitions leaving the given status.
func (c *Catalog) OutgoingFrom(statusID int64) []*entity.WorkflowDefinition {
	var out []*entity.WorkflowDefinition
	for key, d := range c.edges {
		if key.from == statusID {
			out = append(out, d)
		}
	}
	return out
}

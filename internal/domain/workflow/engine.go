package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

// TransitionResult describes the outcome of a successful (or pending)
// transition evaluation. The engine never persists anything; the caller
// applies NewStatusID, DueAt and CompletedAt to the document.
type TransitionResult struct {
	Definition   *entity.WorkflowDefinition
	FromStatus   *entity.Status
	ToStatus     *entity.Status
	NewStatusID  int64
	// PendingApproval is set when the transition requires approval: the
	// document must not move until the approval is granted.
	PendingApproval bool
	// Completed is set when the target status is final.
	Completed bool
	// DueAt carries the SLA deadline computed from the transition's
	// sla_hours, nil when the edge has none.
	DueAt   *time.Time
	Comment string
}

// Engine validates and executes requested transitions against a loaded
// catalog. It is a pure decision function: the only lookups it performs
// are against the in-memory catalog, so it has no partial-failure state.
type Engine struct {
	catalog *Catalog
	now     func() time.Time
}

// NewEngine creates an engine over a tenant's catalog snapshot.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{
		catalog: catalog,
		now:     time.Now,
	}
}

// WithClock overrides the engine's time source. Used by tests and by
// callers that need deterministic deadline computation.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// AttemptTransition validates the requested transition fail-fast: the
// first failing rule wins and is reported as a typed error so the caller
// can render a rule-specific message. Validation order: target status
// exists in the tenant, an active definition models the edge, the acting
// user holds an allowed role (super admin always passes), and a comment
// is present when the definition demands one. When requires_approval is
// set the result is marked pending instead of being rejected.
func (e *Engine) AttemptTransition(doc *entity.Document, targetStatusID int64, actor *entity.User, comment string) (*TransitionResult, error) {
	target := e.catalog.Status(targetStatusID)
	if target == nil || target.CompanyID != doc.CompanyID {
		return nil, fmt.Errorf("%w: status %d in company %d", ErrStatusNotFound, targetStatusID, doc.CompanyID)
	}

	def := e.catalog.Transition(doc.StatusID, targetStatusID)
	if def == nil {
		return nil, fmt.Errorf("%w: %d -> %d", ErrTransitionNotDefined, doc.StatusID, targetStatusID)
	}

	if !def.AllowsUser(actor) {
		return nil, fmt.Errorf("%w: user %d on transition %q", ErrRoleNotAuthorized, actor.ID, def.Name)
	}

	if def.RequiresComment && strings.TrimSpace(comment) == "" {
		return nil, fmt.Errorf("%w: transition %q", ErrCommentRequired, def.Name)
	}

	result := &TransitionResult{
		Definition:  def,
		FromStatus:  e.catalog.Status(doc.StatusID),
		ToStatus:    target,
		NewStatusID: target.ID,
		Completed:   target.IsFinal,
		DueAt:       def.Deadline(e.now()),
		Comment:     strings.TrimSpace(comment),
	}

	if def.RequiresApproval {
		result.PendingApproval = true
	}

	return result, nil
}

// PermittedTransitions returns the definitions the acting user could
// execute from the document's current status.
func (e *Engine) PermittedTransitions(doc *entity.Document, actor *entity.User) []*entity.WorkflowDefinition {
	var permitted []*entity.WorkflowDefinition
	for _, def := range e.catalog.OutgoingFrom(doc.StatusID) {
		if def.AllowsUser(actor) {
			permitted = append(permitted, def)
		}
	}
	return permitted
}

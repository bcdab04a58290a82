package workflow

import "errors"

var (
	// ErrStatusNotFound is returned when the target status does not exist
	// or belongs to a different company than the document.
	ErrStatusNotFound = errors.New("status not found")

	// ErrTransitionNotDefined is returned when no active workflow
	// definition connects the document's status to the target status.
	// No transition is permitted unless explicitly modeled.
	ErrTransitionNotDefined = errors.New("transition not defined")

	// ErrRoleNotAuthorized is returned when the acting user holds none of
	// the roles allowed on the transition.
	ErrRoleNotAuthorized = errors.New("role not authorized for transition")

	// ErrCommentRequired is returned when the transition requires a
	// comment and none (or only whitespace) was supplied.
	ErrCommentRequired = errors.New("comment required for transition")

	// ErrTenantMismatch is returned when catalog rows from a different
	// company are supplied while building a catalog.
	ErrTenantMismatch = errors.New("catalog row belongs to another company")

	// ErrDuplicateSlug is returned when two active statuses of the same
	// company share a slug.
	ErrDuplicateSlug = errors.New("duplicate status slug")

	// ErrDuplicateTransition is returned when two definitions cover the
	// same ordered status pair.
	ErrDuplicateTransition = errors.New("duplicate transition definition")

	// ErrNoInitialStatus is returned when a catalog has no active
	// is_initial status to assign at document creation.
	ErrNoInitialStatus = errors.New("catalog has no initial status")
)

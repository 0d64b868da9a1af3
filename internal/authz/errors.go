package authz

import "errors"

// Denial and failure taxonomy. Handlers match these with errors.Is and map
// them to HTTP responses; CrossTenantAccess and NotFound must render
// identically to the caller so chain ids cannot be enumerated.
var (
	// ErrUnauthenticated means the session token is missing, expired or invalid
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInsufficientRole means the role lacks the capability entirely
	ErrInsufficientRole = errors.New("insufficient role")

	// ErrCrossTenantAccess means the role has the capability but the target
	// sits in another chain. Logged as a security event, rendered as not found.
	ErrCrossTenantAccess = errors.New("cross-tenant access")

	// ErrInactiveTenant means the owning business account is deactivated
	ErrInactiveTenant = errors.New("tenant account inactive")

	// ErrDuplicateSubmission means the idempotency guard rejected an exact
	// resubmission within the same scope
	ErrDuplicateSubmission = errors.New("duplicate submission")

	// ErrNotFound covers both true absence and out-of-scope reads
	ErrNotFound = errors.New("not found")

	// ErrBrokenChain means a scoped entity could not be resolved to exactly
	// one ownership chain. This is a data invariant violation, not a denial.
	ErrBrokenChain = errors.New("broken ownership chain")
)

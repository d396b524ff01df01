package scope

import "errors"

// Sentinel errors for tree operations. Both signal caller bugs: nothing in
// this package retries.
var (
	// ErrPrecondition marks a violated caller contract: duplicate child or
	// service names, seed rebinding, malformed names.
	ErrPrecondition = errors.New("scope: precondition violated")
	// ErrDestroyed marks use of a scope after Destroy.
	ErrDestroyed = errors.New("scope: already destroyed")
)

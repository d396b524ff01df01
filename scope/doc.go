// Package scope implements a tree of named scopes. Each scope owns its
// children, a set of named services visible to itself and every descendant,
// and a set of lifecycle registrants that are told when the scope goes away.
//
// # Building a tree
//
//	root, err := scope.BuildRoot("app").
//	    WithService("clock", clock).
//	    Build()
//	detail, err := root.BuildChild("detail").
//	    WithService("repo", repo).
//	    Build()
//
// Paths join names with Separator: the scope above has path "app:detail".
// Names must be non-blank and must not contain Separator.
//
// # Services
//
// Service walks from a scope to the root and returns the first binding it
// finds. A missing service is a normal outcome and is reported as absent, not
// as an error. Service providers are opaque values; the tree never inspects
// them, except that a provider implementing Registrant is registered on the
// scope it was bound to.
//
// # Lifecycle
//
// Register adds a Registrant and calls its OnEnter hook before returning.
// Destroy is idempotent. The first call marks the scope destroyed, calls
// OnExit on every registrant, detaches the scope from its parent and then
// destroys the children. Registrants of a scope therefore exit before the
// registrants of its descendants.
//
// Every operation on a destroyed scope fails with ErrDestroyed, except
// Destroy itself and the identity queries (Name, Path, Depth, Parent,
// IsDestroyed) which stay valid for bookkeeping.
//
// # Concurrency
//
// A tree is not safe for concurrent use. Callbacks may re-enter the tree
// synchronously; collections are snapshotted before callbacks run.
package scope

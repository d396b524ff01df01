// Package persist coordinates load and save callbacks for persistable
// participants (Bundlers) spread over a scope tree.
//
// # Setup
//
// A Coordinator is installed as a service on a scope, normally the root:
//
//	coord := persist.NewCoordinator()
//	root, err := scope.BuildRoot("app").
//	    WithService(persist.ServiceName, coord).
//	    Build()
//
// Because the Coordinator is a scope.Registrant, building the scope binds the
// coordinator to it. Destroying that scope destroys the coordinator.
//
// # Registration
//
//	err := persist.Register(detail, editor) // editor implements Bundler
//
// Register validates the key, registers the bundler on the scope (OnEnter),
// and loads it before returning with the slice of the current state
// container that belongs to it, or nil when there is none. Registering the
// same bundler again only schedules a fresh load.
//
// # Restore and save
//
// Restore installs a new state container and reloads every registered
// bundler. Loads run in scope order: shallower scopes first, then by path, so
// a participant is never loaded before the participants of its ancestors.
//
// Save calls OnSave exactly once on every registered bundler and returns the
// resulting container. Bundlers of a scope destroyed during the sweep are
// skipped. Registering while a save is running is a precondition violation.
//
// # Container layout
//
// The container holds one nested bundle per scope, keyed by the scope path
// relative to the coordinator's scope (see Service.ScopeKey), and inside it
// one nested bundle per participant key:
//
//	root bundle
//	└── "app:detail"      scope slice
//	    └── "editor"      participant slice passed to OnLoad/OnSave
//
// DerivedKey joins the two with scope.Separator for diagnostics.
//
// # Re-entrancy
//
// Callbacks may register bundlers, build scopes, or destroy scopes while a
// sweep runs. Registrations during a load sweep join the pending set and are
// loaded before the sweep returns. Scopes destroyed during a sweep simply
// stop receiving callbacks. Nothing here is safe for concurrent use.
package persist

package scope

import "github.com/tailored-agentic-units/scopes/observability"

// Scope event types emitted by the tree.
const (
	EventScopeCreate     observability.EventType = "scope.create"
	EventScopeDestroy    observability.EventType = "scope.destroy"
	EventRegistrantEnter observability.EventType = "scope.registrant.enter"
	EventRegistrantExit  observability.EventType = "scope.registrant.exit"
)

const eventSource = "scope"

package persist

import "github.com/tailored-agentic-units/scopes/observability"

// Persistence event types.
const (
	EventRegister      observability.EventType = "persist.register"
	EventLoad          observability.EventType = "persist.load"
	EventSave          observability.EventType = "persist.save"
	EventRestore       observability.EventType = "persist.restore"
	EventSweepComplete observability.EventType = "persist.sweep.complete"
	EventSaveComplete  observability.EventType = "persist.save.complete"
	EventServiceExit   observability.EventType = "persist.service.exit"
	EventDestroyed     observability.EventType = "persist.destroyed"
)

const eventSource = "persist"

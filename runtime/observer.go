package runtime

import "github.com/tailored-agentic-units/scopes/observability"

// Runtime event types.
const (
	EventStart      observability.EventType = "runtime.start"
	EventRestore    observability.EventType = "runtime.restore"
	EventCheckpoint observability.EventType = "runtime.checkpoint"
	EventShutdown   observability.EventType = "runtime.shutdown"
	EventError      observability.EventType = "runtime.error"
)

const eventSource = "runtime"

// Package observability carries lifecycle and persistence events out of the
// scope tree and the persistence coordinator. Level values align with
// OpenTelemetry SeverityNumbers so events can be forwarded to an OTel
// collector without translation.
//
// Every package that emits events declares its own EventType constants
// ("scope.create", "persist.load", ...). Observers must not call back into
// the tree: events are delivered synchronously from inside sweeps.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Level is an event severity. The values are OTel SeverityNumbers.
type Level int

const (
	LevelVerbose Level = 5
	LevelInfo    Level = 9
	LevelError   Level = 17
)

var levels = map[Level]struct {
	text string
	slog slog.Level
}{
	LevelVerbose: {"DEBUG", slog.LevelDebug},
	LevelInfo:    {"INFO", slog.LevelInfo},
	LevelError:   {"ERROR", slog.LevelError},
}

func (l Level) String() string {
	if v, ok := levels[l]; ok {
		return v.text
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// SlogLevel returns the slog level events of this severity are logged at.
// Unknown levels log at error.
func (l Level) SlogLevel() slog.Level {
	if v, ok := levels[l]; ok {
		return v.slog
	}
	return slog.LevelError
}

// EventType identifies the kind of event.
type EventType string

// Event is an observability event. Fields map to OTel LogRecord fields:
// Type→EventName, Level→SeverityNumber, Timestamp→Timestamp,
// Source→InstrumentationScope, Data→Attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events for logging, tracing, or metrics.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit stamps and delivers an event to o. A nil observer drops the event.
//
// The scope tree and the coordinator have no request context of their own,
// so Emit always delivers with context.Background().
func Emit(o Observer, level Level, eventType EventType, source string, data map[string]any) {
	if o == nil {
		return
	}
	o.OnEvent(context.Background(), Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}

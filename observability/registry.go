package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownObserver is returned by GetObserver for unregistered names.
var ErrUnknownObserver = errors.New("unknown observer")

// Names of the observers registered at startup.
const (
	NoOp = "noop"
	Slog = "slog"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Observer{
		NoOp: NoOpObserver{},
		Slog: NewSlogObserver(slog.Default()),
	}
)

// GetObserver looks up a named observer. The empty name selects NoOp so a
// zero-value config stays quiet.
func GetObserver(name string) (Observer, error) {
	if name == "" {
		name = NoOp
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	if obs, ok := registry[name]; ok {
		return obs, nil
	}
	return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownObserver, name, strings.Join(namesLocked(), ", "))
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, observer Observer) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[name] = observer
}

// Names returns the registered observer names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

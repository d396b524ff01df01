package persist

import (
	"fmt"
	"slices"

	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/observability"
	"github.com/tailored-agentic-units/scopes/scope"
)

// Service is the persistence service of one scope. It holds the bundlers
// registered on that scope and the ones still waiting for a load.
type Service struct {
	coord    *Coordinator
	node     *scope.Node
	path     string
	depth    int
	scopeKey string

	order  []*registration
	byKey  map[string]*registration
	toLoad []*registration

	destroyed bool
}

type registration struct {
	bundler    Bundler
	key        string
	pending    bool
	removed    bool
	loads      int
	saves      int
	lastLoaded *bundle.Bundle
	lastSaved  *bundle.Bundle
}

// Participant is a diagnostic view of one registered bundler.
type Participant struct {
	Key        string
	DerivedKey string
	Pending    bool
	Loads      int
	Saves      int
	LastLoaded *bundle.Bundle
	LastSaved  *bundle.Bundle
}

func newService(c *Coordinator, n *scope.Node) *Service {
	return &Service{
		coord:    c,
		node:     n,
		path:     n.Path(),
		depth:    n.Depth(),
		scopeKey: c.scopeKey(n),
		byKey:    make(map[string]*registration),
	}
}

// DerivedKey joins a scope key and a participant key.
func DerivedKey(scopeKey, key string) string {
	return scopeKey + scope.Separator + key
}

// Scope returns the scope this service belongs to.
func (s *Service) Scope() *scope.Node {
	return s.node
}

// Coordinator returns the owning coordinator.
func (s *Service) Coordinator() *Coordinator {
	return s.coord
}

// ScopeKey returns the scope path relative to the coordinator's scope,
// starting with that scope's name. It keys the scope slice of the container.
func (s *Service) ScopeKey() string {
	return s.scopeKey
}

// DerivedKey returns the derived key of a participant key on this scope.
func (s *Service) DerivedKey(key string) string {
	return DerivedKey(s.scopeKey, key)
}

// IsDestroyed reports whether the service's scope has been destroyed.
func (s *Service) IsDestroyed() bool {
	return s.destroyed
}

// Register adds b to the scope and loads it before returning, unless a load
// sweep is already running, in which case that sweep loads it.
//
// Registering the same bundler again schedules a fresh load and does nothing
// else. A different bundler with a key already in use, a malformed key, or a
// registration during a save sweep fail with ErrPrecondition and leave no
// trace.
func (s *Service) Register(b Bundler) error {
	if err := scope.CheckRegistrant(b); err != nil {
		return fmt.Errorf("%w (scope %s)", err, s.path)
	}
	if s.destroyed {
		return fmt.Errorf("%w: %s: register", ErrDestroyed, s.path)
	}
	if err := s.coord.checkLive(); err != nil {
		return err
	}

	key := b.Key()
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.coord.state == Saving {
		return fmt.Errorf("%w: cannot register %q on %s during save", ErrPrecondition, key, s.path)
	}

	reg, exists := s.byKey[key]
	if exists && reg.bundler != b {
		return fmt.Errorf("%w: key %q already registered on %s", ErrPrecondition, key, s.path)
	}

	if !exists {
		reg = &registration{bundler: b, key: key}
		s.byKey[key] = reg
		s.order = append(s.order, reg)

		if err := s.node.Register(b); err != nil {
			s.drop(reg)
			return err
		}
		if s.destroyed {
			return fmt.Errorf("%w: %s destroyed while registering %q", ErrDestroyed, s.path, key)
		}
	}

	observability.Emit(s.coord.observer, observability.LevelVerbose, EventRegister, eventSource, map[string]any{
		"scope":       s.scopeKey,
		"key":         key,
		"reregister":  exists,
		"sweep_state": s.coord.state.String(),
	})

	s.enqueue(reg)
	return s.coord.finishLoading()
}

// Participants returns a diagnostic snapshot of the registered bundlers in
// registration order.
func (s *Service) Participants() []Participant {
	out := make([]Participant, 0, len(s.order))
	for _, reg := range s.order {
		out = append(out, Participant{
			Key:        reg.key,
			DerivedKey: s.DerivedKey(reg.key),
			Pending:    reg.pending,
			Loads:      reg.loads,
			Saves:      reg.saves,
			LastLoaded: reg.lastLoaded,
			LastSaved:  reg.lastSaved,
		})
	}
	return out
}

// OnEnter is a no-op; the service is created for its scope.
func (s *Service) OnEnter(*scope.Node) {}

// OnExit drops the service and its participants from the coordinator.
func (s *Service) OnExit() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for _, reg := range s.order {
		reg.removed = true
		reg.pending = false
	}
	s.toLoad = nil
	s.coord.forget(s)

	observability.Emit(s.coord.observer, observability.LevelVerbose, EventServiceExit, eventSource, map[string]any{
		"scope":        s.scopeKey,
		"participants": len(s.order),
	})
}

func (s *Service) enqueue(reg *registration) {
	if !reg.pending {
		reg.pending = true
		s.toLoad = append(s.toLoad, reg)
	}
	s.coord.pending.add(s)
}

func (s *Service) needsLoading() bool {
	return !s.destroyed && len(s.toLoad) > 0
}

// loadOne delivers the next pending load. It reports whether a callback ran.
func (s *Service) loadOne() bool {
	for len(s.toLoad) > 0 {
		reg := s.toLoad[0]
		s.toLoad = s.toLoad[1:]
		if reg.removed || !reg.pending {
			continue
		}

		reg.pending = false
		slice := s.slice(reg.key)
		reg.loads++
		reg.lastLoaded = slice

		observability.Emit(s.coord.observer, observability.LevelVerbose, EventLoad, eventSource, map[string]any{
			"key":       s.DerivedKey(reg.key),
			"has_state": slice != nil,
		})
		reg.bundler.OnLoad(slice)
		return true
	}
	return false
}

// saveInto writes this scope's slice into root and returns how many
// participants saved.
func (s *Service) saveInto(root *bundle.Bundle) int {
	if s.destroyed {
		return 0
	}

	if len(s.order) == 0 {
		return 0
	}
	scopeSlice := bundle.New()
	root.PutChild(s.scopeKey, scopeSlice)

	saved := 0
	for _, reg := range slices.Clone(s.order) {
		if s.destroyed {
			break
		}
		if reg.removed {
			continue
		}

		slice := bundle.New()
		observability.Emit(s.coord.observer, observability.LevelVerbose, EventSave, eventSource, map[string]any{
			"key": s.DerivedKey(reg.key),
		})
		reg.bundler.OnSave(slice)
		scopeSlice.PutChild(reg.key, slice)
		reg.saves++
		reg.lastSaved = slice
		saved++
	}
	return saved
}

func (s *Service) slice(key string) *bundle.Bundle {
	scopeSlice, _ := s.coord.current.Child(s.scopeKey)
	slice, _ := scopeSlice.Child(key)
	return slice
}

// unregister removes b from the service and its scope without calling
// OnExit. It reports whether b was registered.
func (s *Service) unregister(b Bundler) bool {
	if s.destroyed {
		return false
	}
	reg, ok := s.byKey[b.Key()]
	if !ok || reg.bundler != b {
		return false
	}
	reg.pending = false
	s.drop(reg)
	s.node.Unregister(b)
	return true
}

func (s *Service) drop(reg *registration) {
	reg.removed = true
	delete(s.byKey, reg.key)
	if i := slices.Index(s.order, reg); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

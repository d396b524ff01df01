package persist

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/observability"
	"github.com/tailored-agentic-units/scopes/scope"
)

// ServiceName is the scope service name a Coordinator is bound under.
const ServiceName = "persist.Coordinator"

// SweepState is the coordinator state machine: Idle, Loading or Saving.
type SweepState int

const (
	Idle SweepState = iota
	Loading
	Saving
)

func (s SweepState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("SweepState(%d)", int(s))
	}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver overrides the observer inherited from the coordinator's scope.
func WithObserver(o observability.Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// WithBundle sets the state container participants load from before the
// first Restore. Hosts use it to seed a coordinator with a container
// recovered before the tree is built.
func WithBundle(b *bundle.Bundle) Option {
	return func(c *Coordinator) { c.current = b }
}

// Coordinator drives OnLoad and OnSave across the scopes below the scope it
// is bound to.
type Coordinator struct {
	id        string
	root      *scope.Node
	observer  observability.Observer
	state     SweepState
	current   *bundle.Bundle
	services  map[string]*Service
	pending   *pendingSet
	destroyed bool
}

// NewCoordinator creates an unbound coordinator. Bind it by installing it as
// the ServiceName service of a scope.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		id:       uuid.Must(uuid.NewV7()).String(),
		services: make(map[string]*Service),
		pending:  newPendingSet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Find returns the coordinator visible from n.
func Find(n *scope.Node) (*Coordinator, error) {
	c, ok, err := scope.ServiceAs[*Coordinator](n, ServiceName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCoordinator, n.Path())
	}
	return c, nil
}

// For returns the persistence service of n, creating it on first use.
func For(n *scope.Node) (*Service, error) {
	c, err := Find(n)
	if err != nil {
		return nil, err
	}
	return c.ServiceFor(n)
}

// Register registers b on n through the coordinator visible from n.
func Register(n *scope.Node, b Bundler) error {
	svc, err := For(n)
	if err != nil {
		return err
	}
	return svc.Register(b)
}

// ID returns the coordinator instance identifier.
func (c *Coordinator) ID() string {
	return c.id
}

// Root returns the scope the coordinator is bound to, or nil.
func (c *Coordinator) Root() *scope.Node {
	return c.root
}

// State returns the current sweep state.
func (c *Coordinator) State() SweepState {
	return c.state
}

// IsDestroyed reports whether the coordinator's scope has been destroyed.
func (c *Coordinator) IsDestroyed() bool {
	return c.destroyed
}

// Current returns the state container participants load from: the last
// restored or saved container, or nil.
func (c *Coordinator) Current() *bundle.Bundle {
	return c.current
}

// OnEnter binds the coordinator to the first scope it is registered on.
func (c *Coordinator) OnEnter(n *scope.Node) {
	if c.root != nil {
		return
	}
	c.root = n
	if c.observer == nil {
		c.observer = n.Observer()
	}
}

// OnExit destroys the coordinator when its bound scope goes away.
func (c *Coordinator) OnExit() {
	if c.root == nil || !c.root.IsDestroyed() || c.destroyed {
		return
	}
	c.destroyed = true
	c.pending.clear()
	observability.Emit(c.observer, observability.LevelInfo, EventDestroyed, eventSource, map[string]any{
		"coordinator": c.id,
		"scope":       c.root.Path(),
	})
}

// ServiceFor returns the persistence service of n, creating and registering
// it on n on first use. n must be the coordinator's scope or below it. A
// service cannot be created while a save sweep runs.
func (c *Coordinator) ServiceFor(n *scope.Node) (*Service, error) {
	if err := c.checkLive(); err != nil {
		return nil, err
	}
	if n.IsDestroyed() {
		return nil, fmt.Errorf("%w: %s: persistence service", ErrDestroyed, n.Path())
	}
	if !n.IsDescendantOf(c.root) {
		return nil, fmt.Errorf("%w: %s is outside coordinator scope %s", ErrPrecondition, n.Path(), c.root.Path())
	}

	if svc, ok := c.services[n.Path()]; ok && svc.node == n {
		return svc, nil
	}
	if c.state == Saving {
		return nil, fmt.Errorf("%w: cannot add scope %s during save", ErrPrecondition, n.Path())
	}

	svc := newService(c, n)
	c.services[svc.path] = svc
	if err := n.Register(svc); err != nil {
		delete(c.services, svc.path)
		return nil, err
	}
	return svc, nil
}

// Register registers b on n. See Service.Register.
func (c *Coordinator) Register(n *scope.Node, b Bundler) error {
	svc, err := c.ServiceFor(n)
	if err != nil {
		return err
	}
	return svc.Register(b)
}

// Restore installs b as the current state container and reloads every
// registered participant, ancestors first. A nil b means "no saved state".
func (c *Coordinator) Restore(b *bundle.Bundle) error {
	if err := c.checkLive(); err != nil {
		return err
	}
	if c.state != Idle {
		return fmt.Errorf("%w: restore during %s sweep", ErrPrecondition, c.state)
	}

	c.current = b
	services := c.sortedServices()
	participants := 0
	for _, svc := range services {
		for _, reg := range svc.order {
			svc.enqueue(reg)
			participants++
		}
	}

	observability.Emit(c.observer, observability.LevelInfo, EventRestore, eventSource, map[string]any{
		"coordinator":  c.id,
		"scopes":       len(services),
		"participants": participants,
		"empty":        b.IsEmpty(),
	})

	return c.finishLoading()
}

// Save asks every registered participant to save and returns the resulting
// container, which also becomes the current one.
func (c *Coordinator) Save() (*bundle.Bundle, error) {
	if err := c.checkLive(); err != nil {
		return nil, err
	}
	if c.state != Idle {
		return nil, fmt.Errorf("%w: save during %s sweep", ErrPrecondition, c.state)
	}

	c.state = Saving
	defer func() { c.state = Idle }()

	out := bundle.New()
	saved := 0
	for _, svc := range c.sortedServices() {
		saved += svc.saveInto(out)
	}
	c.current = out

	observability.Emit(c.observer, observability.LevelInfo, EventSaveComplete, eventSource, map[string]any{
		"coordinator":  c.id,
		"participants": saved,
	})
	return out, nil
}

// ScopeKeys returns the scope keys of every live service in sweep order.
func (c *Coordinator) ScopeKeys() []string {
	services := c.sortedServices()
	keys := make([]string, len(services))
	for i, svc := range services {
		keys[i] = svc.scopeKey
	}
	return keys
}

// finishLoading drains the pending set. A call made while a load sweep is
// already running returns at once; the running drain picks the new work up.
func (c *Coordinator) finishLoading() error {
	switch c.state {
	case Saving:
		return fmt.Errorf("%w: load requested during save", ErrPrecondition)
	case Loading:
		return nil
	}

	c.state = Loading
	defer func() { c.state = Idle }()

	loads := 0
	for {
		svc, ok := c.pending.first()
		if !ok {
			break
		}
		if svc.needsLoading() {
			if svc.loadOne() {
				loads++
			}
		}
		if !svc.needsLoading() {
			c.pending.remove(svc)
		}
	}

	if loads > 0 {
		observability.Emit(c.observer, observability.LevelVerbose, EventSweepComplete, eventSource, map[string]any{
			"coordinator": c.id,
			"loads":       loads,
		})
	}
	return nil
}

func (c *Coordinator) checkLive() error {
	if c.destroyed {
		return fmt.Errorf("%w: coordinator %s", ErrDestroyed, c.id)
	}
	if c.root == nil {
		return fmt.Errorf("%w: coordinator is not bound to a scope", ErrPrecondition)
	}
	return nil
}

func (c *Coordinator) scopeKey(n *scope.Node) string {
	return c.root.Name() + strings.TrimPrefix(n.Path(), c.root.Path())
}

func (c *Coordinator) forget(s *Service) {
	if c.services[s.path] == s {
		delete(c.services, s.path)
	}
	c.pending.remove(s)
}

func (c *Coordinator) sortedServices() []*Service {
	services := make([]*Service, 0, len(c.services))
	for _, svc := range c.services {
		services = append(services, svc)
	}
	slices.SortFunc(services, compareServices)
	return services
}

package scope

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/scopes/observability"
)

// Builder collects the bindings of a scope before it is created. Errors are
// recorded as they happen and reported by Build, so calls can be chained.
type Builder struct {
	parent   *Node
	name     string
	services map[string]any
	order    []string
	seed     any
	hasSeed  bool
	observer observability.Observer
	built    bool
	err      error
}

// BuildRoot starts a root scope. Roots have no parent; their path is their
// name.
func BuildRoot(name string) *Builder {
	b := &Builder{name: name, services: map[string]any{}}
	b.err = validateName("scope", name)
	return b
}

// BuildChild starts a child of n. Build fails if name is malformed, if n
// already has a live child called name, or if n is destroyed.
func (n *Node) BuildChild(name string) *Builder {
	b := &Builder{parent: n, name: name, services: map[string]any{}}
	b.err = b.checkParent()
	return b
}

// WithService binds provider under name on the new scope. Binding the same
// name twice is a precondition violation.
func (b *Builder) WithService(name string, provider any) *Builder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(name) == "" {
		b.err = fmt.Errorf("%w: service name must not be blank", ErrPrecondition)
		return b
	}
	if provider == nil {
		b.err = fmt.Errorf("%w: service %q has a nil provider", ErrPrecondition, name)
		return b
	}
	if _, exists := b.services[name]; exists {
		b.err = fmt.Errorf("%w: service %q already bound on %q", ErrPrecondition, name, b.name)
		return b
	}

	b.services[name] = provider
	b.order = append(b.order, name)
	return b
}

// WithSeed attaches an opaque value to the new scope. It may be set once.
func (b *Builder) WithSeed(seed any) *Builder {
	if b.err != nil {
		return b
	}
	if b.hasSeed {
		b.err = fmt.Errorf("%w: seed already bound on %q", ErrPrecondition, b.name)
		return b
	}
	b.seed = seed
	b.hasSeed = true
	return b
}

// WithObserver sets the observer for the new scope and, by inheritance, its
// descendants. Without it a child uses its parent's observer and a root uses
// observability.NoOpObserver.
func (b *Builder) WithObserver(o observability.Observer) *Builder {
	b.observer = o
	return b
}

// Build creates the scope, attaches it to its parent and registers every
// service provider that implements Registrant, in binding order. If a
// provider cannot be registered the new scope is destroyed and only the
// error is returned.
func (b *Builder) Build() (*Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, fmt.Errorf("%w: builder for %q already used", ErrPrecondition, b.name)
	}
	// The parent may have changed since BuildChild.
	if err := b.checkParent(); err != nil {
		return nil, err
	}
	b.built = true

	n := &Node{
		name:       b.name,
		path:       b.name,
		children:   map[string]*Node{},
		services:   b.services,
		seed:       b.seed,
		hasSeed:    b.hasSeed,
		registered: map[Registrant]struct{}{},
		observer:   b.observer,
	}
	if p := b.parent; p != nil {
		n.parent = p
		n.path = p.path + Separator + b.name
		n.depth = p.depth + 1
		if n.observer == nil {
			n.observer = p.observer
		}
		p.children[b.name] = n
	}
	if n.observer == nil {
		n.observer = observability.NoOpObserver{}
	}

	observability.Emit(n.observer, observability.LevelInfo, EventScopeCreate, eventSource, map[string]any{
		"path":     n.path,
		"services": len(b.order),
	})

	for _, name := range b.order {
		r, ok := b.services[name].(Registrant)
		if !ok {
			continue
		}
		if err := n.Register(r); err != nil {
			n.Destroy()
			return nil, fmt.Errorf("register service %q: %w", name, err)
		}
	}

	return n, nil
}

func (b *Builder) checkParent() error {
	if b.parent == nil {
		return validateName("scope", b.name)
	}
	if b.parent.destroyed {
		return b.parent.destroyedErr("build child %q", b.name)
	}
	if err := validateName("scope", b.name); err != nil {
		return err
	}
	if _, exists := b.parent.children[b.name]; exists {
		return fmt.Errorf("%w: %s already has a child named %q", ErrPrecondition, b.parent.path, b.name)
	}
	return nil
}

package scope

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/tailored-agentic-units/scopes/observability"
)

// Separator joins scope names into paths.
const Separator = ":"

// Node is one scope in the tree.
type Node struct {
	name   string
	path   string
	depth  int
	parent *Node

	children map[string]*Node
	services map[string]any

	seed    any
	hasSeed bool

	registrants []Registrant
	registered  map[Registrant]struct{}

	destroyed bool
	observer  observability.Observer
}

// Name returns the scope name. Valid after destruction.
func (n *Node) Name() string {
	return n.name
}

// Path returns the parent path joined with the name, or the name for a root.
// The path never changes and stays valid after destruction.
func (n *Node) Path() string {
	return n.path
}

// Depth returns the number of ancestors. Roots have depth 0.
func (n *Node) Depth() int {
	return n.depth
}

// Parent returns the parent scope, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root walks up to the scope with no parent.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsDestroyed reports whether Destroy has been called on this scope or on an
// ancestor.
func (n *Node) IsDestroyed() bool {
	return n.destroyed
}

// IsDescendantOf reports whether n is other or lies below it.
func (n *Node) IsDescendantOf(other *Node) bool {
	for s := n; s != nil; s = s.parent {
		if s == other {
			return true
		}
	}
	return false
}

// Observer returns the observer events of this scope are delivered to.
func (n *Node) Observer() observability.Observer {
	return n.observer
}

// FindChild returns the live child with the given name.
func (n *Node) FindChild(name string) (*Node, bool, error) {
	if n.destroyed {
		return nil, false, n.destroyedErr("find child %q", name)
	}
	child, ok := n.children[name]
	return child, ok, nil
}

// Children returns the names of the live children in sorted order.
func (n *Node) Children() ([]string, error) {
	if n.destroyed {
		return nil, n.destroyedErr("list children")
	}
	return n.childNames(), nil
}

// Service resolves name against this scope's bindings and then its
// ancestors'. An unbound name is reported as absent.
func (n *Node) Service(name string) (any, bool, error) {
	if n.destroyed {
		return nil, false, n.destroyedErr("get service %q", name)
	}
	for s := n; s != nil; s = s.parent {
		if svc, ok := s.services[name]; ok {
			return svc, true, nil
		}
	}
	return nil, false, nil
}

// HasService reports whether name resolves from this scope. A destroyed
// scope has no services.
func (n *Node) HasService(name string) bool {
	_, ok, err := n.Service(name)
	return err == nil && ok
}

// ServiceAs resolves name and asserts the provider to T. A provider of the
// wrong type is a precondition violation.
func ServiceAs[T any](n *Node, name string) (T, bool, error) {
	var zero T

	svc, ok, err := n.Service(name)
	if err != nil || !ok {
		return zero, false, err
	}

	typed, ok := svc.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: service %q in %s is %T, want %T", ErrPrecondition, name, n.path, svc, zero)
	}
	return typed, true, nil
}

// Seed returns the opaque value bound with Builder.WithSeed.
func (n *Node) Seed() (any, bool, error) {
	if n.destroyed {
		return nil, false, n.destroyedErr("get seed")
	}
	return n.seed, n.hasSeed, nil
}

// Register adds r to this scope and calls r.OnEnter before returning.
// Registering the same registrant again does nothing.
func (n *Node) Register(r Registrant) error {
	if err := CheckRegistrant(r); err != nil {
		return fmt.Errorf("%w (scope %s)", err, n.path)
	}
	if n.destroyed {
		return n.destroyedErr("register %T", r)
	}
	if _, ok := n.registered[r]; ok {
		return nil
	}

	n.registered[r] = struct{}{}
	n.registrants = append(n.registrants, r)

	observability.Emit(n.observer, observability.LevelVerbose, EventRegistrantEnter, eventSource, map[string]any{
		"path":       n.path,
		"registrant": fmt.Sprintf("%T", r),
	})
	r.OnEnter(n)
	return nil
}

// Unregister removes r from this scope without calling OnExit. It reports
// whether r was registered.
func (n *Node) Unregister(r Registrant) bool {
	if CheckRegistrant(r) != nil || n.destroyed {
		return false
	}
	if _, ok := n.registered[r]; !ok {
		return false
	}
	delete(n.registered, r)
	n.registrants = slices.DeleteFunc(n.registrants, func(x Registrant) bool { return x == r })
	return true
}

// IsRegistered reports whether r is currently registered on this scope.
func (n *Node) IsRegistered(r Registrant) bool {
	if CheckRegistrant(r) != nil {
		return false
	}
	_, ok := n.registered[r]
	return ok
}

// Destroy tears the scope down. The first call marks it destroyed, calls
// OnExit on each registrant, detaches it from its parent and destroys the
// children. Later calls do nothing.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true

	exiting := n.registrants
	n.registrants = nil
	n.registered = nil
	for _, r := range exiting {
		observability.Emit(n.observer, observability.LevelVerbose, EventRegistrantExit, eventSource, map[string]any{
			"path":       n.path,
			"registrant": fmt.Sprintf("%T", r),
		})
		r.OnExit()
	}

	if n.parent != nil {
		n.parent.detach(n)
	}

	for _, name := range n.childNames() {
		if child, ok := n.children[name]; ok {
			child.Destroy()
		}
	}
	n.children = nil

	observability.Emit(n.observer, observability.LevelInfo, EventScopeDestroy, eventSource, map[string]any{
		"path": n.path,
	})
}

// String returns the scope path.
func (n *Node) String() string {
	return n.path
}

func (n *Node) detach(child *Node) {
	if n.children[child.name] == child {
		delete(n.children, child.name)
	}
}

func (n *Node) childNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *Node) destroyedErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrDestroyed, n.path, fmt.Sprintf(format, args...))
}

func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name must not be blank", ErrPrecondition, kind)
	}
	if strings.Contains(name, Separator) {
		return fmt.Errorf("%w: %s name %q must not contain separator %q", ErrPrecondition, kind, name, Separator)
	}
	return nil
}

package persist

import (
	"fmt"
	"slices"

	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/scope"
)

// Group persists the participants of a child scope as one participant of
// its parent. The group is keyed by the child's name; each member is stored
// in a sub-slice of the group's slice keyed by the member's key.
type Group struct {
	child    *scope.Node
	parent   *Service
	members  []Bundler
	byKey    map[string]Bundler
	current  *bundle.Bundle
	loaded   bool
	saving   bool
	released bool
}

// NewGroup creates a group for child and registers it on the persistence
// service of child's parent, which loads it before NewGroup returns. When
// child is destroyed the group leaves the parent's service, so a new group
// can be created for a scope rebuilt under the same name.
func NewGroup(child *scope.Node) (*Group, error) {
	if child.IsDestroyed() {
		return nil, fmt.Errorf("%w: %s: group", ErrDestroyed, child.Path())
	}
	parent := child.Parent()
	if parent == nil {
		return nil, fmt.Errorf("%w: group scope %s has no parent", ErrPrecondition, child.Path())
	}

	g := &Group{
		child: child,
		byKey: make(map[string]Bundler),
	}
	if err := child.Register(&scope.Hooks{Exit: g.release}); err != nil {
		return nil, err
	}
	svc, err := For(parent)
	if err != nil {
		return nil, err
	}
	g.parent = svc
	if err := svc.Register(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Scope returns the child scope the group wraps.
func (g *Group) Scope() *scope.Node {
	return g.child
}

// Members returns the member keys in the order they were added.
func (g *Group) Members() []string {
	keys := make([]string, len(g.members))
	for i, m := range g.members {
		keys[i] = m.Key()
	}
	return keys
}

// Add registers b on the child scope and stores it inside the group. If the
// group has already been loaded, b loads at once from the group's slice.
// Adding b again reloads it.
func (g *Group) Add(b Bundler) error {
	if err := scope.CheckRegistrant(b); err != nil {
		return fmt.Errorf("%w (group %s)", err, g.child.Path())
	}
	if g.released || g.child.IsDestroyed() {
		return fmt.Errorf("%w: %s: group add", ErrDestroyed, g.child.Path())
	}
	key := b.Key()
	if err := ValidateKey(key); err != nil {
		return err
	}
	if g.saving {
		return fmt.Errorf("%w: cannot add %q to group %s during save", ErrPrecondition, key, g.child.Path())
	}

	existing, ok := g.byKey[key]
	if ok && existing != b {
		return fmt.Errorf("%w: key %q already in group %s", ErrPrecondition, key, g.child.Path())
	}
	if !ok {
		if err := g.child.Register(b); err != nil {
			return err
		}
		if g.released {
			return fmt.Errorf("%w: %s destroyed while adding %q", ErrDestroyed, g.child.Path(), key)
		}
		g.byKey[key] = b
		g.members = append(g.members, b)
	}

	if g.loaded {
		b.OnLoad(g.sub(key))
	}
	return nil
}

// Key returns the child scope's name.
func (g *Group) Key() string {
	return g.child.Name()
}

// OnLoad forwards each member its sub-slice of b.
func (g *Group) OnLoad(b *bundle.Bundle) {
	g.current = b
	g.loaded = true
	for _, m := range slices.Clone(g.members) {
		if g.released {
			return
		}
		if g.byKey[m.Key()] != m {
			continue
		}
		m.OnLoad(g.sub(m.Key()))
	}
}

// OnSave has each member save into a fresh sub-slice of b.
func (g *Group) OnSave(b *bundle.Bundle) {
	g.saving = true
	defer func() { g.saving = false }()

	for _, m := range slices.Clone(g.members) {
		if g.released {
			break
		}
		sub := bundle.New()
		m.OnSave(sub)
		b.PutChild(m.Key(), sub)
	}
	g.current = b
}

func (g *Group) OnEnter(*scope.Node) {}

func (g *Group) OnExit() {}

func (g *Group) sub(key string) *bundle.Bundle {
	b, _ := g.current.Child(key)
	return b
}

func (g *Group) release() {
	g.released = true
	g.members = nil
	g.byKey = make(map[string]Bundler)
	if g.parent != nil {
		g.parent.unregister(g)
	}
}

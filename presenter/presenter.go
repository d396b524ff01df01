// Package presenter provides a persistable participant that drives a view.
//
// A Presenter holds at most one view at a time. The reference is explicit:
// TakeView sets it and DropView clears it, and having no view is a normal
// state. Loads are only forwarded while a view is held; saves always run,
// so presenter state outlives the views it drives.
package presenter

import (
	"fmt"

	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/persist"
	"github.com/tailored-agentic-units/scopes/scope"
)

// Hooks are the presenter callbacks. Any of them may be nil.
type Hooks[V comparable] struct {
	Load func(view V, b *bundle.Bundle)
	Save func(b *bundle.Bundle)
	Exit func()
}

// Presenter is a persist.Bundler bound to the scope of the first view it
// takes.
type Presenter[V comparable] struct {
	key     string
	hooks   Hooks[V]
	view    V
	hasView bool
	scope   *scope.Node
}

// New returns a presenter persisted under key.
func New[V comparable](key string, hooks Hooks[V]) *Presenter[V] {
	return &Presenter[V]{key: key, hooks: hooks}
}

// TakeView makes v the presenter's view and registers the presenter on n,
// which loads it with v present. A previously held view is dropped first.
// Taking a view on a second live scope is a precondition failure.
func (p *Presenter[V]) TakeView(n *scope.Node, v V) error {
	var zero V
	if v == zero {
		return fmt.Errorf("%w: presenter %q: zero view", persist.ErrPrecondition, p.key)
	}
	if p.scope != nil && p.scope != n && !p.scope.IsDestroyed() {
		return fmt.Errorf("%w: presenter %q is bound to %s, not %s",
			persist.ErrPrecondition, p.key, p.scope.Path(), n.Path())
	}

	if p.hasView && p.view != v {
		p.DropView(p.view)
	}
	p.view, p.hasView = v, true

	if err := persist.Register(n, p); err != nil {
		p.clearView()
		return err
	}
	return nil
}

// DropView clears the view if v is the one currently held.
func (p *Presenter[V]) DropView(v V) {
	if p.hasView && p.view == v {
		p.clearView()
	}
}

// View returns the current view.
func (p *Presenter[V]) View() (V, bool) {
	return p.view, p.hasView
}

func (p *Presenter[V]) HasView() bool {
	return p.hasView
}

// Scope returns the scope the presenter is registered on, or nil.
func (p *Presenter[V]) Scope() *scope.Node {
	return p.scope
}

func (p *Presenter[V]) Key() string {
	return p.key
}

func (p *Presenter[V]) OnEnter(n *scope.Node) {
	p.scope = n
}

func (p *Presenter[V]) OnExit() {
	p.scope = nil
	p.clearView()
	if p.hooks.Exit != nil {
		p.hooks.Exit()
	}
}

func (p *Presenter[V]) OnLoad(b *bundle.Bundle) {
	if !p.hasView || p.hooks.Load == nil {
		return
	}
	p.hooks.Load(p.view, b)
}

func (p *Presenter[V]) OnSave(b *bundle.Bundle) {
	if p.hooks.Save != nil {
		p.hooks.Save(b)
	}
}

func (p *Presenter[V]) clearView() {
	var zero V
	p.view, p.hasView = zero, false
}

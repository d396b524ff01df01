package persist

import (
	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/scope"
)

// Bundler is a persistable participant. It is a scope registrant that also
// loads from and saves to its slice of the state container.
//
// Key must be non-blank, must not contain scope.Separator and must be unique
// among the bundlers registered on the same scope. OnLoad receives nil when
// the container holds nothing for the participant; the slice is owned by the
// container and should be treated as read-only. OnSave receives an empty
// bundle to fill.
type Bundler interface {
	scope.Registrant
	Key() string
	OnLoad(b *bundle.Bundle)
	OnSave(b *bundle.Bundle)
}

// Funcs adapts plain functions to Bundler. Nil functions are skipped. Use a
// *Funcs; each pointer is a distinct participant.
type Funcs struct {
	Name  string
	Load  func(b *bundle.Bundle)
	Save  func(b *bundle.Bundle)
	Enter func(n *scope.Node)
	Exit  func()
}

func (f *Funcs) Key() string {
	return f.Name
}

func (f *Funcs) OnLoad(b *bundle.Bundle) {
	if f.Load != nil {
		f.Load(b)
	}
}

func (f *Funcs) OnSave(b *bundle.Bundle) {
	if f.Save != nil {
		f.Save(b)
	}
}

func (f *Funcs) OnEnter(n *scope.Node) {
	if f.Enter != nil {
		f.Enter(n)
	}
}

func (f *Funcs) OnExit() {
	if f.Exit != nil {
		f.Exit()
	}
}

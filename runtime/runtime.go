// Package runtime hosts a scope tree and its persistence coordinator.
//
// A Runtime is built from configuration: a root scope carrying the
// coordinator, an observer, and a store that holds the last checkpoint.
// The scope tree itself is single-threaded; the Runtime serializes every
// host call on one mutex so that restores, checkpoints, tree mutations and
// inspection requests never interleave.
//
//	rt, err := runtime.New(&cfg)
//	restored, err := rt.Restore(ctx)
//	err = rt.Do(func(root *scope.Node) error { ... })
//	err = rt.Checkpoint(ctx)
package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/observability"
	"github.com/tailored-agentic-units/scopes/persist"
	"github.com/tailored-agentic-units/scopes/scope"
	"github.com/tailored-agentic-units/scopes/store"
)

// Option configures a Runtime after config-driven initialization.
type Option func(*Runtime)

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(r *Runtime) { r.observer = o }
}

// WithStore overrides the config-created store.
func WithStore(s store.Store) Option {
	return func(r *Runtime) { r.store = s }
}

// Runtime owns a root scope, its coordinator and a snapshot store.
type Runtime struct {
	mu          sync.Mutex
	id          string
	root        *scope.Node
	coord       *persist.Coordinator
	store       store.Store
	observer    observability.Observer
	snapshotKey string
	last        *bundle.Bundle
	closed      bool
}

// New creates a Runtime from configuration. Options applied after the
// config-driven components are created can override any of them.
func New(cfg *Config, opts ...Option) (*Runtime, error) {
	s, err := store.New(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	r := &Runtime{
		id:          uuid.Must(uuid.NewV7()).String(),
		store:       s,
		observer:    observer,
		snapshotKey: cfg.SnapshotKey,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.snapshotKey == "" {
		r.snapshotKey = defaultSnapshotKey
	}

	r.coord = persist.NewCoordinator()
	root, err := scope.BuildRoot(cfg.Name).
		WithObserver(r.observer).
		WithService(persist.ServiceName, r.coord).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create root scope: %w", err)
	}
	r.root = root

	r.emit(observability.LevelInfo, EventStart, map[string]any{
		"runtime":     r.id,
		"root":        root.Path(),
		"coordinator": r.coord.ID(),
	})
	return r, nil
}

// ID returns the runtime instance identifier.
func (r *Runtime) ID() string {
	return r.id
}

// Root returns the root scope. Mutate the tree through Do.
func (r *Runtime) Root() *scope.Node {
	return r.root
}

// Coordinator returns the root coordinator.
func (r *Runtime) Coordinator() *persist.Coordinator {
	return r.coord
}

// Store returns the snapshot store.
func (r *Runtime) Store() store.Store {
	return r.store
}

// Restore loads the last checkpoint from the store and restores the tree
// from it. It reports false on a cold start, when no checkpoint exists.
func (r *Runtime) Restore(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false, ErrClosed
	}

	b, ok, err := store.LoadBundle(ctx, r.store, r.snapshotKey)
	if err != nil {
		r.fail("restore", err)
		return false, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		r.emit(observability.LevelInfo, EventRestore, map[string]any{
			"runtime": r.id,
			"cold":    true,
		})
		return false, nil
	}

	if err := r.coord.Restore(b); err != nil {
		r.fail("restore", err)
		return false, fmt.Errorf("restore tree: %w", err)
	}
	r.last = b

	r.emit(observability.LevelInfo, EventRestore, map[string]any{
		"runtime": r.id,
		"cold":    false,
		"scopes":  len(b.ChildKeys()),
	})
	return true, nil
}

// Checkpoint saves the tree and writes the result to the store.
func (r *Runtime) Checkpoint(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	return r.checkpoint(ctx)
}

// Do runs fn with the root scope while holding the runtime lock. fn must
// not call back into the Runtime.
func (r *Runtime) Do(fn func(root *scope.Node) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	return fn(r.root)
}

// Dump renders the scope tree.
func (r *Runtime) Dump() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return scope.Dump(r.root)
}

// Snapshot returns a copy of the last restored or checkpointed container.
func (r *Runtime) Snapshot() (*bundle.Bundle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last == nil {
		return nil, false
	}
	return r.last.Clone(), true
}

// Shutdown writes a final checkpoint and destroys the tree. Later calls do
// nothing. The tree is destroyed even when the checkpoint fails.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	err := r.checkpoint(ctx)
	r.root.Destroy()

	r.emit(observability.LevelInfo, EventShutdown, map[string]any{
		"runtime":    r.id,
		"checkpoint": err == nil,
	})
	return err
}

func (r *Runtime) checkpoint(ctx context.Context) error {
	b, err := r.coord.Save()
	if err != nil {
		r.fail("checkpoint", err)
		return fmt.Errorf("save tree: %w", err)
	}
	if err := store.SaveBundle(ctx, r.store, r.snapshotKey, b); err != nil {
		r.fail("checkpoint", err)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	r.last = b

	r.emit(observability.LevelInfo, EventCheckpoint, map[string]any{
		"runtime":  r.id,
		"snapshot": uuid.Must(uuid.NewV7()).String(),
		"key":      r.snapshotKey,
		"scopes":   len(b.ChildKeys()),
	})
	return nil
}

func (r *Runtime) fail(op string, err error) {
	r.emit(observability.LevelError, EventError, map[string]any{
		"runtime": r.id,
		"op":      op,
		"error":   err.Error(),
	})
}

func (r *Runtime) emit(level observability.Level, t observability.EventType, data map[string]any) {
	observability.Emit(r.observer, level, t, eventSource, data)
}

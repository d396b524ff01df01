package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/observability"
	"github.com/tailored-agentic-units/scopes/persist"
	"github.com/tailored-agentic-units/scopes/runtime"
	"github.com/tailored-agentic-units/scopes/scope"
	"github.com/tailored-agentic-units/scopes/store"
)

type counter struct {
	count int
}

func (c *counter) bundler() *persist.Funcs {
	return &persist.Funcs{
		Name: "counter",
		Load: func(b *bundle.Bundle) {
			if v, ok := b.Int("count"); ok {
				c.count = v
			}
		},
		Save: func(b *bundle.Bundle) { b.Put("count", c.count) },
	}
}

func newRuntime(t *testing.T, s store.Store, opts ...runtime.Option) *runtime.Runtime {
	t.Helper()
	cfg := runtime.DefaultConfig()
	cfg.Observer = "noop"
	opts = append([]runtime.Option{runtime.WithStore(s)}, opts...)

	rt, err := runtime.New(&cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return rt
}

func addCounter(t *testing.T, rt *runtime.Runtime, c *counter) {
	t.Helper()
	err := rt.Do(func(root *scope.Node) error {
		inbox, err := root.BuildChild("inbox").Build()
		if err != nil {
			return err
		}
		return persist.Register(inbox, c.bundler())
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestNew(t *testing.T) {
	rt := newRuntime(t, store.NewMemoryStore())

	if rt.ID() == "" {
		t.Error("ID() should not be empty")
	}
	if rt.Root().Path() != "app" {
		t.Errorf("Root().Path() = %q, want app", rt.Root().Path())
	}
	found, err := persist.Find(rt.Root())
	if err != nil || found != rt.Coordinator() {
		t.Errorf("Find(root) = %v, %v, want the runtime coordinator", found, err)
	}
	if _, ok := rt.Snapshot(); ok {
		t.Error("Snapshot() before any checkpoint should report false")
	}
}

func TestNew_UnknownObserver(t *testing.T) {
	cfg := runtime.DefaultConfig()
	cfg.Observer = "missing"

	if _, err := runtime.New(&cfg); err == nil {
		t.Error("New() with unknown observer should fail")
	}
}

func TestRestore_ColdStart(t *testing.T) {
	rt := newRuntime(t, store.NewMemoryStore())

	restored, err := rt.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored {
		t.Error("Restore() on empty store should report a cold start")
	}
}

func TestCheckpointRestore(t *testing.T) {
	ctx := context.Background()
	s := store.NewFileStore(t.TempDir())

	first := newRuntime(t, s)
	c1 := &counter{}
	addCounter(t, first, c1)
	c1.count = 42
	if err := first.Checkpoint(ctx); err != nil {
		t.Fatalf("Checkpoint() error = %v", err)
	}
	snap, ok := first.Snapshot()
	if !ok {
		t.Fatal("Snapshot() after checkpoint should report true")
	}
	if _, ok := snap.Child("app:inbox"); !ok {
		t.Error("snapshot should hold the app:inbox slice")
	}

	second := newRuntime(t, s)
	c2 := &counter{}
	addCounter(t, second, c2)
	restored, err := second.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !restored {
		t.Fatal("Restore() should find the checkpoint")
	}
	if c2.count != 42 {
		t.Errorf("count = %d, want 42", c2.count)
	}
}

func TestShutdown(t *testing.T) {
	ctx := context.Background()
	rec := observability.NewRecorder()
	s := store.NewMemoryStore()
	rt := newRuntime(t, s, runtime.WithObserver(rec))
	c := &counter{count: 7}
	addCounter(t, rt, c)

	if err := rt.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !rt.Root().IsDestroyed() {
		t.Error("Shutdown() should destroy the root scope")
	}
	if err := rt.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v, want nil", err)
	}

	b, ok, err := store.LoadBundle(ctx, s, "snapshot.json")
	if err != nil || !ok {
		t.Fatalf("LoadBundle() = %v, %v", ok, err)
	}
	inbox, _ := b.Child("app:inbox")
	slice, _ := inbox.Child("counter")
	if v, _ := slice.Int("count"); v != 7 {
		t.Errorf("final checkpoint count = %d, want 7", v)
	}

	if err := rt.Checkpoint(ctx); !errors.Is(err, runtime.ErrClosed) {
		t.Errorf("Checkpoint() after shutdown error = %v, want ErrClosed", err)
	}
	if _, err := rt.Restore(ctx); !errors.Is(err, runtime.ErrClosed) {
		t.Errorf("Restore() after shutdown error = %v, want ErrClosed", err)
	}
	if err := rt.Do(func(*scope.Node) error { return nil }); !errors.Is(err, runtime.ErrClosed) {
		t.Errorf("Do() after shutdown error = %v, want ErrClosed", err)
	}

	for _, want := range []observability.EventType{runtime.EventStart, runtime.EventCheckpoint, runtime.EventShutdown} {
		if len(rec.Filter(want)) == 0 {
			t.Errorf("no %s event recorded", want)
		}
	}
}

type failingStore struct {
	store.Store
}

func (failingStore) Save(context.Context, ...store.Entry) error {
	return store.ErrSaveFailed
}

func TestCheckpoint_StoreFailure(t *testing.T) {
	rec := observability.NewRecorder()
	rt := newRuntime(t, failingStore{store.NewMemoryStore()}, runtime.WithObserver(rec))

	err := rt.Checkpoint(context.Background())
	if !errors.Is(err, store.ErrSaveFailed) {
		t.Errorf("Checkpoint() error = %v, want ErrSaveFailed", err)
	}
	if len(rec.Filter(runtime.EventError)) != 1 {
		t.Errorf("got %d error events, want 1", len(rec.Filter(runtime.EventError)))
	}
	if _, ok := rt.Snapshot(); ok {
		t.Error("failed checkpoint should not update the snapshot")
	}
}

func TestDump(t *testing.T) {
	rt := newRuntime(t, store.NewMemoryStore())
	addCounter(t, rt, &counter{})

	want := "app\n└── inbox\n"
	if got := rt.Dump(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

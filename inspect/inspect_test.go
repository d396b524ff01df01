package inspect_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tailored-agentic-units/scopes/bundle"
	"github.com/tailored-agentic-units/scopes/inspect"
)

type fakeSource struct {
	dump string
	snap *bundle.Bundle
}

func (f *fakeSource) Dump() string { return f.dump }

func (f *fakeSource) Snapshot() (*bundle.Bundle, bool) {
	return f.snap, f.snap != nil
}

func newServer(t *testing.T, src inspect.Source) *inspect.Client {
	t.Helper()
	mux := http.NewServeMux()
	path, handler := inspect.NewHandler(src)
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return inspect.NewClient(srv.Client(), srv.URL)
}

func TestDump(t *testing.T) {
	client := newServer(t, &fakeSource{dump: "app\n└── inbox\n"})

	got, err := client.Dump(context.Background())
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if got != "app\n└── inbox\n" {
		t.Errorf("Dump() = %q", got)
	}
}

func TestSnapshot(t *testing.T) {
	snap := bundle.New()
	snap.EnsureChild("app:inbox").EnsureChild("counter").Put("count", 3)
	client := newServer(t, &fakeSource{snap: snap})

	got, ok, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if !ok {
		t.Fatal("Snapshot() should report true")
	}
	inbox, _ := got.Child("app:inbox")
	counter, _ := inbox.Child("counter")
	if v, _ := counter.Int("count"); v != 3 {
		t.Errorf("count = %d, want 3", v)
	}
}

func TestSnapshot_NotFound(t *testing.T) {
	client := newServer(t, &fakeSource{})

	_, ok, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if ok {
		t.Error("Snapshot() without a snapshot should report false")
	}
}

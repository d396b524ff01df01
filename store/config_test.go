package store_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/scopes/store"
)

func TestDefaultConfig(t *testing.T) {
	cfg := store.DefaultConfig()
	if cfg.Kind != store.KindMemory {
		t.Errorf("got Kind %q, want %q", cfg.Kind, store.KindMemory)
	}
	if cfg.Path != "" {
		t.Errorf("got Path %q, want empty string", cfg.Path)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := store.DefaultConfig()
	cfg.Merge(&store.Config{Kind: store.KindFile, Path: "/data/state"})

	if cfg.Kind != store.KindFile || cfg.Path != "/data/state" {
		t.Errorf("got %+v, want file at /data/state", cfg)
	}

	cfg.Merge(&store.Config{})
	if cfg.Kind != store.KindFile || cfg.Path != "/data/state" {
		t.Errorf("empty source changed config to %+v", cfg)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     store.Config
		wantErr bool
	}{
		{name: "memory", cfg: store.Config{Kind: store.KindMemory}},
		{name: "empty kind", cfg: store.Config{}},
		{name: "file", cfg: store.Config{Kind: store.KindFile, Path: "/tmp/x"}},
		{name: "file without path", cfg: store.Config{Kind: store.KindFile}, wantErr: true},
		{name: "unknown", cfg: store.Config{Kind: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.New(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("New() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if s == nil {
				t.Error("New() returned nil store")
			}
		})
	}

	_, err := store.New(&store.Config{Kind: "redis"})
	if !errors.Is(err, store.ErrUnknownKind) {
		t.Errorf("New(redis) error = %v, want ErrUnknownKind", err)
	}
}

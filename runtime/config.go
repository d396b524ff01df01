package runtime

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/scopes/store"
)

const (
	defaultName        = "app"
	defaultObserver    = "slog"
	defaultSnapshotKey = "snapshot.json"
)

// Config holds initialization parameters for a Runtime and its store.
type Config struct {
	Name        string       `json:"name,omitempty"`         // Root scope name.
	Observer    string       `json:"observer,omitempty"`     // Observer registry name.
	SnapshotKey string       `json:"snapshot_key,omitempty"` // Store key of the checkpoint.
	Store       store.Config `json:"store"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:        defaultName,
		Observer:    defaultObserver,
		SnapshotKey: defaultSnapshotKey,
		Store:       store.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Store.Merge(&source.Store)

	if source.Name != "" {
		c.Name = source.Name
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.SnapshotKey != "" {
		c.SnapshotKey = source.SnapshotKey
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

package store

import "fmt"

// Store kinds accepted by Config.Kind.
const (
	KindFile   = "file"
	KindMemory = "memory"
)

// Config holds store initialization parameters.
type Config struct {
	Kind string `json:"kind,omitempty"`
	Path string `json:"path,omitempty"` // FileStore root directory.
}

// DefaultConfig returns the default store configuration: an in-memory store.
func DefaultConfig() Config {
	return Config{Kind: KindMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Kind != "" {
		c.Kind = source.Kind
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// New creates a Store from configuration. A file store with an empty Path
// is rejected.
func New(cfg *Config) (Store, error) {
	switch cfg.Kind {
	case KindMemory, "":
		return NewMemoryStore(), nil
	case KindFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file store requires a path")
		}
		return NewFileStore(cfg.Path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/scopes/bundle"
)

// SaveBundle encodes b and stores it under key.
func SaveBundle(ctx context.Context, s Store, key string, b *bundle.Bundle) error {
	data, err := bundle.Marshal(b)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, key, err)
	}
	return s.Save(ctx, Entry{Key: key, Value: data})
}

// LoadBundle reads and decodes the bundle stored under key. A missing key
// reports (nil, false, nil).
func LoadBundle(ctx context.Context, s Store, key string) (*bundle.Bundle, bool, error) {
	entries, err := s.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	b, err := bundle.Unmarshal(entries[0].Value)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
	}
	return b, true, nil
}

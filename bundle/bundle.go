// Package bundle provides the state container handed to persistable
// participants: a nested string-keyed map holding opaque leaf values and
// nested bundles. Leaves and nested bundles live in separate namespaces, so
// a key may name both a leaf and a child bundle.
//
// Read accessors are safe on a nil *Bundle and report every key as absent;
// participants receive nil when there is no prior state.
package bundle

import (
	"maps"
	"reflect"
	"sort"
)

// Bundle is a nested key/value container. It is not safe for concurrent use.
type Bundle struct {
	values  map[string]any
	bundles map[string]*Bundle
}

// New returns an empty Bundle.
func New() *Bundle {
	return &Bundle{
		values:  make(map[string]any),
		bundles: make(map[string]*Bundle),
	}
}

// Get returns the leaf stored under key.
func (b *Bundle) Get(key string) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.values[key]
	return v, ok
}

// Put stores a leaf value under key, replacing any previous leaf.
func (b *Bundle) Put(key string, value any) {
	b.values[key] = value
}

// String returns the leaf under key if it is a string.
func (b *Bundle) String(key string) (string, bool) {
	v, ok := b.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the leaf under key as an int. Integral float64 values are
// accepted because decoded bundles carry numbers as float64.
func (b *Bundle) Int(key string) (int, bool) {
	v, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// Bool returns the leaf under key if it is a bool.
func (b *Bundle) Bool(key string) (bool, bool) {
	v, ok := b.Get(key)
	if !ok {
		return false, false
	}
	flag, ok := v.(bool)
	return flag, ok
}

// Child returns the nested bundle stored under key.
func (b *Bundle) Child(key string) (*Bundle, bool) {
	if b == nil {
		return nil, false
	}
	c, ok := b.bundles[key]
	return c, ok
}

// PutChild stores child under key, replacing any previous nested bundle.
// A nil child removes the entry.
func (b *Bundle) PutChild(key string, child *Bundle) {
	if child == nil {
		delete(b.bundles, key)
		return
	}
	b.bundles[key] = child
}

// EnsureChild returns the nested bundle under key, creating it if missing.
func (b *Bundle) EnsureChild(key string) *Bundle {
	if c, ok := b.bundles[key]; ok {
		return c
	}
	c := New()
	b.bundles[key] = c
	return c
}

// Remove deletes the leaf under key.
func (b *Bundle) Remove(key string) {
	delete(b.values, key)
}

// RemoveChild deletes the nested bundle under key.
func (b *Bundle) RemoveChild(key string) {
	delete(b.bundles, key)
}

// Keys returns the leaf keys in sorted order.
func (b *Bundle) Keys() []string {
	if b == nil {
		return nil
	}
	return sortedKeys(b.values)
}

// ChildKeys returns the nested bundle keys in sorted order.
func (b *Bundle) ChildKeys() []string {
	if b == nil {
		return nil
	}
	return sortedKeys(b.bundles)
}

// IsEmpty reports whether the bundle holds neither leaves nor children.
func (b *Bundle) IsEmpty() bool {
	return b == nil || (len(b.values) == 0 && len(b.bundles) == 0)
}

// Clone copies the bundle tree. Leaf values are copied shallowly.
func (b *Bundle) Clone() *Bundle {
	if b == nil {
		return nil
	}
	out := &Bundle{
		values:  maps.Clone(b.values),
		bundles: make(map[string]*Bundle, len(b.bundles)),
	}
	for k, c := range b.bundles {
		out.bundles[k] = c.Clone()
	}
	return out
}

// Equal reports whether two bundle trees hold deeply equal leaves under the
// same keys. Two nil bundles are equal; nil never equals an empty bundle.
func (b *Bundle) Equal(other *Bundle) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.values) != len(other.values) || len(b.bundles) != len(other.bundles) {
		return false
	}
	for k, v := range b.values {
		ov, ok := other.values[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	for k, c := range b.bundles {
		oc, ok := other.bundles[k]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

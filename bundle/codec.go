package bundle

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names of the encoded form. A bundle encodes as
//
//	{"values": {...leaves}, "bundles": {"key": <bundle>, ...}}
//
// which keeps leaves that are themselves JSON objects apart from children.
const (
	valuesField  = "values"
	bundlesField = "bundles"
)

// ToStruct converts b into a protobuf Struct. Leaves must be values
// structpb.NewValue accepts: nil, bool, numbers, string, []byte, []any and
// map[string]any.
func ToStruct(b *Bundle) (*structpb.Struct, error) {
	if b == nil {
		b = New()
	}

	values, err := structpb.NewStruct(b.values)
	if err != nil {
		return nil, fmt.Errorf("encode values: %w", err)
	}

	children := make(map[string]*structpb.Value, len(b.bundles))
	for key, child := range b.bundles {
		encoded, err := ToStruct(child)
		if err != nil {
			return nil, fmt.Errorf("encode bundle %q: %w", key, err)
		}
		children[key] = structpb.NewStructValue(encoded)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			valuesField:  structpb.NewStructValue(values),
			bundlesField: structpb.NewStructValue(&structpb.Struct{Fields: children}),
		},
	}, nil
}

// FromStruct rebuilds a Bundle from its encoded form. Missing sections decode
// as empty. Numbers come back as float64.
func FromStruct(s *structpb.Struct) (*Bundle, error) {
	b := New()
	if s == nil {
		return b, nil
	}

	if v, ok := s.GetFields()[valuesField]; ok {
		values := v.GetStructValue()
		if values == nil {
			return nil, fmt.Errorf("decode: %q is not an object", valuesField)
		}
		b.values = values.AsMap()
	}

	if v, ok := s.GetFields()[bundlesField]; ok {
		children := v.GetStructValue()
		if children == nil {
			return nil, fmt.Errorf("decode: %q is not an object", bundlesField)
		}
		for key, cv := range children.GetFields() {
			encoded := cv.GetStructValue()
			if encoded == nil {
				return nil, fmt.Errorf("decode: bundle %q is not an object", key)
			}
			child, err := FromStruct(encoded)
			if err != nil {
				return nil, fmt.Errorf("decode bundle %q: %w", key, err)
			}
			b.bundles[key] = child
		}
	}

	return b, nil
}

// Marshal encodes b as protobuf JSON.
func Marshal(b *Bundle) ([]byte, error) {
	s, err := ToStruct(b)
	if err != nil {
		return nil, err
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	return data, nil
}

// Unmarshal decodes data produced by Marshal.
func Unmarshal(data []byte) (*Bundle, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal bundle: %w", err)
	}
	return FromStruct(&s)
}

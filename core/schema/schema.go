package schema

import (
	"slices"
	"strconv"
	"strings"

	"datadiff/core/record"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	fingerprintSep  = "|"
	fingerprintNull = "N"
)

// Schema is the compiled, immutable form of a key and value declaration.
type Schema struct {
	keys       []Field
	values     []Field
	converters map[string]Converter
	keySet     mapset.Set[string]
	valueSet   mapset.Set[string]
}

// Compile validates the declarations and builds one converter per field.
// Field names must be unique across keys and values.
func Compile(keys, values []Field) (*Schema, error) {
	if len(keys)+len(values) == 0 {
		return nil, ErrEmptySchema
	}

	s := &Schema{
		converters: make(map[string]Converter, len(keys)+len(values)),
		keySet:     mapset.NewThreadUnsafeSet[string](),
		valueSet:   mapset.NewThreadUnsafeSet[string](),
	}
	add := func(f Field, role Role) error {
		if f.Name == "" {
			return &InvalidFieldError{Type: string(f.Type), Reason: "empty field name"}
		}
		if _, dup := s.converters[f.Name]; dup {
			return &InvalidFieldError{Field: f.Name, Type: string(f.Type), Reason: "declared more than once"}
		}
		conv, err := ConverterFor(f.Type)
		if err != nil {
			return &InvalidFieldError{Field: f.Name, Type: string(f.Type), Reason: "unknown type"}
		}
		resolved, _ := ParseFieldType(string(f.Type))
		f.Type = resolved
		s.converters[f.Name] = conv
		if role == RoleKey {
			s.keys = append(s.keys, f)
			s.keySet.Add(f.Name)
		} else {
			s.values = append(s.values, f)
			s.valueSet.Add(f.Name)
		}
		return nil
	}
	for _, f := range keys {
		if err := add(f, RoleKey); err != nil {
			return nil, err
		}
	}
	for _, f := range values {
		if err := add(f, RoleValue); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustCompile is Compile for static declarations. It panics on error.
func MustCompile(keys, values []Field) *Schema {
	s, err := Compile(keys, values)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) KeyFields() []Field   { return slices.Clone(s.keys) }
func (s *Schema) ValueFields() []Field { return slices.Clone(s.values) }

// KeyNames returns the key field names in declaration order.
func (s *Schema) KeyNames() []string { return names(s.keys) }

// ValueNames returns the value field names in declaration order.
func (s *Schema) ValueNames() []string { return names(s.values) }

// Names returns key names followed by value names.
func (s *Schema) Names() []string {
	return append(names(s.keys), names(s.values)...)
}

func (s *Schema) Has(name string) bool {
	_, ok := s.converters[name]
	return ok
}

func (s *Schema) IsKey(name string) bool   { return s.keySet.Contains(name) }
func (s *Schema) IsValue(name string) bool { return s.valueSet.Contains(name) }

// Role returns the role of a declared field.
func (s *Schema) Role(name string) (Role, bool) {
	switch {
	case s.keySet.Contains(name):
		return RoleKey, true
	case s.valueSet.Contains(name):
		return RoleValue, true
	default:
		return 0, false
	}
}

// Canonicalize applies the converter of the named field. Values of fields
// outside the schema are returned unchanged.
func (s *Schema) Canonicalize(field string, v record.Value) record.Value {
	conv, ok := s.converters[field]
	if !ok {
		return v
	}
	return conv(v)
}

// KeyFingerprint concatenates the canonical forms of the key fields of row.
// Missing fields count as null.
func (s *Schema) KeyFingerprint(row record.Data) string {
	return s.fingerprint(row, s.keys, nil)
}

// RowFingerprint concatenates the canonical forms of the key and value fields.
func (s *Schema) RowFingerprint(row record.Data) string {
	return s.fingerprint(row, s.keys, s.values)
}

func (s *Schema) fingerprint(row record.Data, groups ...[]Field) string {
	var b strings.Builder
	first := true
	for _, fields := range groups {
		for _, f := range fields {
			if !first {
				b.WriteString(fingerprintSep)
			}
			first = false
			c := s.converters[f.Name](row.Get(f.Name))
			if c.IsNull() {
				b.WriteString(fingerprintNull)
				continue
			}
			b.WriteString(strconv.Quote(c.String()))
		}
	}
	return b.String()
}

func names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

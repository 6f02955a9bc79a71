package schema

import (
	"fmt"
	"strings"
)

// FieldType is the type tag of a declared field.
type FieldType string

const (
	TypeBool   FieldType = "BOOL"
	TypeInt    FieldType = "INT"
	TypeFloat  FieldType = "FLOAT"
	TypeDouble FieldType = "DOUBLE"
	TypeMoney  FieldType = "MONEY"
	TypeString FieldType = "STRING"
	TypeMD5    FieldType = "MD5"
)

var typeAliases = map[string]FieldType{
	"BOOL":    TypeBool,
	"BOOLEAN": TypeBool,
	"INT":     TypeInt,
	"INTEGER": TypeInt,
	"FLOAT":   TypeFloat,
	"DOUBLE":  TypeDouble,
	"MONEY":   TypeMoney,
	"STR":     TypeString,
	"STRING":  TypeString,
	"MD5":     TypeMD5,
}

// ParseFieldType resolves a type tag, case-insensitively, including the
// BOOLEAN, INTEGER and STR aliases.
func ParseFieldType(s string) (FieldType, error) {
	t, ok := typeAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidSchema, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known type tags or aliases.
func (t FieldType) Valid() bool {
	_, ok := typeAliases[strings.ToUpper(string(t))]
	return ok
}

// Role tells whether a field takes part in the key or only in the value.
type Role uint8

const (
	RoleKey Role = iota
	RoleValue
)

func (r Role) String() string {
	if r == RoleKey {
		return "key"
	}
	return "value"
}

// Field declares one schema field.
type Field struct {
	Name string
	Type FieldType
}

// F is shorthand for a Field literal.
func F(name string, t FieldType) Field {
	return Field{Name: name, Type: t}
}

// ParseField parses the "name:TYPE" notation used on the command line.
func ParseField(s string) (Field, error) {
	name, tag, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Field{}, &InvalidFieldError{Field: s, Reason: `expected "name:TYPE"`}
	}
	t, err := ParseFieldType(tag)
	if err != nil {
		return Field{}, &InvalidFieldError{Field: name, Type: tag, Reason: "unknown type"}
	}
	return Field{Name: name, Type: t}, nil
}

// ParseFields parses each entry with ParseField.
func ParseFields(specs []string) ([]Field, error) {
	fields := make([]Field, 0, len(specs))
	for _, s := range specs {
		f, err := ParseField(s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

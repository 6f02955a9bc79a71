package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySchema is returned by Compile when neither keys nor values are declared.
	ErrEmptySchema = errors.New("schema has no fields")

	// ErrInvalidSchema is returned when a field carries an unknown type tag or
	// its name is declared twice.
	ErrInvalidSchema = errors.New("invalid schema")
)

// InvalidFieldError describes the field that made a schema invalid.
type InvalidFieldError struct {
	Field  string
	Type   string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("invalid schema: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid schema: field %q of type %q: %s", e.Field, e.Type, e.Reason)
}

func (e *InvalidFieldError) Unwrap() error { return ErrInvalidSchema }

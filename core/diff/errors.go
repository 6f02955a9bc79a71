package diff

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned by DiffFormatted for any format other
	// than the default one.
	ErrUnsupportedFormat = errors.New("unsupported diff format")

	// ErrStorageUnavailable wraps failures to open or prepare the index
	// backing a DiffStore.
	ErrStorageUnavailable = errors.New("storage engine unavailable")
)

// FormatError reports the format that DiffFormatted rejected.
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unknown format %q", e.Format)
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

package snapshot

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Format names a snapshot encoding.
type Format string

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatCSV    Format = "csv"
)

// ErrUnknownFormat is returned for format names and extensions that are not
// supported.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// ParseFormat accepts json, ndjson, jsonl, csv and the empty string for
// auto detection, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// DetectFormat maps a file or object name to its format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".ndjson", ".jsonl":
		return FormatNDJSON, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: cannot tell the format of %q", ErrUnknownFormat, name)
	}
}

// resolve returns f, or the format detected from name when f is FormatAuto.
func (f Format) resolve(name string) (Format, error) {
	if f != FormatAuto {
		return f, nil
	}
	return DetectFormat(name)
}

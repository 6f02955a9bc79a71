package utils

import (
	"bytes"
	"encoding/json"
)

// EncodeJSON marshals v without HTML escaping. Invalid UTF-8 in strings is
// replaced with U+FFFD by the encoder.
func EncodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// JSONString is EncodeJSON for values that cannot fail to encode, such as
// record values. On error it falls back to "null".
func JSONString(v any) string {
	s, err := EncodeJSON(v)
	if err != nil {
		return "null"
	}
	return s
}

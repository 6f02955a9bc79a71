// Package record defines the row model shared by every store: a tagged scalar
// Value and Data, an insertion-ordered map of field names to values.
package record

// Package schema compiles key and value field declarations into a Schema.
//
// A Schema owns one converter per field, derived from the field's type tag.
// Converters map raw values onto canonical forms that are used for equality
// only: two rows whose canonical key fields agree share a key fingerprint, and
// two rows whose canonical key and value fields agree are unchanged.
package schema

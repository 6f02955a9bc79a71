// Package index provides the keyed storage behind the two sides of a diff.
//
// A KeyedIndex holds entries for side "a" and side "b". Each entry is keyed by
// a canonical key, carries the row fingerprint used for change detection, the
// raw row and the sequence number assigned on first insertion.
//
// Two implementations exist:
//
//   - Memory keeps both sides in hash maps with an insertion ordered key list.
//   - SQL stores both sides in one gorm managed table and answers joins with a
//     single LEFT JOIN query, streaming results through a cursor.
//
// Join is the only set operation. New rows are local entries whose key is
// absent on the foreign side, missing rows are the same query with the sides
// swapped, and changed or unchanged rows compare fingerprints of matching keys.
package index

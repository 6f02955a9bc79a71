package index

import (
	"context"

	"datadiff/core/record"
)

// Side names one half of the index.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Mirror returns the opposite side.
func (s Side) Mirror() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) Valid() bool { return s == SideA || s == SideB }

// Entry is one stored row.
type Entry struct {
	Key         string
	Fingerprint string
	Data        record.Data
	Seq         int64
}

// Match selects which local entries a join reports, based on the foreign
// entry sharing their key.
type Match uint8

const (
	// MatchAbsent selects entries with no foreign counterpart.
	MatchAbsent Match = 1 << iota
	// MatchSame selects entries whose foreign counterpart has the same fingerprint.
	MatchSame
	// MatchChanged selects entries whose foreign counterpart has a different fingerprint.
	MatchChanged

	MatchPresent = MatchSame | MatchChanged
	MatchAll     = MatchAbsent | MatchPresent
)

// Accepts reports whether a local entry qualifies given its foreign entry.
func (m Match) Accepts(local Entry, foreign *Entry) bool {
	switch {
	case foreign == nil:
		return m&MatchAbsent != 0
	case foreign.Fingerprint == local.Fingerprint:
		return m&MatchSame != 0
	default:
		return m&MatchChanged != 0
	}
}

// JoinQuery describes a join of the local side against the foreign side.
// Results are ordered by local sequence. Limit caps the number of rows
// reported when positive.
type JoinQuery struct {
	Local Side
	Match Match
	Limit int
}

// Foreign is the side the local side is joined against.
func (q JoinQuery) Foreign() Side { return q.Local.Mirror() }

// KeyedIndex is the storage capability used by the diff stores.
// Implementations are not safe for concurrent use.
type KeyedIndex interface {
	// Get looks up the entry stored under key.
	Get(ctx context.Context, side Side, key string) (Entry, bool, error)
	// Put inserts or replaces the entry stored under e.Key.
	Put(ctx context.Context, side Side, e Entry) error
	Count(ctx context.Context, side Side) (int, error)
	// Clear removes every entry of one side.
	Clear(ctx context.Context, side Side) error
	// Scan calls fn for every entry of one side in sequence order until fn
	// returns false.
	Scan(ctx context.Context, side Side, fn func(Entry) bool) error
	// Join calls fn for every qualifying local entry, passing the foreign
	// entry with the same key or nil, until fn returns false.
	Join(ctx context.Context, q JoinQuery, fn func(local Entry, foreign *Entry) bool) error
	Close() error
}

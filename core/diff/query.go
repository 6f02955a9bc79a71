package diff

import (
	"context"

	"datadiff/core/index"
)

func buildQueryOptions(opts []QueryOption) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// localSegment joins this store against its mirror and yields the rows that
// match. Row kinds follow from the foreign entry: none is new, an equal
// fingerprint is unchanged and anything else is changed.
func (s *Store) localSegment(match index.Match, limit int) segment[*Row] {
	return func(ctx context.Context, yield func(*Row) bool) error {
		q := index.JoinQuery{Local: s.side, Match: match, Limit: limit}
		return s.idx.Join(ctx, q, func(local index.Entry, foreign *index.Entry) bool {
			row := &Row{
				kind:     RowNew,
				key:      local.Key,
				schema:   s.schema,
				local:    local.Data,
				hasLocal: true,
			}
			if foreign != nil {
				row.foreign = foreign.Data
				row.hasForeign = true
				row.kind = RowChanged
				if foreign.Fingerprint == local.Fingerprint {
					row.kind = RowUnchanged
				}
			}
			return yield(row)
		})
	}
}

// missingSegment yields the mirror's rows whose key this store lacks, in the
// mirror's order.
func (s *Store) missingSegment(limit int) segment[*Row] {
	return func(ctx context.Context, yield func(*Row) bool) error {
		q := index.JoinQuery{Local: s.side.Mirror(), Match: index.MatchAbsent, Limit: limit}
		return s.idx.Join(ctx, q, func(foreign index.Entry, _ *index.Entry) bool {
			return yield(&Row{
				kind:       RowMissing,
				key:        foreign.Key,
				schema:     s.schema,
				foreign:    foreign.Data,
				hasForeign: true,
			})
		})
	}
}

// NewRows yields rows whose key is only in this store, in insertion order.
func (s *Store) NewRows(ctx context.Context, opts ...QueryOption) *Cursor[*Row] {
	o := buildQueryOptions(opts)
	return newCursor(ctx, s.localSegment(index.MatchAbsent, o.limit))
}

// MissingRows yields rows whose key is only in the mirror, in the mirror's
// insertion order. Row data comes from the mirror.
func (s *Store) MissingRows(ctx context.Context, opts ...QueryOption) *Cursor[*Row] {
	o := buildQueryOptions(opts)
	return newCursor(ctx, s.missingSegment(o.limit))
}

// ChangedRows yields rows present on both sides with different fingerprints.
func (s *Store) ChangedRows(ctx context.Context, opts ...QueryOption) *Cursor[*Row] {
	o := buildQueryOptions(opts)
	return newCursor(ctx, s.localSegment(index.MatchChanged, o.limit))
}

// UnchangedRows yields rows present on both sides with equal fingerprints.
func (s *Store) UnchangedRows(ctx context.Context, opts ...QueryOption) *Cursor[*Row] {
	o := buildQueryOptions(opts)
	return newCursor(ctx, s.localSegment(index.MatchSame, o.limit))
}

// NewOrChangedRows yields new and changed rows interleaved in insertion order.
func (s *Store) NewOrChangedRows(ctx context.Context, opts ...QueryOption) *Cursor[*Row] {
	o := buildQueryOptions(opts)
	return newCursor(ctx, s.localSegment(index.MatchAbsent|index.MatchChanged, o.limit))
}

// NewOrChangedOrMissingRows yields NewOrChangedRows followed by MissingRows.
// Positions restart for the missing block and a limit applies to each block.
func (s *Store) NewOrChangedOrMissingRows(ctx context.Context, opts ...QueryOption) *Cursor[*Row] {
	o := buildQueryOptions(opts)
	return newCursor(ctx,
		s.localSegment(index.MatchAbsent|index.MatchChanged, o.limit),
		s.missingSegment(o.limit),
	)
}

// HasAnyChanges reports whether any row is new, changed or missing. It stops
// at the first one found.
func (s *Store) HasAnyChanges(ctx context.Context) (bool, error) {
	found, err := s.NewOrChangedRows(ctx, Limit(1)).Any()
	if err != nil || found {
		return found, err
	}
	return s.MissingRows(ctx, Limit(1)).Any()
}

package index

import (
	"context"
	"slices"
)

type memorySide struct {
	entries map[string]Entry
	order   []string
}

// Memory is an in-process KeyedIndex. Entries are kept in a map per side and
// ordered by an insertion ordered key slice, which matches sequence order
// because sequence numbers only grow and replacing an entry keeps its place.
type Memory struct {
	sides map[Side]*memorySide
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{
		sides: map[Side]*memorySide{
			SideA: {entries: make(map[string]Entry)},
			SideB: {entries: make(map[string]Entry)},
		},
	}
}

func (m *Memory) side(s Side) *memorySide {
	ms, ok := m.sides[s]
	if !ok {
		ms = &memorySide{entries: make(map[string]Entry)}
		m.sides[s] = ms
	}
	return ms
}

func (m *Memory) Get(ctx context.Context, side Side, key string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	e, ok := m.side(side).entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	e.Data = e.Data.Clone()
	return e, true, nil
}

func (m *Memory) Put(ctx context.Context, side Side, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms := m.side(side)
	if _, ok := ms.entries[e.Key]; !ok {
		ms.order = append(ms.order, e.Key)
	}
	e.Data = e.Data.Clone()
	ms.entries[e.Key] = e
	return nil
}

func (m *Memory) Count(ctx context.Context, side Side) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(m.side(side).entries), nil
}

func (m *Memory) Clear(ctx context.Context, side Side) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms := m.side(side)
	clear(ms.entries)
	ms.order = nil
	return nil
}

func (m *Memory) Scan(ctx context.Context, side Side, fn func(Entry) bool) error {
	ms := m.side(side)
	// Iterate a snapshot of the order so callbacks may add rows safely.
	for _, key := range slices.Clone(ms.order) {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, ok := ms.entries[key]
		if !ok {
			continue
		}
		e.Data = e.Data.Clone()
		if !fn(e) {
			return nil
		}
	}
	return nil
}

func (m *Memory) Join(ctx context.Context, q JoinQuery, fn func(local Entry, foreign *Entry) bool) error {
	local := m.side(q.Local)
	foreign := m.side(q.Foreign())

	emitted := 0
	for _, key := range slices.Clone(local.order) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if q.Limit > 0 && emitted >= q.Limit {
			return nil
		}
		l, ok := local.entries[key]
		if !ok {
			continue
		}
		var f *Entry
		if fe, ok := foreign.entries[key]; ok {
			fe.Data = fe.Data.Clone()
			f = &fe
		}
		if !q.Match.Accepts(l, f) {
			continue
		}
		l.Data = l.Data.Clone()
		emitted++
		if !fn(l, f) {
			return nil
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }

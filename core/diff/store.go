package diff

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"datadiff/core/index"
	"datadiff/core/logger"
	"datadiff/core/model"
	"datadiff/core/record"
	"datadiff/core/schema"

	"go.uber.org/zap"
)

// RowMapper is implemented by types that know their own row representation.
type RowMapper interface {
	DiffRow() record.Data
}

// Store is one side of a DiffStore. It is not safe for concurrent use.
type Store struct {
	label       string
	side        index.Side
	schema      *schema.Schema
	idx         index.KeyedIndex
	mirror      *Store
	seq         int64
	onDuplicate MergeFunc
	log         *zap.Logger
}

func newStore(label string, side index.Side, s *schema.Schema, idx index.KeyedIndex, onDuplicate MergeFunc, log *zap.Logger) *Store {
	return &Store{
		label:       label,
		side:        side,
		schema:      s,
		idx:         idx,
		onDuplicate: onDuplicate,
		log:         logger.WithStore(log, label),
	}
}

// Label is "A" or "B".
func (s *Store) Label() string { return s.label }

// Mirror returns the store this one is compared against.
func (s *Store) Mirror() *Store { return s.mirror }

// Schema returns the shared schema.
func (s *Store) Schema() *schema.Schema { return s.schema }

// AddRow stores data under its canonical key. A row with a key that is
// already present replaces the stored row, or is merged with it when a
// duplicate handler is in effect, and keeps the stored row's position.
func (s *Store) AddRow(ctx context.Context, data record.Data, opts ...AddOption) error {
	o := addOptions{merge: s.onDuplicate}
	for _, opt := range opts {
		opt(&o)
	}
	return s.addRow(ctx, data, o)
}

func (s *Store) addRow(ctx context.Context, data record.Data, o addOptions) error {
	if len(o.translation) > 0 {
		data = translate(data, o.translation)
	}
	key := s.schema.KeyFingerprint(data)

	existing, found, err := s.idx.Get(ctx, s.side, key)
	if err != nil {
		return fmt.Errorf("store %s: %w", s.label, err)
	}

	var seq int64
	if found {
		seq = existing.Seq
		if o.merge != nil {
			data = o.merge(data.Clone(), existing.Data)
			s.log.Debug("Duplicate key merged", zap.String("key", key))
		} else {
			s.log.Debug("Duplicate key replaced", zap.String("key", key))
		}
	} else {
		s.seq++
		seq = s.seq
	}

	err = s.idx.Put(ctx, s.side, index.Entry{
		Key:         key,
		Fingerprint: s.schema.RowFingerprint(data),
		Data:        data,
		Seq:         seq,
	})
	if err != nil {
		return fmt.Errorf("store %s: %w", s.label, err)
	}
	return nil
}

// AddRows adds each element in order. Elements may be record.Data,
// *record.Data, map[string]any, map[string]string, RowMapper,
// json.Marshaler producing an object, or structs with diff tags.
func (s *Store) AddRows(ctx context.Context, rows []any, opts ...AddOption) error {
	o := addOptions{merge: s.onDuplicate}
	for _, opt := range opts {
		opt(&o)
	}
	for i, row := range rows {
		data, err := toData(row)
		if err != nil {
			return fmt.Errorf("store %s: row %d: %w", s.label, i, err)
		}
		if err := s.addRow(ctx, data, o); err != nil {
			return err
		}
	}
	return nil
}

// AddRowSeq adds every row of seq in order.
func (s *Store) AddRowSeq(ctx context.Context, seq iter.Seq[record.Data], opts ...AddOption) error {
	o := addOptions{merge: s.onDuplicate}
	for _, opt := range opts {
		opt(&o)
	}
	for data := range seq {
		if err := s.addRow(ctx, data, o); err != nil {
			return err
		}
	}
	return nil
}

// AddModel adds a struct with diff tags.
func (s *Store) AddModel(ctx context.Context, v any, opts ...AddOption) error {
	data, err := model.ValuesFromModel(v)
	if err != nil {
		return fmt.Errorf("store %s: %w", s.label, err)
	}
	return s.AddRow(ctx, data, opts...)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.idx.Count(ctx, s.side)
	if err != nil {
		return 0, fmt.Errorf("store %s: %w", s.label, err)
	}
	return n, nil
}

// Clear removes every row. Sequence numbers keep growing afterwards.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.idx.Clear(ctx, s.side); err != nil {
		return fmt.Errorf("store %s: %w", s.label, err)
	}
	s.log.Debug("Store cleared")
	return nil
}

// Iterate yields the stored rows in insertion order, unfiltered.
func (s *Store) Iterate(ctx context.Context) *Cursor[record.Data] {
	return newCursor(ctx, func(ctx context.Context, yield func(record.Data) bool) error {
		return s.idx.Scan(ctx, s.side, func(e index.Entry) bool {
			return yield(e.Data)
		})
	})
}

// translate renames fields per translation and keeps the rest.
func translate(data record.Data, translation map[string]string) record.Data {
	var out record.Data
	for name, v := range data.All() {
		if renamed, ok := translation[name]; ok {
			name = renamed
		}
		out.Set(name, v)
	}
	return out
}

func toData(row any) (record.Data, error) {
	switch v := row.(type) {
	case record.Data:
		return v, nil
	case *record.Data:
		if v == nil {
			return record.Data{}, nil
		}
		return *v, nil
	case map[string]any:
		return record.FromMap(v), nil
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return record.FromMap(m), nil
	case map[string]record.Value:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = val
		}
		return record.FromMap(m), nil
	case RowMapper:
		return v.DiffRow(), nil
	case json.Marshaler:
		b, err := v.MarshalJSON()
		if err != nil {
			return record.Data{}, err
		}
		var d record.Data
		if err := json.Unmarshal(b, &d); err != nil {
			return record.Data{}, err
		}
		return d, nil
	default:
		return model.ValuesFromModel(v)
	}
}

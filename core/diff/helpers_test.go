package diff

import (
	"context"
	"testing"

	"datadiff/core/record"
	"datadiff/core/schema"

	"github.com/stretchr/testify/require"
)

// eachBackend runs fn once per index backend.
func eachBackend(t *testing.T, fn func(t *testing.T, opts ...Option)) {
	for _, dsn := range []string{"memory:", "sqlite::memory:"} {
		t.Run(dsn, func(t *testing.T) {
			fn(t, WithDSN(dsn))
		})
	}
}

func newDiffStore(t *testing.T, keys, values []schema.Field, opts ...Option) *DiffStore {
	t.Helper()
	ds, err := New(context.Background(), keys, values, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func add(t *testing.T, s *Store, kv ...any) {
	t.Helper()
	require.NoError(t, s.AddRow(context.Background(), record.Of(kv...)))
}

func collect[T any](t *testing.T, c *Cursor[T]) []T {
	t.Helper()
	out, err := c.Collect()
	require.NoError(t, err)
	return out
}

func ints(t *testing.T, rows []*Row, field string) []int64 {
	t.Helper()
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.Get(field).Int()
	}
	return out
}

func intKeyValue() ([]schema.Field, []schema.Field) {
	return []schema.Field{schema.F("key", schema.TypeInt)}, []schema.Field{schema.F("value", schema.TypeInt)}
}

// clientFixture mirrors a typical import: A holds clients 2..501 with client
// 50 repriced, B holds clients 1..500.
func clientFixture(t *testing.T, opts ...Option) *DiffStore {
	t.Helper()
	ds := newDiffStore(t,
		[]schema.Field{schema.F("client_id", schema.TypeInt)},
		[]schema.Field{
			schema.F("description", schema.TypeString),
			schema.F("total", schema.TypeMoney),
			schema.F("a", schema.TypeInt),
		},
		opts...,
	)
	for i := 2; i <= 501; i++ {
		var total any = 59.98999
		if i == 50 {
			total = 60
		}
		add(t, ds.StoreA(), "client_id", i, "description", "Dies ist ein Test", "total", total, "a", nil, "test", i%2)
	}
	for i := 1; i <= 500; i++ {
		add(t, ds.StoreB(), "client_id", i, "description", "Dies ist ein Test", "total", 59.98999, "a", nil, "test", i%3)
	}
	return ds
}

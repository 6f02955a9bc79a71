package diff

import (
	"context"
	"errors"
	"strings"
	"testing"

	"datadiff/core/index"
	"datadiff/core/index/mocks"
	"datadiff/core/record"
	"datadiff/core/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQueries_ClientFixture(t *testing.T) {
	eachBackend(t, func(t *testing.T, opts ...Option) {
		ctx := context.Background()
		ds := clientFixture(t, opts...)
		a, b := ds.StoreA(), ds.StoreB()

		t.Run("new", func(t *testing.T) {
			rows := collect(t, a.NewRows(ctx))
			require.Len(t, rows, 1)
			assert.Equal(t, int64(501), rows[0].Get("client_id").Int())
			assert.Equal(t, `New client_id: 501 (description: "Dies ist ein Test", total: 59.98999, a: null)`, rows[0].String())

			rows = collect(t, b.NewRows(ctx))
			require.Len(t, rows, 1)
			assert.Equal(t, int64(1), rows[0].Get("client_id").Int())
		})

		t.Run("changed", func(t *testing.T) {
			rows := collect(t, a.ChangedRows(ctx))
			require.Len(t, rows, 1)
			r := rows[0]
			assert.Equal(t, RowChanged, r.Kind())
			assert.Equal(t, "Changed client_id: 50 => total: 59.98999 -> 60", r.String())
			assert.Equal(t, []string{"total", "test"}, r.Diff().Fields())

			rows = collect(t, b.ChangedRows(ctx))
			require.Len(t, rows, 1)
			assert.Equal(t, "Changed client_id: 50 => total: 60 -> 59.98999", rows[0].String())
		})

		t.Run("missing", func(t *testing.T) {
			rows := collect(t, a.MissingRows(ctx))
			require.Len(t, rows, 1)
			r := rows[0]
			assert.Equal(t, RowMissing, r.Kind())
			assert.False(t, r.HasLocal())
			assert.True(t, r.HasForeign())
			assert.Equal(t, int64(1), r.Get("client_id").Int())
			assert.Equal(t, 0, r.Data().Len())
			assert.Equal(t, int64(1), r.Foreign().Data().Get("client_id").Int())
			assert.Equal(t, `Missing client_id: 1 (description: "Dies ist ein Test", total: 59.98999, a: null)`, r.String())

			rows = collect(t, b.MissingRows(ctx))
			require.Len(t, rows, 1)
			assert.Equal(t, int64(501), rows[0].Get("client_id").Int())
		})

		t.Run("unchanged", func(t *testing.T) {
			rows := collect(t, a.UnchangedRows(ctx))
			require.Len(t, rows, 498)
			assert.Equal(t, "Unchanged client_id: 2", rows[0].String())
			for _, r := range rows {
				assert.NotEqual(t, int64(50), r.Get("client_id").Int())
			}
		})

		t.Run("new or changed or missing", func(t *testing.T) {
			type hit struct {
				pos  int
				id   int64
				kind RowKind
			}
			var got []hit
			c := a.NewOrChangedOrMissingRows(ctx)
			for i, r := range c.All() {
				got = append(got, hit{i, r.Get("client_id").Int(), r.Kind()})
			}
			require.NoError(t, c.Err())
			assert.Equal(t, []hit{
				{0, 50, RowChanged},
				{1, 501, RowNew},
				{0, 1, RowMissing},
			}, got)
		})

		t.Run("has any changes", func(t *testing.T) {
			changed, err := a.HasAnyChanges(ctx)
			require.NoError(t, err)
			assert.True(t, changed)
		})
	})
}

func TestQueries_NoChanges(t *testing.T) {
	eachBackend(t, func(t *testing.T, opts ...Option) {
		ctx := context.Background()
		keys, values := intKeyValue()
		ds := newDiffStore(t, keys, values, opts...)

		changed, err := ds.StoreA().HasAnyChanges(ctx)
		require.NoError(t, err)
		assert.False(t, changed, "empty stores")

		for i := range 5 {
			add(t, ds.StoreA(), "key", i, "value", i)
			add(t, ds.StoreB(), "key", i, "value", float64(i))
		}
		changed, err = ds.StoreA().HasAnyChanges(ctx)
		require.NoError(t, err)
		assert.False(t, changed)

		add(t, ds.StoreB(), "key", 99, "value", 1)
		changed, err = ds.StoreA().HasAnyChanges(ctx)
		require.NoError(t, err)
		assert.True(t, changed, "a row only in B is missing from A")
	})
}

func TestQueries_Limits(t *testing.T) {
	eachBackend(t, func(t *testing.T, opts ...Option) {
		ctx := context.Background()
		keys, values := intKeyValue()
		ds := newDiffStore(t, keys, values, opts...)

		for i := 0; i < 100; i++ {
			v := i + 1
			if i == 99 {
				v = i
			}
			add(t, ds.StoreB(), "key", i, "value", v)
		}
		for i := 50; i < 150; i++ {
			add(t, ds.StoreA(), "key", i, "value", i)
		}
		b := ds.StoreB()

		tests := []struct {
			name  string
			query func(...QueryOption) *Cursor[*Row]
			all   int
		}{
			{"new", func(o ...QueryOption) *Cursor[*Row] { return b.NewRows(ctx, o...) }, 50},
			{"changed", func(o ...QueryOption) *Cursor[*Row] { return b.ChangedRows(ctx, o...) }, 49},
			{"new or changed", func(o ...QueryOption) *Cursor[*Row] { return b.NewOrChangedRows(ctx, o...) }, 99},
			{"missing", func(o ...QueryOption) *Cursor[*Row] { return b.MissingRows(ctx, o...) }, 50},
			{"unchanged", func(o ...QueryOption) *Cursor[*Row] { return b.UnchangedRows(ctx, o...) }, 1},
			{"new or changed or missing", func(o ...QueryOption) *Cursor[*Row] { return b.NewOrChangedOrMissingRows(ctx, o...) }, 149},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Len(t, collect(t, tt.query()), tt.all)
				assert.Len(t, collect(t, tt.query(Limit(0))), tt.all)

				want := min(tt.all, 10)
				if tt.name == "new or changed or missing" {
					want = 20
				}
				assert.Len(t, collect(t, tt.query(Limit(10))), want)
			})
		}

		t.Run("new or changed keeps insertion order", func(t *testing.T) {
			rows := collect(t, b.NewOrChangedRows(ctx))
			for i, r := range rows {
				assert.Equal(t, int64(i), r.Get("key").Int())
				if i < 50 {
					assert.Equal(t, RowNew, r.Kind())
				} else {
					assert.Equal(t, RowChanged, r.Kind())
				}
			}
		})
	})
}

func TestQueries_RowData(t *testing.T) {
	eachBackend(t, func(t *testing.T, opts ...Option) {
		ctx := context.Background()
		ds := newDiffStore(t,
			[]schema.Field{schema.F("a", schema.TypeInt)},
			[]schema.Field{schema.F("b", schema.TypeInt)},
			opts...,
		)
		add(t, ds.StoreA(), "a", 3, "b", 1, "c", 2)
		add(t, ds.StoreB(), "a", 3, "b", 2, "c", 1)

		rows := collect(t, ds.StoreB().ChangedRows(ctx))
		require.Len(t, rows, 1)
		r := rows[0]

		tests := []struct {
			name string
			opts []DataOption
			want map[string]any
		}{
			{"all", nil, map[string]any{"a": int64(3), "b": int64(2), "c": int64(1)}},
			{"only differences", []DataOption{OnlyDifferences()}, map[string]any{"b": int64(2), "c": int64(1)}},
			{"only schema fields", []DataOption{OnlySchemaFields()}, map[string]any{"a": int64(3), "b": int64(2)}},
			{"both", []DataOption{OnlyDifferences(), OnlySchemaFields()}, map[string]any{"b": int64(2)}},
			{"keys", []DataOption{Keys("a", "c")}, map[string]any{"a": int64(3), "c": int64(1)}},
			{"keys none", []DataOption{Keys()}, map[string]any{}},
			{"ignore", []DataOption{Ignore("c")}, map[string]any{"a": int64(3), "b": int64(2)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, r.Data(tt.opts...).Map())
			})
		}

		assert.Equal(t, map[string]any{"a": int64(3), "b": int64(1), "c": int64(2)}, r.ForeignData().Map())
		assert.Equal(t, map[string]any{"b": int64(1), "c": int64(2)}, r.ForeignData(OnlyDifferences()).Map())
		assert.Equal(t, map[string]any{"a": int64(3)}, r.KeyData().Map())
		assert.Equal(t, map[string]any{"b": int64(2)}, r.ValueData().Map())
		assert.Equal(t, map[string]any{"b": int64(1)}, r.Foreign().ValueData().Map())

		// projections never alias the stored row
		d := r.Data()
		d.Set("b", record.Int(100))
		assert.Equal(t, int64(2), r.Data().Get("b").Int())
	})
}

func TestQueries_DiffBothDirections(t *testing.T) {
	eachBackend(t, func(t *testing.T, opts ...Option) {
		ctx := context.Background()
		ds := newDiffStore(t,
			[]schema.Field{schema.F("key", schema.TypeInt)},
			[]schema.Field{schema.F("a", schema.TypeInt), schema.F("b", schema.TypeInt)},
			opts...,
		)
		add(t, ds.StoreA(), "key", 1, "a", 1, "b", 2, "c", 3)
		add(t, ds.StoreB(), "key", 1, "a", 3, "b", 2)

		rows := collect(t, ds.StoreB().ChangedRows(ctx))
		require.Len(t, rows, 1)
		d := rows[0].Diff()
		assert.Equal(t, []string{"a", "c"}, d.Fields())
		assert.Equal(t, map[string]map[string]any{
			"a": {"local": int64(3), "foreign": int64(1)},
			"c": {"local": nil, "foreign": int64(3)},
		}, d.Map())

		rows = collect(t, ds.StoreA().ChangedRows(ctx))
		require.Len(t, rows, 1)
		assert.Equal(t, map[string]map[string]any{
			"a": {"local": int64(1), "foreign": int64(3)},
			"c": {"local": int64(3), "foreign": nil},
		}, rows[0].Diff().Map())

		// Local and Foreign views of one row are mirror images
		fd, ok := rows[0].Foreign().Diff().Get("a")
		require.True(t, ok)
		assert.Equal(t, int64(3), fd.Local.Int())
		assert.Equal(t, int64(1), fd.Foreign.Int())

		assert.Equal(t, []string{"c"}, rows[0].Diff("c", "b").Fields())
	})
}

func TestQueries_StringForms(t *testing.T) {
	ctx := context.Background()
	ds := newDiffStore(t,
		[]schema.Field{schema.F("a", schema.TypeInt)},
		[]schema.Field{schema.F("b", schema.TypeString)},
	)
	add(t, ds.StoreA(), "a", 1, "b", nil)
	add(t, ds.StoreB(), "a", 1, "b", "0")
	add(t, ds.StoreA(), "a", 2, "b", "Lorem ipsum dolor sit amet, consectetur adipiscing elit")

	changed := collect(t, ds.StoreA().ChangedRows(ctx))
	require.Len(t, changed, 1)
	assert.Equal(t, `Changed a: 1 => b: "0" -> null`, changed[0].String())

	changed = collect(t, ds.StoreB().ChangedRows(ctx))
	require.Len(t, changed, 1)
	assert.Equal(t, `Changed a: 1 => b: null -> "0"`, changed[0].String())

	added := collect(t, ds.StoreA().NewRows(ctx))
	require.Len(t, added, 1)
	assert.Equal(t, `New a: 2 (b: "Lorem ipsum do...adipiscing elit")`, added[0].String())

	b, err := added[0].MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2,"b":"Lorem ipsum dolor sit amet, consectetur adipiscing elit"}`, string(b))
}

func TestQueries_DiffFormatted(t *testing.T) {
	ctx := context.Background()
	ds := newDiffStore(t,
		[]schema.Field{schema.F("id", schema.TypeInt)},
		[]schema.Field{schema.F("text", schema.TypeString), schema.F("n", schema.TypeInt)},
	)
	long := strings.Repeat("0123456789", 5) + "ABCDEF"
	add(t, ds.StoreA(), "id", 1, "text", "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "n", 1)
	add(t, ds.StoreB(), "id", 1, "text", "x", "n", 2)
	add(t, ds.StoreA(), "id", 2, "text", long)
	add(t, ds.StoreB(), "id", 2, "text", "short")

	rows := collect(t, ds.StoreA().ChangedRows(ctx))
	require.Len(t, rows, 2)

	got, err := rows[0].DiffFormatted(nil, DefaultFormat)
	require.NoError(t, err)
	assert.Equal(t, `text: "x" -> "ABCDEFGHIJKLMNOPQRSTUVWXYZ", n: 2 -> 1`, got)

	got, err = rows[0].DiffFormatted([]string{"n"}, DefaultFormat)
	require.NoError(t, err)
	assert.Equal(t, `n: 2 -> 1`, got)

	got, err = rows[1].DiffFormatted(nil, DefaultFormat)
	require.NoError(t, err)
	assert.Equal(t, `text: "short" -> "01234567890123...123456789ABCDEF"`, got)

	_, err = rows[0].DiffFormatted(nil, "html")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "html", fe.Format)
}

func TestQueries_RowKindString(t *testing.T) {
	tests := []struct {
		kind RowKind
		want string
	}{
		{RowNew, "new"},
		{RowChanged, "changed"},
		{RowMissing, "missing"},
		{RowUnchanged, "unchanged"},
		{RowKind(0), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestQueries_HasAnyChangesStopsAtFirst(t *testing.T) {
	ctx := context.Background()
	keys, values := intKeyValue()

	idx := new(mocks.KeyedIndex)
	local := index.JoinQuery{Local: index.SideA, Match: index.MatchAbsent | index.MatchChanged, Limit: 1}
	idx.On("Join", mock.Anything, local, mock.Anything).
		Return([]index.Entry{{Key: "k", Data: record.Of("key", 1)}}, nil).Once()
	idx.On("Close").Return(nil)

	ds, err := New(ctx, keys, values, WithIndex(idx))
	require.NoError(t, err)
	defer ds.Close()

	changed, err := ds.StoreA().HasAnyChanges(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	idx.AssertNotCalled(t, "Join", mock.Anything, index.JoinQuery{Local: index.SideB, Match: index.MatchAbsent, Limit: 1}, mock.Anything)
	idx.AssertExpectations(t)
}

func TestQueries_JoinErrors(t *testing.T) {
	ctx := context.Background()
	keys, values := intKeyValue()
	boom := errors.New("boom")

	idx := new(mocks.KeyedIndex)
	idx.On("Join", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)
	idx.On("Close").Return(nil)

	ds, err := New(ctx, keys, values, WithIndex(idx))
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.StoreA().HasAnyChanges(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = ds.StoreA().NewRows(ctx).Collect()
	assert.ErrorIs(t, err, boom)
}

package diff

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"datadiff/core/database"
	"datadiff/core/record"
	"datadiff/core/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, nil, nil)
	assert.ErrorIs(t, err, schema.ErrEmptySchema)

	_, err = New(ctx, []schema.Field{schema.F("key", schema.TypeInt)}, []schema.Field{schema.F("a", "INTEGR")})
	assert.ErrorIs(t, err, schema.ErrInvalidSchema)
	var fieldErr *schema.InvalidFieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "a", fieldErr.Field)

	_, err = New(ctx, []schema.Field{schema.F("key", schema.TypeInt)}, nil, WithDSN("postgres:x"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = New(ctx, []schema.Field{schema.F("key", schema.TypeInt)}, nil, WithDSN("sqlite:"+filepath.Join(t.TempDir(), "missing", "dir", "x.db")))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestDiffStore_Accessors(t *testing.T) {
	ds := newDiffStore(t, []schema.Field{schema.F("id", schema.TypeInt)}, []schema.Field{schema.F("name", schema.TypeString)})

	assert.Equal(t, []string{"id"}, ds.Keys())
	assert.Equal(t, "A", ds.StoreA().Label())
	assert.Equal(t, "B", ds.StoreB().Label())
	assert.Same(t, ds.StoreB(), ds.StoreA().Mirror())
	assert.Same(t, ds.StoreA(), ds.StoreB().Mirror())
	assert.Same(t, ds.Schema(), ds.StoreA().Schema())

	assert.NoError(t, ds.Close())
	assert.NoError(t, ds.Close())
}

func TestNewFile(t *testing.T) {
	ctx := context.Background()
	keys, values := intKeyValue()

	t.Run("named file is truncated", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diff.db")
		require.NoError(t, os.WriteFile(path, []byte("not a database"), 0o600))

		ds, err := NewFile(ctx, path, keys, values)
		require.NoError(t, err)

		add(t, ds.StoreA(), "key", 1, "value", 1)
		add(t, ds.StoreB(), "key", 1, "value", 2)
		rows := collect(t, ds.StoreA().ChangedRows(ctx))
		assert.Len(t, rows, 1)

		require.NoError(t, ds.Close())
		_, err = os.Stat(path)
		assert.NoError(t, err, "named files are kept")
	})

	t.Run("temporary file is removed on close", func(t *testing.T) {
		ds, err := NewFile(ctx, "", keys, values)
		require.NoError(t, err)
		require.NotEmpty(t, ds.tempFile)
		assert.Contains(t, filepath.Base(ds.tempFile), "data-diff-")

		add(t, ds.StoreA(), "key", 1, "value", 1)
		n, err := ds.StoreA().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		require.NoError(t, ds.Close())
		_, err = os.Stat(ds.tempFile)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, err := NewFile(ctx, filepath.Join(t.TempDir(), "no", "such", "dir.db"), keys, values)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})
}

type annotatedModel struct {
	ID        string    `diff:"id,STR,key"`
	Qty       int       `diff:"quantity,INT"`
	IsActive  bool      `diff:"active,BOOL"`
	AmountF   float64   `diff:"amount,MONEY"`
	CreatedAt time.Time `diff:"created_at,STR,format=2006-01-02 15:04:05"`
}

func TestNewFromModel(t *testing.T) {
	ctx := context.Background()
	ds, err := NewFromModel(ctx, annotatedModel{})
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, []string{"id"}, ds.Keys())

	m := annotatedModel{ID: "abc", Qty: 5, IsActive: true, AmountF: 9.99, CreatedAt: time.Date(2022, 7, 26, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, ds.StoreA().AddModel(ctx, m))

	m.AmountF = 9.989999
	require.NoError(t, ds.StoreB().AddModel(ctx, &m))

	unchanged := collect(t, ds.StoreA().UnchangedRows(ctx))
	require.Len(t, unchanged, 1)
	assert.Equal(t, "2022-07-26 12:00:00", unchanged[0].Get("created_at").String())
}

func TestDiffStore_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	keys, values := intKeyValue()
	ds := newDiffStore(t, keys, values, WithLogger(zap.New(core)))

	add(t, ds.StoreA(), "key", 1, "value", 1)
	add(t, ds.StoreA(), "key", 1, "value", 2)

	entries := logs.FilterMessage("Duplicate key replaced").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].ContextMap()["store"])
	assert.Equal(t, 1, logs.FilterMessage("Diff store created").Len())
}

func TestDiffStore_SharedIndexKeepsSidesApart(t *testing.T) {
	eachBackend(t, func(t *testing.T, opts ...Option) {
		keys, values := intKeyValue()
		ds := newDiffStore(t, keys, values, opts...)
		ctx := context.Background()

		add(t, ds.StoreA(), "key", 1, "value", 1)
		add(t, ds.StoreA(), "key", 2, "value", 1)
		add(t, ds.StoreB(), "key", 1, "value", 1)

		na, err := ds.StoreA().Count(ctx)
		require.NoError(t, err)
		nb, err := ds.StoreB().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, na)
		assert.Equal(t, 1, nb)

		rows := collect(t, ds.StoreB().Iterate(ctx))
		require.Len(t, rows, 1)
		assert.True(t, record.Of("key", 1, "value", 1).Equal(rows[0]))
	})
}

func TestNew_WithDatabase(t *testing.T) {
	ctx := context.Background()
	keys, values := intKeyValue()
	ds, err := New(ctx, keys, values, WithDatabase(database.Config{DSN: "sqlite::memory:", MaxOpenConns: 2, TimeoutSeconds: 5}))
	require.NoError(t, err)
	defer ds.Close()

	add(t, ds.StoreA(), "key", 1, "value", 1)
	n, err := ds.StoreA().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = New(ctx, keys, values, WithDatabase(database.Config{DSN: "postgres:x"}))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

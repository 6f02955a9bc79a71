package diff

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"datadiff/core/database"
	"datadiff/core/index"
	"datadiff/core/logger"
	"datadiff/core/model"
	"datadiff/core/schema"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DiffStore owns the schema and the two mirrored stores.
type DiffStore struct {
	schema    *schema.Schema
	idx       index.KeyedIndex
	a, b      *Store
	log       *zap.Logger
	tempFile  string
	closeOnce sync.Once
	closeErr  error
}

// New compiles the schema and opens the index selected by the options.
// Schema errors wrap schema.ErrEmptySchema or schema.ErrInvalidSchema, index
// failures wrap ErrStorageUnavailable.
func New(ctx context.Context, keys, values []schema.Field, opts ...Option) (*DiffStore, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return open(ctx, keys, values, cfg)
}

// NewFile is New backed by a SQLite file. The file is created or truncated.
// An empty filename creates a temporary file that Close removes.
func NewFile(ctx context.Context, filename string, keys, values []schema.Field, opts ...Option) (*DiffStore, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	temp := filename == ""
	if temp {
		filename = filepath.Join(os.TempDir(), "data-diff-"+uuid.NewString()+".db")
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	cfg.dsn = "sqlite:" + filename
	cfg.index = nil
	ds, err := open(ctx, keys, values, cfg)
	if err != nil {
		if temp {
			_ = os.Remove(filename)
		}
		return nil, err
	}
	if temp {
		ds.tempFile = filename
	}
	return ds, nil
}

// NewFromModel is New with the schema read from the diff tags of v.
func NewFromModel(ctx context.Context, v any, opts ...Option) (*DiffStore, error) {
	keys, values, err := model.SchemaFromModel(v)
	if err != nil {
		return nil, err
	}
	return New(ctx, keys, values, opts...)
}

func open(ctx context.Context, keys, values []schema.Field, cfg *config) (*DiffStore, error) {
	log := logger.OrNop(cfg.logger)

	s, err := schema.Compile(keys, values)
	if err != nil {
		return nil, err
	}

	idx := cfg.index
	if idx == nil {
		idx, err = openIndex(ctx, cfg.dsn, cfg.database)
		if err != nil {
			return nil, err
		}
	}

	ds := &DiffStore{schema: s, idx: idx, log: log}
	ds.a = newStore("A", index.SideA, s, idx, cfg.onDuplicate, log)
	ds.b = newStore("B", index.SideB, s, idx, cfg.onDuplicate, log)
	ds.a.mirror = ds.b
	ds.b.mirror = ds.a

	log.Debug("Diff store created",
		zap.Strings("keys", s.KeyNames()),
		zap.Strings("values", s.ValueNames()),
		zap.String("dsn", cfg.dsn),
	)
	return ds, nil
}

func openIndex(ctx context.Context, dsn string, dbCfg database.Config) (index.KeyedIndex, error) {
	target, err := database.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if target.Driver == database.DriverMemory {
		return index.NewMemory(), nil
	}

	db, err := database.Open(ctx, target, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	idx, err := index.NewSQL(ctx, db, index.WithOwnedDB())
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return idx, nil
}

func (d *DiffStore) StoreA() *Store { return d.a }
func (d *DiffStore) StoreB() *Store { return d.b }

// Keys returns the key field names.
func (d *DiffStore) Keys() []string { return d.schema.KeyNames() }

func (d *DiffStore) Schema() *schema.Schema { return d.schema }

// Close releases the index and removes a temporary file. It is safe to call
// more than once.
func (d *DiffStore) Close() error {
	d.closeOnce.Do(func() {
		err := d.idx.Close()
		if d.tempFile != "" {
			if rmErr := os.Remove(d.tempFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				err = errors.Join(err, rmErr)
			}
		}
		d.closeErr = err
	})
	return d.closeErr
}

package diff

import (
	"datadiff/core/database"
	"datadiff/core/index"
	"datadiff/core/record"

	"go.uber.org/zap"
)

// MergeFunc resolves a duplicate key. It receives the incoming row and the
// stored row and returns the row to store.
type MergeFunc func(newData, oldData record.Data) record.Data

type config struct {
	dsn         string
	database    database.Config
	index       index.KeyedIndex
	onDuplicate MergeFunc
	logger      *zap.Logger
}

// Option configures a DiffStore.
type Option func(*config)

// WithDSN selects the index backend, see database.ParseDSN. The default is
// the in-memory index.
func WithDSN(dsn string) Option {
	return func(c *config) { c.dsn = dsn }
}

// WithDatabase selects the index backend by cfg.DSN and applies the pool and
// timeout settings of cfg to SQL backends.
func WithDatabase(cfg database.Config) Option {
	return func(c *config) {
		c.dsn = cfg.DSN
		c.database = cfg
	}
}

// WithIndex uses idx instead of opening one from the DSN. The DiffStore
// closes it on Close.
func WithIndex(idx index.KeyedIndex) Option {
	return func(c *config) { c.index = idx }
}

// WithDuplicateKeyHandler sets the default merge function of both stores.
func WithDuplicateKeyHandler(fn MergeFunc) Option {
	return func(c *config) { c.onDuplicate = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

type addOptions struct {
	translation map[string]string
	merge       MergeFunc
}

// AddOption configures a single AddRow or AddRows call.
type AddOption func(*addOptions)

// WithTranslation renames incoming fields, old name to new name, before the
// row is stored.
func WithTranslation(translation map[string]string) AddOption {
	return func(o *addOptions) { o.translation = translation }
}

// WithDuplicateHandler overrides the store's merge function for one call.
func WithDuplicateHandler(fn MergeFunc) AddOption {
	return func(o *addOptions) { o.merge = fn }
}

type queryOptions struct {
	limit int
}

// QueryOption configures a set query.
type QueryOption func(*queryOptions)

// Limit caps the number of rows a query returns. Zero or less means no limit.
// For NewOrChangedOrMissingRows the cap applies to each of the two blocks.
func Limit(n int) QueryOption {
	return func(o *queryOptions) { o.limit = n }
}

type dataOptions struct {
	keys       []string
	hasKeys    bool
	ignore     []string
	onlyDiff   bool
	onlySchema bool
}

// DataOption projects the row returned by Data and ForeignData. Options are
// applied in the order Keys, Ignore, OnlyDifferences, OnlySchemaFields.
type DataOption func(*dataOptions)

// Keys keeps only the named fields.
func Keys(names ...string) DataOption {
	return func(o *dataOptions) {
		o.keys = append(o.keys, names...)
		o.hasKeys = true
	}
}

// Ignore drops the named fields.
func Ignore(names ...string) DataOption {
	return func(o *dataOptions) { o.ignore = append(o.ignore, names...) }
}

// OnlyDifferences keeps only the fields reported by Diff.
func OnlyDifferences() DataOption {
	return func(o *dataOptions) { o.onlyDiff = true }
}

// OnlySchemaFields drops fields that are not declared in the schema.
func OnlySchemaFields() DataOption {
	return func(o *dataOptions) { o.onlySchema = true }
}

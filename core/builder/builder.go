// Package builder declares a DiffStore schema one field at a time.
package builder

import (
	"context"

	"datadiff/core/diff"
	"datadiff/core/schema"
)

// Builder collects key and value fields for a DiffStore. The zero value is
// ready to use. Methods return the builder so calls can be chained.
type Builder struct {
	keys   []schema.Field
	values []schema.Field
	extras []schema.Field
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) addKey(name string, t schema.FieldType) *Builder {
	b.keys = append(b.keys, schema.F(name, t))
	return b
}

func (b *Builder) addValue(name string, t schema.FieldType) *Builder {
	b.values = append(b.values, schema.F(name, t))
	return b
}

// Extra fields are not part of the schema. They are stored and diffed raw
// whether or not they are declared, so declaring them only documents the
// row shape.
func (b *Builder) addExtra(name string, t schema.FieldType) *Builder {
	b.extras = append(b.extras, schema.F(name, t))
	return b
}

func (b *Builder) AddBoolKey(name string) *Builder   { return b.addKey(name, schema.TypeBool) }
func (b *Builder) AddIntKey(name string) *Builder    { return b.addKey(name, schema.TypeInt) }
func (b *Builder) AddFloatKey(name string) *Builder  { return b.addKey(name, schema.TypeFloat) }
func (b *Builder) AddDoubleKey(name string) *Builder { return b.addKey(name, schema.TypeDouble) }
func (b *Builder) AddMoneyKey(name string) *Builder  { return b.addKey(name, schema.TypeMoney) }
func (b *Builder) AddStringKey(name string) *Builder { return b.addKey(name, schema.TypeString) }
func (b *Builder) AddMD5Key(name string) *Builder    { return b.addKey(name, schema.TypeMD5) }

func (b *Builder) AddBoolValue(name string) *Builder   { return b.addValue(name, schema.TypeBool) }
func (b *Builder) AddIntValue(name string) *Builder    { return b.addValue(name, schema.TypeInt) }
func (b *Builder) AddFloatValue(name string) *Builder  { return b.addValue(name, schema.TypeFloat) }
func (b *Builder) AddDoubleValue(name string) *Builder { return b.addValue(name, schema.TypeDouble) }
func (b *Builder) AddMoneyValue(name string) *Builder  { return b.addValue(name, schema.TypeMoney) }
func (b *Builder) AddStringValue(name string) *Builder { return b.addValue(name, schema.TypeString) }
func (b *Builder) AddMD5Value(name string) *Builder    { return b.addValue(name, schema.TypeMD5) }

func (b *Builder) AddBoolExtra(name string) *Builder   { return b.addExtra(name, schema.TypeBool) }
func (b *Builder) AddIntExtra(name string) *Builder    { return b.addExtra(name, schema.TypeInt) }
func (b *Builder) AddFloatExtra(name string) *Builder  { return b.addExtra(name, schema.TypeFloat) }
func (b *Builder) AddDoubleExtra(name string) *Builder { return b.addExtra(name, schema.TypeDouble) }
func (b *Builder) AddMoneyExtra(name string) *Builder  { return b.addExtra(name, schema.TypeMoney) }
func (b *Builder) AddStringExtra(name string) *Builder { return b.addExtra(name, schema.TypeString) }
func (b *Builder) AddMD5Extra(name string) *Builder    { return b.addExtra(name, schema.TypeMD5) }

// Keys returns the declared key fields in order.
func (b *Builder) Keys() []schema.Field { return append([]schema.Field(nil), b.keys...) }

// Values returns the declared value fields in order.
func (b *Builder) Values() []schema.Field { return append([]schema.Field(nil), b.values...) }

// Extras returns the declared extra fields in order.
func (b *Builder) Extras() []schema.Field { return append([]schema.Field(nil), b.extras...) }

// Build opens a DiffStore with the declared schema. The builder can be reused
// afterwards.
func (b *Builder) Build(ctx context.Context, opts ...diff.Option) (*diff.DiffStore, error) {
	return diff.New(ctx, b.Keys(), b.Values(), opts...)
}

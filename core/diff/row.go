package diff

import (
	"encoding/json"

	"datadiff/core/record"
	"datadiff/core/schema"

	mapset "github.com/deckarep/golang-set/v2"
)

// RowKind tells which query produced a row.
type RowKind uint8

const (
	RowNew RowKind = iota + 1
	RowChanged
	RowMissing
	RowUnchanged
)

func (k RowKind) String() string {
	switch k {
	case RowNew:
		return "new"
	case RowChanged:
		return "changed"
	case RowMissing:
		return "missing"
	case RowUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// RowData is a row seen from one side: Data is that side's row and
// ForeignData the row of the other side with the same key. An absent side is
// an empty row.
type RowData struct {
	schema  *schema.Schema
	data    record.Data
	foreign record.Data
}

// Data returns this side's row after applying opts.
func (r RowData) Data(opts ...DataOption) record.Data {
	return project(r.schema, r.data, buildDataOptions(opts), r.diffFields)
}

// ForeignData returns the other side's row after applying opts.
func (r RowData) ForeignData(opts ...DataOption) record.Data {
	return project(r.schema, r.foreign, buildDataOptions(opts), r.diffFields)
}

// KeyData projects Data to the key fields.
func (r RowData) KeyData() record.Data {
	return r.Data(Keys(r.schema.KeyNames()...))
}

// ValueData projects Data to the value fields.
func (r RowData) ValueData() record.Data {
	return r.Data(Keys(r.schema.ValueNames()...))
}

// Diff reports the fields whose canonical values differ, optionally limited
// to fields.
func (r RowData) Diff(fields ...string) Diff {
	return computeDiff(r.schema, r.data, r.foreign, fields)
}

// DiffFormatted renders Diff(fields...) as "field: foreign -> local" pairs.
// Only DefaultFormat is supported.
func (r RowData) DiffFormatted(fields []string, format string) (string, error) {
	if format != DefaultFormat {
		return "", &FormatError{Format: format}
	}
	return formatDiff(r.Diff(fields...), format)
}

func (r RowData) diffFields() []string {
	return r.Diff().Fields()
}

func buildDataOptions(opts []DataOption) dataOptions {
	var o dataOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Row is a query result pairing the local and foreign row of one key.
type Row struct {
	kind       RowKind
	key        string
	schema     *schema.Schema
	local      record.Data
	foreign    record.Data
	hasLocal   bool
	hasForeign bool
}

func (r *Row) Kind() RowKind { return r.kind }

// Key is the canonical key shared by both sides.
func (r *Row) Key() string { return r.key }

// Local views the row from the store that ran the query.
func (r *Row) Local() RowData {
	return RowData{schema: r.schema, data: r.local, foreign: r.foreign}
}

// Foreign views the row from the mirror store.
func (r *Row) Foreign() RowData {
	return RowData{schema: r.schema, data: r.foreign, foreign: r.local}
}

// HasLocal reports whether the querying store holds the row.
func (r *Row) HasLocal() bool { return r.hasLocal }

// HasForeign reports whether the mirror store holds the row.
func (r *Row) HasForeign() bool { return r.hasForeign }

func (r *Row) Data(opts ...DataOption) record.Data        { return r.Local().Data(opts...) }
func (r *Row) ForeignData(opts ...DataOption) record.Data { return r.Local().ForeignData(opts...) }
func (r *Row) KeyData() record.Data                       { return r.Local().KeyData() }
func (r *Row) ValueData() record.Data                     { return r.Local().ValueData() }
func (r *Row) Diff(fields ...string) Diff                 { return r.Local().Diff(fields...) }

func (r *Row) DiffFormatted(fields []string, format string) (string, error) {
	return r.Local().DiffFormatted(fields, format)
}

// primary is the local row, or the foreign row for missing rows.
func (r *Row) primary() record.Data {
	if r.hasLocal {
		return r.local
	}
	return r.foreign
}

// Get reads a field of the primary row. Absent fields are null.
func (r *Row) Get(field string) record.Value { return r.primary().Get(field) }

func (r *Row) Has(field string) bool { return r.primary().Has(field) }

// String describes the row for humans, e.g.
//
//	New id: 1 (name: "Peter")
//	Changed id: 1 => name: "Paul" -> "Peter"
//	Missing id: 2 (name: "Mary")
//	Unchanged id: 3
func (r *Row) String() string {
	keyNames := r.schema.KeyNames()
	valueNames := r.schema.ValueNames()
	primary := r.primary()
	keys := formatPairs(primary.Filter(contains(keyNames)), false)

	switch r.kind {
	case RowChanged:
		d, _ := formatDiff(r.Diff(valueNames...), DefaultFormat)
		return "Changed " + keys + " => " + d
	case RowUnchanged:
		return "Unchanged " + keys
	case RowMissing:
		return "Missing " + keys + " (" + formatPairs(primary.Filter(contains(valueNames)), true) + ")"
	default:
		return "New " + keys + " (" + formatPairs(primary.Filter(contains(valueNames)), true) + ")"
	}
}

// MarshalJSON encodes the primary row.
func (r *Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.primary())
}

func contains(names []string) func(string) bool {
	set := mapset.NewThreadUnsafeSet(names...)
	return func(name string) bool { return set.Contains(name) }
}

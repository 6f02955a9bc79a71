package diff

import (
	"strconv"
	"strings"

	"datadiff/core/record"
	"datadiff/core/schema"
	"datadiff/core/utils"

	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultFormat is the only format DiffFormatted accepts.
const DefaultFormat = ""

// FieldDiff is one field whose canonical values differ between the two sides.
// Local and Foreign hold the raw values.
type FieldDiff struct {
	Field   string
	Local   record.Value
	Foreign record.Value
}

// Diff lists differing fields in a stable order: value fields first, then the
// remaining fields of the local row, then those of the foreign row.
type Diff []FieldDiff

func (d Diff) Len() int { return len(d) }

func (d Diff) Get(field string) (FieldDiff, bool) {
	for _, fd := range d {
		if fd.Field == field {
			return fd, true
		}
	}
	return FieldDiff{}, false
}

func (d Diff) Fields() []string {
	out := make([]string, len(d))
	for i, fd := range d {
		out[i] = fd.Field
	}
	return out
}

// Map returns field -> {"local": v, "foreign": v} with plain Go values.
func (d Diff) Map() map[string]map[string]any {
	out := make(map[string]map[string]any, len(d))
	for _, fd := range d {
		out[fd.Field] = map[string]any{
			"local":   fd.Local.Any(),
			"foreign": fd.Foreign.Any(),
		}
	}
	return out
}

// computeDiff compares local and foreign field by field. When fields is not
// empty only those names are considered.
func computeDiff(s *schema.Schema, local, foreign record.Data, fields []string) Diff {
	var only mapset.Set[string]
	if len(fields) > 0 {
		only = mapset.NewThreadUnsafeSet(fields...)
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	var names []string
	add := func(name string) {
		if only != nil && !only.Contains(name) {
			return
		}
		if seen.Add(name) {
			names = append(names, name)
		}
	}
	for _, name := range s.ValueNames() {
		add(name)
	}
	for name := range local.All() {
		add(name)
	}
	for name := range foreign.All() {
		add(name)
	}

	var out Diff
	for _, name := range names {
		l, f := local.Get(name), foreign.Get(name)
		if comparisonKey(s.Canonicalize(name, l)) == comparisonKey(s.Canonicalize(name, f)) {
			continue
		}
		out = append(out, FieldDiff{Field: name, Local: l, Foreign: f})
	}
	return out
}

// comparisonKey renders a canonical value for equality checks. Floats use eight
// decimals so binary noise does not register as a change; null gets a marker
// no string form can produce.
func comparisonKey(v record.Value) string {
	switch v.Kind() {
	case record.KindNull:
		return "\x00null"
	case record.KindFloat:
		return "f:" + strconv.FormatFloat(v.Float(), 'f', 8, 64)
	default:
		return "v:" + v.String()
	}
}

// formatDiff renders a diff as "field: foreign -> local" pairs.
func formatDiff(d Diff, format string) (string, error) {
	if format != DefaultFormat {
		return "", &FormatError{Format: format}
	}
	parts := make([]string, 0, len(d))
	for _, fd := range d {
		parts = append(parts, fd.Field+": "+displayJSON(fd.Foreign)+" -> "+displayJSON(fd.Local))
	}
	return strings.Join(parts, ", "), nil
}

// displayJSON encodes a value for humans, shortening long strings.
func displayJSON(v record.Value) string {
	if v.Kind() == record.KindString {
		return utils.JSONString(utils.Shorten(v.String(), utils.DefaultShortenLength))
	}
	return utils.JSONString(v)
}

// formatPairs renders "name: json" pairs joined by ", ".
func formatPairs(d record.Data, shorten bool) string {
	parts := make([]string, 0, d.Len())
	for name, v := range d.All() {
		rendered := utils.JSONString(v)
		if shorten {
			rendered = displayJSON(v)
		}
		parts = append(parts, name+": "+rendered)
	}
	return strings.Join(parts, ", ")
}

// project applies data options to row. diffFields is consulted only for
// OnlyDifferences.
func project(s *schema.Schema, row record.Data, o dataOptions, diffFields func() []string) record.Data {
	out := row
	if o.hasKeys {
		keep := mapset.NewThreadUnsafeSet(o.keys...)
		out = out.Filter(func(name string) bool { return keep.Contains(name) })
	}
	if len(o.ignore) > 0 {
		drop := mapset.NewThreadUnsafeSet(o.ignore...)
		out = out.Filter(func(name string) bool { return !drop.Contains(name) })
	}
	if o.onlyDiff {
		keep := mapset.NewThreadUnsafeSet(diffFields()...)
		out = out.Filter(func(name string) bool { return keep.Contains(name) })
	}
	if o.onlySchema {
		out = out.Filter(s.Has)
	}
	if out.Len() == row.Len() {
		return row.Clone()
	}
	return out
}

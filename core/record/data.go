package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"sort"
)

// Data is a row: a string-keyed map of Values that remembers insertion order.
// The zero Data is an empty row ready to use. Copies share storage; use Clone
// before mutating a row obtained from somewhere else.
type Data struct {
	keys   []string
	values map[string]Value
}

// Of builds a row from alternating name/value arguments. It panics when a
// name is not a string, which makes it suitable for literals and tests.
func Of(kv ...any) Data {
	if len(kv)%2 != 0 {
		panic("record.Of: odd number of arguments")
	}
	var d Data
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("record.Of: argument %d is %T, not a field name", i, kv[i]))
		}
		d.Set(name, ValueOf(kv[i+1]))
	}
	return d
}

// FromMap builds a row from a Go map. Map iteration order is random, so the
// fields are added in sorted name order.
func FromMap(m map[string]any) Data {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var d Data
	for _, name := range names {
		d.Set(name, ValueOf(m[name]))
	}
	return d
}

func (d Data) Len() int { return len(d.keys) }

// Keys returns the field names in insertion order.
func (d Data) Keys() []string { return slices.Clone(d.keys) }

func (d Data) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Get returns the named value, or null if the field is absent.
func (d Data) Get(name string) Value { return d.values[name] }

func (d Data) Lookup(name string) (Value, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Set adds or overwrites a field. Overwriting keeps the original position.
func (d *Data) Set(name string, v Value) {
	if d.values == nil {
		d.values = make(map[string]Value)
	}
	if _, ok := d.values[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.values[name] = v
}

func (d *Data) Delete(name string) {
	if _, ok := d.values[name]; !ok {
		return
	}
	delete(d.values, name)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == name })
}

func (d Data) Clone() Data {
	c := Data{keys: slices.Clone(d.keys)}
	if d.values != nil {
		c.values = make(map[string]Value, len(d.values))
		for k, v := range d.values {
			c.values[k] = v
		}
	}
	return c
}

// All iterates fields in insertion order.
func (d Data) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// Filter returns a new row holding the fields for which keep returns true,
// in the original order.
func (d Data) Filter(keep func(name string) bool) Data {
	var out Data
	for _, k := range d.keys {
		if keep(k) {
			out.Set(k, d.values[k])
		}
	}
	return out
}

// Map converts the row into a plain Go map of Value.Any results.
func (d Data) Map() map[string]any {
	m := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		m[k] = d.values[k].Any()
	}
	return m
}

// Equal reports whether both rows hold the same fields with equal values,
// regardless of field order.
func (d Data) Equal(o Data) bool {
	if len(d.keys) != len(o.keys) {
		return false
	}
	for _, k := range d.keys {
		ov, ok := o.values[k]
		if !ok || !d.values[k].Equal(ov) {
			return false
		}
	}
	return true
}

func (d Data) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		val, err := d.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object and keeps the field order of the input.
func (d *Data) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	out, err := DecodeObject(dec)
	if err != nil {
		return err
	}
	*d = out
	return nil
}

// DecodeObject reads the next JSON object from dec as an ordered row.
// The decoder should have UseNumber enabled so integers survive intact.
func DecodeObject(dec *json.Decoder) (Data, error) {
	tok, err := dec.Token()
	if err != nil {
		return Data{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Data{}, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var out Data
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Data{}, err
		}
		name, ok := tok.(string)
		if !ok {
			return Data{}, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return Data{}, fmt.Errorf("field %q: %w", name, err)
		}
		out.Set(name, fromJSON(raw))
	}
	if _, err := dec.Token(); err != nil {
		return Data{}, err
	}
	return out, nil
}

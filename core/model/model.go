package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"datadiff/core/record"
	"datadiff/core/schema"
)

// TagName is the struct tag read by Inspect.
const TagName = "diff"

// ErrNotStruct is returned when a value is not a struct or a pointer to one.
var ErrNotStruct = errors.New("model must be a struct or a pointer to a struct")

type binding struct {
	index  []int
	field  schema.Field
	isKey  bool
	layout string
}

// Model is the inspected form of a tagged struct type.
type Model struct {
	typ      reflect.Type
	bindings []binding
}

// Inspect reads the diff tags of the struct type of v.
func Inspect(v any) (*Model, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	m := &Model{typ: t}
	if err := m.collect(t, nil); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) collect(t reflect.Type, parent []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), parent...), i)
		tag, tagged := sf.Tag.Lookup(TagName)

		if sf.Anonymous && !tagged {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if err := m.collect(ft, index); err != nil {
					return err
				}
			}
			continue
		}
		if !tagged || tag == "-" || !sf.IsExported() {
			continue
		}

		b, err := parseTag(sf.Name, tag)
		if err != nil {
			return err
		}
		b.index = index
		m.bindings = append(m.bindings, b)
	}
	return nil
}

func parseTag(goName, tag string) (binding, error) {
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		name = goName
	}
	if len(parts) < 2 {
		return binding{}, &schema.InvalidFieldError{Field: name, Reason: "missing type in diff tag"}
	}
	t, err := schema.ParseFieldType(parts[1])
	if err != nil {
		return binding{}, &schema.InvalidFieldError{Field: name, Type: parts[1], Reason: "unknown type"}
	}

	b := binding{field: schema.F(name, t), layout: record.TimeLayout}
	for _, opt := range parts[2:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "key":
			b.isKey = true
		case strings.HasPrefix(opt, "format="):
			b.layout = strings.TrimPrefix(opt, "format=")
		case opt == "":
		default:
			return binding{}, &schema.InvalidFieldError{Field: name, Type: parts[1], Reason: fmt.Sprintf("unknown tag option %q", opt)}
		}
	}
	return b, nil
}

// Type returns the inspected struct type.
func (m *Model) Type() reflect.Type { return m.typ }

// Schema returns the key and value fields in struct field order.
func (m *Model) Schema() (keys, values []schema.Field) {
	for _, b := range m.bindings {
		if b.isKey {
			keys = append(keys, b.field)
		} else {
			values = append(values, b.field)
		}
	}
	return keys, values
}

// Values reads the tagged fields of v, which must be of the inspected type.
// Time values are rendered with the field's layout, nil pointers become null.
func (m *Model) Values(v any) (record.Data, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return record.Data{}, ErrNotStruct
		}
		rv = rv.Elem()
	}
	if rv.Type() != m.typ {
		return record.Data{}, fmt.Errorf("model: got %s, inspected %s", rv.Type(), m.typ)
	}

	var d record.Data
	for _, b := range m.bindings {
		fv, ok := fieldByIndex(rv, b.index)
		if !ok {
			d.Set(b.field.Name, record.Null())
			continue
		}
		d.Set(b.field.Name, valueOf(fv, b.layout))
	}
	return d, nil
}

// fieldByIndex walks embedded pointers, reporting false on a nil one.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

func valueOf(fv reflect.Value, layout string) record.Value {
	for fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
		if fv.IsNil() {
			return record.Null()
		}
		fv = fv.Elem()
	}
	if t, ok := fv.Interface().(time.Time); ok {
		return record.String(t.Format(layout))
	}
	return record.ValueOf(fv.Interface())
}

// SchemaFromModel inspects v and returns its key and value fields.
func SchemaFromModel(v any) (keys, values []schema.Field, err error) {
	m, err := Inspect(v)
	if err != nil {
		return nil, nil, err
	}
	keys, values = m.Schema()
	return keys, values, nil
}

// ValuesFromModel inspects v and reads its tagged fields.
func ValuesFromModel(v any) (record.Data, error) {
	m, err := Inspect(v)
	if err != nil {
		return record.Data{}, err
	}
	return m.Values(v)
}

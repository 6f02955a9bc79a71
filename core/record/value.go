package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// TimeLayout is the ISO-8601 layout used for the string form of time values.
const TimeLayout = "2006-01-02T15:04:05-07:00"

// Kind identifies which member of the Value union is set.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a scalar field value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Bool() bool { return v.b }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Time() time.Time { return v.t }

// ValueOf converts an arbitrary Go value into a Value.
// Unsupported types fall back to their fmt string form.
func ValueOf(val any) Value {
	switch v := val.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case *Value:
		if v == nil {
			return Null()
		}
		return *v
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int64:
		return Int(v)
	case int32:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case uint:
		return fromUint(uint64(v))
	case uint64:
		return fromUint(v)
	case uint32:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint8:
		return Int(int64(v))
	case float64:
		return Float(v)
	case float32:
		return Float(float64(v))
	case string:
		return String(v)
	case []byte:
		return String(string(v))
	case time.Time:
		return Time(v)
	case *time.Time:
		if v == nil {
			return Null()
		}
		return Time(*v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Int(i)
		}
		if f, err := v.Float64(); err == nil {
			return Float(f)
		}
		return String(v.String())
	case fmt.Stringer:
		return String(v.String())
	default:
		return String(fmt.Sprintf("%v", v))
	}
}

// fromUint keeps unsigned values above MaxInt64 as their decimal string
// instead of wrapping them to negative integers.
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return String(strconv.FormatUint(u, 10))
	}
	return Int(int64(u))
}

// Any returns the Go value held by v: nil, bool, int64, float64, string or time.Time.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// String returns the string form of the value. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	case KindTime:
		return v.t.Format(TimeLayout)
	default:
		return ""
	}
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(formatFloat(v.f))
		}
		return json.Marshal(v.f)
	case KindTime:
		return json.Marshal(v.t.Format(TimeLayout))
	default:
		return json.Marshal(v.Any())
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromJSON(raw)
	return nil
}

// fromJSON maps a decoded JSON scalar onto a Value. Nested structures keep
// their JSON text as a string.
func fromJSON(raw any) Value {
	switch raw.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(raw)
		if err != nil {
			return Null()
		}
		return String(string(b))
	default:
		return ValueOf(raw)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

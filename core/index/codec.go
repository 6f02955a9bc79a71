package index

import (
	"fmt"
	"time"

	"datadiff/core/record"

	"github.com/fxamacker/cbor/v2"
)

// cborField is the stored form of one row field. Rows are encoded as an
// array of fields so that field order survives the round trip.
type cborField struct {
	Name  string  `cbor:"1,keyasint"`
	Kind  uint8   `cbor:"2,keyasint,omitempty"`
	Bool  bool    `cbor:"3,keyasint,omitempty"`
	Int   int64   `cbor:"4,keyasint,omitempty"`
	Float float64 `cbor:"5,keyasint,omitempty"`
	Str   string  `cbor:"6,keyasint,omitempty"`
}

// RowCodec encodes rows for the SQL index.
type RowCodec struct {
	em cbor.EncMode
	dm cbor.DecMode
}

// NewRowCodec creates a codec with deterministic encoding.
func NewRowCodec() (*RowCodec, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR encoder: %w", err)
	}
	dm, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 8,
		IntDec:          cbor.IntDecConvertSignedOrFail,
		UTF8:            cbor.UTF8DecodeInvalid,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR decoder: %w", err)
	}
	return &RowCodec{em: em, dm: dm}, nil
}

func (c *RowCodec) Encode(d record.Data) ([]byte, error) {
	fields := make([]cborField, 0, d.Len())
	for name, v := range d.All() {
		f := cborField{Name: name, Kind: uint8(v.Kind())}
		switch v.Kind() {
		case record.KindBool:
			f.Bool = v.Bool()
		case record.KindInt:
			f.Int = v.Int()
		case record.KindFloat:
			f.Float = v.Float()
		case record.KindString:
			f.Str = v.String()
		case record.KindTime:
			f.Str = v.Time().Format(time.RFC3339Nano)
		}
		fields = append(fields, f)
	}
	return c.em.Marshal(fields)
}

func (c *RowCodec) Decode(b []byte) (record.Data, error) {
	var fields []cborField
	if err := c.dm.Unmarshal(b, &fields); err != nil {
		return record.Data{}, fmt.Errorf("decode CBOR row: %w", err)
	}
	var d record.Data
	for _, f := range fields {
		var v record.Value
		switch record.Kind(f.Kind) {
		case record.KindNull:
			v = record.Null()
		case record.KindBool:
			v = record.Bool(f.Bool)
		case record.KindInt:
			v = record.Int(f.Int)
		case record.KindFloat:
			v = record.Float(f.Float)
		case record.KindString:
			v = record.String(f.Str)
		case record.KindTime:
			t, err := time.Parse(time.RFC3339Nano, f.Str)
			if err != nil {
				return record.Data{}, fmt.Errorf("decode CBOR row: field %q: %w", f.Name, err)
			}
			v = record.Time(t)
		default:
			return record.Data{}, fmt.Errorf("decode CBOR row: field %q has unknown kind %d", f.Name, f.Kind)
		}
		d.Set(f.Name, v)
	}
	return d, nil
}

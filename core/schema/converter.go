package schema

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"datadiff/core/record"
	"datadiff/core/utils"

	"github.com/shopspring/decimal"
)

// Converter maps a raw value onto its canonical form. Null always maps to null.
type Converter func(record.Value) record.Value

// ConverterFor returns the converter for a type tag.
func ConverterFor(t FieldType) (Converter, error) {
	resolved, err := ParseFieldType(string(t))
	if err != nil {
		return nil, err
	}
	switch resolved {
	case TypeBool:
		return toBool, nil
	case TypeInt:
		return toInt, nil
	case TypeFloat:
		return fixed(6), nil
	case TypeDouble:
		return fixed(12), nil
	case TypeMoney:
		return fixed(2), nil
	case TypeString:
		return toString, nil
	default:
		return toMD5, nil
	}
}

func toBool(v record.Value) record.Value {
	switch v.Kind() {
	case record.KindNull, record.KindTime:
		return record.Null()
	default:
		return record.Bool(utils.ToBool(v))
	}
}

func toInt(v record.Value) record.Value {
	switch v.Kind() {
	case record.KindNull, record.KindTime:
		return record.Null()
	default:
		return record.Int(utils.ToInt(v))
	}
}

// fixed renders numbers with a fixed number of decimals, rounding half away
// from zero.
func fixed(places int32) Converter {
	return func(v record.Value) record.Value {
		var d decimal.Decimal
		switch v.Kind() {
		case record.KindNull, record.KindTime:
			return record.Null()
		case record.KindBool, record.KindInt:
			d = decimal.NewFromInt(utils.ToInt(v))
		case record.KindFloat:
			f := v.Float()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return record.String(strconv.FormatFloat(f, 'f', -1, 64))
			}
			d = decimal.NewFromFloat(f)
		default:
			parsed, err := decimal.NewFromString(strings.TrimSpace(v.String()))
			if err != nil {
				f := utils.ToFloat(v)
				if math.IsNaN(f) || math.IsInf(f, 0) {
					f = 0
				}
				parsed = decimal.NewFromFloat(f)
			}
			d = parsed
		}
		return record.String(d.StringFixed(places))
	}
}

func toString(v record.Value) record.Value {
	if v.IsNull() {
		return record.Null()
	}
	return record.String(v.String())
}

func toMD5(v record.Value) record.Value {
	if v.IsNull() {
		return record.Null()
	}
	sum := md5.Sum([]byte(v.String()))
	return record.String(hex.EncodeToString(sum[:]))
}

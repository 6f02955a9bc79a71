package utils

import (
	"math"
	"strconv"
	"strings"

	"datadiff/core/record"
)

// ToInt coerces a value to an integer. Floats truncate toward zero, strings
// are parsed from their leading numeric prefix and anything unparsable is 0.
func ToInt(v record.Value) int64 {
	switch v.Kind() {
	case record.KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	case record.KindInt:
		return v.Int()
	case record.KindFloat:
		return truncate(v.Float())
	case record.KindString:
		s := strings.TrimSpace(v.String())
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		return truncate(parseFloatPrefix(s))
	case record.KindTime:
		return v.Time().Unix()
	default:
		return 0
	}
}

// ToFloat coerces a value to a float64 using the same rules as ToInt.
func ToFloat(v record.Value) float64 {
	switch v.Kind() {
	case record.KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	case record.KindInt:
		return float64(v.Int())
	case record.KindFloat:
		return v.Float()
	case record.KindString:
		return parseFloatPrefix(strings.TrimSpace(v.String()))
	case record.KindTime:
		return float64(v.Time().Unix())
	default:
		return 0
	}
}

// ToBool coerces a value to a bool.
// Strings accepted by strconv.ParseBool keep their meaning, numeric strings
// are true when non-zero and any other non-empty string is true.
func ToBool(v record.Value) bool {
	switch v.Kind() {
	case record.KindBool:
		return v.Bool()
	case record.KindInt:
		return v.Int() != 0
	case record.KindFloat:
		return v.Float() != 0
	case record.KindString:
		s := strings.TrimSpace(v.String())
		if s == "" {
			return false
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f != 0
		}
		return true
	case record.KindTime:
		return true
	default:
		return false
	}
}

// ToString returns the string form of a value. Null becomes "".
func ToString(v record.Value) string {
	return v.String()
}

func truncate(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

// parseFloatPrefix parses the longest decimal prefix of s, so "12abc" is 12.
// Words such as "inf" or "NaN" and hex floats are not numbers here and give 0,
// as does a prefix that overflows.
func parseFloatPrefix(s string) float64 {
	end := numericPrefix(s)
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

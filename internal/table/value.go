package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the runtime type of a single cell
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindDate
	KindBool
)

// String returns the type tag reported by column-type checks
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// IsNumeric reports whether k holds a number
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// DateLayout is the layout dates are written with
const DateLayout = "2006-01-02"

// Value is one typed cell. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	t    time.Time
	b    bool
}

// Null returns the missing value
func Null() Value { return Value{} }

// String returns a string cell
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer cell
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float cell; NaN becomes null
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{kind: KindFloat, f: f}
}

// Date returns a date cell truncated to the day
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Bool returns a boolean cell
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload of a string cell
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Number returns the numeric payload of an int or float cell
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// IntValue returns the payload of an int cell
func (v Value) IntValue() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Time returns the payload of a date cell
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.t, true
}

// BoolValue returns the payload of a bool cell
func (v Value) BoolValue() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Text renders the cell the way it is written to CSV. Null renders empty.
// Integral floats keep a trailing ".0" so the column reloads as float.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case KindDate:
		return v.t.Format(DateLayout)
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	default:
		return ""
	}
}

// Key identifies the cell for equality. Ints and floats with the same
// numeric value share a key.
func (v Value) Key() string {
	switch v.kind {
	case KindInt, KindFloat:
		n, _ := v.Number()
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	case KindString:
		return "s:" + v.s
	case KindDate:
		return "d:" + v.t.Format(DateLayout)
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// Equal reports whether two cells hold the same value
func (v Value) Equal(o Value) bool {
	return v.Key() == o.Key()
}

// Compare orders cells: null first, then numbers, dates, bools and strings.
// Numbers compare numerically, strings lexicographically.
func (v Value) Compare(o Value) int {
	ra, rb := v.rank(), o.rank()
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 1:
		a, _ := v.Number()
		b, _ := o.Number()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case 2:
		return v.t.Compare(o.t)
	case 3:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		}
		return 1
	case 4:
		return strings.Compare(v.s, o.s)
	}
	return 0
}

func (v Value) rank() int {
	switch v.kind {
	case KindInt, KindFloat:
		return 1
	case KindDate:
		return 2
	case KindBool:
		return 3
	case KindString:
		return 4
	default:
		return 0
	}
}

// ParseCell infers a typed value from a raw text field.
// Empty fields are null; integer and finite float literals become numbers;
// True/False become booleans; everything else stays a string.
func ParseCell(raw string) Value {
	if raw == "" {
		return Null()
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && looksNumeric(raw) {
		return Float(f)
	}
	switch raw {
	case "True", "true":
		return Bool(true)
	case "False", "false":
		return Bool(false)
	}
	return String(raw)
}

// looksNumeric rejects literals strconv accepts but a CSV author would not
// mean as a number, such as "Infinity" or hex floats.
func looksNumeric(raw string) bool {
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	return true
}

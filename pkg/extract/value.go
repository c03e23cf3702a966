package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value kinds. KindNull is the zero Kind.
const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindTime
)

var kindNames = [...]string{
	KindNull:  "null",
	KindText:  "text",
	KindInt:   "int",
	KindFloat: "float",
	KindBool:  "bool",
	KindTime:  "time",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one field value. It is a closed variant: exactly one of the
// payloads below is meaningful, selected by kind. The zero Value is Null.
//
// The delimited-file extractor only produces Text and Null; the other kinds
// come from sources that carry typed data (JSON numbers, database columns).
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsText returns the text payload and whether v is Text.
func (v Value) AsText() (string, bool) { return v.s, v.kind == KindText }

// AsInt returns the integer payload and whether v is Int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float payload and whether v is Float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsBool returns the boolean payload and whether v is Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsTime returns the timestamp payload and whether v is Time.
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == KindTime }

// Interface returns the payload as a plain Go value (nil for Null). Used to
// feed records to code that works on map[string]any, such as expression
// evaluators.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// String renders v for display. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Equal reports whether v and other hold the same kind and payload.
// NaN floats compare equal to each other so that two extractions of the same
// source compare equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == other.s
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f || (math.IsNaN(v.f) && math.IsNaN(other.f))
	case KindBool:
		return v.b == other.b
	case KindTime:
		return v.t.Equal(other.t)
	default:
		return true
	}
}

// MarshalJSON encodes v as its natural JSON counterpart.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// ValueOf converts a Go value produced by a decoder or database driver into a
// Value. Integer and float types of every width are normalized; []byte is
// treated as text; maps and slices are re-encoded as JSON text. Anything else
// falls back to its fmt representation.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Text(strconv.FormatUint(uint64(t), 10))
		}
		return Int(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return Text(strconv.FormatUint(t, 10))
		}
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return Float(f)
		}
		return Text(t.String())
	case time.Time:
		return Time(t)
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return Text(fmt.Sprint(t))
		}
		return Text(string(data))
	case fmt.Stringer:
		return Text(t.String())
	default:
		return Text(fmt.Sprint(t))
	}
}

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Header is an ordered, non-empty list of unique field names. One Header is
// built per extraction call and shared read-only by every Record it produces,
// so all of those Records have exactly the same key set.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader validates names and returns a Header over a private copy of them.
// It fails with ErrNoHeader for an empty list, ErrBlankHeaderName if any name
// is empty after trimming whitespace, and ErrDuplicateHeaderName if a name
// repeats. Names are kept exactly as given.
func NewHeader(names []string) (*Header, error) {
	if len(names) == 0 {
		return nil, ErrNoHeader
	}
	h := &Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w (column %d)", ErrBlankHeaderName, i+1)
		}
		if prev, dup := h.index[name]; dup {
			return nil, fmt.Errorf("%w '%s' (columns %d and %d)", ErrDuplicateHeaderName, name, prev+1, i+1)
		}
		h.names[i] = name
		h.index[name] = i
	}
	return h, nil
}

// Len returns the number of fields.
func (h *Header) Len() int { return len(h.names) }

// Names returns a copy of the field names in order.
func (h *Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Index returns the position of name and whether it is present.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Record pairs each field name with the value at the same position.
// Missing trailing values are Null and values beyond the header are dropped.
// values is copied.
func (h *Header) Record(values []Value) Record {
	row := make([]Value, len(h.names))
	copy(row, values)
	return Record{header: h, values: row}
}

// Field is one name/value pair of a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is one unit of extracted data: an ordered mapping from field name to
// Value. The order follows the source (header order for tabular sources) but
// consumers should look fields up by name. The zero Record has no fields.
type Record struct {
	header *Header
	values []Value
}

// NewRecord builds a Record from fields in the given order. When a name
// repeats, the field keeps its first position and takes the last value.
// Blank names are allowed here; only tabular headers reject them.
func NewRecord(fields ...Field) Record {
	h := &Header{index: make(map[string]int, len(fields))}
	values := make([]Value, 0, len(fields))
	for _, f := range fields {
		if i, ok := h.index[f.Name]; ok {
			values[i] = f.Value
			continue
		}
		h.index[f.Name] = len(h.names)
		h.names = append(h.names, f.Name)
		values = append(values, f.Value)
	}
	return Record{header: h, values: values}
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.values) }

// Names returns the field names in order.
func (r Record) Names() []string {
	if r.header == nil {
		return []string{}
	}
	return r.header.Names()
}

// Get returns the value of the named field and whether the field exists.
// A field that exists with a Null value reports true.
func (r Record) Get(name string) (Value, bool) {
	if r.header == nil {
		return Null(), false
	}
	i, ok := r.header.index[name]
	if !ok {
		return Null(), false
	}
	return r.values[i], true
}

// At returns the name and value of the i-th field.
func (r Record) At(i int) (string, Value) {
	return r.header.names[i], r.values[i]
}

// Fields returns the fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.values))
	for i, v := range r.values {
		out[i] = Field{Name: r.header.names[i], Value: v}
	}
	return out
}

// Map returns the record as a plain map, with Null mapped to nil.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, v := range r.values {
		m[r.header.names[i]] = v.Interface()
	}
	return m
}

// Equal reports whether r and other hold the same fields, in the same order,
// with equal values.
func (r Record) Equal(other Record) bool {
	if len(r.values) != len(other.values) {
		return false
	}
	for i := range r.values {
		if r.header.names[i] != other.header.names[i] || !r.values[i].Equal(other.values[i]) {
			return false
		}
	}
	return true
}

// String renders the record as {name: value, ...} with Null shown as <null>.
func (r Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range r.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.header.names[i])
		sb.WriteString(": ")
		if v.IsNull() {
			sb.WriteString("<null>")
		} else {
			fmt.Fprintf(&sb, "%q", v.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON encodes the record as a JSON object with keys in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range r.values {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.header.names[i])
		if err != nil {
			return nil, err
		}
		val, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", r.header.names[i], err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EqualRecords reports whether a and b have the same length and pairwise
// equal Records.
func EqualRecords(a, b []Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

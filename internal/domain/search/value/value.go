// Package value holds document field values as a small tagged variant.
package value

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Kind constants.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
	KindBool
	KindList
)

// Value is one document field value.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
	b    bool
	list []Value
}

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a number.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Date wraps a point in time.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List wraps several values.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// From converts a decoded backend value. Strings that hold RFC 3339 dates
// become dates.
func From(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case string:
		if d, ok := parseDate(t); ok {
			return Date(d)
		}
		return String(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return String(t.String())
	case bool:
		return Bool(t)
	case time.Time:
		return Date(t)
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = From(s)
		}
		return List(out...)
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = From(e)
		}
		return List(out...)
	}
	return Value{}
}

func parseDate(s string) (time.Time, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") || s[4] != '-' || s[10] != 'T' {
		return time.Time{}, false
	}
	d, err := time.Parse(time.RFC3339Nano, s)
	return d, err == nil
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is empty.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Items returns the list items, or the value itself as a single item.
func (v Value) Items() []Value {
	switch v.kind {
	case KindList:
		return v.list
	case KindNull:
		return nil
	}
	return []Value{v}
}

// Append accumulates another value, turning the receiver into a list.
func (v Value) Append(o Value) Value {
	if v.kind == KindNull {
		return o
	}
	items := append(append([]Value(nil), v.Items()...), o.Items()...)
	return List(items...)
}

// Text renders the value as a string. Lists use their first item.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.Format(time.RFC3339)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		if len(v.list) > 0 {
			return v.list[0].Text()
		}
	}
	return ""
}

// Interface converts the value back to a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindDate:
		return v.date.Format(time.RFC3339)
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes the plain Go value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes any JSON value through From.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = From(raw)
	return nil
}

// Parse converts a configured default into a value of the given field type.
func Parse(s, fieldType string) Value {
	switch strings.ToUpper(fieldType) {
	case "INT", "LONG":
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return Number(n)
		}
	case "BOOL":
		if b, err := strconv.ParseBool(s); err == nil {
			return Bool(b)
		}
	case "DATE":
		if d, err := time.Parse(time.RFC3339, s); err == nil {
			return Date(d)
		}
	case "ARRAY":
		return List(String(s))
	}
	return String(s)
}

package sitesearch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

const tagKey = "sitesearch"

var timeType = reflect.TypeOf(time.Time{})

// schemaMeta maps document field names to struct field indexes.
type schemaMeta struct {
	typ    reflect.Type
	fields map[string]int
}

var schemas sync.Map // reflect.Type -> *schemaMeta

// schemaFor parses T's sitesearch tags once per type.
func schemaFor(t reflect.Type) (*schemaMeta, error) {
	if m, ok := schemas.Load(t); ok {
		return m.(*schemaMeta), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("sitesearch: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, fields: make(map[string]int)}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if _, dup := meta.fields[name]; dup {
			return nil, fmt.Errorf("sitesearch: duplicate field %q in %s", name, t)
		}
		if !decodable(f.Type) {
			return nil, fmt.Errorf("sitesearch: field %s of %s has unsupported type %s", f.Name, t, f.Type)
		}
		meta.fields[name] = i
	}
	if len(meta.fields) == 0 {
		return nil, fmt.Errorf("sitesearch: no field with a `sitesearch` tag in %s", t)
	}

	actual, _ := schemas.LoadOrStore(t, meta)
	return actual.(*schemaMeta), nil
}

func decodable(t reflect.Type) bool {
	if t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Slice && decodable(t.Elem())
	case reflect.Interface:
		return t.NumMethod() == 0
	}
	return false
}

// Decode copies the fields of doc into a new T. Fields are matched by the
// `sitesearch:"name"` struct tag; document fields without a matching struct
// field are ignored. A multi-valued field decodes into a slice, or into a
// scalar using its first value.
func Decode[T any](doc Document) (T, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return zero, fmt.Errorf("sitesearch: cannot decode into interface type")
	}
	ptr := t.Kind() == reflect.Pointer
	if ptr {
		t = t.Elem()
	}

	meta, err := schemaFor(t)
	if err != nil {
		return zero, err
	}

	v := reflect.New(t).Elem()
	for _, f := range doc.Fields {
		idx, ok := meta.fields[f.Name]
		if !ok {
			continue
		}
		if err := assign(v.Field(idx), f.Value); err != nil {
			return zero, fmt.Errorf("sitesearch: field %q: %w", f.Name, err)
		}
	}

	if ptr {
		return v.Addr().Interface().(T), nil
	}
	return v.Interface().(T), nil
}

// DecodeAll decodes every document of a page.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, len(docs))
	for i, d := range docs {
		item, err := Decode[T](d)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out[i] = item
	}
	return out, nil
}

func assign(dst reflect.Value, src any) error {
	if src == nil {
		return nil
	}
	if dst.Kind() == reflect.Interface {
		dst.Set(reflect.ValueOf(src))
		return nil
	}

	list, isList := src.([]any)
	if dst.Kind() == reflect.Slice {
		if !isList {
			list = []any{src}
		}
		s := reflect.MakeSlice(dst.Type(), len(list), len(list))
		for i, item := range list {
			if err := assign(s.Index(i), item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		dst.Set(s)
		return nil
	}
	if isList {
		if len(list) == 0 {
			return nil
		}
		src = list[0]
	}
	return assignScalar(dst, src)
}

func assignScalar(dst reflect.Value, src any) error {
	if dst.Type() == timeType {
		s, ok := src.(string)
		if !ok {
			return fmt.Errorf("cannot use %T as time", src)
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse time: %w", err)
		}
		dst.Set(reflect.ValueOf(ts))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		switch s := src.(type) {
		case string:
			dst.SetString(s)
		case float64:
			dst.SetString(strconv.FormatFloat(s, 'f', -1, 64))
		case bool:
			dst.SetString(strconv.FormatBool(s))
		default:
			return fmt.Errorf("cannot use %T as string", src)
		}
	case reflect.Bool:
		switch b := src.(type) {
		case bool:
			dst.SetBool(b)
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return err
			}
			dst.SetBool(parsed)
		default:
			return fmt.Errorf("cannot use %T as bool", src)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := number(src)
		if err != nil {
			return err
		}
		dst.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := number(src)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("negative value %v for unsigned field", n)
		}
		dst.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		n, err := number(src)
		if err != nil {
			return err
		}
		dst.SetFloat(n)
	default:
		return fmt.Errorf("unsupported kind %s", dst.Kind())
	}
	return nil
}

func number(src any) (float64, error) {
	switch n := src.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("cannot use %T as number", src)
}

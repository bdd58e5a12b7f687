package filter

import (
	"reflect"
	"strconv"
	"strings"
)

// Record is anything the engine can read named fields from.
// A nil value with ok=true is treated like a missing field.
type Record interface {
	FieldValue(name string) (any, bool)
}

// Extended is implemented by records that carry grouped extended properties. Plain
// field names missing at the top level are looked up there.
type Extended interface {
	ExtendedFields() map[string]any
}

// Resolve reads field from rec, following at most one level of nesting: "brand.name"
// reads "name" from the value stored under "brand".
func Resolve(rec Record, field string) (any, bool) {
	field = strings.TrimSpace(field)
	if rec == nil || field == "" {
		return nil, false
	}

	if head, tail, nested := strings.Cut(field, "."); nested {
		v, ok := rec.FieldValue(head)
		if !ok || v == nil {
			if ext, isExt := rec.(Extended); isExt {
				v, ok = ext.ExtendedFields()[head]
			}
			if !ok || v == nil {
				return nil, false
			}
		}
		return lookup(v, tail)
	}

	if v, ok := rec.FieldValue(field); ok && v != nil {
		return v, true
	}
	if ext, ok := rec.(Extended); ok {
		v, ok := ext.ExtendedFields()[field]
		if ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Known reports whether rec has a slot for field, even an empty one. Fields the
// record type doesn't define at all are unknown.
func Known(rec Record, field string) bool {
	field = strings.TrimSpace(field)
	if rec == nil || field == "" {
		return false
	}
	head, tail, nested := strings.Cut(field, ".")
	v, ok := rec.FieldValue(head)
	if !ok {
		if ext, isExt := rec.(Extended); isExt {
			v, ok = ext.ExtendedFields()[head]
		}
	}
	if !ok {
		return false
	}
	if !nested || v == nil {
		return true
	}
	_, ok = lookup(v, tail)
	return ok
}

func lookup(group any, key string) (any, bool) {
	switch g := group.(type) {
	case Record:
		return g.FieldValue(key)
	case map[string]any:
		v, ok := g[key]
		return v, ok
	case map[string]string:
		v, ok := g[key]
		return v, ok
	default:
		return nil, false
	}
}

// Values resolves field and flattens it into its non-falsy string forms. Slices yield
// one entry per truthy element.
func Values(rec Record, field string) []string {
	v, ok := Resolve(rec, field)
	if !ok {
		return nil
	}
	return stringValues(v)
}

func stringValues(v any) []string {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return nil
		}
		return []string{s}
	case reflect.Bool:
		if !rv.Bool() {
			return nil
		}
		return []string{"true"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() == 0 {
			return nil
		}
		return []string{strconv.FormatInt(rv.Int(), 10)}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() == 0 {
			return nil
		}
		return []string{strconv.FormatUint(rv.Uint(), 10)}
	case reflect.Float32, reflect.Float64:
		if rv.Float() == 0 {
			return nil
		}
		return []string{strconv.FormatFloat(rv.Float(), 'f', -1, 64)}
	case reflect.Slice, reflect.Array:
		var out []string
		for i := 0; i < rv.Len(); i++ {
			out = append(out, stringValues(rv.Index(i).Interface())...)
		}
		return out
	default:
		return nil
	}
}

package normalize

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
)

// HasTruthy reports whether v holds at least one truthy leaf: true booleans,
// strings with non-whitespace content, non-zero numbers, and containers with a
// truthy element or property. Empty containers and nil are not truthy.
func HasTruthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return strings.TrimSpace(x) != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return strings.TrimSpace(x.String()) != ""
		}
		return f != 0 && !math.IsNaN(f)
	case []any:
		for _, e := range x {
			if HasTruthy(e) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, e := range x {
			if HasTruthy(e) {
				return true
			}
		}
		return false
	}
	return reflectTruthy(reflect.ValueOf(v))
}

func reflectTruthy(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return reflectTruthy(rv.Elem())
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return strings.TrimSpace(rv.String()) != ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if reflectTruthy(rv.Index(i)) {
				return true
			}
		}
		return false
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if reflectTruthy(iter.Value()) {
				return true
			}
		}
		return false
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).IsExported() && reflectTruthy(rv.Field(i)) {
				return true
			}
		}
		return false
	}
	return false
}

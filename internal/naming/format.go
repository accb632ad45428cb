package naming

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"testwright/internal/types"
)

// FormatValue renders an argument the way it appears in names and
// identities. Pointers render as their type so that identities stay stable.
func FormatValue(v any) string {
	switch r := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(r)
	case bool:
		return strconv.FormatBool(r)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", r)
	case float32:
		return strconv.FormatFloat(float64(r), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(r, 'g', -1, 64)
	case []any:
		return "[" + FormatArgs(r) + "]"
	case fmt.Stringer:
		return r.String()
	case types.Typed:
		return r.RuntimeType().String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Chan, reflect.Map, reflect.Interface:
		if t := types.TypeOf(v); t != nil {
			return t.Underlying().String()
		}
		return rv.Type().String()
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatArgs renders a comma separated argument list.
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = FormatValue(a)
	}
	return strings.Join(parts, ", ")
}

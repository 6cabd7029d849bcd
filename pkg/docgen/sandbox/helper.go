package sandbox

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// HelperName is the bare name under which the helper is visible to scripts.
const HelperName = "c"

// ISOLayout is the layout used for time values.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// C is the default helper: c(value, fallback = "", rest...).
func C(args ...any) string {
	var value any
	var fallback any = ""
	if len(args) > 0 {
		value = args[0]
	}
	if len(args) > 1 {
		fallback = args[1]
	}

	chosen := value
	if isBlank(value) {
		chosen = fallback
	}

	var b strings.Builder
	b.WriteString(Stringify(chosen))
	if len(args) > 2 {
		for _, extra := range args[2:] {
			b.WriteString(Stringify(extra))
		}
	}
	return b.String()
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Stringify converts a value to the text inserted into a document.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case json.Number:
		return x.String()
	case time.Time:
		return x.UTC().Format(ISOLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format(ISOLayout)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Stringify(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		var b strings.Builder
		for i := 0; i < rv.Len(); i++ {
			b.WriteString(Stringify(rv.Index(i).Interface()))
		}
		return b.String()
	case reflect.Map, reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatNumber(rv.Float())
	case reflect.Func:
		return ""
	}
	return fmt.Sprint(v)
}

// formatNumber prints the shortest decimal form; non-finite numbers print
// nothing.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	abs := math.Abs(f)
	if abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy applies script truthiness: nil, false, zero, NaN and "" are false,
// everything else (empty lists included) is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int:
		return x != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0 && !math.IsNaN(rv.Float())
	case reflect.String:
		return rv.Len() > 0
	}
	return true
}

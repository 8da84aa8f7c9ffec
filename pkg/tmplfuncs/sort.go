package tmplfuncs

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/spf13/cast"
)

// Valuer items are compared by their value.
type Valuer interface {
	Value() any
}

// USort returns the items of a slice, array or map sorted ascending. The
// sort is stable; map values are sorted in key order first. Valuer items
// compare by Value(); slice values compare by their last element.
func USort(items any) ([]any, error) {
	if items == nil {
		return []any{}, nil
	}

	rv := reflect.ValueOf(items)
	var out []any
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out = make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		out = make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, rv.MapIndex(k).Interface())
		}
	default:
		return nil, fmt.Errorf("usort: cannot sort %T", items)
	}

	slices.SortStableFunc(out, compareItems)
	return out, nil
}

func compareItems(a, b any) int {
	va, okA := a.(Valuer)
	vb, okB := b.(Valuer)
	if okA && okB {
		return compareScalars(last(va.Value()), last(vb.Value()))
	}
	return compareScalars(a, b)
}

// last returns the final element of a slice value, or v itself.
func last(v any) any {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return v
	}
	if rv.Len() == 0 {
		return nil
	}
	return rv.Index(rv.Len() - 1).Interface()
}

// compareScalars compares numerically when both sides are numbers, and as
// strings otherwise.
func compareScalars(a, b any) int {
	fa, errA := numeric(a)
	fb, errB := numeric(b)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return cmp.Compare(cast.ToString(a), cast.ToString(b))
}

func numeric(v any) (float64, error) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return cast.ToFloat64E(v)
	case string:
		return cast.ToFloat64E(v)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

package criteria

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
)

// Entry is one key/value pair of the loosely-typed criteria form. Key is a
// field name (string) or a position (int).
type Entry struct {
	Key   any
	Value any
}

func invalid(sentinel error, format string, args ...any) error {
	return apperr.NewValidationWrap(fmt.Sprintf(format, args...), sentinel)
}

// Parse converts loosely-typed entries into Criteria, preserving order.
// Entries of the wrong shape are rejected.
func Parse(entries ...Entry) (Criteria, error) {
	out := make(Criteria, 0, len(entries))
	for _, e := range entries {
		c, err := parseEntry(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FromMap parses field-keyed criteria. Keys are processed in sorted order so
// the generated SQL is stable.
func FromMap(m map[string]any) (Criteria, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: m[k]})
	}
	return Parse(entries...)
}

// FromList parses positional criteria: [op, field, value] or
// [expression, params].
func FromList(items []any) (Criteria, error) {
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		entries = append(entries, Entry{Key: i, Value: item})
	}
	return Parse(entries...)
}

// FromJSON accepts either a JSON object (FromMap) or a JSON array
// (FromList). Whole numbers decode as int64.
func FromJSON(data []byte) (Criteria, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, apperr.NewValidationWrap("criteria must be valid JSON", err)
	}

	switch v := normalizeJSON(raw).(type) {
	case map[string]any:
		return FromMap(v)
	case []any:
		return FromList(v)
	case nil:
		return Criteria{}, nil
	default:
		return nil, invalid(ErrMalformedCriterion, "criteria must be a JSON object or array, got %T", v)
	}
}

func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalizeJSON(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeJSON(t[k])
		}
		return t
	default:
		return v
	}
}

func parseEntry(key, value any) (Criterion, error) {
	switch k := key.(type) {
	case string:
		return parseFieldEntry(strings.TrimSpace(k), value)
	case int, int32, int64:
		return parsePositionalEntry(k, value)
	default:
		return Criterion{}, invalid(ErrMalformedCriterion, "criteria key must be a field name or position, got %T", key)
	}
}

// field -> scalar | [op] | [op, value] | [op, value, alias]
func parseFieldEntry(field string, value any) (Criterion, error) {
	list, isList := asList(value)
	if !isList {
		if isMapping(value) {
			return Criterion{}, invalid(ErrMalformedCriterion, "criteria %q: value must be a scalar or [operator, value]", field)
		}
		if value == nil {
			return Op(field, OpIsNull, nil), nil
		}
		return Eq(field, value), nil
	}

	if len(list) == 0 || len(list) > 3 {
		return Criterion{}, invalid(ErrMalformedCriterion, "criteria %q: expected [operator, value] or [operator, value, alias], got %d elements", field, len(list))
	}

	op, err := operatorAt(field, list[0])
	if err != nil {
		return Criterion{}, err
	}
	if len(list) == 1 {
		if !op.Unary() {
			return Criterion{}, invalid(ErrMalformedCriterion, "criteria %q: operator %q needs a value", field, string(op))
		}
		return Op(field, op, nil), nil
	}

	c := Op(field, op, list[1])
	if len(list) == 3 {
		alias, ok := list[2].(string)
		if !ok {
			return Criterion{}, invalid(ErrMalformedCriterion, "criteria %q: alias must be a string", field)
		}
		c.Alias = strings.TrimSpace(alias)
	}
	return c, nil
}

// position -> [op, field, value] | [expression, params]
func parsePositionalEntry(pos any, value any) (Criterion, error) {
	list, isList := asList(value)
	if !isList {
		return Criterion{}, invalid(ErrMalformedCriterion, "criteria[%v]: expected a list", pos)
	}

	switch len(list) {
	case 3:
		field, ok := list[1].(string)
		if !ok {
			return Criterion{}, invalid(ErrMalformedCriterion, "criteria[%v]: field must be a string", pos)
		}
		field = strings.TrimSpace(field)
		op, err := operatorAt(field, list[0])
		if err != nil {
			return Criterion{}, err
		}
		return Explicit(op, field, list[2]), nil
	case 2:
		expr, ok := list[0].(string)
		if !ok || strings.TrimSpace(expr) == "" {
			return Criterion{}, invalid(ErrMalformedCriterion, "criteria[%v]: expression must be a non-empty string", pos)
		}
		params, ok := asParams(list[1])
		if !ok {
			return Criterion{}, invalid(ErrMalformedCriterion, "criteria[%v]: parameters must be a name -> value mapping", pos)
		}
		return Raw(strings.TrimSpace(expr), params), nil
	default:
		return Criterion{}, invalid(ErrMalformedCriterion, "criteria[%v]: expected [operator, field, value] or [expression, params], got %d elements", pos, len(list))
	}
}

func operatorAt(field string, v any) (Operator, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(ErrMalformedCriterion, "criteria %q: operator must be a string", field)
	}
	op, ok := ParseOperator(s)
	if !ok {
		return "", invalid(ErrUnknownOperator, "criteria %q: operator %q is not supported", field, s)
	}
	return op, nil
}

// asList reports whether v is a slice or array (byte slices excluded) and
// returns its elements.
func asList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func isMapping(v any) bool {
	if v == nil {
		return false
	}
	return reflect.ValueOf(v).Kind() == reflect.Map
}

func asParams(v any) (map[string]any, bool) {
	switch p := v.(type) {
	case map[string]any:
		return p, true
	case map[string]string:
		out := make(map[string]any, len(p))
		for k, val := range p {
			out[k] = val
		}
		return out, true
	case nil:
		return map[string]any{}, true
	default:
		return nil, false
	}
}

package jsonconv

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

var (
	marshalerType     = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// object keeps field order through json.Marshal.
type object struct {
	keys   []string
	values map[string]any
}

func (o *object) set(k string, v any) {
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
}

func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type encoder struct {
	groups        []string
	serializeNull bool
}

func newEncoder(groups []string, serializeNull bool) *encoder {
	return &encoder{groups: groups, serializeNull: serializeNull}
}

func (e *encoder) encode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return e.value(reflect.ValueOf(v))
}

func (e *encoder) value(rv reflect.Value) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}

	t := rv.Type()
	if !rv.CanInterface() {
		// promoted through an unexported embedded struct
		return e.plain(rv)
	}
	if t.Implements(marshalerType) || t.Implements(textMarshalerType) {
		if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return nil, nil
		}
		return rv.Interface(), nil
	}
	if rv.Kind() != reflect.Pointer && rv.CanAddr() && reflect.PointerTo(t).Implements(marshalerType) {
		return rv.Addr().Interface(), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return e.value(rv.Elem())
	case reflect.Struct:
		obj := &object{values: map[string]any{}}
		if err := e.fields(rv, obj); err != nil {
			return nil, err
		}
		return obj, nil
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		if t.Key().Kind() != reflect.String {
			return rv.Interface(), nil
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int { return strings.Compare(a.String(), b.String()) })
		obj := &object{values: make(map[string]any, len(keys))}
		for _, k := range keys {
			mv := rv.MapIndex(k)
			if !e.serializeNull && isNil(mv) {
				continue
			}
			enc, err := e.value(mv)
			if err != nil {
				return nil, err
			}
			obj.set(k.String(), enc)
		}
		return obj, nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return rv.Interface(), nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			enc, err := e.value(rv.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, fmt.Errorf("unsupported type %s", t)
	default:
		return rv.Interface(), nil
	}
}

func (e *encoder) plain(rv reflect.Value) (any, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return e.value(rv.Elem())
	case reflect.Struct:
		obj := &object{values: map[string]any{}}
		if err := e.fields(rv, obj); err != nil {
			return nil, err
		}
		return obj, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			enc, err := e.value(rv.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported unexported value of type %s", rv.Type())
	}
}

func (e *encoder) fields(rv reflect.Value, obj *object) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := rv.Field(i)

		if sf.Anonymous {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && sf.Tag.Get("json") == "" {
				if fv.Kind() == reflect.Pointer {
					if fv.IsNil() {
						continue
					}
					fv = fv.Elem()
				}
				if err := e.fields(fv, obj); err != nil {
					return err
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		tag := parseJSONTag(sf)
		if tag.skip || !e.inGroups(sf.Tag.Get("groups")) {
			continue
		}
		if tag.omitEmpty && isEmptyValue(fv) || tag.omitZero && fv.IsZero() {
			continue
		}
		if !e.serializeNull && isNil(fv) {
			continue
		}

		enc, err := e.value(fv)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name(), sf.Name, err)
		}
		obj.set(tag.name, enc)
	}
	return nil
}

func (e *encoder) inGroups(tag string) bool {
	if len(e.groups) == 0 {
		return true
	}
	if tag == "" {
		return slices.Contains(e.groups, DefaultGroup)
	}
	for _, g := range strings.Split(tag, ",") {
		if slices.Contains(e.groups, strings.TrimSpace(g)) {
			return true
		}
	}
	return false
}

type jsonTag struct {
	name      string
	omitEmpty bool
	omitZero  bool
	skip      bool
}

func parseJSONTag(sf reflect.StructField) jsonTag {
	raw := sf.Tag.Get("json")
	if raw == "-" {
		return jsonTag{skip: true}
	}
	parts := strings.Split(raw, ",")
	tag := jsonTag{name: parts[0]}
	if tag.name == "" {
		tag.name = sf.Name
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty":
			tag.omitEmpty = true
		case "omitzero":
			tag.omitZero = true
		}
	}
	return tag
}

func jsonFieldName(sf reflect.StructField) string {
	tag := parseJSONTag(sf)
	if tag.skip {
		return ""
	}
	return tag.name
}

// isEmptyValue is the omitempty rule of encoding/json. Structs are never empty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	default:
		return false
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

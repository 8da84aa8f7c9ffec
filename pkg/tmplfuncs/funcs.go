// Package tmplfuncs holds template functions for number formatting, type
// casts and sorting. Functions take the piped value as their last argument:
//
//	{{ .Price | to_float 2 "." "," }}
//	{{ .Rating | int_up }}
//	{{ range usort .Widgets }}...{{ end }}
package tmplfuncs

import (
	"fmt"
	"math"
	"reflect"
	"text/template"

	"github.com/spf13/cast"
)

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"to_float": ToFloat,
		"int":      Int,
		"int_up":   IntUp,
		"int_down": IntDown,
		"float":    Float,
		"string":   String,
		"bool":     Bool,
		"i":        Int,
		"f":        Float,
		"s":        String,
		"b":        Bool,
		"usort":    USort,
	}
}

// Int truncates toward zero.
func Int(v any) (int64, error) {
	f, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func IntUp(v any) (int64, error) {
	f, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	return int64(math.Ceil(f)), nil
}

func IntDown(v any) (int64, error) {
	f, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	return int64(math.Floor(f)), nil
}

func Float(v any) (float64, error) {
	return toNumber(v)
}

func String(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	return cast.ToStringE(v)
}

// Bool is loose truthiness: nil, false, zero numbers, "", "0" and empty
// collections are false.
func Bool(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f != 0
	}
	return true
}

func toNumber(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to a number: %w", v, err)
	}
	return f, nil
}

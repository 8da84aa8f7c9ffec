// Package jsonconv converts values to and from JSON with serialization
// groups and struct validation.
//
// A struct field tagged `groups:"list,detail"` is emitted only when one of
// the requested groups matches. Untagged fields belong to the "Default"
// group. Without requested groups every field is emitted.
package jsonconv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/go-playground/validator/v10"
)

const DefaultGroup = "Default"

// ConverterError reports a body that could not be decoded or validated.
type ConverterError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConverterError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap exposes a validation error so generic handlers answer 400.
func (e *ConverterError) Unwrap() []error {
	ve := apperr.NewFieldValidation(e.Field, e.Message)
	if e.Err != nil {
		return []error{ve, e.Err}
	}
	return []error{ve}
}

type Converter struct {
	validate *validator.Validate
}

func New() *Converter {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Converter{validate: v}
}

// Validate implements echo.Validator.
func (c *Converter) Validate(i any) error {
	if err := c.validate.Struct(i); err != nil {
		return firstViolation(err)
	}
	return nil
}

// ToJSON marshals v keeping only the fields of the requested groups. With
// serializeNull false, nil pointers, maps, slices and interfaces are dropped
// from objects.
func (c *Converter) ToJSON(v any, groups []string, serializeNull bool) ([]byte, error) {
	tree, err := newEncoder(groups, serializeNull).encode(v)
	if err != nil {
		return nil, &ConverterError{Message: "failed to encode value", Err: err}
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, &ConverterError{Message: "failed to encode value", Err: err}
	}
	return out, nil
}

// FromJSON decodes data into dst and validates the result. The first
// violation is returned as *ConverterError.
func (c *Converter) FromJSON(data []byte, dst any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &ConverterError{Message: "request body is empty"}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ConverterError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("must be %s", typeErr.Type.String()),
				Err:     err,
			}
		}
		return &ConverterError{Message: "malformed JSON", Err: err}
	}

	if err := c.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// non-struct destinations carry no rules
			return nil
		}
		return firstViolation(err)
	}
	return nil
}

// FieldErrors maps every violated field to a message. It returns nil when
// err does not come from validation.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		var ce *ConverterError
		if errors.As(err, &ce) {
			return map[string]string{ce.Field: ce.Message}
		}
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = message(fe)
	}
	return out
}

func firstViolation(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ConverterError{Field: fieldPath(fe), Message: message(fe), Err: err}
	}
	return &ConverterError{Message: err.Error(), Err: err}
}

// fieldPath drops the root struct name: Article.author.name -> author.name.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}

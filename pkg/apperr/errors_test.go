package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	pkgerrors "github.com/pkg/errors"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("field is required")

	if err.Error() != "field is required" {
		t.Errorf("expected 'field is required', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid expression", inner)

	if err.Error() != "invalid expression: parse failed" {
		t.Errorf("expected 'invalid expression: parse failed', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("empty parentheses")

	wrapped := fmt.Errorf("failed to parse: %w", original)
	doubleWrapped := fmt.Errorf("storage error: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != "empty parentheses" {
		t.Errorf("expected 'empty parentheses', got %q", ve.Message)
	}
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("database connection failed")
	wrapped := fmt.Errorf("storage error: %w", plain)

	var ve *apperr.ValidationError
	if errors.As(wrapped, &ve) {
		t.Fatal("errors.As should NOT find ValidationError in plain error chain")
	}
}

func TestHTTPError_Constructors(t *testing.T) {
	tests := []struct {
		name string
		err  *apperr.HTTPError
		code int
		msg  string
	}{
		{name: "bad request default", err: apperr.BadRequest(""), code: 400, msg: apperr.MsgBadRequest},
		{name: "bad request custom", err: apperr.BadRequest("api.request.empty"), code: 400, msg: "api.request.empty"},
		{name: "unauthorized", err: apperr.Unauthorized(""), code: 401, msg: apperr.MsgUnauthorized},
		{name: "forbidden", err: apperr.Forbidden(" "), code: 403, msg: apperr.MsgForbidden},
		{name: "not found", err: apperr.NotFound("api.page_not_found"), code: 404, msg: "api.page_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, tt.err.Code)
			}
			if tt.err.Message != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, tt.err.Message)
			}
		})
	}
}

func TestInternal_RecordsLocation(t *testing.T) {
	err := apperr.Internal(fmt.Errorf("boom"))

	if err.Code != 500 {
		t.Fatalf("expected 500, got %d", err.Code)
	}
	file, line := apperr.Location(err)
	if file != "errors_test.go" {
		t.Errorf("expected errors_test.go, got %q", file)
	}
	if line == 0 {
		t.Error("expected a line number")
	}
}

func TestLocation_PrefersStackFromWrap(t *testing.T) {
	inner := pkgerrors.Wrap(fmt.Errorf("connection reset"), "query failed")
	err := fmt.Errorf("search: %w", inner)

	file, line := apperr.Location(err)
	if file != "errors_test.go" || line == 0 {
		t.Errorf("expected location in errors_test.go, got %s:%d", file, line)
	}
}

func TestCodeOf(t *testing.T) {
	if got := apperr.CodeOf(fmt.Errorf("wrapped: %w", apperr.Forbidden(""))); got != 403 {
		t.Errorf("expected 403, got %d", got)
	}
	if got := apperr.CodeOf(apperr.NewValidation("bad")); got != 400 {
		t.Errorf("expected 400, got %d", got)
	}
	if got := apperr.CodeOf(errors.New("plain")); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if !apperr.IsNotFound(apperr.NotFound("")) {
		t.Error("expected IsNotFound to be true")
	}
}

func TestNewFieldValidation(t *testing.T) {
	err := apperr.NewFieldValidation("title", "required")

	if err.Error() != "title: required" {
		t.Errorf("expected 'title: required', got %q", err.Error())
	}
	if err.Field != "title" {
		t.Errorf("expected field 'title', got %q", err.Field)
	}
}

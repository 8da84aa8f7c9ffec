package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Default translation keys for each error kind.
const (
	MsgBadRequest   = "api.bad_request"
	MsgUnauthorized = "api.unauthorized"
	MsgForbidden    = "api.forbidden"
	MsgNotFound     = "api.not_found"
	MsgInternal     = "api.internal_server_error"
)

// HTTPError is a failure that already knows its response status.
// Message is a translation key or a literal message; Params are substituted
// into the translated text.
type HTTPError struct {
	Code    int
	Message string
	Params  map[string]string
	Err     error

	file string
	line int
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// WithParams returns a copy of e carrying translation parameters.
func (e *HTTPError) WithParams(params map[string]string) *HTTPError {
	cp := *e
	cp.Params = params
	return &cp
}

func New(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

func BadRequest(message string) *HTTPError {
	return New(http.StatusBadRequest, orDefault(message, MsgBadRequest))
}

func Unauthorized(message string) *HTTPError {
	return New(http.StatusUnauthorized, orDefault(message, MsgUnauthorized))
}

func Forbidden(message string) *HTTPError {
	return New(http.StatusForbidden, orDefault(message, MsgForbidden))
}

func NotFound(message string) *HTTPError {
	return New(http.StatusNotFound, orDefault(message, MsgNotFound))
}

// Internal wraps an unexpected error into a 500. The caller's source
// location is recorded for the critical log entry.
func Internal(err error) *HTTPError {
	if err == nil {
		err = errors.New("internal server error")
	}
	e := &HTTPError{Code: http.StatusInternalServerError, Message: MsgInternal, Err: err}
	if _, file, line, ok := runtime.Caller(1); ok {
		e.file, e.line = file, line
	}
	return e
}

// CodeOf reports the HTTP status carried by err, 0 when err carries none.
func CodeOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return 0
}

func IsNotFound(err error) bool {
	return CodeOf(err) == http.StatusNotFound
}

func orDefault(message, fallback string) string {
	if strings.TrimSpace(message) == "" {
		return fallback
	}
	return message
}

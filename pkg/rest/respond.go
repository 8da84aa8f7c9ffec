package rest

import (
	"errors"
	"net/http"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/DjordjeVuckovic/apikit/pkg/envelope"
)

// Respond writes {"code": code, "message": message}.
func (rc *Context) Respond(code int, message any) error {
	return rc.JSON(code, envelope.NewSuccess(code, message))
}

// RespondConverted writes v through the JSON converter, keeping only the
// fields of groups.
func (rc *Context) RespondConverted(v any, groups []string, code int) error {
	data, err := rc.svc.converter.ToJSON(v, groups, true)
	if err != nil {
		return rc.InternalServerError(err, "")
	}
	return rc.JSONBlob(code, data)
}

// RespondError writes a failure envelope without translating message.
func (rc *Context) RespondError(code int, message any) error {
	rc.LogError(messageText(message))
	return rc.JSON(code, envelope.NewFailure(code, message))
}

func (rc *Context) BadRequest(message string, params map[string]string) error {
	return rc.Fail(apperr.BadRequest(message).WithParams(params))
}

func (rc *Context) Unauthorized(message string) error {
	return rc.Fail(apperr.Unauthorized(message))
}

func (rc *Context) Forbidden(message string) error {
	return rc.Fail(apperr.Forbidden(message))
}

func (rc *Context) NotFound(message string) error {
	return rc.Fail(apperr.NotFound(message))
}

// InternalServerError logs err as critical and writes a 500 envelope.
func (rc *Context) InternalServerError(err error, message string) error {
	if message == "" {
		message = apperr.MsgInternal
	}
	rc.LogCritical(err, message)
	return rc.JSON(http.StatusInternalServerError,
		envelope.NewFailure(http.StatusInternalServerError, rc.Trans(message, nil)))
}

// Fail writes the envelope of a known failure. 5xx errors are logged as
// critical, others as errors.
func (rc *Context) Fail(he *apperr.HTTPError) error {
	if he.Code >= http.StatusInternalServerError {
		return rc.InternalServerError(he, he.Message)
	}
	rc.LogError(he.Message)
	return rc.JSON(he.Code, envelope.NewFailure(he.Code, rc.Trans(he.Message, he.Params)))
}

// FailWith writes the envelope matching err: its own code for HTTP and
// validation errors, 500 for anything else.
func (rc *Context) FailWith(err error) error {
	var he *apperr.HTTPError
	if errors.As(err, &he) {
		return rc.Fail(he)
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		msg := rc.Trans(ve.Message, nil)
		if ve.Field != "" {
			msg = ve.Field + ": " + msg
		}
		return rc.RespondError(http.StatusBadRequest, msg)
	}
	return rc.InternalServerError(err, "")
}

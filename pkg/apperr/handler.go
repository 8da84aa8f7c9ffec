package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/apikit/pkg/envelope"
	"github.com/labstack/echo/v4"
)

// TranslateFunc resolves a message key for the current request.
type TranslateFunc func(c echo.Context, key string, params map[string]string) string

type HandlerOpt func(*handlerOpts)

type handlerOpts struct {
	translate TranslateFunc
}

func WithTranslator(fn TranslateFunc) HandlerOpt {
	return func(o *handlerOpts) {
		o.translate = fn
	}
}

// GlobalErrorHandler renders every error returned by a handler as a failure
// envelope. Anything that is not a known error kind becomes a 500 and is
// logged at LevelCritical.
func GlobalErrorHandler(opts ...HandlerOpt) echo.HTTPErrorHandler {
	o := handlerOpts{
		translate: func(_ echo.Context, key string, _ map[string]string) string { return key },
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			slog.Warn("Validation failed", "uri", c.Request().RequestURI, "error", ve.Error())
			msg := o.translate(c, ve.Message, nil)
			if ve.Field != "" {
				msg = ve.Field + ": " + msg
			}
			_ = c.JSON(http.StatusBadRequest, envelope.NewFailure(http.StatusBadRequest, msg))
			return
		}

		var he *HTTPError
		if errors.As(err, &he) {
			if he.Code >= http.StatusInternalServerError {
				Critical(c.Request().Context(), err, he.Message)
			} else {
				slog.Warn("Request rejected", "uri", c.Request().RequestURI, "code", he.Code, "message", he.Message)
			}
			_ = c.JSON(he.Code, envelope.NewFailure(he.Code, o.translate(c, he.Message, he.Params)))
			return
		}

		var eh *echo.HTTPError
		if errors.As(err, &eh) {
			msg := fmt.Sprintf("%v", eh.Message)
			if eh.Code >= http.StatusInternalServerError {
				Critical(c.Request().Context(), err, "")
			}
			_ = c.JSON(eh.Code, envelope.NewFailure(eh.Code, msg))
			return
		}

		Critical(c.Request().Context(), err, "Unhandled error")
		_ = c.JSON(http.StatusInternalServerError,
			envelope.NewFailure(http.StatusInternalServerError, o.translate(c, MsgInternal, nil)))
	}
}

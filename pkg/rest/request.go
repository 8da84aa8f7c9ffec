package rest

import (
	"net/http"
	"strings"

	"github.com/DjordjeVuckovic/apikit/pkg/jsonconv"
	"github.com/labstack/echo/v4"
)

// IsJSONRequest reports whether the request accepts or carries JSON.
func IsJSONRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.Contains(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func IsXMLHTTPRequest(r *http.Request) bool {
	return r.Header.Get(echo.HeaderXRequestedWith) == "XMLHttpRequest"
}

// ValidationErrors maps each invalid field to its message.
func ValidationErrors(err error) map[string]string {
	return jsonconv.FieldErrors(err)
}

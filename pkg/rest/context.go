package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/apikit/pkg/access"
	"github.com/labstack/echo/v4"
)

const contextKey = "apikit.rest"

// Context wraps echo.Context with what a JSON action needs. Handlers get it
// with From.
type Context struct {
	echo.Context

	svc        *Service
	controller string
	action     string
	locale     string
	user       access.User
	body       []byte
	data       any
}

// New builds the request context: route names, decoded JSON body, locale
// and user. The request body stays readable for later binding.
func New(c echo.Context, svc *Service) (*Context, error) {
	if svc == nil {
		svc = NewService(nil, nil)
	}
	rc := &Context{Context: c, svc: svc}
	rc.controller, rc.action = routeNames(c)
	rc.locale = svc.locale(c)

	if err := rc.readBody(); err != nil {
		return nil, err
	}

	if svc.users != nil {
		u, err := svc.users(c)
		if err != nil {
			slog.Warn("Failed to resolve user", "uri", c.Request().RequestURI, "error", err)
		} else {
			rc.user = u
		}
	}
	return rc, nil
}

// From returns the context stored by Middleware, or builds one without
// services.
func From(c echo.Context) *Context {
	if rc, ok := c.(*Context); ok {
		return rc
	}
	if rc, ok := c.Get(contextKey).(*Context); ok {
		return rc
	}
	rc, err := New(c, nil)
	if err != nil {
		return &Context{Context: c, svc: NewService(nil, nil)}
	}
	return rc
}

// Middleware creates the request context once per request.
func Middleware(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc, err := New(c, svc)
			if err != nil {
				return err
			}
			c.Set(contextKey, rc)
			return next(c)
		}
	}
}

func (rc *Context) readBody() error {
	req := rc.Request()
	if req.Body == nil {
		return nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	rc.body = body

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var data any
	if err := json.Unmarshal(body, &data); err == nil {
		rc.data = data
	}
	return nil
}

func (rc *Context) Controller() string { return rc.controller }
func (rc *Context) Action() string     { return rc.action }
func (rc *Context) Locale() string     { return rc.locale }
func (rc *Context) User() access.User  { return rc.user }
func (rc *Context) Service() *Service  { return rc.svc }

// Body returns the raw request body.
func (rc *Context) Body() []byte {
	return rc.body
}

// Data returns the decoded JSON body, nil when the body is empty or not JSON.
func (rc *Context) Data() any {
	return rc.data
}

// HasData reports whether the JSON body holds anything.
func (rc *Context) HasData() bool {
	switch d := rc.data.(type) {
	case nil:
		return false
	case map[string]any:
		return len(d) > 0
	case []any:
		return len(d) > 0
	case string:
		return d != ""
	case bool:
		return d
	case float64:
		return d != 0
	default:
		return true
	}
}

// GetData looks up a dot-separated path in the JSON body: "author.name",
// "tags.0".
func (rc *Context) GetData(path string, fallback any) any {
	var cur any = rc.data
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return fallback
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return fallback
			}
			cur = node[i]
		default:
			return fallback
		}
	}
	if cur == nil {
		return fallback
	}
	return cur
}

// GetQuery reads a query parameter, then a path parameter of the same name.
func (rc *Context) GetQuery(name, fallback string) string {
	if v := rc.QueryParam(name); v != "" {
		return v
	}
	if v := rc.Param(name); v != "" {
		return v
	}
	return fallback
}

func (rc *Context) Trans(key string, params map[string]string) string {
	if rc.svc.translator == nil {
		return key
	}
	return rc.svc.translator.Trans(rc.locale, key, params)
}

// IsJSON is true for JSON or XMLHttpRequest requests.
func (rc *Context) IsJSON() bool {
	return IsJSONRequest(rc.Request()) || IsXMLHTTPRequest(rc.Request())
}

func (rc *Context) accessRequest() access.Request {
	return access.Request{
		Action:  rc.action,
		User:    rc.user,
		HasBody: rc.HasData(),
		JSON:    rc.IsJSON(),
	}
}

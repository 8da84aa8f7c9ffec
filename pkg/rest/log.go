package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
)

// LogInfo logs "api.{controller}.{action}: {message}" with user, query and
// data attributes. message is translated first.
func (rc *Context) LogInfo(message string) {
	rc.svc.logger.InfoContext(rc.Request().Context(), rc.logText(message), rc.logAttrs()...)
}

func (rc *Context) LogError(message string) {
	rc.svc.logger.ErrorContext(rc.Request().Context(), rc.logText(message), rc.logAttrs()...)
}

// LogCritical logs err with its source location at apperr.LevelCritical.
func (rc *Context) LogCritical(err error, message string) {
	text := rc.logText(apperr.CriticalText(err, rc.Trans(message, nil)))
	f, l := apperr.Location(err)
	args := append([]any{"file", f, "line", l}, rc.logAttrs()...)
	rc.svc.logger.Log(rc.Request().Context(), apperr.LevelCritical, text, args...)
}

func (rc *Context) logText(message string) string {
	return fmt.Sprintf("api.%s.%s: %s", rc.controller, rc.action, rc.Trans(message, nil))
}

func (rc *Context) logAttrs() []any {
	return []any{
		slog.Any("user", rc.user),
		slog.Any("query", rc.QueryParams()),
		slog.Any("data", rc.data),
	}
}

// messageText renders an envelope message for the log.
func messageText(message any) string {
	if s, ok := message.(string); ok {
		return s
	}
	b, err := json.Marshal(message)
	if err != nil {
		return fmt.Sprint(message)
	}
	return string(b)
}

// Package rest is the per-request layer of JSON handlers: controller and
// action names, decoded body, translated envelopes, access control and
// paginated lists.
package rest

import (
	"log/slog"

	"github.com/DjordjeVuckovic/apikit/pkg/access"
	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
	"github.com/DjordjeVuckovic/apikit/pkg/i18n"
	"github.com/DjordjeVuckovic/apikit/pkg/jsonconv"
	"github.com/labstack/echo/v4"
)

// UserResolver identifies the caller. Returning a nil user means anonymous.
type UserResolver func(c echo.Context) (access.User, error)

// Service carries the collaborators every request context needs.
type Service struct {
	translator *i18n.Translator
	converter  *jsonconv.Converter
	policy     access.Policy
	users      UserResolver
	gateOpts   []access.Option
	logger     *slog.Logger
}

type ServiceOption func(*Service)

func WithPolicy(p access.Policy) ServiceOption {
	return func(s *Service) {
		s.policy = p
	}
}

func WithUserResolver(fn UserResolver) ServiceOption {
	return func(s *Service) {
		s.users = fn
	}
}

// WithGateOptions configures every access gate the service builds.
func WithGateOptions(opts ...access.Option) ServiceOption {
	return func(s *Service) {
		s.gateOpts = append(s.gateOpts, opts...)
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

func NewService(translator *i18n.Translator, converter *jsonconv.Converter, opts ...ServiceOption) *Service {
	s := &Service{
		translator: translator,
		converter:  converter,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.converter == nil {
		s.converter = jsonconv.New()
	}
	return s
}

func (s *Service) Converter() *jsonconv.Converter {
	return s.converter
}

func (s *Service) Translator() *i18n.Translator {
	return s.translator
}

// Trans translates key for the request locale.
func (s *Service) Trans(c echo.Context, key string, params map[string]string) string {
	if s.translator == nil {
		return key
	}
	return s.translator.Trans(s.locale(c), key, params)
}

// ErrorHandler is the echo error handler with translated messages.
func (s *Service) ErrorHandler() echo.HTTPErrorHandler {
	return apperr.GlobalErrorHandler(apperr.WithTranslator(s.Trans))
}

func (s *Service) locale(c echo.Context) string {
	if s.translator == nil {
		return i18n.DefaultLocale
	}
	return s.translator.Negotiate(c.Request().Header.Get("Accept-Language"))
}

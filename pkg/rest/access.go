package rest

import (
	"github.com/DjordjeVuckovic/apikit/pkg/access"
	"github.com/labstack/echo/v4"
)

// AccessControl checks the rules the policy lists for the route controller
// against the route action. Rule failures are written as envelopes and stop
// the chain.
func AccessControl(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc := From(c)
			rules := svc.policy.For(rc.Controller())
			gate := access.NewGate(rules, svc.gateOpts...)

			if err := gate.Check(rc.accessRequest()); err != nil {
				if he, ok := access.AsHTTPError(err); ok {
					return rc.Fail(he)
				}
				return rc.InternalServerError(err, "")
			}
			return next(c)
		}
	}
}

// Authorize checks a single rule from inside a handler. A nil result means
// the caller may go on.
func (rc *Context) Authorize(rule access.Rule) error {
	if he := access.Apply(rule, rc.user, rc.HasData(), rc.IsJSON()); he != nil {
		return rc.Fail(he)
	}
	return nil
}

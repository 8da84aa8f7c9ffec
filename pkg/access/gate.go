package access

import (
	"errors"
	"log/slog"

	"github.com/DjordjeVuckovic/apikit/pkg/apperr"
)

const (
	MsgEmptyRequest = "api.request.empty"
	MsgNotJSON      = "api.request.ajax"
)

// Request is what the gate needs to know about the incoming request.
type Request struct {
	Action string
	User   User
	// HasBody is true when the decoded body is non-empty.
	HasBody bool
	// JSON is true for JSON or XMLHttpRequest requests.
	JSON bool
}

type Gate struct {
	rules         []Rule
	denyUnmatched bool
	pre           func(rules []Rule) error
	preRule       func(rule Rule) error
}

type Option func(*Gate)

// DenyUnmatched makes the gate reject actions no rule covers with 403.
func DenyUnmatched() Option {
	return func(g *Gate) {
		g.denyUnmatched = true
	}
}

// Pre runs once with the whole rule list before the scan.
func Pre(fn func(rules []Rule) error) Option {
	return func(g *Gate) {
		g.pre = fn
	}
}

// PreRule runs for every rule the scan visits, including the matching one.
func PreRule(fn func(rule Rule) error) Option {
	return func(g *Gate) {
		g.preRule = fn
	}
}

func NewGate(rules []Rule, opts ...Option) *Gate {
	g := &Gate{rules: rules}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) Rules() []Rule {
	return g.rules
}

// Check applies the first rule covering req.Action. Hook errors are returned
// as they are; rule failures are *apperr.HTTPError.
func (g *Gate) Check(req Request) error {
	if len(g.rules) == 0 {
		return g.unmatched(req.Action)
	}

	if g.pre != nil {
		if err := g.pre(g.rules); err != nil {
			return err
		}
	}

	for _, r := range g.rules {
		if g.preRule != nil {
			if err := g.preRule(r); err != nil {
				return err
			}
		}
		if !r.Covers(req.Action) {
			continue
		}
		if he := Apply(r, req.User, req.HasBody, req.JSON); he != nil {
			return he
		}
		return nil
	}

	return g.unmatched(req.Action)
}

func (g *Gate) unmatched(action string) error {
	if !g.denyUnmatched {
		return nil
	}
	slog.Debug("No access rule for action", "action", action)
	return apperr.Forbidden("")
}

// Apply checks a single rule.
func Apply(r Rule, user User, hasBody, isJSON bool) *apperr.HTTPError {
	if r.Roles != nil {
		if user == nil {
			return apperr.Unauthorized("")
		}
		granted := false
		for _, role := range r.Roles {
			if user.HasRole(role) {
				granted = true
				break
			}
		}
		if !granted {
			return apperr.Forbidden("")
		}
	}

	if r.RequiresBody {
		if !hasBody {
			return apperr.BadRequest(MsgEmptyRequest)
		}
		if !isJSON {
			return apperr.BadRequest(MsgNotJSON)
		}
	}
	return nil
}

// Evaluate is the hook-free form of Gate.Check with default-allow.
func Evaluate(action string, rules []Rule, user User, hasBody, isJSON bool) *apperr.HTTPError {
	r, ok := Match(rules, action)
	if !ok {
		return nil
	}
	return Apply(r, user, hasBody, isJSON)
}

// AsHTTPError reports whether err is a rule failure rather than a hook error.
func AsHTTPError(err error) (*apperr.HTTPError, bool) {
	var he *apperr.HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

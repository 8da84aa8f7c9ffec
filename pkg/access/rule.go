// Package access evaluates declarative per-action access rules.
//
// Rules are scanned in order and the first rule listing the action is the
// only one applied. Actions no rule mentions are allowed unless the gate is
// built with DenyUnmatched.
package access

import (
	"slices"
)

// Rule guards a set of actions. Roles, when declared, require a user
// holding at least one of them; a declared empty list admits nobody. RequiresBody (yaml key "data") requires a
// non-empty JSON or AJAX request body.
type Rule struct {
	Actions      []string `yaml:"actions" json:"actions"`
	Roles        []string `yaml:"roles,omitempty" json:"roles,omitempty"`
	RequiresBody bool     `yaml:"data,omitempty" json:"data,omitempty"`
}

func (r Rule) Covers(action string) bool {
	return slices.Contains(r.Actions, action)
}

// User is the identity the caller resolved for the request.
type User interface {
	HasRole(role string) bool
}

// SimpleUser is a User backed by a static role list.
type SimpleUser struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

func (u *SimpleUser) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// Match returns the first rule covering action.
func Match(rules []Rule, action string) (Rule, bool) {
	for _, r := range rules {
		if r.Covers(action) {
			return r, true
		}
	}
	return Rule{}, false
}

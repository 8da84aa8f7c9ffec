// Package auth resolves callers from static bearer tokens.
package auth

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/apikit/pkg/access"
	"github.com/DjordjeVuckovic/apikit/pkg/stringsutil"
	"github.com/labstack/echo/v4"
)

// Tokens maps bearer tokens to users.
type Tokens map[string]*access.SimpleUser

// ParseTokens reads "token:user:ROLE_A|ROLE_B" entries separated by commas.
// Roles may be left out.
func ParseTokens(s string) (Tokens, error) {
	tokens := Tokens{}
	for _, entry := range stringsutil.SplitTrim(s, ",") {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid token entry %q: want token:user[:roles]", entry)
		}
		u := &access.SimpleUser{ID: parts[1]}
		if len(parts) == 3 {
			u.Roles = stringsutil.SplitTrim(parts[2], "|")
		}
		tokens[parts[0]] = u
	}
	return tokens, nil
}

// Resolve identifies the caller from the Authorization header. Unknown or
// missing tokens are anonymous.
func (t Tokens) Resolve(c echo.Context) (access.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, nil
	}
	if u, found := t[strings.TrimSpace(token)]; found {
		return u, nil
	}
	return nil, nil
}

package rest

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// routeNames derives controller and action from the name of the matched
// route. Explicit names look like "Articles.list"; echo's default names are
// handler symbols such as "pkg/router.(*ArticlesController).list-fm".
func routeNames(c echo.Context) (controller, action string) {
	name := routeName(c)
	if name == "" {
		return "", ""
	}
	return splitRouteName(name)
}

func routeName(c echo.Context) string {
	method, path := c.Request().Method, c.Path()
	for _, r := range c.Echo().Routes() {
		if r.Path == path && r.Method == method {
			return r.Name
		}
	}
	return ""
}

func splitRouteName(name string) (controller, action string) {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")

	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name
	}
	controller, action = name[:i], name[i+1:]

	// pkg.(*Type) or pkg.Type
	if j := strings.LastIndexByte(controller, '.'); j >= 0 {
		controller = controller[j+1:]
	}
	controller = strings.TrimPrefix(controller, "(*")
	controller = strings.TrimSuffix(controller, ")")
	controller = strings.TrimSuffix(controller, "Controller")
	action = strings.TrimSuffix(action, "Action")
	return controller, action
}

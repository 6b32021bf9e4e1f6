package internal

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrymomot/userdesk/pkg/access"
	"github.com/dmitrymomot/userdesk/pkg/fsroute"
)

// dispatch is the innermost handler of the page pipeline: it resolves the
// route, authorizes the request against the access table, selects the
// method handler and invokes it.
func (a *App) dispatch(c Context) error {
	r := c.Request()
	match, ok := a.routes.Resolve(r.URL.Path)
	if !ok {
		return ErrNotFound("Page not found")
	}
	c.SetRoute(match.Route.Pattern)
	c.SetParams(match.Params)

	req := &access.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   c.Body(),
	}
	if u := c.User(); u != nil {
		req.Authenticated = true
		req.UserID = u.ID
		req.Role = string(u.Role)
	}
	if err := a.rules.Authorize(req); err != nil {
		return err
	}

	h, ok := match.Route.Handler(r.Method)
	if !ok {
		c.SetHeader("Allow", strings.Join(match.Route.Methods(), ", "))
		return ErrMethodNotAllowed("Method not allowed")
	}
	return h(c)
}

// bindPages gives every route discovered from the pages tree a GET handler
// that renders its template, unless a handler registered one already.
func bindPages(routes *fsroute.Map[HandlerFunc]) {
	for _, route := range routes.Routes() {
		if route.Source == "" {
			continue
		}
		if _, ok := route.Handler(http.MethodGet); ok {
			continue
		}
		name := PageName(route.Source)
		err := routes.Handle(route.Pattern, http.MethodGet, func(c Context) error {
			return c.SendPage(name, nil)
		})
		if err != nil {
			panic(fmt.Sprintf("pages: %s: %v", route.Source, err))
		}
	}
}

// PageName turns a page file path into the name used by SendPage:
// "user/[id]/edit.html" becomes "user/[id]/edit".
func PageName(source string) string {
	dir, file := "", source
	if i := strings.LastIndexByte(source, '/'); i >= 0 {
		dir, file = source[:i+1], source[i+1:]
	}
	if i := strings.IndexByte(file, '.'); i >= 0 {
		file = file[:i]
	}
	return dir + file
}

package internal

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/dmitrymomot/userdesk/pkg/access"
	"github.com/dmitrymomot/userdesk/pkg/fsroute"
)

// Router is the interface handlers use to declare page routes. Patterns
// use "[name]" or ":name" for parameters; "/user/[id]/edit" and
// "/user/:id/edit" are the same route.
type Router interface {
	GET(pattern string, h HandlerFunc, mw ...Middleware)
	POST(pattern string, h HandlerFunc, mw ...Middleware)
	PUT(pattern string, h HandlerFunc, mw ...Middleware)
	PATCH(pattern string, h HandlerFunc, mw ...Middleware)
	DELETE(pattern string, h HandlerFunc, mw ...Middleware)

	// Handle registers h for an arbitrary method.
	Handle(method, pattern string, h HandlerFunc, mw ...Middleware)

	// Protect adds access checks for a colon-style pattern. Use access.All
	// as method for checks that apply to every method.
	Protect(pattern, method string, checks ...access.Check)

	// Group creates an inline group; middleware added with Use inside fn
	// applies only to the group's routes.
	Group(fn func(r Router))

	// Use appends middleware to routes registered after the call.
	Use(mw ...Middleware)
}

// routerAdapter registers handlers on the app's route map and rules on
// its access table.
type routerAdapter struct {
	routes *fsroute.Map[HandlerFunc]
	rules  *access.Table
	mws    []Middleware
}

func (r *routerAdapter) GET(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, mw...)
}

func (r *routerAdapter) POST(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPost, pattern, h, mw...)
}

func (r *routerAdapter) PUT(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPut, pattern, h, mw...)
}

func (r *routerAdapter) PATCH(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPatch, pattern, h, mw...)
}

func (r *routerAdapter) DELETE(pattern string, h HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodDelete, pattern, h, mw...)
}

// Handle panics on an invalid pattern: routes are declared at startup and a
// bad one is a programming error.
func (r *routerAdapter) Handle(method, pattern string, h HandlerFunc, mw ...Middleware) {
	chain := append(slices.Clone(r.mws), mw...)
	if err := r.routes.Handle(pattern, method, Chain(h, chain...)); err != nil {
		panic(fmt.Sprintf("route %s %s: %v", method, pattern, err))
	}
}

func (r *routerAdapter) Protect(pattern, method string, checks ...access.Check) {
	r.rules.Protect(pattern, method, checks...)
}

func (r *routerAdapter) Group(fn func(Router)) {
	fn(&routerAdapter{routes: r.routes, rules: r.rules, mws: slices.Clone(r.mws)})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	r.mws = append(r.mws, mw...)
}

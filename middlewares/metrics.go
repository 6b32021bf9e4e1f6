package middlewares

import (
	"github.com/dmitrymomot/userdesk/internal"
)

// RequestRecorder observes finished requests. *metrics.Metrics implements it.
type RequestRecorder interface {
	Start(method string) func(route string, status int)
}

// Metrics records method, matched route pattern and status of every page
// request. Requests that matched no route are recorded as "unmatched".
func Metrics(rec RequestRecorder) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			done := rec.Start(c.Request().Method)
			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil && !c.Written() {
				status = internal.StatusOf(err)
			}
			route := c.Route()
			if route == "" {
				route = "unmatched"
			}
			done(route, status)
			return err
		}
	}
}

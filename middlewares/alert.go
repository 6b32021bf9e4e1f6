package middlewares

import (
	"errors"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/pkg/cookie"
)

// Alert consumes the one-shot alert cookie set by Context.Flash. The cookie
// is cleared whether or not it decodes.
func Alert() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var a internal.Alert
			err := c.Cookies().Flash(c.Response(), c.Request(), internal.AlertCookie, &a)
			switch {
			case err == nil && a.Message != "":
				c.SetAlert(&a)
			case err != nil && !errors.Is(err, cookie.ErrNotFound):
				c.LogDebug("alert cookie dropped", "error", err)
			}
			return next(c)
		}
	}
}

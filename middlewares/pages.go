package middlewares

import (
	"bytes"
	"maps"
	"net/http"

	"github.com/dmitrymomot/userdesk/internal"
)

// PageRenderer builds the component for a named page.
type PageRenderer interface {
	Page(name string, data map[string]any) (internal.Component, error)
}

// Pages binds Context.SendPage and RenderPage to r. Every page receives
// User, Alert, Dev, Nonce, Path, Form and Errors; keys in the handler's data
// win. The page is rendered fully before the header is written, so a
// template failure still reaches the error responder.
func Pages(r PageRenderer, dev bool) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.SetPageRenderer(func(code int, name string, data map[string]any) error {
				view := map[string]any{
					"User":   c.User(),
					"Alert":  c.Alert(),
					"Dev":    dev,
					"Nonce":  c.Nonce(),
					"Path":   c.Request().URL.Path,
					"Form":   map[string]string{},
					"Errors": map[string]string{},
				}
				maps.Copy(view, data)

				comp, err := r.Page(name, view)
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := comp.Render(c.Context(), &buf); err != nil {
					return err
				}

				c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
				c.Response().WriteHeader(code)
				if c.Request().Method == http.MethodHead {
					return nil
				}
				_, err = c.Response().Write(buf.Bytes())
				return err
			})
			return next(c)
		}
	}
}

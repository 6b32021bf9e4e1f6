package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/userdesk/internal"
)

// routeHandler registers a single handler.
type routeHandler struct {
	method  string
	pattern string
	h       internal.HandlerFunc
}

func (rh routeHandler) Routes(r internal.Router) {
	r.Handle(rh.method, rh.pattern, rh.h)
}

// requestVia serves req through an app with one route at the request path.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()
	return requestVia2(t, req, req.URL.Path, opts, fn)
}

// requestVia2 is requestVia with an explicit route pattern.
func requestVia2(t *testing.T, req *http.Request, pattern string, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	h := routeHandler{method: req.Method, pattern: pattern, h: func(c internal.Context) error {
		fn(c)
		return nil
	}}
	app := internal.New(append(opts, internal.WithHandlers(h))...)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

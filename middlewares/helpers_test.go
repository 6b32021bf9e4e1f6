package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/userdesk/internal"
)

type route struct {
	method  string
	pattern string
	h       internal.HandlerFunc
}

func (rt route) Routes(r internal.Router) {
	r.Handle(rt.method, rt.pattern, rt.h)
}

// result is the recorded response plus the error the chain returned.
type result struct {
	*httptest.ResponseRecorder
	err error
}

// run serves req through mws and a handler registered at the request path.
func run(t *testing.T, req *http.Request, mws []internal.Middleware, h internal.HandlerFunc, opts ...internal.Option) result {
	t.Helper()

	res := result{ResponseRecorder: httptest.NewRecorder()}
	respond := internal.DefaultErrorHandler(false)
	app := internal.New(append([]internal.Option{
		internal.WithMiddleware(mws...),
		internal.WithHandlers(route{method: req.Method, pattern: req.URL.Path, h: h}),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			res.err = err
			return respond(c, err)
		}),
	}, opts...)...)

	app.ServeHTTP(res.ResponseRecorder, req)
	return res
}

func okHandler(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

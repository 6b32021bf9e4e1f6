package internal

// Handler declares page routes and their access rules.
//
//	func (h *Auth) Routes(r internal.Router) {
//		r.GET("/auth/login", h.showLogin)
//		r.POST("/auth/login", h.login, middlewares.RateLimit(limiter))
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers. A non-nil error is
// passed to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc. It may short-circuit by not calling next.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler writes the response for an error returned by the chain.
type ErrorHandler func(Context, error) error

// Chain applies mw so that mw[0] is the outermost layer.
func Chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Package middlewares holds the page pipeline stages of userdesk.
//
// The application composes them in this order:
//
//	internal.WithMiddleware(
//		middlewares.RequestID(),
//		middlewares.Recover(),
//		middlewares.Metrics(m),
//		middlewares.Timeout(cfg.RequestTimeout),
//		middlewares.SecureHeaders(cfg.Dev),
//		middlewares.Static(views.Public, "/public", !cfg.Dev),
//		middlewares.Session(),
//		middlewares.Body(middlewares.DefaultBodyLimit),
//		middlewares.Auth(tokens, identities),
//		middlewares.Alert(),
//		middlewares.Pages(views.Renderer(), cfg.Dev),
//	)
//
// RateLimit is applied per route, on the login and registration POSTs.
//
// Stages that read the request (Auth, Body, Session) never fail the request
// on bad client input; they leave the corresponding Context field empty
// and log at debug level. Recover and Timeout turn panics and deadlines
// into *PanicError and *TimeoutError, which carry their own status codes.
//
// RequestIDExtractor, SessionIDExtractor and UserIDExtractor plug into
// logger.New so log records written with the request context carry those
// ids.
package middlewares

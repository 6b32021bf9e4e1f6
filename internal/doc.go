// Package internal is the web core of userdesk: the App, the request
// Context, the page pipeline and the error responder.
//
// # Core Types
//
//   - App: owns the chi router, the page route map and the access table
//   - Context: request/response access plus the per-request state that
//     middleware accumulates (body, user, session, alert, nonce, renderer)
//   - Router: what handlers use to attach methods to routes and declare
//     access rules
//   - Handler: types that declare routes on a Router
//   - HandlerFunc, Middleware, ErrorHandler: the function shapes
//
// # Routing
//
// Routes come from two places. WithPages walks a page tree and registers
// one route per file ("user/[id]/edit.html" becomes "/user/[id]/edit").
// Handlers then attach methods to those routes, or add routes of their own:
//
//	func (h *Users) Routes(r internal.Router) {
//		r.POST("/user/:id/edit", h.update)
//		r.Protect("/user/:id/edit", access.All, access.Authenticated, access.AdminOrSelf)
//	}
//
// Page routes that no handler claimed for GET render their template.
//
// # Pipeline
//
// Health and metrics endpoints are plain chi routes. Every other request
// runs through the middleware given to WithMiddleware, in order, and then
// dispatch:
//
//  1. resolve the path against the route map (404 on miss)
//  2. bind route pattern and parameters on the Context
//  3. authorize against the access table (403 on denial)
//  4. select the method handler (405 with Allow on miss)
//  5. invoke it
//
// # Errors
//
// Handlers return errors. DefaultErrorHandler maps them to a status via
// StatusOf and negotiates the body on Accept: the "_error" page for HTML,
// {"error": message} for JSON, nothing otherwise. Outside dev, 5xx
// messages are replaced by the status text.
//
// # Server Runtime
//
//	err := app.Run(":3000",
//		internal.Logger(log),
//		internal.ShutdownHook(db.Shutdown(pool)),
//	)
//
// Run starts the job runner before listening and stops it before the
// shutdown hooks run.
package internal

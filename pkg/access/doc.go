// Package access implements route-level authorization.
//
// A Table maps colon-style path patterns ("/user/:id/edit") and methods to
// ordered lists of checks. Authorize runs the checks that apply to a request
// and stops at the first denial:
//
//	t := access.NewTable()
//	t.Protect("/user", access.All, access.AdminOnly)
//	t.Protect("/user/:id/edit", access.All, access.AdminOrSelf, access.AdminCanEditRoles)
//
//	if err := t.Authorize(req); err != nil {
//		var denied *access.DeniedError
//		errors.As(err, &denied) // denied.Reason is safe to show to the user
//	}
//
// A Check returns an empty string to allow the request or a human readable
// reason to deny it.
package access

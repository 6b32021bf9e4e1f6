// Package fsroute maps request paths to routes derived from a directory of
// page files plus explicitly registered patterns.
//
// File names become route keys:
//
//	index.html               -> /
//	auth/login.html          -> /auth/login
//	user/index.html          -> /user
//	user/[id]/edit.html      -> /user/[id]/edit
//	_layout.html, _partials/ -> ignored
//
// Everything from the first dot of the file name is dropped, keys are
// lower-cased, and a trailing "index" segment is removed. A segment written
// as [name] (or :name when registering explicitly) captures one path segment.
//
// Resolution tries an exact, case-insensitive match first. Otherwise the
// parameterized routes are scanned in a fixed order: routes with more literal
// segments come first, then those whose first literal appears earlier, then
// lexical pattern order. So /user/create always beats /user/[id], whatever the
// registration order.
package fsroute

package access

// Denial reasons of the built-in checks.
const (
	ReasonLoginRequired = "You must be logged in to access this page"
	ReasonAdminRequired = "You must be an admin to access this page"
	ReasonAdminOrSelf   = "You must be an admin or the same user to access this page"
	ReasonEditRoles     = "You must be an admin to edit this user's role"
)

// Authenticated requires a logged in user.
func Authenticated(r *Request) string {
	if !r.Authenticated {
		return ReasonLoginRequired
	}
	return ""
}

// AdminOnly requires the admin role.
func AdminOnly(r *Request) string {
	if !r.Authenticated || r.Role != RoleAdmin {
		return ReasonAdminRequired
	}
	return ""
}

// AdminOrSelf allows admins and the user named by the :id parameter.
func AdminOrSelf(r *Request) string {
	if r.Authenticated && (r.Role == RoleAdmin || r.UserID == r.Param("id")) {
		return ""
	}
	return ReasonAdminOrSelf
}

// AdminCanEditRoles rejects a non-admin request whose body sets a role.
func AdminCanEditRoles(r *Request) string {
	if r.Role == RoleAdmin || r.Body == nil {
		return ""
	}
	v, ok := r.Body["role"]
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString && s == "" {
		return ""
	}
	if ss, isSlice := v.([]string); isSlice && (len(ss) == 0 || ss[0] == "") {
		return ""
	}
	return ReasonEditRoles
}

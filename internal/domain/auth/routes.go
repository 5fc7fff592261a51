package auth

const (
	// RoleSelectPath is the public entry where visitors choose a role.
	RoleSelectPath = "/role-select"
	// UnauthorizedPath is shown when an authenticated role opens another role's page.
	UnauthorizedPath = "/unauthorized"
)

// DashboardPath maps a role to its dashboard. Roles without a dashboard fall back to role selection.
func DashboardPath(r Role) string {
	switch r {
	case RoleDoctor:
		return "/doctor/dashboard"
	case RoleStaff:
		return "/staff/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return RoleSelectPath
	}
}

// LoginPath returns the role's login page, or role selection when the role has no channel.
func LoginPath(r Role) string {
	if !r.HasChannel() {
		return RoleSelectPath
	}
	return "/login/" + string(r)
}

// SignupPath returns the role's signup page, or role selection when the role has no channel.
func SignupPath(r Role) string {
	if !r.HasChannel() {
		return RoleSelectPath
	}
	return "/signup/" + string(r)
}

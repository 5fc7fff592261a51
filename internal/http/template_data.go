package httpx

import domainauth "github.com/target/pulsecare-portal/internal/domain/auth"

// Page names map to files in frontend/templates/pages.
const (
	PageRoleSelect   = "role_select"
	PageLogin        = "login"
	PageSignup       = "signup"
	PageDashboard    = "dashboard"
	PageUnauthorized = "unauthorized"
)

// PageData is the template model shared by every page.
type PageData struct {
	Title string
	Page  string

	// Role is the role the page is scoped to, if any.
	Role  domainauth.Role
	Roles []RoleOption

	// Identity is set on authenticated pages.
	Identity *domainauth.Identity

	// Form holds submitted values for re-rendering. Passwords are never echoed.
	Form     map[string]string
	Errors   map[string]string
	Message  string
	Notice   string
	Strength domainauth.PasswordStrength

	RequestID string
}

// RoleOption describes one choice on the role selection page.
type RoleOption struct {
	Role        domainauth.Role
	Title       string
	Description string
	Selected    bool
}

var roleOptions = []RoleOption{
	{Role: domainauth.RoleStaff, Title: "Staff", Description: "Front desk & operations"},
	{Role: domainauth.RoleAdmin, Title: "Admin / User", Description: "Access your medical records"},
	{Role: domainauth.RoleDoctor, Title: "Medical Doctor", Description: "View appointments & patients"},
}

// RoleOptions returns the selectable roles with selected marked.
func RoleOptions(selected domainauth.Role) []RoleOption {
	out := make([]RoleOption, len(roleOptions))
	for i, opt := range roleOptions {
		opt.Selected = opt.Role == selected
		out[i] = opt
	}
	return out
}

// RoleTitle is the display name for a role.
func RoleTitle(r domainauth.Role) string {
	for _, opt := range roleOptions {
		if opt.Role == r {
			return opt.Title
		}
	}
	if r == "" {
		return "Guest"
	}
	return "User"
}

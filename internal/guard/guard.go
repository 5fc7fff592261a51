// Package guard turns a session snapshot into a routing decision. It performs no navigation;
// callers act on the returned Decision.
package guard

import domainauth "github.com/target/pulsecare-portal/internal/domain/auth"

// Kind is what a page should do.
type Kind int

const (
	// Render shows the page.
	Render Kind = iota
	// Suspend renders nothing until the session settles.
	Suspend
	// Loading shows a loading indicator until the session settles.
	Loading
	// RedirectRoleSelect sends an anonymous visitor to role selection.
	RedirectRoleSelect
	// RedirectDashboard sends an authenticated visitor to their dashboard.
	RedirectDashboard
	// RedirectUnauthorized sends an authenticated visitor away from another role's page.
	RedirectUnauthorized
)

var kindNames = map[Kind]string{
	Render:               "render",
	Suspend:              "suspend",
	Loading:              "loading",
	RedirectRoleSelect:   "redirect_role_select",
	RedirectDashboard:    "redirect_dashboard",
	RedirectUnauthorized: "redirect_unauthorized",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Decision is a guard outcome. Location is set for redirects.
type Decision struct {
	Kind     Kind
	Location string
}

// Redirect reports whether d sends the visitor elsewhere.
func (d Decision) Redirect() bool {
	return d.Location != ""
}

// PublicOnly guards pages meant for visitors who are not signed in. An authenticated visitor is
// sent to their dashboard unless that is where they already are.
func PublicOnly(snap domainauth.Snapshot, currentPath string) Decision {
	if !snap.Settled() {
		return Decision{Kind: Suspend}
	}
	if snap.Identity == nil {
		return Decision{Kind: Render}
	}
	target := domainauth.DashboardPath(snap.Identity.Role)
	if target == currentPath {
		return Decision{Kind: Render}
	}
	return Decision{Kind: RedirectDashboard, Location: target}
}

// RequireRole guards pages restricted to the allowed roles.
func RequireRole(snap domainauth.Snapshot, allowed ...domainauth.Role) Decision {
	if !snap.Settled() {
		return Decision{Kind: Loading}
	}
	if snap.Identity == nil {
		return Decision{Kind: RedirectRoleSelect, Location: domainauth.RoleSelectPath}
	}
	for _, r := range allowed {
		if snap.Identity.Role == r {
			return Decision{Kind: Render}
		}
	}
	return Decision{Kind: RedirectUnauthorized, Location: domainauth.UnauthorizedPath}
}

package auth

// Package auth contains domain-level types for the portal session lifecycle.
// It is pure and free of framework/adapter concerns.

import "strings"

// Role is the principal category that selects a dashboard and an identity-service channel.
// Keep string form for easy persistence and URL path segments.
type Role string

const (
	RoleDoctor Role = "doctor"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
	// RoleUser is accepted from the identity service but has no signup/login channel of its own.
	RoleUser Role = "user"
)

// ChannelRoles lists the roles that own a signup/login endpoint family, in display order.
var ChannelRoles = []Role{RoleDoctor, RoleStaff, RoleAdmin}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleDoctor, RoleStaff, RoleAdmin, RoleUser:
		return r, true
	default:
		return "", false
	}
}

// Known reports whether r is one of the defined roles.
func (r Role) Known() bool {
	return r == RoleUser || r.HasChannel()
}

// HasChannel reports whether r has a role-scoped signup/login endpoint family.
func (r Role) HasChannel() bool {
	switch r {
	case RoleDoctor, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// Identity is the authenticated principal returned by the identity service.
type Identity struct {
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Email string `json:"email,omitempty"`
}

// Valid reports whether the identity carries a recognized role.
func (i Identity) Valid() bool { return i.Role.Known() }

// Status is the session state machine's current state.
type Status int

const (
	StatusUninitialized Status = iota
	StatusRestoring
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// MarshalText renders the status in its lowercase string form.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is the published, read-only view of the session.
// Identity is non-nil only when Status is StatusAuthenticated.
type Snapshot struct {
	Status   Status    `json:"status"`
	Identity *Identity `json:"identity,omitempty"`
}

// Loading is true only while a restore is in flight.
func (s Snapshot) Loading() bool { return s.Status == StatusRestoring }

// Settled reports whether the machine reached a terminal state for the current lifecycle.
func (s Snapshot) Settled() bool {
	return s.Status == StatusAuthenticated || s.Status == StatusAnonymous
}

// Authenticated reports whether an identity is live.
func (s Snapshot) Authenticated() bool { return s.Identity != nil }

// Role returns the live identity's role, or "" when anonymous.
func (s Snapshot) Role() Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Credentials is a transient email/password pair. It is never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

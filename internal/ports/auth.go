package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
)

// AuthResult is what a successful login or signup yields.
// Token is empty when the transport relies on a server-managed session cookie.
type AuthResult struct {
	Identity domainauth.Identity
	Token    string
}

// IdentityTransport talks to the remote identity service.
type IdentityTransport interface {
	// Login authenticates credentials against role's login endpoint.
	Login(ctx context.Context, role domainauth.Role, creds domainauth.Credentials) (AuthResult, error)

	// Signup registers a role-scoped profile against role's signup endpoint.
	Signup(ctx context.Context, role domainauth.Role, profile domainauth.SignupProfile) (AuthResult, error)

	// RestoreSession resolves the current identity. A nil identity with a nil error means "no session".
	RestoreSession(ctx context.Context) (*domainauth.Identity, error)

	// FetchProfile reloads the authenticated identity. It signals an unauthorized response distinctly.
	FetchProfile(ctx context.Context) (*domainauth.Identity, error)

	// Logout asks the service to end the session.
	Logout(ctx context.Context) error

	// Authorize installs the credential attached to authenticated requests; "" clears it.
	Authorize(token string)
}

// KeyValueStore is the durable client-side storage capability.
// Get returns an error satisfying errors.IsNotFound when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

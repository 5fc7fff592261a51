// Package mocks provides mock implementations for testing the portal's session components.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	transport := mocks.NewMockIdentityTransport(ctrl)
//	transport.EXPECT().RestoreSession(gomock.Any()).Return(nil, nil)
package mocks

// Generate mock for IdentityTransport interface from internal/ports package.
// This creates MockIdentityTransport with methods for all IdentityTransport interface methods:
// Login, Signup, RestoreSession, FetchProfile, Logout, Authorize
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_transport_mock.go github.com/target/pulsecare-portal/internal/ports IdentityTransport

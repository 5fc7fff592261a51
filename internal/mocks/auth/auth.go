package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityTransport = (*MockTransport)(nil)
	_ ports.KeyValueStore     = (*MemoryStore)(nil)
)

// MockTransport simulates the identity service. Unset funcs fall back to deterministic defaults:
// login/signup succeed with an identity for the requested role, restore finds no session.
type MockTransport struct {
	LoginFunc        func(ctx context.Context, role domainauth.Role, creds domainauth.Credentials) (ports.AuthResult, error)
	SignupFunc       func(ctx context.Context, role domainauth.Role, p domainauth.SignupProfile) (ports.AuthResult, error)
	RestoreFunc      func(ctx context.Context) (*domainauth.Identity, error)
	FetchProfileFunc func(ctx context.Context) (*domainauth.Identity, error)
	LogoutFunc       func(ctx context.Context) error

	// Token is returned with default login/signup results.
	Token string

	mu           sync.Mutex
	calls        map[string]int
	authorized   []string
	currentToken string
}

// NewMockTransport creates a MockTransport with no overrides.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times the named method ran.
func (m *MockTransport) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// Authorized returns every token passed to Authorize, in order.
func (m *MockTransport) Authorized() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.authorized...)
}

// CurrentToken returns the token most recently installed via Authorize.
func (m *MockTransport) CurrentToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentToken
}

func (m *MockTransport) defaultResult(role domainauth.Role, email string) ports.AuthResult {
	return ports.AuthResult{
		Identity: domainauth.Identity{Name: "Mock " + string(role), Role: role, Email: email},
		Token:    m.Token,
	}
}

func (m *MockTransport) Login(
	ctx context.Context,
	role domainauth.Role,
	creds domainauth.Credentials,
) (ports.AuthResult, error) {
	m.record("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, role, creds)
	}
	return m.defaultResult(role, creds.Email), nil
}

func (m *MockTransport) Signup(
	ctx context.Context,
	role domainauth.Role,
	p domainauth.SignupProfile,
) (ports.AuthResult, error) {
	m.record("Signup")
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, role, p)
	}
	return m.defaultResult(role, p.Email), nil
}

func (m *MockTransport) RestoreSession(ctx context.Context) (*domainauth.Identity, error) {
	m.record("RestoreSession")
	if m.RestoreFunc != nil {
		return m.RestoreFunc(ctx)
	}
	return nil, nil
}

func (m *MockTransport) FetchProfile(ctx context.Context) (*domainauth.Identity, error) {
	m.record("FetchProfile")
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx)
	}
	return nil, nil
}

func (m *MockTransport) Logout(ctx context.Context) error {
	m.record("Logout")
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockTransport) Authorize(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorized = append(m.authorized, token)
	m.currentToken = token
}

// ErrStoreUnavailable is returned by MemoryStore when FailWrites is set.
var ErrStoreUnavailable = errors.New("store unavailable")

// MemoryStore is an in-memory key-value store that counts writes.
type MemoryStore struct {
	// FailWrites makes Set and Delete return ErrStoreUnavailable.
	FailWrites bool

	mu     sync.Mutex
	values map[string]string
	writes int
}

// NewMemoryStore creates an empty MemoryStore, optionally seeded with kv pairs.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &MemoryStore{values: values}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", apperrors.NotFound("key not found")
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrStoreUnavailable
	}
	m.values[key] = value
	m.writes++
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrStoreUnavailable
	}
	if _, ok := m.values[key]; ok {
		delete(m.values, key)
		m.writes++
	}
	return nil
}

// Has reports whether key is present.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

// Value returns the stored value for key, or "".
func (m *MemoryStore) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Keys returns the number of stored keys.
func (m *MemoryStore) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// Writes returns how many mutating calls changed state.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

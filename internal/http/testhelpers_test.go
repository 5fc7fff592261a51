package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/validation"
)

// requireTemplateRenderer loads templates from the source tree.
func requireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: os.DirFS(TemplatePathFromTest)})
	require.NoError(t, err)
	return tr
}

// fakeSessions is an in-memory SessionService. Login and Signup apply the same validation as the
// session machine and then authenticate as the submitted role unless err is set.
type fakeSessions struct {
	mu      sync.Mutex
	snap    domainauth.Snapshot
	err     error
	logouts int
	entry   string
	logins  []domainauth.Credentials
	signups []domainauth.SignupProfile
}

func newFakeSessions(snap domainauth.Snapshot) *fakeSessions {
	return &fakeSessions{snap: snap, entry: domainauth.RoleSelectPath}
}

func anonymous() domainauth.Snapshot {
	return domainauth.Snapshot{Status: domainauth.StatusAnonymous}
}

func authenticatedAs(role domainauth.Role) domainauth.Snapshot {
	return domainauth.Snapshot{
		Status:   domainauth.StatusAuthenticated,
		Identity: &domainauth.Identity{Name: "Avery Quinn", Role: role, Email: "avery@pulsecare.test"},
	}
}

func (f *fakeSessions) Snapshot() domainauth.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSessions) set(snap domainauth.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

func (f *fakeSessions) Login(
	_ context.Context,
	role domainauth.Role,
	creds domainauth.Credentials,
) (domainauth.Identity, error) {
	if err := validation.Login(creds); err != nil {
		return domainauth.Identity{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, creds)
	if f.err != nil {
		return domainauth.Identity{}, f.err
	}
	ident := domainauth.Identity{Name: "Avery Quinn", Role: role, Email: creds.Email}
	f.snap = domainauth.Snapshot{Status: domainauth.StatusAuthenticated, Identity: &ident}
	return ident, nil
}

func (f *fakeSessions) Signup(
	_ context.Context,
	role domainauth.Role,
	profile domainauth.SignupProfile,
) (domainauth.Identity, error) {
	if err := validation.Signup(role, profile); err != nil {
		return domainauth.Identity{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signups = append(f.signups, profile)
	if f.err != nil {
		return domainauth.Identity{}, f.err
	}
	ident := domainauth.Identity{Name: profile.FullName, Role: role, Email: profile.Email}
	f.snap = domainauth.Snapshot{Status: domainauth.StatusAuthenticated, Identity: &ident}
	return ident, nil
}

func (f *fakeSessions) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.snap = anonymous()
}

func (f *fakeSessions) LoginEntry() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entry
}

type fakeRoles struct {
	mu   sync.Mutex
	role domainauth.Role
	ok   bool
	err  error
}

func (f *fakeRoles) Save(_ context.Context, role domainauth.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if !role.HasChannel() {
		return apperrors.ValidationField("role", "Please select a role.")
	}
	f.role, f.ok = role, true
	return nil
}

func (f *fakeRoles) Load(context.Context) (domainauth.Role, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.role, f.ok, f.err
}

type fakeProfiles struct {
	ident *domainauth.Identity
	err   error
	calls int
}

func (f *fakeProfiles) RefreshProfile(context.Context) (*domainauth.Identity, error) {
	f.calls++
	return f.ident, f.err
}

type routerFixture struct {
	handler  http.Handler
	sessions *fakeSessions
	roles    *fakeRoles
	profiles *fakeProfiles
}

func newRouterFixture(t *testing.T, snap domainauth.Snapshot) *routerFixture {
	t.Helper()
	f := &routerFixture{
		sessions: newFakeSessions(snap),
		roles:    &fakeRoles{},
		profiles: &fakeProfiles{},
	}
	if snap.Identity != nil {
		ident := *snap.Identity
		f.profiles.ident = &ident
	}
	h, err := NewRouter(RouterServices{
		Sessions: f.sessions,
		Roles:    f.roles,
		Profiles: f.profiles,
		Renderer: requireTemplateRenderer(t),
	})
	require.NoError(t, err)
	f.handler = h
	return f
}

func (f *routerFixture) get(path string, accept ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(accept) > 0 {
		req.Header.Set("Accept", accept[0])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) post(path string, form url.Values, accept ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if len(accept) > 0 {
		req.Header.Set("Accept", accept[0])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func signupForm(p domainauth.SignupProfile) url.Values {
	v := url.Values{}
	for k, val := range profileFormValues(p) {
		if val != "" {
			v.Set(k, val)
		}
	}
	v.Set("password", p.Password)
	v.Set("confirmPassword", p.ConfirmPassword)
	return v
}

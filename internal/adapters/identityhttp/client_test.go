package identityhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, srv *httptest.Server, strategy Strategy) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: srv.URL, Strategy: strategy})
	require.NoError(t, err)
	return c
}

func TestClient_LoginWrappedUser(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/doctor/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]any{
			"user": map[string]any{"name": "A", "role": "doctor", "email": "a@b.com"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	res, err := c.Login(context.Background(), domainauth.RoleDoctor, domainauth.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, domainauth.Identity{Name: "A", Role: domainauth.RoleDoctor, Email: "a@b.com"}, res.Identity)
	assert.Empty(t, res.Token)
	assert.Equal(t, map[string]string{"email": "a@b.com", "password": "x"}, gotBody)
}

func TestClient_LoginFlatBodyWithToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok-1", "name": "Sam", "role": "admin"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyBearer)
	res, err := c.Login(context.Background(), domainauth.RoleAdmin, domainauth.Credentials{Email: "s@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, domainauth.RoleAdmin, res.Identity.Role)
	assert.Equal(t, "Sam", res.Identity.Name)
}

func TestClient_SignupSendsRoleScopedPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/staff/signup", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]any{
			"user": map[string]any{"name": "Kim", "role": "staff"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	res, err := c.Signup(context.Background(), domainauth.RoleStaff, domainauth.SignupProfile{
		FullName: "Kim", Email: "k@b.com", StaffID: "S1", Department: "ER", RoleTitle: "Nurse", AcceptTerms: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleStaff, res.Identity.Role)
	assert.Equal(t, "S1", got["staffId"])
	assert.Equal(t, "Nurse", got["role"])
	assert.Equal(t, true, got["terms"])
	assert.NotContains(t, got, "doctorId")
}

func TestClient_RejectedMessageVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Email already registered"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	_, err := c.Signup(context.Background(), domainauth.RoleAdmin, domainauth.SignupProfile{})
	require.Error(t, err)
	assert.True(t, apperrors.IsRejected(err))
	assert.Equal(t, "Email already registered", apperrors.Message(err, ""))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}

func TestClient_LoginUnauthorizedIsRejection(t *testing.T) {
	var hooked atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	c.SetUnauthorizedHandler(func(context.Context) { hooked.Store(true) })

	_, err := c.Login(context.Background(), domainauth.RoleStaff, domainauth.Credentials{Email: "a@b.com", Password: "bad"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRejected(err))
	assert.Equal(t, "Auth request failed", apperrors.Message(err, ""))
	assert.False(t, hooked.Load(), "a failed login is not a session loss")
}

func TestClient_ServerErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "<html>bad gateway</html>", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	_, err := c.Login(context.Background(), domainauth.RoleDoctor, domainauth.Credentials{})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
	assert.Equal(t, "request failed", apperrors.Message(err, ""))
}

func TestClient_NetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv, StrategyCookie)
	srv.Close()

	_, err := c.RestoreSession(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClient_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.RestoreSession(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsCanceled(err))
}

func TestClient_MalformedIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"name": "X", "role": "nurse"}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	_, err := c.Login(context.Background(), domainauth.RoleDoctor, domainauth.Credentials{})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClient_RestoreUnauthorizedIsNoSession(t *testing.T) {
	var hooked atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Not authenticated"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	c.SetUnauthorizedHandler(func(context.Context) { hooked.Store(true) })

	ident, err := c.RestoreSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, ident)
	assert.False(t, hooked.Load())
}

func TestClient_RestoreFlatIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"name": "A", "role": "staff", "email": "a@b.com"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	ident, err := c.RestoreSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, domainauth.RoleStaff, ident.Role)
}

func TestClient_FetchProfileUnauthorizedSignals(t *testing.T) {
	var hooked atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/profile", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyBearer)
	c.SetUnauthorizedHandler(func(context.Context) { hooked.Add(1) })

	ident, err := c.FetchProfile(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, ident)
	assert.Equal(t, int32(1), hooked.Load())
}

func TestClient_BearerHeaderOnAuthenticatedRequests(t *testing.T) {
	var loginAuth, profileAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/admin/login":
			loginAuth.Store(r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"token": "tok-9", "user": map[string]any{"name": "A", "role": "admin"}})
		case "/auth/profile":
			profileAuth.Store(r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"name": "A", "role": "admin"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyBearer)
	res, err := c.Login(context.Background(), domainauth.RoleAdmin, domainauth.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "", loginAuth.Load())

	c.Authorize(res.Token)
	_, err = c.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", profileAuth.Load())

	c.Authorize("")
	_, err = c.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", profileAuth.Load())
}

func TestCredentials_RoundTripperResolvesTokenOnce(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	creds, err := newCredentials(StrategyBearer)
	require.NoError(t, err)
	creds.set("tok-1")

	rt := creds.roundTripper(http.DefaultTransport, true)
	creds.set("")

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer tok-1", gotAuth.Load())

	assert.Equal(t, http.DefaultTransport, creds.roundTripper(http.DefaultTransport, true))
}

func TestClient_CookieSessionAndLocalClear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/doctor/login":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s-1", Path: "/", HttpOnly: true})
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"name": "A", "role": "doctor"}})
		case "/auth/me":
			if ck, err := r.Cookie("sid"); err != nil || ck.Value != "s-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"name": "A", "role": "doctor"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	ctx := context.Background()

	_, err := c.Login(ctx, domainauth.RoleDoctor, domainauth.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	ident, err := c.RestoreSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, ident)

	c.Authorize("")
	ident, err = c.RestoreSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestClient_LogoutBestEffortStatuses(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNoContent)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/logout", r.URL.Path)
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	assert.NoError(t, c.Logout(context.Background()))

	status.Store(http.StatusUnauthorized)
	assert.NoError(t, c.Logout(context.Background()))

	status.Store(http.StatusInternalServerError)
	assert.True(t, apperrors.IsTransport(c.Logout(context.Background())))
}

func TestClient_RoleWithoutChannel(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()

	c := newTestClient(t, srv, StrategyCookie)
	_, err := c.Login(context.Background(), domainauth.RoleUser, domainauth.Credentials{})
	assert.True(t, apperrors.IsValidation(err))
	_, err = c.Signup(context.Background(), domainauth.Role("nurse"), domainauth.SignupProfile{})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_CustomIdentityPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"account": map[string]any{"name": "A", "role": "staff"}, "jwt": "t-2"},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Options{
		BaseURL:      srv.URL,
		Strategy:     StrategyBearer,
		IdentityPath: "data.account",
		TokenPath:    "data.jwt",
	})
	require.NoError(t, err)

	res, err := c.Login(context.Background(), domainauth.RoleStaff, domainauth.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleStaff, res.Identity.Role)
	assert.Equal(t, "t-2", res.Token)
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing base url", Options{}},
		{"relative base url", Options{BaseURL: "/auth"}},
		{"unknown strategy", Options{BaseURL: "http://id.local", Strategy: "magic"}},
		{"bad identity path", Options{BaseURL: "http://id.local", IdentityPath: "user ||"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.opts)
			assert.Error(t, err)
		})
	}

	c, err := NewClient(Options{BaseURL: "http://id.local/"})
	require.NoError(t, err)
	assert.Equal(t, StrategyCookie, c.Strategy())
}

func TestStrategy_UnmarshalText(t *testing.T) {
	var s Strategy
	require.NoError(t, s.UnmarshalText([]byte(" Bearer ")))
	assert.Equal(t, StrategyBearer, s)
	assert.Error(t, s.UnmarshalText([]byte("header")))
}

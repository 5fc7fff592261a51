package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	"github.com/target/pulsecare-portal/internal/guard"
)

const requestIDHeader = "X-Request-ID"

// SnapshotSource exposes the live session state to guards.
type SnapshotSource interface {
	Snapshot() domainauth.Snapshot
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", RequestIDFromContext(r.Context())),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID assigns every request an ID, reusing a well-formed inbound X-Request-ID.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(SetRequestIDInContext(r.Context(), id)))
		})
	}
}

var errCrossOrigin = errors.New("cross-origin request rejected")

// SameOrigin rejects state-changing requests a browser sent from another site. Browsers label
// requests with Sec-Fetch-Site, older ones only with Origin. Requests carrying neither come from
// non-browser clients and pass.
func SameOrigin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isUnsafeMethod(r.Method) || sameOrigin(r) {
				next.ServeHTTP(w, r)
				return
			}
			logger.WarnContext(r.Context(), "cross-origin request rejected",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("origin", r.Header.Get("Origin")),
				slog.String("sec_fetch_site", r.Header.Get("Sec-Fetch-Site")),
			)
			WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "cross_origin", Err: errCrossOrigin})
		})
	}
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func sameOrigin(r *http.Request) bool {
	if site := r.Header.Get("Sec-Fetch-Site"); site != "" {
		return site == "same-origin" || site == "none"
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// PublicOnly guards pages for visitors who are not signed in.
func PublicOnly(sessions SnapshotSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := guard.PublicOnly(sessions.Snapshot(), r.URL.Path)
			if d.Kind == guard.Render {
				next.ServeHTTP(w, r)
				return
			}
			applyDecision(w, r, d)
		})
	}
}

// RequireRole guards pages restricted to roles.
func RequireRole(sessions SnapshotSource, roles ...domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := guard.RequireRole(sessions.Snapshot(), roles...)
			if d.Kind == guard.Render {
				next.ServeHTTP(w, r)
				return
			}
			applyDecision(w, r, d)
		})
	}
}

const loadingPage = `<!doctype html>
<html lang="en"><head><meta charset="utf-8"><meta http-equiv="refresh" content="1">
<title>PulseCare</title><link rel="stylesheet" href="/static/css/portal.css"></head>
<body><main class="loading"><p>Loading...</p></main></body></html>
`

var (
	errAuthRequired = errors.New("authentication required")
	errForbidden    = errors.New("insufficient permissions")
	errLoading      = errors.New("session is loading")
)

func applyDecision(w http.ResponseWriter, r *http.Request, d guard.Decision) {
	switch d.Kind {
	case guard.Suspend:
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
	case guard.Loading:
		w.Header().Set("Cache-Control", "no-store")
		if WantsJSON(r) {
			w.Header().Set("Retry-After", "1")
			WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "session_loading", Err: errLoading})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, loadingPage)
	case guard.RedirectRoleSelect:
		if WantsJSON(r) {
			WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errAuthRequired})
			return
		}
		http.Redirect(w, r, d.Location, http.StatusSeeOther)
	case guard.RedirectUnauthorized:
		if WantsJSON(r) {
			WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "insufficient_permissions", Err: errForbidden})
			return
		}
		http.Redirect(w, r, d.Location, http.StatusSeeOther)
	case guard.RedirectDashboard:
		http.Redirect(w, r, d.Location, http.StatusSeeOther)
	case guard.Render:
	}
}

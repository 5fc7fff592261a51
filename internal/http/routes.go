package httpx

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	pulsecare "github.com/target/pulsecare-portal"
	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Sessions SessionService
	Roles    RoleMemory
	Profiles ProfileSource
	// Renderer is optional; when nil one is built from embedded templates, or from disk in dev mode.
	Renderer *TemplateRenderer
	IsDev    bool
	Logger   *slog.Logger
}

// NewRouter builds the portal's routes.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Sessions == nil || services.Roles == nil || services.Profiles == nil {
		return nil, errors.New("router requires sessions, roles and profiles")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer := services.Renderer
	if renderer == nil {
		var err error
		renderer, err = NewTemplateRenderer(TemplateRendererConfig{
			TemplateFS: templateFS(services.IsDev),
			DevMode:    services.IsDev,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
	}

	auth := &AuthHandlers{Sessions: services.Sessions, Roles: services.Roles, T: renderer, Logger: logger}
	dash := &DashboardHandlers{Sessions: services.Sessions, Profiles: services.Profiles, T: renderer, Logger: logger}

	mux := http.NewServeMux()
	public := PublicOnly(services.Sessions)

	mux.Handle("GET /{$}", http.RedirectHandler(domainauth.RoleSelectPath, http.StatusSeeOther))
	mux.Handle("GET /role-select", public(http.HandlerFunc(auth.RoleSelectPage)))
	mux.Handle("POST /role-select", public(http.HandlerFunc(auth.RoleSelectSubmit)))
	mux.Handle("GET /signup/{role}", public(http.HandlerFunc(auth.SignupPage)))
	mux.Handle("POST /signup/{role}", public(http.HandlerFunc(auth.SignupSubmit)))
	mux.Handle("GET /login/{role}", public(http.HandlerFunc(auth.LoginPage)))
	mux.Handle("POST /login/{role}", public(http.HandlerFunc(auth.LoginSubmit)))
	mux.Handle("POST /logout", http.HandlerFunc(auth.Logout))
	mux.Handle("GET /auth/status", http.HandlerFunc(auth.Status))

	for _, role := range domainauth.ChannelRoles {
		mux.Handle("GET "+domainauth.DashboardPath(role), RequireRole(services.Sessions, role)(dash.Dashboard(role)))
	}
	mux.Handle("GET "+domainauth.UnauthorizedPath, http.HandlerFunc(dash.Unauthorized))

	health := healthHandler(services.Sessions)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))

	return mux, nil
}

// templateFS serves templates from disk in dev mode for hot reloading, otherwise from the binary.
func templateFS(isDev bool) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(pulsecare.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	sub, err := fs.Sub(pulsecare.StaticFS, "frontend/static")
	if err != nil {
		logger.Error("failed to create sub-filesystem for static assets", "error", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(sub))), true)
}

func staticWithCacheHeaders(next http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		next.ServeHTTP(w, r)
	})
}

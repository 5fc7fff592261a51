package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
)

var errSessionExpired = errors.New("session expired")

// ProfileSource reloads and publishes the authenticated identity. A nil identity with a nil error
// means the identity service no longer accepts the session.
type ProfileSource interface {
	RefreshProfile(ctx context.Context) (*domainauth.Identity, error)
}

// DashboardHandlers serves the role dashboards and the unauthorized page.
type DashboardHandlers struct {
	Sessions SessionService
	Profiles ProfileSource
	T        *TemplateRenderer
	Logger   *slog.Logger
}

func (h *DashboardHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Dashboard returns the handler for role's dashboard. Routes must be wrapped in RequireRole.
// GET /{role}/dashboard.
func (h *DashboardHandlers) Dashboard(role domainauth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			Title:    RoleTitle(role) + " Dashboard",
			Page:     PageDashboard,
			Role:     role,
			Identity: h.Sessions.Snapshot().Identity,
		}

		ident, err := h.Profiles.RefreshProfile(r.Context())
		switch {
		case err != nil:
			h.logger().WarnContext(r.Context(), "profile refresh failed", "role", role, "error", err)
			data.Notice = "Unable to refresh your profile right now."
		case ident == nil:
			// The unauthorized hook has already cleared the session.
			if WantsJSON(r) {
				WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "session_expired", Err: errSessionExpired})
				return
			}
			http.Redirect(w, r, h.Sessions.LoginEntry(), http.StatusSeeOther)
			return
		default:
			data.Identity = ident
		}

		if WantsJSON(r) {
			WriteJSON(w, http.StatusOK, map[string]any{"user": data.Identity, "notice": data.Notice})
			return
		}
		h.render(w, r, http.StatusOK, data)
	}
}

// Unauthorized explains that the page belongs to another role.
// GET /unauthorized.
func (h *DashboardHandlers) Unauthorized(w http.ResponseWriter, r *http.Request) {
	snap := h.Sessions.Snapshot()
	h.render(w, r, http.StatusForbidden, PageData{
		Title:    "Unauthorized",
		Page:     PageUnauthorized,
		Role:     snap.Role(),
		Identity: snap.Identity,
	})
}

func (h *DashboardHandlers) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	data.RequestID = RequestIDFromContext(r.Context())
	if err := h.T.Render(w, status, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render failed", "page", data.Page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/validation"
)

const (
	msgFixFields   = "Please correct the highlighted fields."
	msgRejected    = "Auth request failed"
	msgUnavailable = "Unable to reach PulseCare right now. Please try again."
)

// SessionService is the session surface the auth handlers drive.
type SessionService interface {
	SnapshotSource
	Login(ctx context.Context, role domainauth.Role, creds domainauth.Credentials) (domainauth.Identity, error)
	Signup(ctx context.Context, role domainauth.Role, profile domainauth.SignupProfile) (domainauth.Identity, error)
	Logout(ctx context.Context)
	LoginEntry() string
}

// RoleMemory remembers the role chosen on the role selection page.
type RoleMemory interface {
	Save(ctx context.Context, role domainauth.Role) error
	Load(ctx context.Context) (domainauth.Role, bool, error)
}

// AuthHandlers serves role selection, login, signup, logout and session status.
// Handlers only change session state; the follow-up redirect lets the guards pick the destination.
type AuthHandlers struct {
	Sessions SessionService
	Roles    RoleMemory
	T        *TemplateRenderer
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// RoleSelectPage renders the role choices, preselecting a remembered role.
// GET /role-select.
func (h *AuthHandlers) RoleSelectPage(w http.ResponseWriter, r *http.Request) {
	selected, _, err := h.Roles.Load(r.Context())
	if err != nil {
		h.logger().WarnContext(r.Context(), "load selected role failed", "error", err)
	}
	h.render(w, r, http.StatusOK, PageData{
		Title: "Select your role",
		Page:  PageRoleSelect,
		Roles: RoleOptions(selected),
	})
}

// RoleSelectSubmit remembers the chosen role and continues to its signup page.
// POST /role-select.
func (h *AuthHandlers) RoleSelectSubmit(w http.ResponseWriter, r *http.Request) {
	role, _ := domainauth.ParseRole(r.PostFormValue("role"))
	if err := h.Roles.Save(r.Context(), role); err != nil {
		h.renderFormError(w, r, PageData{
			Title: "Select your role",
			Page:  PageRoleSelect,
			Roles: RoleOptions(""),
		}, err)
		return
	}
	http.Redirect(w, r, domainauth.SignupPath(role), http.StatusSeeOther)
}

// LoginPage renders the role's login form.
// GET /login/{role}.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	role, ok := h.pathRole(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, loginPageData(role, nil))
}

// LoginSubmit authenticates and redirects back through the public-only guard.
// POST /login/{role}.
func (h *AuthHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	role, ok := h.pathRole(w, r)
	if !ok {
		return
	}

	creds := domainauth.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if _, err := h.Sessions.Login(r.Context(), role, creds); err != nil {
		h.renderFormError(w, r, loginPageData(role, map[string]string{"email": creds.Email}), err)
		return
	}
	h.afterAuth(w, r)
}

// SignupPage renders the role's signup form.
// GET /signup/{role}.
func (h *AuthHandlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	role, ok := h.pathRole(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, signupPageData(role, nil))
}

// SignupSubmit registers the profile and redirects back through the public-only guard.
// POST /signup/{role}.
func (h *AuthHandlers) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	role, ok := h.pathRole(w, r)
	if !ok {
		return
	}

	profile := profileFromForm(r)
	if _, err := h.Sessions.Signup(r.Context(), role, profile); err != nil {
		data := signupPageData(role, profileFormValues(profile))
		data.Strength = domainauth.RatePassword(profile.Password)
		h.renderFormError(w, r, data, err)
		return
	}
	h.afterAuth(w, r)
}

// Logout ends the session.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context())
	if WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, domainauth.RoleSelectPath, http.StatusSeeOther)
}

type statusResponse struct {
	Status   domainauth.Status    `json:"status"`
	Loading  bool                 `json:"loading"`
	Settled  bool                 `json:"settled"`
	Identity *domainauth.Identity `json:"user"`
}

// Status reports the session snapshot as JSON.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, _ *http.Request) {
	snap := h.Sessions.Snapshot()
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, statusResponse{
		Status:   snap.Status,
		Loading:  snap.Loading(),
		Settled:  snap.Settled(),
		Identity: snap.Identity,
	})
}

func (h *AuthHandlers) afterAuth(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		h.Status(w, r)
		return
	}
	http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
}

// pathRole resolves {role}. Roles without a channel are sent to role selection.
func (h *AuthHandlers) pathRole(w http.ResponseWriter, r *http.Request) (domainauth.Role, bool) {
	role, ok := domainauth.ParseRole(r.PathValue("role"))
	if !ok || !role.HasChannel() {
		http.Redirect(w, r, domainauth.RoleSelectPath, http.StatusSeeOther)
		return "", false
	}
	return role, true
}

func (h *AuthHandlers) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	data.RequestID = RequestIDFromContext(r.Context())
	if err := h.T.Render(w, status, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render failed", "page", data.Page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// renderFormError re-renders a form: per-field messages for validation errors, the service's
// message for rejections, and a generic message for anything else.
func (h *AuthHandlers) renderFormError(w http.ResponseWriter, r *http.Request, data PageData, err error) {
	status := statusForError(err)
	code := string(apperrors.GetCode(err))

	switch {
	case apperrors.IsValidation(err):
		data.Errors = validation.Fields(err)
		if data.Errors == nil {
			data.Errors = map[string]string{apperrors.GetField(err): apperrors.Message(err, msgFixFields)}
		}
		data.Message = apperrors.Message(err, msgFixFields)
	case apperrors.IsRejected(err):
		data.Message = apperrors.Message(err, msgRejected)
	default:
		h.logger().ErrorContext(r.Context(), "auth request failed", "page", data.Page, "role", data.Role, "error", err)
		data.Message = msgUnavailable
		if code == "" {
			code = string(apperrors.ErrCodeInternal)
		}
	}

	if WantsJSON(r) {
		WriteJSON(w, status, map[string]any{"error": code, "message": data.Message, "fields": data.Errors})
		return
	}
	h.render(w, r, status, data)
}

func loginPageData(role domainauth.Role, form map[string]string) PageData {
	return PageData{Title: RoleTitle(role) + " Login", Page: PageLogin, Role: role, Form: form}
}

func signupPageData(role domainauth.Role, form map[string]string) PageData {
	return PageData{Title: RoleTitle(role) + " Sign Up", Page: PageSignup, Role: role, Form: form}
}

func profileFromForm(r *http.Request) domainauth.SignupProfile {
	v := func(key string) string { return strings.TrimSpace(r.PostFormValue(key)) }
	return domainauth.SignupProfile{
		FullName:          v("fullName"),
		Email:             v("email"),
		Password:          r.PostFormValue("password"),
		ConfirmPassword:   r.PostFormValue("confirmPassword"),
		Phone:             v("phone"),
		Gender:            v("gender"),
		DateOfBirth:       v("dateOfBirth"),
		Shift:             v("shift"),
		AcceptTerms:       r.PostFormValue("terms") != "",
		DoctorID:          v("doctorId"),
		LicenseNumber:     v("licenseNumber"),
		Specialization:    v("specialization"),
		Qualification:     v("qualification"),
		YearsOfExperience: v("yearsOfExperience"),
		Department:        v("department"),
		StaffID:           v("staffId"),
		RoleTitle:         v("roleTitle"),
	}
}

// profileFormValues echoes submitted values back into the form, leaving out passwords.
func profileFormValues(p domainauth.SignupProfile) map[string]string {
	values := map[string]string{
		"fullName":          p.FullName,
		"email":             p.Email,
		"phone":             p.Phone,
		"gender":            p.Gender,
		"dateOfBirth":       p.DateOfBirth,
		"shift":             p.Shift,
		"doctorId":          p.DoctorID,
		"licenseNumber":     p.LicenseNumber,
		"specialization":    p.Specialization,
		"qualification":     p.Qualification,
		"yearsOfExperience": p.YearsOfExperience,
		"department":        p.Department,
		"staffId":           p.StaffID,
		"roleTitle":         p.RoleTitle,
	}
	if p.AcceptTerms {
		values["terms"] = "on"
	}
	return values
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/service"
	"github.com/msomdec/healthyu/internal/view"
)

const authCookie = "auth_token"

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// HandleRegisterPage renders the registration form.
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	view.RegisterPage("", view.RegisterForm{}).Render(r.Context(), w)
}

// HandleRegister processes the registration form.
// POST /register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	form := view.RegisterForm{
		Email:       r.FormValue("email"),
		DisplayName: r.FormValue("display_name"),
	}

	_, err := h.auth.Register(r.Context(), form.Email, form.DisplayName, r.FormValue("password"), r.FormValue("confirm_password"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			w.WriteHeader(http.StatusConflict)
			view.RegisterPage("An account with that email already exists.", form).Render(r.Context(), w)
		case errors.Is(err, domain.ErrInvalidInput):
			w.WriteHeader(http.StatusUnprocessableEntity)
			view.RegisterPage(userMessage(err), form).Render(r.Context(), w)
		default:
			slog.Error("register user", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			view.RegisterPage("An unexpected error occurred. Please try again.", form).Render(r.Context(), w)
		}
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleLoginPage renders the login form.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	view.LoginPage("", "").Render(r.Context(), w)
}

// HandleLogin processes the login form and sets the auth cookie.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	token, err := h.auth.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			w.WriteHeader(http.StatusUnauthorized)
			view.LoginPage("Invalid email or password.", email).Render(r.Context(), w)
			return
		}
		slog.Error("login user", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		view.LoginPage("An unexpected error occurred. Please try again.", email).Render(r.Context(), w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// HandleLogout clears the auth cookie.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

// userMessage strips the sentinel prefix from a wrapped ErrInvalidInput.
func userMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "Invalid input."
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	applog "dessertbox/internal/log"
	"dessertbox/internal/store"
	"dessertbox/internal/views/pages"
	"dessertbox/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionLoginMessageKey  = "auth:message"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
	sessionUserNameKey      = "auth:user:name"
	sessionFlashKey         = "flash"

	msgInvalidCredentials = "Invalid email or password. Please try again."
	msgSignInFailed       = "We were unable to sign you in. Please try again."
)

// Login renders the sign in view and processes sign in submissions.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	applog.Debug(r.Context(), "handling login request", "method", r.Method, "htmx", isHTMX(r))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if h.ActiveSession(r) {
			redirectTo(w, r, "/boxes")
			return
		}
		message := ""
		if h.sessions != nil {
			message = h.sessions.PopString(r.Context(), sessionLoginMessageKey)
		}
		h.render(w, r, http.StatusOK, pages.Login(message, ""))
	case http.MethodPost:
		if h.sessions == nil || h.db == nil {
			applog.Debug(r.Context(), "authentication dependencies unavailable", "hasSession", h.sessions != nil, "hasDatabase", h.db != nil)
			http.Error(w, "authentication not available", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse login form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")

		if email == "" || password == "" {
			applog.Debug(r.Context(), "login form missing credentials", "emailPresent", email != "", "passwordPresent", password != "")
			h.render(w, r, http.StatusOK, pages.Login("Email and password are required.", email))
			return
		}

		user, err := h.users.Authenticate(r.Context(), email, password)
		if err != nil {
			message := msgInvalidCredentials
			if !errors.Is(err, store.ErrInvalidCredentials) {
				applog.Error(r.Context(), "failed to load user during login", "error", err)
				message = msgSignInFailed
			}
			applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(email))
			h.render(w, r, http.StatusOK, pages.Login(message, email))
			return
		}

		if err := h.establishSession(r, user); err != nil {
			applog.Error(r.Context(), "failed to establish session", "error", err)
			h.render(w, r, http.StatusOK, pages.Login(msgSignInFailed, email))
			return
		}

		applog.Info(r.Context(), "administrator signed in", "user_id", user.ID)
		redirectTo(w, r, "/boxes")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) establishSession(r *http.Request, user *models.User) error {
	if h.sessions == nil {
		return errors.New("session manager not configured")
	}
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		return err
	}
	h.sessions.Put(r.Context(), sessionAuthenticatedKey, true)
	h.sessions.Put(r.Context(), sessionUserIDKey, int(user.ID))
	h.sessions.Put(r.Context(), sessionUserEmailKey, user.Email)
	h.sessions.Put(r.Context(), sessionUserNameKey, user.Name)
	return nil
}

// Logout destroys the current session and redirects to the login screen.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if h.sessions != nil {
		if err := h.sessions.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}
	redirectTo(w, r, "/login")
}

// RequireAuthentication rejects API requests without an administrator session.
func (h *Handler) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.ActiveSession(r) {
			applog.Debug(r.Context(), "unauthenticated request rejected", "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActiveSession reports whether the request carries an administrator session.
func (h *Handler) ActiveSession(r *http.Request) bool {
	if h.sessions == nil {
		return false
	}
	return h.sessions.GetBool(r.Context(), sessionAuthenticatedKey) && h.sessions.GetInt(r.Context(), sessionUserIDKey) > 0
}

func redirectTo(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

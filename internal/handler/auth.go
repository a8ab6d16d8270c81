package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mwilkes/arcadia/internal/middleware"
	"github.com/mwilkes/arcadia/internal/store"
	"github.com/mwilkes/arcadia/internal/view"
)

type AuthHandler struct {
	userStore     *store.UserStore
	sessionStore  *store.SessionStore
	activityStore *store.ActivityStore
	renderer      *view.Renderer
	logger        *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, as *store.ActivityStore, r *view.Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:     us,
		sessionStore:  ss,
		activityStore: as,
		renderer:      r,
		logger:        logger,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "login.html", map[string]any{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.renderer.Render(w, "login.html", map[string]any{"Error": "Username and password are required"})
		return
	}

	user, err := h.userStore.Authenticate(username, password)
	if err != nil {
		h.logger.Error("authenticate", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		h.renderer.Render(w, "login.html", map[string]any{"Error": "Invalid username or password"})
		return
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})

	if err := h.activityStore.Log("user_login", user.Username+" logged in", &user.ID); err != nil {
		h.logger.Warn("log login event", "error", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessionStore.Delete(cookie.Value); err != nil {
			h.logger.Warn("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

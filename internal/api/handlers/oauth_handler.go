package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/Docsense/internal/auth"
	"github.com/markdave123-py/Docsense/internal/services"
)

const stateCookie = "oauth_state"

// OAuthProvider is the authorization-code flow of an identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	FetchUser(ctx context.Context, code string) (*auth.OAuthUser, error)
}

type OAuthHandler struct {
	provider    OAuthProvider
	users       *services.UserService
	tokens      *auth.TokenIssuer
	frontendURL string
	secure      bool
}

func NewOAuthHandler(provider OAuthProvider, users *services.UserService, tokens *auth.TokenIssuer, frontendURL string) *OAuthHandler {
	u, _ := url.Parse(frontendURL)
	return &OAuthHandler{
		provider:    provider,
		users:       users,
		tokens:      tokens,
		frontendURL: frontendURL,
		secure:      u != nil && u.Scheme == "https",
	}
}

// Login handles GET /google-login. It returns the consent URL and pins a
// one-time state value in a cookie.
func (h *OAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"url": h.provider.AuthCodeURL(state)})
}

// Callback handles GET /google-callback and redirects to the frontend with
// an access token.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.secure})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	gu, err := h.provider.FetchUser(r.Context(), code)
	if err != nil {
		slog.Warn("google login failed", "err", err)
		writeError(w, http.StatusBadGateway, "Google login failed. Please try again.")
		return
	}
	user, err := h.users.UpsertGoogleUser(r.Context(), gu)
	if errors.Is(err, services.ErrUnverifiedEmail) {
		slog.Warn("google login with unverified email", "email", gu.Email)
		writeError(w, http.StatusForbidden, "Google account email is not verified.")
		return
	}
	if err != nil {
		slog.Error("upsert google user", "email", gu.Email, "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.Error("issue token", "user_id", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	http.Redirect(w, r, h.redirectURL(token), http.StatusFound)
}

func (h *OAuthHandler) redirectURL(token string) string {
	u, err := url.Parse(h.frontendURL)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("access_token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

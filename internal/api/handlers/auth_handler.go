package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	middleware "github.com/markdave123-py/Docsense/internal/api/middlewares"
	"github.com/markdave123-py/Docsense/internal/auth"
	"github.com/markdave123-py/Docsense/internal/services"
)

type AuthHandler struct {
	users  *services.UserService
	tokens *auth.TokenIssuer
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /signup with a JSON body and answers with a token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrUserExists):
		writeError(w, http.StatusConflict, "Username or email already registered.")
		return
	case errors.Is(err, services.ErrInvalidSignup):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("signup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.Error("issue token", "user_id", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Token handles POST /token, the form-encoded password grant.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	username, password := r.PostFormValue("username"), r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if err != nil {
		slog.Error("authenticate", "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.Error("issue token", "user_id", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /me for an authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	resp := map[string]any{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"provider": claims.Provider,
	}
	if claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}

// Documents handles GET /documents, the caller's archived uploads.
func (h *AuthHandler) Documents(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	docs, err := h.users.Documents(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("list documents", "user_id", claims.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if docs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

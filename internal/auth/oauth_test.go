package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T, userInfo string, status int) *GoogleOAuth {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"goog-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer goog-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(userInfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogleOAuth("client-id", "client-secret", "http://localhost:8000/google-callback")
	g.config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.userInfoURL = srv.URL + "/userinfo"
	return g
}

func TestAuthCodeURL(t *testing.T) {
	g := NewGoogleOAuth("client-id", "secret", "http://localhost:8000/google-callback")

	u, err := url.Parse(g.AuthCodeURL("state-123"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "http://localhost:8000/google-callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}

func TestFetchUser(t *testing.T) {
	g := fakeGoogle(t, `{"id":"1234","email":"ada@example.com","verified_email":true,"name":"Ada"}`, http.StatusOK)

	u, err := g.FetchUser(context.Background(), "the-code")

	require.NoError(t, err)
	assert.Equal(t, &OAuthUser{ProviderUserID: "1234", Email: "ada@example.com", VerifiedEmail: true, Name: "Ada"}, u)
}

func TestFetchUserErrors(t *testing.T) {
	g := fakeGoogle(t, `{"error":"nope"}`, http.StatusUnauthorized)
	_, err := g.FetchUser(context.Background(), "the-code")
	assert.ErrorContains(t, err, "returned 401")

	g = fakeGoogle(t, `{"id":"1"}`, http.StatusOK)
	_, err = g.FetchUser(context.Background(), "the-code")
	assert.ErrorContains(t, err, "no email")
}

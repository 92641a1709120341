package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statustrack/backend/internal/model"
)

func TestSignupEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Email: "First@Example.com", Name: "First", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user model.User
	decodeJSON(t, rec, &user)
	assert.Equal(t, "first@example.com", user.Email)
	assert.True(t, user.IsAdmin)

	// Duplicate registration conflicts.
	rec = doRequest(t, router, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Email: "first@example.com", Name: "First", Password: "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Missing required fields fail binding.
	rec := doRequest(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "a@example.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Present but invalid fields fail service validation.
	rec = doRequest(t, router, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Email: "a@example.com", Name: "A", Password: "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Email: "a@example.com", Name: "A", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/auth/login", "", model.LoginRequest{
		Email: "a@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens model.TokenPairResponse
	decodeJSON(t, rec, &tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	rec = doRequest(t, router, http.MethodPost, "/api/auth/login", "", model.LoginRequest{
		Email: "a@example.com", Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginEndpointUsernameAlias(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Email: "a@example.com", Name: "A", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/auth/login", "", model.LoginRequest{
		Username: "a@example.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Email: "a@example.com", Name: "A", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/api/auth/login", "", model.LoginRequest{
		Email: "a@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var tokens model.TokenPairResponse
	decodeJSON(t, rec, &tokens)

	// Refresh token in the body.
	rec = doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", model.RefreshRequest{
		RefreshToken: tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed model.TokenPairResponse
	decodeJSON(t, rec, &refreshed)
	assert.NotEmpty(t, refreshed.AccessToken)

	// Refresh token as a bearer header.
	rec = doRequest(t, router, http.MethodPost, "/api/auth/refresh", tokens.RefreshToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// An access token is not accepted as a refresh token.
	rec = doRequest(t, router, http.MethodPost, "/api/auth/refresh", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signupAndLogin(t, router, "a@example.com")

	rec := doRequest(t, router, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.LogoutResponse
	decodeJSON(t, rec, &resp)
	assert.NotZero(t, resp.RevokedAt)

	// The revoked token no longer works anywhere.
	rec = doRequest(t, router, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpointRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_FirstUserIsRoot(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	first := registerTestUser(t, server, "first@example.com", "First User")
	assert.True(t, first.User.IsRoot)
	assert.Equal(t, "Bearer", first.TokenType)
	assert.NotEmpty(t, first.RefreshToken)
	assert.NotEmpty(t, first.SessionID)
	assert.Greater(t, first.ExpiresIn, 0)

	second := registerTestUser(t, server, "second@example.com", "Second User")
	assert.False(t, second.User.IsRoot)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	registerTestUser(t, server, "dupe@example.com", "Original")

	w := doRequest(t, server, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email:       "dupe@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Imposter",
	})

	assert.Equal(t, http.StatusConflict, w.Code)

	env := decodeEnvelope[any](t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
}

func TestRegister_Validation(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{
			name: "bad email",
			req:  RegisterRequest{Email: "not-an-email", Password: "correct-horse-battery", DisplayName: "X"},
		},
		{
			name: "short password",
			req:  RegisterRequest{Email: "short@example.com", Password: "short", DisplayName: "X"},
		},
		{
			name: "missing display name",
			req:  RegisterRequest{Email: "noname@example.com", Password: "correct-horse-battery"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, server, http.MethodPost, "/api/v1/auth/register", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			env := decodeEnvelope[any](t, w)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION", env.Error.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	registerTestUser(t, server, "login@example.com", "Login User")

	w := doRequest(t, server, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email:    "login@example.com",
		Password: "correct-horse-battery",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[AuthResponse](t, w)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.Equal(t, "login@example.com", env.Data.User.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	registerTestUser(t, server, "victim@example.com", "Victim")

	w := doRequest(t, server, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email:    "victim@example.com",
		Password: "wrong-password-entirely",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env := decodeEnvelope[any](t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestRefresh_Rotation(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "refresh@example.com", "Refresher")

	w := doRequest(t, server, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{
		RefreshToken: session.RefreshToken,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[AuthResponse](t, w)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.NotEqual(t, session.RefreshToken, env.Data.RefreshToken)

	// The old refresh token is burned after rotation.
	w = doRequest(t, server, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{
		RefreshToken: session.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "logout@example.com", "Leaver")

	w := doRequest(t, server, http.MethodPost, "/api/v1/auth/logout", "", LogoutRequest{
		SessionID: session.SessionID,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[MessageResponse](t, w)
	assert.True(t, env.Success)

	// Refresh no longer works for the revoked session.
	w = doRequest(t, server, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{
		RefreshToken: session.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRateLimit(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// Hammer login from one forwarded IP until the bucket runs dry.
	sawLimited := false
	for i := 0; i < 15; i++ {
		w := doRequestWithIP(t, server, http.MethodPost, "/api/v1/auth/login", "203.0.113.9", LoginRequest{
			Email:    "nobody@example.com",
			Password: "does-not-matter",
		})
		if w.Code == http.StatusTooManyRequests {
			sawLimited = true
			break
		}
	}

	assert.True(t, sawLimited, "expected at least one rate limited response")
}

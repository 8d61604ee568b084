package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archeohub-backend/internal/middleware"
	"archeohub-backend/internal/models"
	"archeohub-backend/internal/services"
)

type stubAuth struct {
	session   *services.Session
	user      *models.User
	err       error
	loggedOut string
}

func (s *stubAuth) Signup(ctx context.Context, req models.SignupRequest) (*services.Session, error) {
	return s.session, s.err
}

func (s *stubAuth) Login(ctx context.Context, req models.LoginRequest) (*services.Session, error) {
	return s.session, s.err
}

func (s *stubAuth) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

func (s *stubAuth) Logout(ctx context.Context, sessionID string) error {
	s.loggedOut = sessionID
	return nil
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", middleware.SessionCookieName)
	return nil
}

func TestAuthHandler_SignupSetsCookie(t *testing.T) {
	name := "Marion"
	user := &models.User{ID: uuid.New(), Email: "marion@example.com", Name: &name, PasswordHash: "hash"}
	h := NewAuthHandler(&stubAuth{session: &services.Session{User: user, Token: "signed.jwt"}}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"email":"marion@example.com","password":"secret1"}`))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	c := sessionCookie(t, rr)
	assert.Equal(t, "signed.jwt", c.Value)
	assert.Equal(t, 604800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "marion@example.com", body["email"])
	assert.Equal(t, "Marion", body["name"])
	assert.Contains(t, body, "imageBase64")
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, body, "PasswordHash")
}

func TestAuthHandler_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &services.ValidationError{Message: "Password must be >= 6 chars"}, http.StatusBadRequest, "Password must be >= 6 chars"},
		{"conflict", &services.ConflictError{Message: "Email already registered"}, http.StatusConflict, "Email already registered"},
		{"unauthorized", &services.UnauthorizedError{Message: "Invalid credentials"}, http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuth{err: tc.err}, false)
			rr := httptest.NewRecorder()
			h.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/me", strings.NewReader(`{"email":"a@b.c","password":"x"}`)))

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.msg, decodeError(t, rr).Error)
			assert.Empty(t, rr.Result().Cookies())
		})
	}
}

func TestAuthHandler_MalformedBody(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, false)
	rr := httptest.NewRecorder()
	h.Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`not json`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing email or password", decodeError(t, rr).Error)
}

func TestAuthHandler_LogoutClearsCookie(t *testing.T) {
	auth := &stubAuth{}
	h := NewAuthHandler(auth, true)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	claims := &middleware.SessionClaims{UserID: uuid.New(), SessionID: "sid-9"}
	req = req.WithContext(context.WithValue(req.Context(), middleware.SessionKey, claims))
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "sid-9", auth.loggedOut)

	c := sessionCookie(t, rr)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
	assert.True(t, c.Secure)
}

func TestAuthHandler_Me(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "a@b.c"}
	h := NewAuthHandler(&stubAuth{user: user}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, user.ID))
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.Profile
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, user.Profile(), got)
}

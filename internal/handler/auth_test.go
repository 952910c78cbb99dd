package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinehub/admin-console/internal/auth"
	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/fakebackend"
)

func TestLogin_Success(t *testing.T) {
	e := newEnv(t)

	rr := doRequest(t, e.router, "POST", "/api/auth/login", "", map[string]string{
		"email":    fakebackend.SeedEmail,
		"password": fakebackend.SeedPassword,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[struct {
		Token string        `json:"token"`
		Admin backend.Admin `json:"admin"`
	}](t, rr)
	assert.Equal(t, fakebackend.SeedEmail, resp.Admin.Email)

	claims, err := auth.ValidateToken(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Admin.ID, claims.AdminID)

	// The platform token stays on the server.
	assert.NotContains(t, rr.Body.String(), e.backendToken(t, resp.Token))
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)

	rr := doRequest(t, e.router, "POST", "/api/auth/login", "", map[string]string{
		"email":    fakebackend.SeedEmail,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid email or password", decode[errorBody](t, rr).Error)
}

func TestLogin_Validation(t *testing.T) {
	e := newEnv(t)

	rr := doRequest(t, e.router, "POST", "/api/auth/login", "", map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode[errorBody](t, rr)
	assert.Equal(t, "must be a valid email address", body.Fields["email"])
	assert.Equal(t, "is required", body.Fields["password"])
}

func TestMe_RequiresToken(t *testing.T) {
	e := newEnv(t)

	rr := doRequest(t, e.router, "GET", "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := e.login(t)
	rr = doRequest(t, e.router, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, fakebackend.SeedEmail, decode[backend.Admin](t, rr).Email)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)
	doRequest(t, e.router, "GET", "/api/restaurants", token, nil)
	require.Equal(t, 1, e.registry.Len())

	rr := doRequest(t, e.router, "POST", "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, e.registry.Len())

	rr = doRequest(t, e.router, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBackendRejectionEndsSession(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)
	e.fb.Revoke(e.backendToken(t, token))

	rr := doRequest(t, e.router, "GET", "/api/restaurants/1", token, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Your session has expired. Please sign in again.", decode[errorBody](t, rr).Error)

	rr = doRequest(t, e.router, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPasswordReset(t *testing.T) {
	e := newEnv(t)

	rr := doRequest(t, e.router, "POST", "/api/auth/forgot-password", "", map[string]string{"email": fakebackend.SeedEmail})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	otp := e.fb.OTP(fakebackend.SeedEmail)
	require.Len(t, otp, 6)

	rr = doRequest(t, e.router, "POST", "/api/auth/reset-password", "", map[string]string{
		"email": fakebackend.SeedEmail, "otp": otp, "password": "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decode[errorBody](t, rr).Fields, "password")

	rr = doRequest(t, e.router, "POST", "/api/auth/reset-password", "", map[string]string{
		"email": fakebackend.SeedEmail, "otp": otp, "password": "a-better-password",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doRequest(t, e.router, "POST", "/api/auth/login", "", map[string]string{
		"email": fakebackend.SeedEmail, "password": "a-better-password",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUpdateAvatar(t *testing.T) {
	e := newEnv(t)
	token := e.login(t)

	rr := upload(t, e.router, "PUT", "/api/auth/me/avatar", token, nil, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "is required", decode[errorBody](t, rr).Fields["avatar"])

	rr = upload(t, e.router, "PUT", "/api/auth/me/avatar", token, nil, map[string]string{"avatar": "me.png"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doRequest(t, e.router, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[backend.Admin](t, rr).AvatarURL, "me.png")
}

package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginRequest(username, password string) *http.Request {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	env.adminToken(t) // seeds the account

	resp, body := env.do(t, loginRequest("staff", "hunter2!"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.adminToken(t)

	resp, _ := env.do(t, loginRequest("staff", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, loginRequest("ghost", "whatever"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeReturnsAuthenticatedAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	req := withToken(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil), token)
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "staff", body["username"])
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeRejectsGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	req := withToken(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil), "not-a-jwt")
	resp, _ := env.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/platform/constants"
	"github.com/satomatashiki/manabiya/internal/platform/middleware"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/users/auth"
)

func newTestServer(t *testing.T) (*httptest.Server, *auth.Service) {
	t.Helper()

	service, _ := newTestService(t)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(service))
	router.Mount("/auth", auth.NewHandler(service).Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, service
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	response, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { response.Body.Close() })

	return response
}

func sessionCookie(response *http.Response) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestHTTP_RegisterAndLogin(t *testing.T) {
	server, _ := newTestServer(t)

	response := postJSON(t, server.URL+"/auth/register", map[string]any{
		"email":        "sensei@example.com",
		"password":     "hunter2hunter2",
		"display_name": "Sensei",
		"role":         "instructor",
	})
	assert.Equal(t, http.StatusCreated, response.StatusCode)

	response = postJSON(t, server.URL+"/auth/login", map[string]any{
		"email":    "sensei@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	cookie := sessionCookie(response)
	require.NotNil(t, cookie, "login must set the session cookie")
	assert.Len(t, cookie.Value, 64)
	assert.Equal(t, constants.SessionCookiePath, cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	var envelope struct {
		Data struct {
			User struct {
				Email        string `json:"email"`
				PasswordHash string `json:"password"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&envelope))
	assert.Equal(t, "sensei@example.com", envelope.Data.User.Email)
	assert.Empty(t, envelope.Data.User.PasswordHash, "password hash must never appear in responses")
}

func TestHTTP_LoginFailuresDoNotRevealAccounts(t *testing.T) {
	server, _ := newTestServer(t)

	postJSON(t, server.URL+"/auth/register", map[string]any{
		"email":        "known@example.com",
		"password":     "hunter2hunter2",
		"display_name": "Known",
		"role":         "student",
	})

	unknown := postJSON(t, server.URL+"/auth/login", map[string]any{
		"email":    "ghost@example.com",
		"password": "hunter2hunter2",
	})
	wrongPassword := postJSON(t, server.URL+"/auth/login", map[string]any{
		"email":    "known@example.com",
		"password": "totally-wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)

	var first, second map[string]any
	require.NoError(t, json.NewDecoder(unknown.Body).Decode(&first))
	require.NoError(t, json.NewDecoder(wrongPassword.Body).Decode(&second))
	assert.Equal(t, first["error"], second["error"],
		"error bodies must not distinguish unknown accounts from bad passwords")
}

func TestHTTP_MeRequiresSession(t *testing.T) {
	server, service := newTestServer(t)

	// Anonymous request is rejected.
	response, err := http.Get(server.URL + "/auth/me")
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	// Authenticated request succeeds.
	register(t, service, "student@example.com", sec.RoleStudent)
	login := postJSON(t, server.URL+"/auth/login", map[string]any{
		"email":    "student@example.com",
		"password": "hunter2hunter2",
	})
	cookie := sessionCookie(login)
	require.NotNil(t, cookie)

	request, err := http.NewRequest(http.MethodGet, server.URL+"/auth/me", nil)
	require.NoError(t, err)
	request.AddCookie(cookie)

	response, err = http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
}

func TestHTTP_LogoutClearsCookie(t *testing.T) {
	server, service := newTestServer(t)
	register(t, service, "student@example.com", sec.RoleStudent)

	login := postJSON(t, server.URL+"/auth/login", map[string]any{
		"email":    "student@example.com",
		"password": "hunter2hunter2",
	})
	cookie := sessionCookie(login)
	require.NotNil(t, cookie)

	request, err := http.NewRequest(http.MethodPost, server.URL+"/auth/logout", nil)
	require.NoError(t, err)
	request.AddCookie(cookie)

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusNoContent, response.StatusCode)

	cleared := sessionCookie(response)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The session is gone server-side too.
	request, err = http.NewRequest(http.MethodGet, server.URL+"/auth/me", nil)
	require.NoError(t, err)
	request.AddCookie(cookie)

	response, err = http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

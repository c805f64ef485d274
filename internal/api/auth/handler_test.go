package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-hierarchy/internal/auth"
	"property-hierarchy/internal/middleware"
	"property-hierarchy/internal/registry"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := registry.NewUserRegistry(filepath.Join(t.TempDir(), "users.json"), 4)
	require.NoError(t, users.Load())
	tokens := auth.NewTokenManager([]byte("test-secret"), "property-hierarchy", time.Hour)
	handler := NewHandler(users, tokens)

	r := gin.New()
	r.POST("/api/register", handler.Register)
	r.POST("/api/login", handler.Login)
	authed := r.Group("", middleware.JWTAuth(tokens))
	authed.POST("/api/logout", handler.Logout)
	authed.GET("/api/me", handler.Me)
	return r, tokens
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"name":     "Jordan",
		"email":    "jordan@example.com",
		"password": "password123",
		"is_admin": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Status string `json:"status"`
		Data   struct {
			User struct {
				ID      string `json:"id"`
				IsAdmin bool   `json:"is_admin"`
			} `json:"user"`
			Token     string `json:"token"`
			TokenType string `json:"token_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.True(t, body.Data.User.IsAdmin)
	assert.NotEmpty(t, body.Data.Token)
	assert.Equal(t, "Bearer", body.Data.TokenType)

	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"email":    "jordan@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"email":    "jordan@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"email":    "jordan@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "missing name")

	w = doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"name":     "Jordan",
		"email":    "not-an-email",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"name":                  "Jordan",
		"email":                 "jordan@example.com",
		"password":              "password123",
		"password_confirmation": "different",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _ := newTestRouter(t)

	payload := gin.H{"name": "Jordan", "email": "jordan@example.com", "password": "password123"}
	w := doJSON(t, r, http.MethodPost, "/api/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/register", "", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMeAndLogout(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"name": "Jordan", "email": "jordan@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	w = doJSON(t, r, http.MethodGet, "/api/me", body.Data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jordan@example.com")

	w = doJSON(t, r, http.MethodPost, "/api/logout", body.Data.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

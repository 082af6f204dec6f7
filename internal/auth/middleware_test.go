package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/auth-api/internal/users"
)

func newGateRouter(m *Manager, seen *string) *gin.Engine {
	router := gin.New()
	router.GET("/protected", m.RequireToken(), func(c *gin.Context) {
		id, _ := UserIDFromContext(c)
		*seen = id
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireTokenMissingHeader(t *testing.T) {
	m, rejections := newTestManager(t, users.NewMemoryDirectory(), testSecret)
	var seen string
	router := newGateRouter(m, &seen)

	for _, header := range []string{"", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.JSONEq(t, `{"msg":"Access denied"}`, rec.Body.String())
	}
	assert.Empty(t, seen)
	assert.Equal(t, 3, rejections.count(ReasonMissingToken))
}

func TestRequireTokenInvalid(t *testing.T) {
	m, rejections := newTestManager(t, users.NewMemoryDirectory(), testSecret)
	var seen string
	router := newGateRouter(m, &seen)

	foreign, err := NewTokenIssuer("other-secret").Issue("u1")
	require.NoError(t, err)

	for _, header := range []string{"Bearer garbage", "Bearer " + foreign, "Basic dXNlcjpwYXNz"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, header)
		assert.JSONEq(t, `{"msg":"Invalid token"}`, rec.Body.String())
	}
	assert.Empty(t, seen)
	assert.Equal(t, 3, rejections.count(ReasonInvalidToken))
}

func TestRequireTokenValid(t *testing.T) {
	m, rejections := newTestManager(t, users.NewMemoryDirectory(), testSecret)
	var seen string
	router := newGateRouter(m, &seen)

	token, err := m.tokens.Issue("user-7")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", seen)
	assert.Zero(t, rejections.count(ReasonInvalidToken))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "", bearerToken(""))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc"))
}

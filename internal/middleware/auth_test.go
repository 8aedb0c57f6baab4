package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	auth "nfc-redirect-platform/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter(tm *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(tm))
	whoami := func(c *gin.Context) {
		id, ok := AccountID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok, "username": Username(c)})
	}
	r.GET("/public", whoami)
	r.GET("/private", RequireLogin(), whoami)
	r.GET("/api/private", RequireLogin(), whoami)
	return r
}

func TestSession(t *testing.T) {
	tm := auth.NewManager("secret", "nfc-test", 1)
	r := sessionRouter(tm)
	token, err := tm.GenerateToken(42, "acme")
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.JSONEq(t, `{"id":42,"ok":true,"username":"acme"}`, w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.JSONEq(t, `{"id":42,"ok":true,"username":"acme"}`, w.Body.String())
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.JSONEq(t, `{"id":0,"ok":false,"username":""}`, w.Body.String())
	})
}

func TestRequireLogin(t *testing.T) {
	tm := auth.NewManager("secret", "nfc-test", 1)
	r := sessionRouter(tm)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private?x=1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fprivate%3Fx%3D1", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := tm.GenerateToken(7, "acme")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken(""))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/comment_go_server/internal/pkg/jwt"
)

const testSecret = "middleware-test-secret"

func authTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		if id := GetOptionalUserID(c); id != nil {
			c.JSON(http.StatusOK, gin.H{"user_id": *id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": nil})
	})
	return r
}

func getWithToken(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	token, err := jwt.GenerateToken(42, testSecret, 1)
	require.NoError(t, err)

	w := getWithToken(authTestRouter(Auth(testSecret)), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestAuth_MissingToken(t *testing.T) {
	w := getWithToken(authTestRouter(Auth(testSecret)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	token, err := jwt.GenerateToken(42, "other-secret", 1)
	require.NoError(t, err)

	w := getWithToken(authTestRouter(Auth(testSecret)), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth_AnonymousPasses(t *testing.T) {
	w := getWithToken(authTestRouter(OptionalAuth(testSecret)), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")
}

func TestOptionalAuth_ValidTokenSetsUser(t *testing.T) {
	token, err := jwt.GenerateToken(7, testSecret, 1)
	require.NoError(t, err)

	w := getWithToken(authTestRouter(OptionalAuth(testSecret)), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "7")
}

func TestOptionalAuth_BadTokenIgnored(t *testing.T) {
	w := getWithToken(authTestRouter(OptionalAuth(testSecret)), "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func authRouter(token string) *gin.Engine {
	router := gin.New()
	router.GET("/api/ping", AdminAuth(token), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})
	return router
}

func authGet(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuthValidToken(t *testing.T) {
	router := authRouter("secret-token")

	w := authGet(router, "Bearer secret-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthRejectsInvalidToken(t *testing.T) {
	router := authRouter("secret-token")

	for _, header := range []string{
		"",
		"Bearer wrong-token",
		"secret-token",
		"Basic secret-token",
	} {
		w := authGet(router, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAdminAuthUnconfiguredToken(t *testing.T) {
	router := authRouter("")

	w := authGet(router, "Bearer anything")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

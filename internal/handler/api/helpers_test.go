//go:build unit

package api_test

import (
	"net/http"

	"smartpark/internal/domain/user"
	"smartpark/internal/handler/middleware"
	"smartpark/internal/handler/validation"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	return gin.New()
}

// mockAuth accepts any bearer token and authenticates as actor.
func mockAuth(actor *user.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized", "message": "Unauthorized"}})
			return
		}
		middleware.SetActor(c, *actor)
		c.Next()
	}
}

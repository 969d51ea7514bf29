package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

// RequireAdmin rejects requests whose authenticated user lacks the admin
// flag. It must run after the JWT middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := utils.GetUser(c)
		if !ok {
			c.Abort()
			return
		}

		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, &schemas.ErrorDTO{Error: *schemas.AccessDenied})
			return
		}

		c.Next()
	}
}

package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

// ValidateAndSanitizeStruct binds the request body into a fresh instance of
// the template's type, sanitizes and validates it, and stores the result in
// the context for the handler. A fresh instance per request keeps concurrent
// requests from sharing payload memory.
func ValidateAndSanitizeStruct(template interface{}) gin.HandlerFunc {
	templateType := reflect.TypeOf(template).Elem()

	return func(c *gin.Context) {
		obj := reflect.New(templateType).Interface()

		if err := c.ShouldBindJSON(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		validator := utils.GetValidator()
		if err := validator.SanitizeData(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}

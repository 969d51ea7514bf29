package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to the HTTP response.
// It also sets the provided status code. If encoding fails, it logs and sends an InternalServerError response.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "info", "Returning response")
	ctx.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the specified status code and error details.
// If encoding the error response fails, it logs and sends an InternalServerError response.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFields(c, "error", "Error occurred: "+err.Error())
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	errorDto := &schemas.ErrorDTO{
		Error: *customErr,
	}
	c.JSON(statusCode, errorDto)
}

// GetUser returns the acting user stored in the request context by the JWT
// middleware. A handler reached without it is a routing mistake, reported as
// unauthorized.
func GetUser(c *gin.Context) (*schemas.User, bool) {
	value, exists := c.Get(UserKey.String())
	if exists {
		if user, ok := value.(*schemas.User); ok {
			return user, true
		}
	}

	WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("no authenticated user in context"))
	return nil, false
}

// GetPayload returns the sanitized request body stored by the validation
// middleware, asserted to the expected request type.
func GetPayload[T any](c *gin.Context) (*T, bool) {
	value, exists := c.Get(SanitizedPayloadKey.String())
	if exists {
		if payload, ok := value.(*T); ok {
			return payload, true
		}
	}

	WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, errors.New("no sanitized payload in context"))
	return nil, false
}

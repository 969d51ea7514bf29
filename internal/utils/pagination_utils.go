// package utils provides utility functions to support various operations within the application.
package utils

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-api/internal/schemas"
)

// ParsePaginationParams extracts the 'offset' and 'limit' parameters from the request's query parameters.
// It provides default values and ensures that the returned values are non-negative.
func ParsePaginationParams(c *gin.Context) (int, int) {
	offsetString := c.Query(OffsetParamKey)
	if offsetString == "" {
		offsetString = "0"
	}
	offset, err := strconv.Atoi(offsetString)
	if err != nil || offset < 0 {
		offset = 0
	}

	limitString := c.Query(LimitParamKey)
	if limitString == "" {
		limitString = "10"
	}
	limit, err := strconv.Atoi(limitString)
	if err != nil || limit < 0 {
		limit = 10
	}

	return offset, limit
}

// SendPaginatedResponse wraps an already-paged record slice together with
// its pagination details. Paging happens in the query via LIMIT/OFFSET, so
// the records are written as-is.
func SendPaginatedResponse(c *gin.Context, records interface{}, offset, limit, totalRecords int) {
	if reflect.ValueOf(records).Kind() != reflect.Slice {
		WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, errors.New("records not a valid list"))
		return
	}

	paginatedResponse := schemas.PaginatedResponse{
		Records: records,
		Pagination: schemas.Pagination{
			Offset:  offset,
			Limit:   limit,
			Records: totalRecords,
		},
	}

	WriteAndLogResponse(c, paginatedResponse, http.StatusOK)
}

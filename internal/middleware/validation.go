package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/luct/reporting/internal/app/models/dto"
)

// BindJSON decodes the request body into obj, answering 400 when it is not valid JSON.
// Field rules are checked by the services.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format").
			WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.APIResponse{Error: errorDetail})
		return false
	}
	return true
}

// ParamID parses a positive integer path parameter, answering 400 otherwise
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid "+name).
			WithDetails(name + " must be a positive integer")
		c.JSON(http.StatusBadRequest, dto.APIResponse{Error: errorDetail})
		return 0, false
	}
	return id, true
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/printq/internal/app/models/dto"
)

// BodyLimit caps the request body. Larger bodies fail while being read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request body too large").
				WithDetails(map[string]interface{}{"maxBytes": maxBytes})
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

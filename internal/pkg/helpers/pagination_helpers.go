package helpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

// ParseLimit reads an optional positive "limit" query parameter. An absent parameter
// yields 0 so the service applies its own default.
func ParseLimit(c *gin.Context) (uint64, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || limit == 0 {
		return 0, apperrors.NewInvalidArgumentError(fmt.Sprintf("limit must be a positive integer, got %q", raw))
	}
	return limit, nil
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: ErrUnsupportedFileType wraps ErrInvalidArgument.
var errorMappings = []errorMapping{
	{apperrors.ErrUnsupportedFileType, http.StatusBadRequest, dto.ErrorCodeUnsupportedFileType, "Unsupported file type"},
	{apperrors.ErrInvalidArgument, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrInsufficientFunds, http.StatusBadRequest, dto.ErrorCodeInsufficientFunds, "Insufficient wallet balance"},
	{apperrors.ErrInvalidTransition, http.StatusBadRequest, dto.ErrorCodeInvalidTransition, "Invalid job status transition"},
	{apperrors.ErrPrinterUnavailable, http.StatusBadRequest, dto.ErrorCodePrinterUnavailable, "Printer unavailable"},
	{apperrors.ErrNoPrinterAvailable, http.StatusBadRequest, dto.ErrorCodeNoPrinterAvailable, "No printers available"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Unauthorized"},
	{apperrors.ErrForbidden, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		message := m.message
		if msg := apperrors.Message(err); msg != "" {
			message = msg
		}
		detail := dto.NewErrorDetail(m.code, message)

		var ce *apperrors.CustomError
		if errors.As(err, &ce) && len(ce.Details) > 0 {
			detail.WithDetails(ce.Details)
		}
		if m.status < http.StatusInternalServerError && m.status != http.StatusNotFound {
			detail.WithSeverity(dto.ErrorSeverityWarning)
		}

		c.JSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	code := dto.ErrorCodeInternalServer
	if errors.Is(err, apperrors.ErrPersistence) {
		code = dto.ErrorCodeDatabaseError
	}
	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unhandled API error")

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(code, "Internal server error").WithSeverity(dto.ErrorSeverityCritical),
	))
}

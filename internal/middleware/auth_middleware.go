package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	authz "github.com/yigit/printq/internal/app/auth"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/auth"
)

// Context keys populated by JWTAuth
const (
	ContextKeyUserID = "userID"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "roleType"
)

// SubjectChecker confirms that a token subject still has an account
type SubjectChecker interface {
	SubjectExists(ctx context.Context, id string, role models.RoleType) (bool, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	subjects   SubjectChecker
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, subjects SubjectChecker, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		subjects:   subjects,
		logger:     logger,
	}
}

func unauthorized(c *gin.Context, code dto.ErrorCode, message, details string) {
	errorDetail := dto.NewErrorDetail(code, message).WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Browsers cannot set headers on a websocket upgrade, and Swagger UI sometimes
		// sends the token as a query parameter
		if authHeader == "" {
			authHeader = c.Query("token")
		}

		if authHeader == "" {
			unauthorized(c, dto.ErrorCodeTokenNotFound, "Authentication required", "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			unauthorized(c, dto.ErrorCodeInvalidToken, "Authentication required", "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				unauthorized(c, dto.ErrorCodeExpiredToken, "Authentication failed", "Token has expired")
				return
			}
			unauthorized(c, dto.ErrorCodeInvalidToken, "Authentication failed", "Invalid token")
			return
		}

		exists, err := m.subjects.SubjectExists(c.Request.Context(), claims.SubjectID, claims.Role)
		if err != nil {
			m.logger.Error().Err(err).Str("subjectID", claims.SubjectID).Msg("Failed to look up token subject")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
			return
		}
		if !exists {
			unauthorized(c, dto.ErrorCodeInvalidToken, "Authentication failed", "Account no longer exists")
			return
		}

		c.Set(ContextKeyUserID, claims.SubjectID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// RoleRequired middleware to check if user has required role
func (m *AuthMiddleware) RoleRequired(requiredRole models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			unauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "User role not found")
			return
		}

		if principal.Role != requiredRole {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// GetPrincipal returns the authenticated subject stored by JWTAuth
func GetPrincipal(c *gin.Context) (authz.Principal, bool) {
	id := c.GetString(ContextKeyUserID)
	roleValue, exists := c.Get(ContextKeyRole)
	if id == "" || !exists {
		return authz.Principal{}, false
	}
	role, ok := roleValue.(models.RoleType)
	if !ok {
		return authz.Principal{}, false
	}
	return authz.Principal{ID: id, Role: role}, true
}

// RequirePrincipal is GetPrincipal for handlers behind JWTAuth; it answers 401 itself
// when the context carries no subject.
func RequirePrincipal(c *gin.Context) (authz.Principal, bool) {
	principal, ok := GetPrincipal(c)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("User ID not found in request context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
	return principal, ok
}

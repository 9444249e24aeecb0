package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/app/models/dto"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"github.com/yigit/printq/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticSubjects struct {
	known map[string]models.RoleType
	err   error
}

func (s staticSubjects) SubjectExists(_ context.Context, id string, role models.RoleType) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	r, ok := s.known[id]
	return ok && r == role, nil
}

type errorBody struct {
	Success bool            `json:"success"`
	Error   dto.ErrorDetail `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "printq"})
}

func protectedRouter(m *AuthMiddleware, role models.RoleType) *gin.Engine {
	r := gin.New()
	r.GET("/protected", m.JWTAuth(), m.RoleRequired(role), func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(p.ID, ""))
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtService := newTestJWT()
	studentID := uuid.NewString()
	adminID := uuid.NewString()
	subjects := staticSubjects{known: map[string]models.RoleType{
		studentID: models.RoleStudent,
		adminID:   models.RoleAdmin,
	}}
	m := NewAuthMiddleware(jwtService, subjects, zerolog.Nop())
	router := protectedRouter(m, models.RoleStudent)

	token := func(id string, role models.RoleType) string {
		s, _, err := jwtService.GenerateToken(auth.Subject{ID: id, Email: "x@campus.edu", Role: role})
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{name: "valid bearer", header: "Bearer " + token(studentID, models.RoleStudent), wantStatus: http.StatusOK},
		{name: "raw token", header: token(studentID, models.RoleStudent), wantStatus: http.StatusOK},
		{name: "query token", query: token(studentID, models.RoleStudent), wantStatus: http.StatusOK},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeTokenNotFound},
		{name: "malformed", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeInvalidToken},
		{name: "legacy role string", header: "student_" + studentID + "_1700000000", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeInvalidToken},
		{name: "deleted subject", header: "Bearer " + token(uuid.NewString(), models.RoleStudent), wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeInvalidToken},
		{name: "wrong role", header: "Bearer " + token(adminID, models.RoleAdmin), wantStatus: http.StatusForbidden, wantCode: dto.ErrorCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/protected"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				body := decodeError(t, w)
				require.False(t, body.Success)
				require.Equal(t, tt.wantCode, body.Error.Code)
			}
		})
	}
}

func TestJWTAuth_SubjectLookupFailure(t *testing.T) {
	jwtService := newTestJWT()
	m := NewAuthMiddleware(jwtService, staticSubjects{err: errors.New("db down")}, zerolog.Nop())
	router := protectedRouter(m, models.RoleStudent)

	token, _, err := jwtService.GenerateToken(auth.Subject{ID: uuid.NewString(), Role: models.RoleStudent})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
	}{
		{"unsupported file", apperrors.NewCustomError(apperrors.ErrUnsupportedFileType, "Invalid file format"), http.StatusBadRequest, dto.ErrorCodeUnsupportedFileType, "Invalid file format"},
		{"invalid argument", apperrors.NewInvalidArgumentError("pages must be at least 1"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "pages must be at least 1"},
		{"insufficient funds", apperrors.ErrInsufficientFunds, http.StatusBadRequest, dto.ErrorCodeInsufficientFunds, "Insufficient wallet balance"},
		{"transition", apperrors.NewInvalidTransitionError("completed"), http.StatusBadRequest, dto.ErrorCodeInvalidTransition, "Job is already completed"},
		{"printer offline", apperrors.NewCustomError(apperrors.ErrPrinterUnavailable, "Printer P is offline"), http.StatusBadRequest, dto.ErrorCodePrinterUnavailable, "Printer P is offline"},
		{"no printer", apperrors.ErrNoPrinterAvailable, http.StatusBadRequest, dto.ErrorCodeNoPrinterAvailable, "No printers available"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{"unauthorized", apperrors.NewCustomError(apperrors.ErrUnauthorized, "Invalid admin registration code"), http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Invalid admin registration code"},
		{"forbidden", apperrors.NewForbiddenError("Admin access required"), http.StatusForbidden, dto.ErrorCodeForbidden, "Admin access required"},
		{"not found", apperrors.NewNotFoundError("job not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "job not found"},
		{"conflict", apperrors.NewConflictError("email is already registered"), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "email is already registered"},
		{"persistence", apperrors.Persistence("insert job", errors.New("connection reset")), http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Internal server error"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { HandleAPIError(c, tt.err) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			require.Equal(t, tt.wantCode, body.Error.Code)
			require.Equal(t, tt.wantMessage, body.Error.Message)
		})
	}
}

func TestHandleAPIError_IncludesDetails(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrInsufficientFunds, "Insufficient wallet balance").
			WithDetails(map[string]interface{}{"required": "10.50", "balance": "10.49"}))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	body := decodeError(t, w)
	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "10.50", details["required"])
	require.Equal(t, "10.49", details["balance"])
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/app/models"
	"github.com/yigit/printq/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func newService() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "printq"})
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := newService()
	id := uuid.NewString()

	token, expiresIn, err := svc.GenerateToken(Subject{ID: id, Email: "a@campus.edu", Role: models.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, id, claims.SubjectID)
	require.Equal(t, models.RoleStudent, claims.Role)
}

func TestJWT_Expired(t *testing.T) {
	svc := newService()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, _, err := svc.GenerateToken(Subject{ID: uuid.NewString(), Role: models.RoleAdmin})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWT_RejectsTamperedAndForeignTokens(t *testing.T) {
	svc := newService()
	token, _, err := svc.GenerateToken(Subject{ID: uuid.NewString(), Role: models.RoleStudent})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other-secret", AccessTokenExp: time.Hour, TokenIssuer: "printq"})
	_, err = other.ValidateToken(token)
	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	// The legacy role_id_timestamp string must not authenticate.
	_, err = svc.ValidateToken("admin_" + uuid.NewString() + "_1700000000")
	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	// Unsigned token with a forged role
	forged := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{SubjectID: uuid.NewString(), Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "printq", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}})
	raw, err := forged.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(raw)
	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestJWT_GenerateRequiresRole(t *testing.T) {
	_, _, err := newService().GenerateToken(Subject{ID: uuid.NewString(), Role: "superuser"})
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer a.b.c")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", tok)

	tok, err = ExtractBearerToken(`"a.b.c"`)
	require.NoError(t, err)
	require.Equal(t, "a.b.c", tok)

	_, err = ExtractBearerToken("")
	require.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ExtractBearerToken("Bearer student_1_123")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "s3cret-pass"))
	require.False(t, CheckPassword(hash, "wrong"))
}

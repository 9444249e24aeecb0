package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yigit/printq/internal/pkg/apperrors"
)

func TestParseLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query   string
		want    uint64
		wantErr bool
	}{
		{query: "", want: 0},
		{query: "?limit=25", want: 25},
		{query: "?limit=0", wantErr: true},
		{query: "?limit=-3", wantErr: true},
		{query: "?limit=ten", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/jobs"+tt.query, nil)

			got, err := ParseLimit(c)
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptionalTime(t *testing.T) {
	got, err := ParseOptionalTime("scheduledTime", "")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = ParseOptionalTime("scheduledTime", "2025-05-01T11:00:00+02:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC), *got)

	_, err = ParseOptionalTime("scheduledTime", "tomorrow")
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	require.Equal(t, "scheduledTime must be an RFC3339 timestamp", apperrors.Message(err))
}

func TestParseDuration(t *testing.T) {
	require.Equal(t, 90*time.Minute, ParseDuration("1h30m", time.Second))
	require.Equal(t, time.Second, ParseDuration("soon", time.Second))
}

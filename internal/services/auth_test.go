package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/ctxutil"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

func newAuthForTest(t *testing.T, ttl time.Duration) *authService {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	svc, err := NewAuthService(log, nil, AuthConfig{JWTSecret: "test-secret", TokenTTL: ttl})
	require.NoError(t, err)
	return svc.(*authService)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newAuthForTest(t, time.Hour)
	u := &types.User{ID: uuid.New(), Name: "Ada", Role: types.RoleAdmin}

	token, err := svc.issueToken(u)
	require.NoError(t, err)

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	require.NoError(t, err)

	rd := ctxutil.GetRequestData(ctx)
	require.NotNil(t, rd)
	require.Equal(t, u.ID, rd.UserID)
	require.Equal(t, "Ada", rd.UserName)
	require.Equal(t, types.RoleAdmin, rd.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newAuthForTest(t, time.Hour)
	svc.cfg.TokenTTL = -time.Minute
	u := &types.User{ID: uuid.New(), Name: "Ada", Role: types.RoleUser}

	token, err := svc.issueToken(u)
	require.NoError(t, err)

	_, err = svc.SetContextFromToken(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestMalformedTokenRejected(t *testing.T) {
	svc := newAuthForTest(t, time.Hour)

	_, err := svc.SetContextFromToken(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)

	// A token signed with a different secret fails verification.
	other := newAuthForTest(t, time.Hour)
	other.cfg.JWTSecret = "other-secret"
	u := &types.User{ID: uuid.New(), Name: "Eve", Role: types.RoleUser}
	forged, err := other.issueToken(u)
	require.NoError(t, err)

	_, err = svc.SetContextFromToken(context.Background(), forged)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestMissingSecretRejected(t *testing.T) {
	log, err := logger.New("test")
	require.NoError(t, err)
	_, err = NewAuthService(log, nil, AuthConfig{JWTSecret: "   "})
	require.Error(t, err)
}

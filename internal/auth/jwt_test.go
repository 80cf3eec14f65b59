package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/model"
)

func newCodec() *auth.TokenCodec {
	return auth.NewTokenCodec("access-secret", "refresh-secret", time.Hour, 30*24*time.Hour)
}

func TestUserAccessRoundTrip(t *testing.T) {
	codec := newCodec()
	userID := uuid.New()
	sessionID := uuid.New()

	token, err := codec.SignUserAccess(userID, sessionID)
	require.NoError(t, err)

	claims, err := codec.VerifyUserAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, sessionID, claims.SessionID)
}

func TestUserRefreshRoundTrip(t *testing.T) {
	codec := newCodec()
	userID := uuid.New()

	token, err := codec.SignUserRefresh(userID)
	require.NoError(t, err)

	claims, err := codec.VerifyUserRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestAccessAndRefreshSecretsIndependent(t *testing.T) {
	codec := newCodec()

	access, err := codec.SignUserAccess(uuid.New(), uuid.New())
	require.NoError(t, err)
	refresh, err := codec.SignUserRefresh(uuid.New())
	require.NoError(t, err)

	_, err = codec.VerifyUserRefresh(access)
	assert.Error(t, err)
	_, err = codec.VerifyUserAccess(refresh)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := newCodec().SignUserAccess(uuid.New(), uuid.New())
	require.NoError(t, err)

	other := auth.NewTokenCodec("different", "different", time.Hour, time.Hour)
	_, err = other.VerifyUserAccess(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	codec := auth.NewTokenCodec("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := codec.SignUserAccess(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = codec.VerifyUserAccess(token)
	assert.Error(t, err)
}

func TestAdminTokens(t *testing.T) {
	codec := newCodec()
	admin := model.Admin{ID: uuid.New(), Name: "Asha", Role: "admin"}

	access, err := codec.SignAdminAccess(admin)
	require.NoError(t, err)
	claims, err := codec.VerifyAdminAccess(access)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID, "admin access token needs a jti")

	// Each issuance gets its own jti.
	access2, err := codec.SignAdminAccess(admin)
	require.NoError(t, err)
	claims2, err := codec.VerifyAdminAccess(access2)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, claims2.ID)

	refresh, err := codec.SignAdminRefresh(admin.ID)
	require.NoError(t, err)
	rclaims, err := codec.VerifyAdminRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, rclaims.AdminID)
}

func TestUserTokenNotValidAsAdmin(t *testing.T) {
	codec := newCodec()

	// Same HMAC secret, but the admin principal claim is absent.
	access, err := codec.SignUserAccess(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = codec.VerifyAdminAccess(access)
	assert.Error(t, err)
}

func TestDecodeExpiry(t *testing.T) {
	codec := newCodec()

	token, err := codec.SignAdminAccess(model.Admin{ID: uuid.New(), Name: "A", Role: "admin"})
	require.NoError(t, err)

	exp, err := codec.DecodeExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	_, err = codec.DecodeExpiry("not-a-jwt")
	assert.Error(t, err)
}

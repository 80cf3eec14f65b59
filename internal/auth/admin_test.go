package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
)

type adminFixture struct {
	svc       *auth.AdminService
	codec     *auth.TokenCodec
	tokens    *repo.MemoryAdminTokenRepo
	blacklist *repo.MemoryBlacklistRepo
	admin     model.Admin
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	hash, err := auth.HashSecret("s3cret-pass")
	require.NoError(t, err)

	admin := model.Admin{
		ID:           uuid.New(),
		Email:        "ops@fin100x.ai",
		PasswordHash: hash,
		Name:         "Ops",
		Role:         "admin",
		CreatedAt:    time.Now(),
	}
	admins := repo.NewMemoryAdminRepo()
	admins.Put(admin)

	tokens := repo.NewMemoryAdminTokenRepo()
	blacklist := repo.NewMemoryBlacklistRepo()
	codec := auth.NewTokenCodec("access-secret", "refresh-secret", time.Hour, 30*24*time.Hour)

	return &adminFixture{
		svc:       auth.NewAdminService(codec, admins, tokens, blacklist),
		codec:     codec,
		tokens:    tokens,
		blacklist: blacklist,
		admin:     admin,
	}
}

func TestAdminLogin(t *testing.T) {
	f := newAdminFixture(t)

	pair, err := f.svc.Login(context.Background(), "ops@fin100x.ai", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := f.codec.VerifyAdminAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, claims.AdminID)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.Login(context.Background(), "ops@fin100x.ai", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), "nobody@fin100x.ai", "s3cret-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAdminLoginKeepsSingleRefreshToken(t *testing.T) {
	f := newAdminFixture(t)

	first, err := f.svc.Login(context.Background(), "ops@fin100x.ai", "s3cret-pass")
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), "ops@fin100x.ai", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, 1, f.tokens.Count())
	_, err = f.tokens.GetByToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = f.tokens.GetByToken(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
}

func TestAdminRefreshRotates(t *testing.T) {
	f := newAdminFixture(t)

	pair, err := f.svc.Login(context.Background(), "ops@fin100x.ai", "s3cret-pass")
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, f.tokens.Count())

	// The consumed token is gone.
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrAdminRefreshInvalid)
}

func TestAdminRefreshUnknownToken(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, auth.ErrAdminRefreshInvalid)
}

func TestAdminRefreshExpiredTokenDeleted(t *testing.T) {
	f := newAdminFixture(t)

	raw, err := f.codec.SignAdminRefresh(f.admin.ID)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Create(context.Background(), f.admin.ID, raw, time.Now().Add(-time.Minute)))

	_, err = f.svc.Refresh(context.Background(), raw)
	assert.ErrorIs(t, err, auth.ErrAdminRefreshInvalid)
	assert.Equal(t, 0, f.tokens.Count(), "expired record must be deleted lazily")
}

func TestAdminRefreshBadSignatureDeleted(t *testing.T) {
	f := newAdminFixture(t)

	other := auth.NewTokenCodec("x", "another-secret", time.Hour, time.Hour)
	forged, err := other.SignAdminRefresh(f.admin.ID)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Create(context.Background(), f.admin.ID, forged, time.Now().Add(time.Hour)))

	_, err = f.svc.Refresh(context.Background(), forged)
	assert.ErrorIs(t, err, auth.ErrAdminRefreshInvalid)
	assert.Equal(t, 0, f.tokens.Count(), "compromised record must be deleted")
}

func TestAdminLogout(t *testing.T) {
	f := newAdminFixture(t)

	pair, err := f.svc.Login(context.Background(), "ops@fin100x.ai", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), pair.RefreshToken, pair.AccessToken))

	revoked, err := f.blacklist.Contains(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 0, f.tokens.Count())

	// Second logout for the same refresh token: nothing on record.
	err = f.svc.Logout(context.Background(), pair.RefreshToken, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenNotFound)
}

func TestAdminLogoutUndecodableAccessToken(t *testing.T) {
	f := newAdminFixture(t)

	pair, err := f.svc.Login(context.Background(), "ops@fin100x.ai", "s3cret-pass")
	require.NoError(t, err)

	// Blacklisting is skipped, the refresh token is still deleted.
	require.NoError(t, f.svc.Logout(context.Background(), pair.RefreshToken, "garbage"))
	assert.Equal(t, 0, f.tokens.Count())
}

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/repo"
)

type fixture struct {
	svc      *auth.Service
	sender   *captureSender
	sessions *repo.MemorySessionRepo
	users    *repo.MemoryUserRepo
}

func newFixture() *fixture {
	sender := &captureSender{}
	otps := repo.NewMemoryOTPRepo()
	users := repo.NewMemoryUserRepo()
	sessions := repo.NewMemorySessionRepo()
	codec := auth.NewTokenCodec("access-secret", "refresh-secret", time.Hour, 30*24*time.Hour)
	svc := auth.NewService(auth.NewOTPService(otps, sender), codec, users, sessions)
	return &fixture{svc: svc, sender: sender, sessions: sessions, users: users}
}

// login runs a full OTP request + verify cycle.
func (f *fixture) login(t *testing.T, phone string) auth.TokenPair {
	t.Helper()
	ticket, err := f.svc.RequestOTP(context.Background(), phone, fullConsent(), "", "", nil)
	require.NoError(t, err)
	_, pair, err := f.svc.VerifyOTP(context.Background(), ticket.RequestID, phone, f.sender.lastCode, nil)
	require.NoError(t, err)
	return pair
}

func TestVerifyOTPCreatesUserAndSession(t *testing.T) {
	f := newFixture()

	ticket, err := f.svc.RequestOTP(context.Background(), testPhone, fullConsent(), "", "", nil)
	require.NoError(t, err)

	user, pair, err := f.svc.VerifyOTP(context.Background(), ticket.RequestID, testPhone, f.sender.lastCode, nil)
	require.NoError(t, err)

	assert.True(t, user.IsNew)
	assert.Equal(t, "en-IN", user.Language)
	assert.Equal(t, "none", user.KYCStatus)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, 3600, pair.ExpiresIn)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	session, err := f.sessions.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.HashToken(pair.RefreshToken), session.RefreshTokenHash)
	assert.False(t, session.Revoked)
}

func TestSecondLoginClearsIsNew(t *testing.T) {
	f := newFixture()

	f.login(t, testPhone)

	ticket, err := f.svc.RequestOTP(context.Background(), testPhone, fullConsent(), "", "", nil)
	require.NoError(t, err)
	user, _, err := f.svc.VerifyOTP(context.Background(), ticket.RequestID, testPhone, f.sender.lastCode, nil)
	require.NoError(t, err)

	assert.False(t, user.IsNew)
}

func TestSingleSessionInvariant(t *testing.T) {
	f := newFixture()

	var pairs []auth.TokenPair
	for i := 0; i < 3; i++ {
		pairs = append(pairs, f.login(t, testPhone))
	}

	// Only the newest refresh token still works.
	for _, old := range pairs[:2] {
		_, err := f.svc.Refresh(context.Background(), old.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
	}
	_, err := f.svc.Refresh(context.Background(), pairs[2].RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRotationAndReplay(t *testing.T) {
	f := newFixture()
	pair := f.login(t, testPhone)

	rotated, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, "Bearer", rotated.TokenType)

	// Replaying the consumed token fails; the rotated one works.
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
	_, err = f.svc.Refresh(context.Background(), rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture()
	pair := f.login(t, testPhone)

	user, err := f.users.GetByPhone(context.Background(), testPhone)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), user.ID))
	// Idempotent.
	require.NoError(t, f.svc.Logout(context.Background(), user.ID))

	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)

	session, err := f.sessions.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, session.Revoked)
}

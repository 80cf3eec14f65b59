package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
)

// ErrInvalidRefresh covers every refresh failure: bad signature, expiry,
// missing or revoked session, and a digest mismatch after a newer login or
// a lost rotation race. One signal, no oracle.
var ErrInvalidRefresh = errors.New("invalid or expired refresh token")

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// Service orchestrates user authentication: OTP verification, session
// issuance under the single-active-session invariant, refresh rotation and
// logout. All session state lives in the store; nothing is cached in
// process.
type Service struct {
	otp      *OTPService
	codec    *TokenCodec
	users    repo.UserRepo
	sessions repo.SessionRepo
}

// NewService creates the user auth service.
func NewService(otp *OTPService, codec *TokenCodec, users repo.UserRepo, sessions repo.SessionRepo) *Service {
	return &Service{otp: otp, codec: codec, users: users, sessions: sessions}
}

// RequestOTP delegates to the OTP lifecycle manager.
func (s *Service) RequestOTP(ctx context.Context, phone string, consent Consent, channel, locale string, deviceID *string) (OTPTicket, error) {
	return s.otp.Request(ctx, phone, consent, channel, locale, deviceID)
}

// VerifyOTP consumes the challenge, ensures the user exists, replaces any
// previous session with a fresh one and issues a token pair. Replacing is
// atomic per user, so concurrent logins cannot leave two live sessions.
func (s *Service) VerifyOTP(ctx context.Context, requestID, phone, code string, deviceID *string) (model.User, TokenPair, error) {
	if err := s.otp.Verify(ctx, requestID, phone, code); err != nil {
		return model.User{}, TokenPair{}, err
	}

	user, err := s.users.EnsureByPhone(ctx, phone, MaskPhone(phone))
	if err != nil {
		return model.User{}, TokenPair{}, fmt.Errorf("ensure user: %w", err)
	}

	refreshToken, err := s.codec.SignUserRefresh(user.ID)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}

	session, err := s.sessions.Replace(ctx, user.ID, HashToken(refreshToken), deviceID, time.Now().Add(s.codec.RefreshTTL()))
	if err != nil {
		return model.User{}, TokenPair{}, fmt.Errorf("replace session: %w", err)
	}

	accessToken, err := s.codec.SignUserAccess(user.ID, session.ID)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}

	log.Printf("[auth] session issued for %s", user.PhoneMasked)
	return user, TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.codec.AccessTTL().Seconds()),
	}, nil
}

// Refresh rotates a valid refresh token, returning a fresh pair. Exactly one
// of two concurrent calls with the same token succeeds; the loser observes
// the already-rotated digest and fails like any other invalid token.
func (s *Service) Refresh(ctx context.Context, rawToken string) (TokenPair, error) {
	claims, err := s.codec.VerifyUserRefresh(rawToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefresh
	}

	session, err := s.sessions.GetByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefresh
		}
		return TokenPair{}, fmt.Errorf("load session: %w", err)
	}
	if session.Revoked || !time.Now().Before(session.ExpiresAt) {
		return TokenPair{}, ErrInvalidRefresh
	}

	presentedHash := HashToken(rawToken)
	if !DigestEqual(session.RefreshTokenHash, presentedHash) {
		// Superseded by a newer login, or a replayed token.
		return TokenPair{}, ErrInvalidRefresh
	}

	newRefresh, err := s.codec.SignUserRefresh(claims.UserID)
	if err != nil {
		return TokenPair{}, err
	}

	err = s.sessions.Rotate(ctx, session.ID, presentedHash, HashToken(newRefresh), time.Now().Add(s.codec.RefreshTTL()))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefresh
		}
		return TokenPair{}, fmt.Errorf("rotate session: %w", err)
	}

	accessToken, err := s.codec.SignUserAccess(claims.UserID, session.ID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.codec.AccessTTL().Seconds()),
	}, nil
}

// Logout revokes every non-revoked session for the user. Revoking all
// matching rows is deliberate: it holds even if the single-session
// invariant were ever violated elsewhere. Idempotent.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fin100x/server/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAdminRefreshInvalid covers unknown, expired and badly signed admin
	// refresh tokens.
	ErrAdminRefreshInvalid = errors.New("invalid refresh token")
	// ErrRefreshTokenNotFound signals a logout for a token that is not on
	// record.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// AdminTokenPair is an issued admin access/refresh token pair.
type AdminTokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AdminService handles admin credential verification, the
// single-active-refresh-token invariant and access-token blacklisting.
type AdminService struct {
	codec     *TokenCodec
	admins    repo.AdminRepo
	tokens    repo.AdminTokenRepo
	blacklist repo.BlacklistRepo
}

// NewAdminService creates the admin auth service.
func NewAdminService(codec *TokenCodec, admins repo.AdminRepo, tokens repo.AdminTokenRepo, blacklist repo.BlacklistRepo) *AdminService {
	return &AdminService{codec: codec, admins: admins, tokens: tokens, blacklist: blacklist}
}

// Login verifies the password and issues a fresh pair, wiping any earlier
// refresh tokens for the admin so only the newest login stays valid.
func (s *AdminService) Login(ctx context.Context, email, password string) (AdminTokenPair, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AdminTokenPair{}, ErrInvalidCredentials
		}
		return AdminTokenPair{}, fmt.Errorf("load admin: %w", err)
	}
	if !CompareSecret(password, admin.PasswordHash) {
		return AdminTokenPair{}, ErrInvalidCredentials
	}

	accessToken, err := s.codec.SignAdminAccess(admin)
	if err != nil {
		return AdminTokenPair{}, err
	}
	refreshToken, err := s.codec.SignAdminRefresh(admin.ID)
	if err != nil {
		return AdminTokenPair{}, err
	}

	expiresAt := time.Now().Add(s.codec.AdminRefreshTTL())
	if err := s.tokens.Replace(ctx, admin.ID, refreshToken, expiresAt); err != nil {
		return AdminTokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return AdminTokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates an admin refresh token. The stored record is always
// consumed: lazily deleted if expired, deleted as compromised on a bad
// signature, and replaced by the new token on success.
func (s *AdminService) Refresh(ctx context.Context, rawToken string) (AdminTokenPair, error) {
	stored, err := s.tokens.GetByToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AdminTokenPair{}, ErrAdminRefreshInvalid
		}
		return AdminTokenPair{}, fmt.Errorf("load refresh token: %w", err)
	}

	if !time.Now().Before(stored.ExpiresAt) {
		if _, err := s.tokens.DeleteByToken(ctx, rawToken); err != nil {
			log.Printf("[admin-auth] delete expired refresh token: %v", err)
		}
		return AdminTokenPair{}, ErrAdminRefreshInvalid
	}

	if _, err := s.codec.VerifyAdminRefresh(rawToken); err != nil {
		// A stored token that fails verification was never ours; drop it.
		if _, derr := s.tokens.DeleteByToken(ctx, rawToken); derr != nil {
			log.Printf("[admin-auth] delete bad refresh token: %v", derr)
		}
		return AdminTokenPair{}, ErrAdminRefreshInvalid
	}

	admin, err := s.admins.GetByID(ctx, stored.AdminID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AdminTokenPair{}, ErrAdminRefreshInvalid
		}
		return AdminTokenPair{}, fmt.Errorf("load admin: %w", err)
	}

	if _, err := s.tokens.DeleteByToken(ctx, rawToken); err != nil {
		return AdminTokenPair{}, fmt.Errorf("consume refresh token: %w", err)
	}

	accessToken, err := s.codec.SignAdminAccess(admin)
	if err != nil {
		return AdminTokenPair{}, err
	}
	newRefresh, err := s.codec.SignAdminRefresh(admin.ID)
	if err != nil {
		return AdminTokenPair{}, err
	}
	if err := s.tokens.Create(ctx, admin.ID, newRefresh, time.Now().Add(s.codec.AdminRefreshTTL())); err != nil {
		return AdminTokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return AdminTokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// Logout blacklists the access token until its own expiry and deletes the
// refresh token record. A token that cannot be decoded is skipped rather
// than blocking the logout; an unknown refresh token yields
// ErrRefreshTokenNotFound.
func (s *AdminService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	expiresAt, err := s.codec.DecodeExpiry(accessToken)
	if err != nil {
		log.Printf("[admin-auth] could not decode access token for blacklisting: %v", err)
	} else if err := s.blacklist.Add(ctx, accessToken, expiresAt); err != nil {
		return fmt.Errorf("blacklist access token: %w", err)
	}

	n, err := s.tokens.DeleteByToken(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if n == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

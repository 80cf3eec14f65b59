package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
)

// Admin token lifetimes are fixed; user lifetimes come from configuration.
const (
	adminAccessTTL  = 15 * time.Minute
	adminRefreshTTL = 7 * 24 * time.Hour
)

// UserAccessClaims bind an access token to a user and to the session it was
// issued for, so revocation is observable before natural expiry.
type UserAccessClaims struct {
	UserID    uuid.UUID `json:"userId"`
	SessionID uuid.UUID `json:"sessionId"`
	jwt.RegisteredClaims
}

// UserRefreshClaims carry only the user id needed to look up the session.
type UserRefreshClaims struct {
	UserID uuid.UUID `json:"userId"`
	jwt.RegisteredClaims
}

// AdminAccessClaims carry role/name plus a per-issuance jti (RegisteredClaims.ID)
// so a single token can be blacklisted.
type AdminAccessClaims struct {
	AdminID uuid.UUID `json:"adminId"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
	jwt.RegisteredClaims
}

// AdminRefreshClaims carry only the admin id.
type AdminRefreshClaims struct {
	AdminID uuid.UUID `json:"adminId"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies all four token kinds. Access and refresh
// tokens use independent secrets and expiry policies.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenCodec creates a codec with the given secrets and user token TTLs.
func NewTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL returns the user access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the user refresh token lifetime.
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// AdminRefreshTTL returns the admin refresh token lifetime.
func (c *TokenCodec) AdminRefreshTTL() time.Duration { return adminRefreshTTL }

func (c *TokenCodec) sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func registered(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// SignUserAccess issues a short-lived access token for the given session.
func (c *TokenCodec) SignUserAccess(userID, sessionID uuid.UUID) (string, error) {
	return c.sign(&UserAccessClaims{
		UserID:           userID,
		SessionID:        sessionID,
		RegisteredClaims: registered(c.accessTTL),
	}, c.accessSecret)
}

// SignUserRefresh issues a long-lived refresh token for the user.
func (c *TokenCodec) SignUserRefresh(userID uuid.UUID) (string, error) {
	return c.sign(&UserRefreshClaims{
		UserID:           userID,
		RegisteredClaims: registered(c.refreshTTL),
	}, c.refreshSecret)
}

// SignAdminAccess issues an admin access token with a unique jti.
func (c *TokenCodec) SignAdminAccess(admin model.Admin) (string, error) {
	claims := &AdminAccessClaims{
		AdminID:          admin.ID,
		Name:             admin.Name,
		Role:             admin.Role,
		RegisteredClaims: registered(adminAccessTTL),
	}
	claims.ID = uuid.NewString()
	return c.sign(claims, c.accessSecret)
}

// SignAdminRefresh issues an admin refresh token.
func (c *TokenCodec) SignAdminRefresh(adminID uuid.UUID) (string, error) {
	return c.sign(&AdminRefreshClaims{
		AdminID:          adminID,
		RegisteredClaims: registered(adminRefreshTTL),
	}, c.refreshSecret)
}

func (c *TokenCodec) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// VerifyUserAccess validates signature and expiry of a user access token.
// Any failure yields a nil claims value; callers treat it uniformly as
// unauthenticated.
func (c *TokenCodec) VerifyUserAccess(tokenString string) (*UserAccessClaims, error) {
	claims := &UserAccessClaims{}
	if err := c.verify(tokenString, claims, c.accessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil || claims.SessionID == uuid.Nil {
		return nil, fmt.Errorf("token missing principal claims")
	}
	return claims, nil
}

// VerifyUserRefresh validates signature and expiry of a user refresh token.
func (c *TokenCodec) VerifyUserRefresh(tokenString string) (*UserRefreshClaims, error) {
	claims := &UserRefreshClaims{}
	if err := c.verify(tokenString, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("token missing principal claims")
	}
	return claims, nil
}

// VerifyAdminAccess validates signature and expiry of an admin access token.
func (c *TokenCodec) VerifyAdminAccess(tokenString string) (*AdminAccessClaims, error) {
	claims := &AdminAccessClaims{}
	if err := c.verify(tokenString, claims, c.accessSecret); err != nil {
		return nil, err
	}
	if claims.AdminID == uuid.Nil {
		return nil, fmt.Errorf("token missing principal claims")
	}
	return claims, nil
}

// VerifyAdminRefresh validates signature and expiry of an admin refresh token.
func (c *TokenCodec) VerifyAdminRefresh(tokenString string) (*AdminRefreshClaims, error) {
	claims := &AdminRefreshClaims{}
	if err := c.verify(tokenString, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	if claims.AdminID == uuid.Nil {
		return nil, fmt.Errorf("token missing principal claims")
	}
	return claims, nil
}

// DecodeExpiry extracts the exp claim without verifying the signature.
// Used when blacklisting an access token on logout, where the entry only
// needs to outlive the token itself.
func (c *TokenCodec) DecodeExpiry(tokenString string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, fmt.Errorf("decode token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}

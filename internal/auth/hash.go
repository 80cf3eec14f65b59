package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashToken returns the SHA-256 hex digest of a raw token. Used for values
// compared by digest (refresh tokens), where a fast deterministic hash is
// enough because the input is already high-entropy.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// DigestEqual compares two hex digests in constant time. Malformed input
// compares unequal rather than erroring.
func DigestEqual(aHex, bHex string) bool {
	a, err := hex.DecodeString(aHex)
	if err != nil {
		return false
	}
	b, err := hex.DecodeString(bHex)
	if err != nil {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// HashSecret produces a salted bcrypt digest for low-entropy secrets
// (OTP codes, admin passwords) that must resist offline guessing.
func HashSecret(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// CompareSecret reports whether plain matches the bcrypt digest. bcrypt's
// own comparison is constant time; any error (including a malformed digest)
// reads as a mismatch.
func CompareSecret(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// GenerateOTP returns a fixed-length numeric code from crypto/rand.
func GenerateOTP(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// NewRequestID returns an opaque OTP challenge identifier.
func NewRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// MaskPhone hides all but the last four digits ("+911234567890" -> "********7890").
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

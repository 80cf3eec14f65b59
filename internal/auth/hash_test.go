package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fin100x/server/internal/auth"
)

func TestHashToken(t *testing.T) {
	a := auth.HashToken("some-token")
	b := auth.HashToken("some-token")
	c := auth.HashToken("other-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestDigestEqual(t *testing.T) {
	digest := auth.HashToken("tok")

	assert.True(t, auth.DigestEqual(digest, digest))
	assert.False(t, auth.DigestEqual(digest, auth.HashToken("other")))
	assert.False(t, auth.DigestEqual("not-hex", digest))
	assert.False(t, auth.DigestEqual(digest, digest[:32]))
}

func TestSecretHashing(t *testing.T) {
	digest, err := auth.HashSecret("482916")
	require.NoError(t, err)

	assert.True(t, auth.CompareSecret("482916", digest))
	assert.False(t, auth.CompareSecret("482917", digest))
	assert.False(t, auth.CompareSecret("482916", "garbage"))
}

func TestGenerateOTP(t *testing.T) {
	code, err := auth.GenerateOTP(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "unexpected rune %q", r)
	}
}

func TestNewRequestID(t *testing.T) {
	id := auth.NewRequestID()
	assert.True(t, strings.HasPrefix(id, "req_"))
	assert.NotEqual(t, id, auth.NewRequestID())
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*********7890", auth.MaskPhone("+911234567890"))
	assert.Equal(t, "123", auth.MaskPhone("123"))
}

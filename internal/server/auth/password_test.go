package auth

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))

	assert.True(t, h.Verify("Secret123", digest))
	assert.False(t, h.Verify("secret123", digest))
	assert.False(t, h.Verify("", digest))
}

func TestPasswordHasher_SaltedDigestsDiffer(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("Secret123")
	require.NoError(t, err)
	b, err := h.Hash("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("Secret123", a))
	assert.True(t, h.Verify("Secret123", b))
}

func TestPasswordHasher_VerifyAcrossCosts(t *testing.T) {
	digest, err := NewPasswordHasher(bcrypt.MinCost).Hash("Secret123")
	require.NoError(t, err)

	assert.True(t, NewPasswordHasher(bcrypt.MinCost+1).Verify("Secret123", digest))
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	assert.NotPanics(t, func() {
		assert.False(t, h.Verify("Secret123", "not-a-bcrypt-digest"))
		assert.False(t, h.Verify("Secret123", ""))
	})
}

func TestPasswordHasher_Rejects(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = h.Hash(strings.Repeat("Aa1", 30))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestNewPasswordHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
}

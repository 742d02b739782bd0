package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureRandomString(t *testing.T) {
	a, err := GenerateSecureRandomString(32)
	require.NoError(t, err)
	b, err := GenerateSecureRandomString(32)
	require.NoError(t, err)

	assert.Len(t, a, 43) // 32 bytes, unpadded base64
	assert.NotEqual(t, a, b)
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey("secret", "token", 32)
	require.NoError(t, err)
	k2, err := DeriveKey("secret", "token", 32)
	require.NoError(t, err)
	other, err := DeriveKey("secret", "state", 32)
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2, "derivation must be deterministic")
	assert.NotEqual(t, k1, other, "purposes must yield independent keys")

	_, err = DeriveKey("", "token", 32)
	assert.Error(t, err)
}

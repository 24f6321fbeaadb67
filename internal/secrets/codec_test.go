package secrets_test

import (
	"testing"

	"github.com/Rijass/Spotify-Stats/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec(t *testing.T) *secrets.Codec {
	t.Helper()
	codec, err := secrets.NewCodec("test-crypto-password", "test-salt")
	require.NoError(t, err)
	return codec
}

func TestCodec_PasswordHashing(t *testing.T) {
	codec := newCodec(t)

	hash, err := codec.HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)

	assert.True(t, codec.PasswordMatches("pw1", hash))
	assert.False(t, codec.PasswordMatches("pw2", hash))
	assert.False(t, codec.PasswordMatches("", hash))
	assert.False(t, codec.PasswordMatches("pw1", ""))
}

func TestCodec_HashPassword_EmptyPassthrough(t *testing.T) {
	codec := newCodec(t)

	hash, err := codec.HashPassword("")
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestCodec_TokenHashing(t *testing.T) {
	codec := newCodec(t)

	raw, err := codec.NewOpaqueToken()
	require.NoError(t, err)

	hash, err := codec.HashToken(raw)
	require.NoError(t, err)

	assert.True(t, codec.TokenMatches(raw, hash))
	assert.False(t, codec.TokenMatches(raw+"x", hash))
}

func TestCodec_NewOpaqueToken(t *testing.T) {
	codec := newCodec(t)

	first, err := codec.NewOpaqueToken()
	require.NoError(t, err)
	second, err := codec.NewOpaqueToken()
	require.NoError(t, err)

	// 32 random bytes, base64url without padding
	assert.Len(t, first, 43)
	assert.NotContains(t, first, "=")
	assert.NotEqual(t, first, second)
}

func TestCodec_EncryptRoundTrip(t *testing.T) {
	codec := newCodec(t)

	for _, value := range []string{"refresh-token-value", "x", "längerer wert mit umlauten"} {
		ciphertext, err := codec.Encrypt(value)
		require.NoError(t, err)
		assert.NotEqual(t, value, ciphertext)

		plain, err := codec.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, value, plain)
	}
}

func TestCodec_EncryptEmptyPassthrough(t *testing.T) {
	codec := newCodec(t)

	ciphertext, err := codec.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ciphertext)

	plain, err := codec.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestCodec_DecryptRejectsGarbage(t *testing.T) {
	codec := newCodec(t)

	_, err := codec.Decrypt("not-a-ciphertext")
	assert.ErrorIs(t, err, secrets.ErrDecrypt)

	// Valid base64 but too short to contain a nonce
	_, err = codec.Decrypt("YWJj")
	assert.ErrorIs(t, err, secrets.ErrDecrypt)
}

func TestCodec_DecryptWithDifferentKeyFails(t *testing.T) {
	codec := newCodec(t)
	other, err := secrets.NewCodec("other-password", "other-salt")
	require.NoError(t, err)

	ciphertext, err := codec.Encrypt("secret")
	require.NoError(t, err)

	_, err = other.Decrypt(ciphertext)
	assert.ErrorIs(t, err, secrets.ErrDecrypt)
}

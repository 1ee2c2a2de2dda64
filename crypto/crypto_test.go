package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIdentityKeyPair(t *testing.T) {
	kp, err := GenerateIdentityKeyPair()
	require.NoError(t, err)
	assert.Len(t, kp.PublicKey(), PublicKeySize)
	assert.Len(t, kp.PrivateKey(), PrivateKeySize)
	assert.NotEmpty(t, kp.PublicKeyBase64())
	assert.NotEmpty(t, kp.ID())
}

func TestSignAndVerify(t *testing.T) {
	kp, err := GenerateIdentityKeyPair()
	require.NoError(t, err)

	message := []byte("register me")
	sig, err := kp.Sign(message)
	require.NoError(t, err)

	require.NoError(t, Verify(kp.PublicKey(), message, sig))

	t.Run("tampered message fails", func(t *testing.T) {
		err := Verify(kp.PublicKey(), []byte("register me too"), sig)
		assert.ErrorIs(t, err, ErrCryptoFailure)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		other, err := GenerateIdentityKeyPair()
		require.NoError(t, err)
		assert.ErrorIs(t, Verify(other.PublicKey(), message, sig), ErrCryptoFailure)
	})
}

func TestDeriveSharedSecretSymmetric(t *testing.T) {
	alice, err := GenerateIdentityKeyPair()
	require.NoError(t, err)
	bob, err := GenerateIdentityKeyPair()
	require.NoError(t, err)

	s1, err := alice.DeriveSharedSecret(bob.PublicKey())
	require.NoError(t, err)
	s2, err := bob.DeriveSharedSecret(alice.PublicKey())
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Len(t, s1, 32)
}

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := GenerateChannelKey()
	require.NoError(t, err)

	plaintext := []byte("hello channel")
	nonce, ciphertext, err := Seal(key, plaintext, nil)
	require.NoError(t, err)
	require.Len(t, nonce, NonceSize)

	got, err := Open(key, nonce, ciphertext, nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	t.Run("wrong key fails", func(t *testing.T) {
		wrongKey, err := GenerateChannelKey()
		require.NoError(t, err)
		_, err = Open(wrongKey, nonce, ciphertext, nil)
		assert.ErrorIs(t, err, ErrCryptoFailure)
	})
}

func TestWrapUnwrapChannelKey(t *testing.T) {
	creator, err := GenerateIdentityKeyPair()
	require.NoError(t, err)
	invitee, err := GenerateIdentityKeyPair()
	require.NoError(t, err)

	channelKey, err := GenerateChannelKey()
	require.NoError(t, err)

	wrapped, err := creator.WrapChannelKey(invitee.PublicKey(), channelKey)
	require.NoError(t, err)
	require.NotEmpty(t, wrapped.Ciphertext)

	unwrapped, err := invitee.UnwrapChannelKey(creator.PublicKey(), wrapped)
	require.NoError(t, err)
	assert.Equal(t, channelKey, unwrapped)

	t.Run("only the invitee can unwrap", func(t *testing.T) {
		outsider, err := GenerateIdentityKeyPair()
		require.NoError(t, err)
		_, err = outsider.UnwrapChannelKey(creator.PublicKey(), wrapped)
		assert.ErrorIs(t, err, ErrCryptoFailure)
	})
}

func TestNewIDUnique(t *testing.T) {
	a := NewID("msg")
	b := NewID("msg")
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "msg-")
	assert.Len(t, a, len("msg-")+32)
}

func TestHashAndEncodingRoundTrip(t *testing.T) {
	assert.NotEmpty(t, HashStringBase64("test-public-key-base64"))

	data := []byte("round trip me")
	encoded := EncodeBase64(data)
	decoded, err := DecodeBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)

	t.Run("empty input tolerated", func(t *testing.T) {
		assert.Equal(t, "", EncodeBase64(nil))
		decoded, err := DecodeBase64("")
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})
}

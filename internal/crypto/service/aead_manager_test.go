package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
)

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	validKey := randomKey(t)

	t.Run("aes-gcm", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.AESGCM)
		require.NoError(t, err)
		_, ok := cipher.(*AESGCMCipher)
		assert.True(t, ok, "cipher should be of type *AESGCMCipher")
	})

	t.Run("chacha20-poly1305", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.ChaCha20)
		require.NoError(t, err)
		_, ok := cipher.(*ChaCha20Poly1305Cipher)
		assert.True(t, ok, "cipher should be of type *ChaCha20Poly1305Cipher")
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(validKey, cryptoDomain.Algorithm("rot13"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := manager.CreateCipher(make([]byte, size), cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize, "size %d", size)
	}
}

func TestAEAD_RoundTrip(t *testing.T) {
	manager := NewAEADManager()

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			cipher, err := manager.CreateCipher(randomKey(t), alg)
			require.NoError(t, err)

			plaintext := []byte(`{"whatsapp":"5511999999999"}`)
			aad := []byte{0x01, 0x02}

			ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
			require.NoError(t, err)
			assert.Len(t, nonce, cryptoDomain.NonceSize)
			assert.Len(t, ciphertext, len(plaintext)+cryptoDomain.TagSize)

			got, err := cipher.Decrypt(ciphertext, nonce, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)

			_, err = cipher.Decrypt(ciphertext, nonce, []byte{0x01, 0x03})
			assert.Error(t, err, "aad mismatch must fail")

			_, err = cipher.Decrypt(ciphertext, nonce[:8], aad)
			assert.Error(t, err, "short nonce must fail")

			tampered := append([]byte(nil), ciphertext...)
			tampered[0] ^= 0x01
			_, err = cipher.Decrypt(tampered, nonce, aad)
			assert.Error(t, err, "tampered ciphertext must fail")
		})
	}
}

func TestAEAD_FreshNonces(t *testing.T) {
	cipher, err := NewChaCha20Poly1305(randomKey(t))
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		_, nonce, err := cipher.Encrypt([]byte("x"), nil)
		require.NoError(t, err)
		_, dup := seen[string(nonce)]
		require.False(t, dup)
		seen[string(nonce)] = struct{}{}
	}
}

func TestNewAESGCM_InvalidKey(t *testing.T) {
	_, err := NewAESGCM(make([]byte, 16))
	assert.Error(t, err)

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	_, err = NewAESGCM(key)
	assert.NoError(t, err)
}

func TestCreateCipher_FailureReturnsNilInterface(t *testing.T) {
	manager := NewAEADManager()

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20, "rot13"} {
		cipher, err := manager.CreateCipher(make([]byte, 16), alg)
		assert.Error(t, err)
		assert.True(t, cipher == nil, "%s: cipher must be a nil interface", alg)
	}

	aes, err := NewAESGCM(nil)
	assert.Error(t, err)
	assert.True(t, aes == nil)

	chacha, err := NewChaCha20Poly1305(make([]byte, 31))
	assert.Error(t, err)
	assert.True(t, chacha == nil)
}

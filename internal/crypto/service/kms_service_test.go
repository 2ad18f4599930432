package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok, "keeper should be *secrets.Keeper")
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "invalid://uri")
		assert.Error(t, err)
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("Error_EmptyURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "")
		assert.Error(t, err)
		assert.Nil(t, keeper)
	})
}

func TestLoadRootKey(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("PlainBase64", func(t *testing.T) {
		key := randomKey(t)

		rootKey, err := LoadRootKey(ctx, kmsService, base64.StdEncoding.EncodeToString(key), "")
		require.NoError(t, err)

		err = rootKey.Use(func(got []byte) error {
			assert.Equal(t, key, got)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("WrappedByKMS", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)
		key := randomKey(t)

		keeperIface, err := kmsService.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		keeper := keeperIface.(*secrets.Keeper)
		wrapped, err := keeper.Encrypt(ctx, key)
		require.NoError(t, err)
		require.NoError(t, keeper.Close())

		rootKey, err := LoadRootKey(ctx, kmsService, base64.StdEncoding.EncodeToString(wrapped), keyURI)
		require.NoError(t, err)

		err = rootKey.Use(func(got []byte) error {
			assert.Equal(t, key, got)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("WrongKMSKey", func(t *testing.T) {
		keeperIface, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		keeper := keeperIface.(*secrets.Keeper)
		wrapped, err := keeper.Encrypt(ctx, randomKey(t))
		require.NoError(t, err)
		require.NoError(t, keeper.Close())

		_, err = LoadRootKey(
			ctx,
			kmsService,
			base64.StdEncoding.EncodeToString(wrapped),
			generateLocalSecretsURI(t),
		)
		assert.ErrorContains(t, err, "failed to decrypt secret")
	})

	t.Run("NotSet", func(t *testing.T) {
		_, err := LoadRootKey(ctx, kmsService, "", "")
		assert.ErrorIs(t, err, cryptoDomain.ErrRootKeyNotSet)
	})

	t.Run("InvalidBase64", func(t *testing.T) {
		_, err := LoadRootKey(ctx, kmsService, "%%%", "")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidRootKeyBase64)
	})

	t.Run("WrongSize", func(t *testing.T) {
		_, err := LoadRootKey(ctx, kmsService, base64.StdEncoding.EncodeToString([]byte("short")), "")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestLoadSecret(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("PlainBase64KeepsLength", func(t *testing.T) {
		secret := make([]byte, 48)
		for i := range secret {
			secret[i] = byte(i)
		}

		got, err := LoadSecret(ctx, kmsService, base64.StdEncoding.EncodeToString(secret), "")
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	})

	t.Run("WrappedByKMS", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)
		secret := randomKey(t)

		keeperIface, err := kmsService.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		keeper := keeperIface.(*secrets.Keeper)
		wrapped, err := keeper.Encrypt(ctx, secret)
		require.NoError(t, err)
		require.NoError(t, keeper.Close())

		got, err := LoadSecret(ctx, kmsService, base64.StdEncoding.EncodeToString(wrapped), keyURI)
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	})

	t.Run("NotSet", func(t *testing.T) {
		_, err := LoadSecret(ctx, kmsService, "  ", "")
		assert.ErrorIs(t, err, cryptoDomain.ErrRootKeyNotSet)
	})
}

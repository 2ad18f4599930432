package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService implements domain.KMSService for KMS operations using gocloud.dev/secrets.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
	// Returns an error if the KMS provider URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
// Returns a KMSKeeper which *secrets.Keeper implements.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// LoadRootKey turns the configured ROOT_KEY value into a RootKey.
//
// With an empty keyURI the value is the base64 key itself. Otherwise it is the
// base64 KMS ciphertext and is unwrapped through the keeper opened for keyURI.
func LoadRootKey(
	ctx context.Context,
	kms KMSService,
	encoded string,
	keyURI string,
) (*cryptoDomain.RootKey, error) {
	plain, err := LoadSecret(ctx, kms, encoded, keyURI)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plain)

	return cryptoDomain.NewRootKey(plain)
}

// LoadSecret decodes a base64 secret and, when keyURI is set, unwraps it
// through KMS. The caller owns the returned buffer and must zero it.
func LoadSecret(
	ctx context.Context,
	kms KMSService,
	encoded string,
	keyURI string,
) ([]byte, error) {
	raw, err := cryptoDomain.DecodeRootKey(encoded)
	if err != nil {
		return nil, err
	}
	if keyURI == "" {
		return raw, nil
	}
	defer cryptoDomain.Zero(raw)

	keeper, err := kms.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer keeper.Close() //nolint:errcheck

	plain, err := keeper.Decrypt(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secret: %w", err)
	}
	return plain, nil
}

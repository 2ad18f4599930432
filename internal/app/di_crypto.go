package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
	cryptoService "github.com/xambitlan/disclosure/internal/crypto/service"
	tokenService "github.com/xambitlan/disclosure/internal/token/service"
)

type cryptoComponents struct {
	kmsService         cryptoService.KMSService
	aeadManager        cryptoService.AEADManager
	rootKey            *cryptoDomain.RootKey
	envelopeSealer     cryptoService.EnvelopeSealer
	accessTokenService tokenService.AccessTokenService

	kmsServiceInit         sync.Once
	aeadManagerInit        sync.Once
	rootKeyInit            sync.Once
	envelopeSealerInit     sync.Once
	accessTokenServiceInit sync.Once
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// RootKey returns the root key loaded from ROOT_KEY, unwrapped through KMS_KEY_URI when set.
func (c *Container) RootKey() (*cryptoDomain.RootKey, error) {
	var err error
	c.rootKeyInit.Do(func() {
		c.rootKey, err = cryptoService.LoadRootKey(
			context.Background(),
			c.KMSService(),
			c.config.RootKey,
			c.config.KMSKeyURI,
		)
		if err != nil {
			c.initErrors["rootKey"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rootKey"]; exists {
		return nil, storedErr
	}
	return c.rootKey, nil
}

// EnvelopeSealer returns the sealer used for contact envelopes.
func (c *Container) EnvelopeSealer() (cryptoService.EnvelopeSealer, error) {
	var err error
	c.envelopeSealerInit.Do(func() {
		c.envelopeSealer, err = c.initEnvelopeSealer()
		if err != nil {
			c.initErrors["envelopeSealer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeSealer"]; exists {
		return nil, storedErr
	}
	return c.envelopeSealer, nil
}

// AccessTokenService returns the reveal access token issuer and verifier.
func (c *Container) AccessTokenService() (tokenService.AccessTokenService, error) {
	var err error
	c.accessTokenServiceInit.Do(func() {
		c.accessTokenService, err = c.initAccessTokenService()
		if err != nil {
			c.initErrors["accessTokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessTokenService"]; exists {
		return nil, storedErr
	}
	return c.accessTokenService, nil
}

func (c *Container) initEnvelopeSealer() (cryptoService.EnvelopeSealer, error) {
	rootKey, err := c.RootKey()
	if err != nil {
		return nil, fmt.Errorf("failed to load root key: %w", err)
	}

	alg, err := cryptoDomain.ParseAlgorithm(c.config.EncryptionAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid ENCRYPTION_ALGORITHM %q: %w", c.config.EncryptionAlgorithm, err)
	}

	return cryptoService.NewEnvelopeSealer(c.AEADManager(), rootKey, alg)
}

// initAccessTokenService shares KMS_KEY_URI with the root key: when set,
// ACCESS_TOKEN_SECRET is KMS ciphertext as well.
func (c *Container) initAccessTokenService() (tokenService.AccessTokenService, error) {
	secret, err := cryptoService.LoadSecret(
		context.Background(),
		c.KMSService(),
		c.config.AccessTokenSecret,
		c.config.KMSKeyURI,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load access token secret: %w", err)
	}
	defer cryptoDomain.Zero(secret)

	return tokenService.NewAccessTokenService(secret)
}

package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
	cryptoService "github.com/xambitlan/disclosure/internal/crypto/service"
)

// secretSize is used for both the root key and the access token secret.
const secretSize = 32

// RunCreateRootKey prints a fresh ROOT_KEY. With kmsKeyURI set the key is
// wrapped by KMS and the KMS settings are printed with it.
//
// Never use the localsecrets provider in production.
func RunCreateRootKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsProvider, kmsKeyURI string,
) error {
	return runCreateSecret(ctx, kmsService, logger, writer, "ROOT_KEY", kmsProvider, kmsKeyURI)
}

// RunCreateAccessTokenSecret prints a fresh ACCESS_TOKEN_SECRET. It must be
// wrapped by the same KMS key as ROOT_KEY when one is configured.
func RunCreateAccessTokenSecret(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsProvider, kmsKeyURI string,
) error {
	return runCreateSecret(ctx, kmsService, logger, writer, "ACCESS_TOKEN_SECRET", kmsProvider, kmsKeyURI)
}

func runCreateSecret(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	envName, kmsProvider, kmsKeyURI string,
) error {
	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf("--kms-provider and --kms-key-uri are required together")
	}

	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	defer cryptoDomain.Zero(secret)

	if kmsKeyURI == "" {
		logger.Warn("printing an unwrapped secret, configure KMS for production",
			slog.String("variable", envName),
		)
		_, _ = fmt.Fprintf(writer, "%s=\"%s\"\n", envName, base64.StdEncoding.EncodeToString(secret))
		return nil
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret with KMS: %w", err)
	}

	logger.Info("secret generated",
		slog.String("variable", envName),
		slog.String("kms_provider", kmsProvider),
	)

	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "%s=\"%s\"\n", envName, base64.StdEncoding.EncodeToString(ciphertext))
	return nil
}

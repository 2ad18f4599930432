package domain

import (
	"github.com/xambitlan/disclosure/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed is the only error an envelope open reports.
	//
	// Wrong key, tampered bytes, truncation and unknown header values all map here
	// so a caller learns nothing about which check failed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrMalformedEnvelope indicates the envelope bytes do not follow the binary layout.
	// It never escapes an Open call; it is folded into ErrDecryptionFailed.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrRootKeyNotSet indicates ROOT_KEY is not configured.
	ErrRootKeyNotSet = errors.New("ROOT_KEY is not set")

	// ErrInvalidRootKeyBase64 indicates ROOT_KEY is not valid base64.
	ErrInvalidRootKeyBase64 = errors.New("ROOT_KEY is not valid base64")
)

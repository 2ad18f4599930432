// Package service mints and verifies access tokens.
//
// Wire format: base64url(payload) "." base64url(mac), unpadded. The payload is
// Core Deterministic CBOR, so any field may hold any byte, and base64url never
// emits '.'. The MAC is HMAC-SHA256 over the raw payload bytes under a key
// derived from the configured secret with HKDF-SHA256.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/hkdf"

	tokenDomain "github.com/xambitlan/disclosure/internal/token/domain"
)

const (
	minSecretSize  = 32
	signingKeyInfo = "reveal-access-token-v1"
	separator      = "."
)

var encoding = base64.RawURLEncoding.Strict()

// wirePayload is the CBOR shape of a payload. Keys are short and stable.
type wirePayload struct {
	Version    int    `cbor:"v"`
	RequestID  string `cbor:"rid"`
	ClientID   string `cbor:"cid"`
	ProviderID string `cbor:"pid"`
	ExpiresAt  int64  `cbor:"exp"` // unix milliseconds
}

// AccessTokenService issues and verifies access tokens. Safe for concurrent use.
type AccessTokenService interface {
	Issue(requestID, clientID, providerID string, expiresAt time.Time) (string, error)
	Verify(token string) *tokenDomain.VerifyResult
}

// Option configures an AccessTokenService.
type Option func(*accessTokenService)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *accessTokenService) {
		s.now = now
	}
}

type accessTokenService struct {
	signingKey []byte
	encMode    cbor.EncMode
	decMode    cbor.DecMode
	now        func() time.Time
}

// NewAccessTokenService derives the signing key from secret and builds the codec.
func NewAccessTokenService(secret []byte, opts ...Option) (AccessTokenService, error) {
	if len(secret) < minSecretSize {
		return nil, tokenDomain.ErrSecretTooShort
	}

	signingKey := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(signingKeyInfo)), signingKey); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create cbor encoder: %w", err)
	}

	decMode, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		IndefLength:       cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create cbor decoder: %w", err)
	}

	s := &accessTokenService{
		signingKey: signingKey,
		encMode:    encMode,
		decMode:    decMode,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue mints a token for one reveal request.
func (s *accessTokenService) Issue(requestID, clientID, providerID string, expiresAt time.Time) (string, error) {
	payload, err := s.encMode.Marshal(wirePayload{
		Version:    tokenDomain.PayloadVersion,
		RequestID:  requestID,
		ClientID:   clientID,
		ProviderID: providerID,
		ExpiresAt:  expiresAt.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode token payload: %w", err)
	}

	return encoding.EncodeToString(payload) + separator + encoding.EncodeToString(s.mac(payload)), nil
}

// Verify checks format, then signature, then expiry, in that order.
func (s *accessTokenService) Verify(token string) *tokenDomain.VerifyResult {
	encodedPayload, encodedMAC, found := strings.Cut(token, separator)
	if !found || encodedPayload == "" || encodedMAC == "" {
		return reject(tokenDomain.ReasonInvalidFormat)
	}

	payload, err := encoding.DecodeString(encodedPayload)
	if err != nil {
		return reject(tokenDomain.ReasonInvalidFormat)
	}
	mac, err := encoding.DecodeString(encodedMAC)
	if err != nil {
		return reject(tokenDomain.ReasonInvalidFormat)
	}

	if !hmac.Equal(mac, s.mac(payload)) {
		return reject(tokenDomain.ReasonInvalidSignature)
	}

	var wire wirePayload
	if err := s.decMode.Unmarshal(payload, &wire); err != nil || wire.Version != tokenDomain.PayloadVersion {
		return reject(tokenDomain.ReasonInvalidFormat)
	}

	decoded := &tokenDomain.Payload{
		RequestID:  wire.RequestID,
		ClientID:   wire.ClientID,
		ProviderID: wire.ProviderID,
		ExpiresAt:  time.UnixMilli(wire.ExpiresAt).UTC(),
	}

	if s.now().After(decoded.ExpiresAt) {
		return &tokenDomain.VerifyResult{Payload: decoded, Reason: tokenDomain.ReasonExpired}
	}
	return &tokenDomain.VerifyResult{Valid: true, Payload: decoded}
}

func (s *accessTokenService) mac(payload []byte) []byte {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write(payload)
	return h.Sum(nil)
}

func reject(reason tokenDomain.Reason) *tokenDomain.VerifyResult {
	return &tokenDomain.VerifyResult{Reason: reason}
}

package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"

	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
)

// hmacAssertionVerifier accepts assertions signed by the identity gateway with
// a shared secret: hex(HMAC-SHA256(secret, len|nullifier || len|signal)).
type hmacAssertionVerifier struct {
	secret []byte
}

// NewHMACAssertionVerifier creates an AssertionVerifier for a gateway sharing secret.
func NewHMACAssertionVerifier(secret string) (AssertionVerifier, error) {
	if secret == "" {
		return nil, errors.New("IDENTITY_ASSERTION_SECRET is not set")
	}
	return &hmacAssertionVerifier{secret: []byte(secret)}, nil
}

// SignAssertion produces the assertion the gateway sends for nullifierHash and signal.
func SignAssertion(secret, nullifierHash, signal string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(assertionMessage(nullifierHash, signal))
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *hmacAssertionVerifier) Verify(_ context.Context, nullifierHash, signal, assertion string) error {
	got, err := hex.DecodeString(assertion)
	if err != nil {
		return identityDomain.ErrInvalidAssertion
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(assertionMessage(nullifierHash, signal))
	if !hmac.Equal(got, mac.Sum(nil)) {
		return identityDomain.ErrInvalidAssertion
	}
	return nil
}

func assertionMessage(nullifierHash, signal string) []byte {
	buf := make([]byte, 0, 8+len(nullifierHash)+len(signal))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(nullifierHash)))
	buf = append(buf, nullifierHash...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(signal)))
	buf = append(buf, signal...)
	return buf
}

package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xambitlan/disclosure/internal/errors"
	tokenDomain "github.com/xambitlan/disclosure/internal/token/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fakeClock is a settable clock shared by the service under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestService(t *testing.T, clock *fakeClock) AccessTokenService {
	t.Helper()
	svc, err := NewAccessTokenService(testSecret, WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

func TestNewAccessTokenService(t *testing.T) {
	_, err := NewAccessTokenService([]byte("short"))
	assert.ErrorIs(t, err, tokenDomain.ErrSecretTooShort)

	_, err = NewAccessTokenService(testSecret)
	assert.NoError(t, err)
}

func TestAccessTokenService_TenSecondScenario(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	expiresAt := clock.Now().Add(10 * time.Second)
	token, err := svc.Issue("req-1", "0xclient", "0xprovider", expiresAt)
	require.NoError(t, err)

	result := svc.Verify(token)
	require.True(t, result.Valid)
	assert.Empty(t, result.Reason)
	assert.Equal(t, &tokenDomain.Payload{
		RequestID:  "req-1",
		ClientID:   "0xclient",
		ProviderID: "0xprovider",
		ExpiresAt:  expiresAt,
	}, result.Payload)
	assert.NoError(t, result.Err())

	clock.Advance(11 * time.Second)

	result = svc.Verify(token)
	assert.False(t, result.Valid)
	assert.Equal(t, tokenDomain.ReasonExpired, result.Reason)
	require.NotNil(t, result.Payload)
	assert.Equal(t, "req-1", result.Payload.RequestID)
	assert.ErrorIs(t, result.Err(), tokenDomain.ErrTokenExpired)
	assert.ErrorIs(t, result.Err(), apperrors.ErrGone)
}

func TestAccessTokenService_ExpiryBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	token, err := svc.Issue("req-1", "c", "p", clock.Now())
	require.NoError(t, err)

	assert.True(t, svc.Verify(token).Valid, "a token is still valid at exactly its expiry")

	clock.Advance(time.Millisecond)
	assert.Equal(t, tokenDomain.ReasonExpired, svc.Verify(token).Reason)
}

func TestAccessTokenService_Verify_Format(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestService(t, clock)

	token, err := svc.Issue("req-1", "c", "p", clock.Now().Add(time.Minute))
	require.NoError(t, err)
	payloadPart, macPart, _ := strings.Cut(token, ".")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", payloadPart + macPart},
		{"missing payload", "." + macPart},
		{"missing mac", payloadPart + "."},
		{"padded base64", payloadPart + "=." + macPart},
		{"standard alphabet", strings.NewReplacer("-", "+", "_", "/").Replace(token) + "+/"},
		{"extra segment", token + ".AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Verify(tt.token)
			assert.False(t, result.Valid)
			assert.Nil(t, result.Payload)
			assert.Equal(t, tokenDomain.ReasonInvalidFormat, result.Reason)
			assert.ErrorIs(t, result.Err(), tokenDomain.ErrInvalidTokenFormat)
		})
	}
}

func TestAccessTokenService_Verify_SignatureBeforeExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestService(t, clock)

	token, err := svc.Issue("req-1", "c", "p", clock.Now().Add(-time.Hour))
	require.NoError(t, err)
	payloadPart, macPart, _ := strings.Cut(token, ".")

	mac, err := encoding.DecodeString(macPart)
	require.NoError(t, err)
	mac[0] ^= 0x01

	result := svc.Verify(payloadPart + "." + encoding.EncodeToString(mac))
	assert.Equal(t, tokenDomain.ReasonInvalidSignature, result.Reason)
	assert.Nil(t, result.Payload)
	assert.ErrorIs(t, result.Err(), apperrors.ErrForbidden)
}

func TestAccessTokenService_Verify_OtherSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestService(t, clock)

	other, err := NewAccessTokenService([]byte(strings.Repeat("z", 32)), WithClock(clock.Now))
	require.NoError(t, err)

	token, err := other.Issue("req-1", "c", "p", clock.Now().Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, tokenDomain.ReasonInvalidSignature, svc.Verify(token).Reason)
}

func TestAccessTokenService_Verify_SignedGarbage(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestService(t, clock).(*accessTokenService)

	unknownField, err := cbor.Marshal(map[string]any{"v": 1, "rid": "r", "extra": true})
	require.NoError(t, err)
	futureVersion, err := cbor.Marshal(map[string]any{"v": 2, "rid": "r", "exp": clock.Now().Add(time.Hour).UnixMilli()})
	require.NoError(t, err)

	for _, payload := range [][]byte{[]byte("not cbor"), unknownField, futureVersion} {
		token := encoding.EncodeToString(payload) + "." + encoding.EncodeToString(svc.mac(payload))
		assert.Equal(t, tokenDomain.ReasonInvalidFormat, svc.Verify(token).Reason)
	}
}

func TestAccessTokenService_SeparatorInFields(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestService(t, clock)

	token, err := svc.Issue("a.b", "c.d\x00", "..", clock.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(token, "."))

	result := svc.Verify(token)
	require.True(t, result.Valid)
	assert.Equal(t, "a.b", result.Payload.RequestID)
	assert.Equal(t, "c.d\x00", result.Payload.ClientID)
	assert.Equal(t, "..", result.Payload.ProviderID)
}

func TestAccessTokenService_Deterministic(t *testing.T) {
	svc, err := NewAccessTokenService(testSecret)
	require.NoError(t, err)

	expiresAt := time.Now().Add(time.Minute)
	first, err := svc.Issue("req-1", "c", "p", expiresAt)
	require.NoError(t, err)
	second, err := svc.Issue("req-1", "c", "p", expiresAt)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAccessTokenService_Properties(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("fresh tokens verify", prop.ForAll(
		func(requestID, clientID, providerID string, seconds int) bool {
			token, err := svc.Issue(requestID, clientID, providerID, clock.Now().Add(time.Duration(seconds)*time.Second))
			if err != nil {
				return false
			}
			result := svc.Verify(token)
			return result.Valid &&
				result.Payload.RequestID == requestID &&
				result.Payload.ClientID == clientID &&
				result.Payload.ProviderID == providerID
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.Identifier(),
		gen.IntRange(1, 86400),
	))

	properties.Property("altered payload is an invalid signature", prop.ForAll(
		func(requestID string, position int, flip uint8) bool {
			token, err := svc.Issue(requestID, "0xclient", "0xprovider", clock.Now().Add(time.Minute))
			if err != nil {
				return false
			}
			payloadPart, macPart, _ := strings.Cut(token, ".")
			payload, err := encoding.DecodeString(payloadPart)
			if err != nil {
				return false
			}
			payload[position%len(payload)] ^= flip | 0x01

			result := svc.Verify(encoding.EncodeToString(payload) + "." + macPart)
			return !result.Valid && result.Reason == tokenDomain.ReasonInvalidSignature && result.Payload == nil
		},
		gen.Identifier(),
		gen.IntRange(0, 1<<16),
		gen.UInt8(),
	))

	properties.Property("past expiry is expired with payload", prop.ForAll(
		func(seconds int) bool {
			token, err := svc.Issue("req-1", "c", "p", clock.Now().Add(-time.Duration(seconds)*time.Second))
			if err != nil {
				return false
			}
			result := svc.Verify(token)
			return !result.Valid && result.Reason == tokenDomain.ReasonExpired && result.Payload != nil
		},
		gen.IntRange(1, 86400*365),
	))

	properties.TestingRun(t)
}

package service

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
	cryptoService "github.com/xambitlan/disclosure/internal/crypto/service"
)

func newTestService(t *testing.T) EncryptionService {
	t.Helper()

	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	rootKey, err := cryptoDomain.NewRootKey(key)
	require.NoError(t, err)

	sealer, err := cryptoService.NewEnvelopeSealer(cryptoService.NewAEADManager(), rootKey, cryptoDomain.AESGCM)
	require.NoError(t, err)

	return NewEncryptionService(sealer)
}

func TestEncryptionService_WhatsAppEmailScenario(t *testing.T) {
	svc := newTestService(t)
	record := &contactDomain.ContactRecord{Version: 1, WhatsApp: "+52 55 1234 5678", Email: "a@b.mx"}

	sealed, err := svc.Encrypt(record)
	require.NoError(t, err)

	got, err := svc.Decrypt(sealed.Envelope)
	require.NoError(t, err)
	assert.Equal(t, record, got)

	assert.True(t, svc.VerifyHash(sealed.Envelope, sealed.ContactHash))

	tampered := []byte(sealed.ContactHash)
	tampered[0] ^= 0x01
	assert.False(t, svc.VerifyHash(sealed.Envelope, string(tampered)))
}

func TestEncryptionService_Encrypt(t *testing.T) {
	svc := newTestService(t)

	t.Run("rejects invalid record", func(t *testing.T) {
		_, err := svc.Encrypt(&contactDomain.ContactRecord{Version: 1})
		assert.ErrorIs(t, err, contactDomain.ErrEmptyContact)
	})

	t.Run("hash matches record hash", func(t *testing.T) {
		record := &contactDomain.ContactRecord{Version: 1, Website: "https://example.com"}
		sealed, err := svc.Encrypt(record)
		require.NoError(t, err)

		want, err := record.Hash()
		require.NoError(t, err)
		assert.Equal(t, want, sealed.ContactHash)
	})

	t.Run("same record yields different envelopes and equal hashes", func(t *testing.T) {
		record := &contactDomain.ContactRecord{Version: 1, Email: "a@b.mx"}
		first, err := svc.Encrypt(record)
		require.NoError(t, err)
		second, err := svc.Encrypt(record)
		require.NoError(t, err)

		assert.NotEqual(t, first.Envelope, second.Envelope)
		assert.Equal(t, first.ContactHash, second.ContactHash)
	})
}

func TestEncryptionService_FailsClosed(t *testing.T) {
	svc := newTestService(t)
	sealed, err := svc.Encrypt(&contactDomain.ContactRecord{Version: 1, Email: "a@b.mx"})
	require.NoError(t, err)

	t.Run("wrong root key", func(t *testing.T) {
		_, err := newTestService(t).Decrypt(sealed.Envelope)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := svc.Decrypt(sealed.Envelope[:len(sealed.Envelope)-1])
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.False(t, svc.VerifyHash(sealed.Envelope[:10], sealed.ContactHash))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Decrypt(nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestEncryptionService_Properties(t *testing.T) {
	svc := newTestService(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	digits := gen.SliceOfN(12, gen.NumChar()).Map(func(r []rune) string { return "+" + string(r) })

	properties.Property("decrypt inverts encrypt", prop.ForAll(
		func(whatsapp string, user string) bool {
			record := &contactDomain.ContactRecord{
				Version:  1,
				WhatsApp: whatsapp,
				Email:    user + "@example.com",
			}
			sealed, err := svc.Encrypt(record)
			if err != nil {
				return false
			}
			got, err := svc.Decrypt(sealed.Envelope)
			return err == nil && *got == *record && svc.VerifyHash(sealed.Envelope, sealed.ContactHash)
		},
		digits,
		gen.Identifier(),
	))

	properties.Property("any flipped bit fails closed", prop.ForAll(
		func(pos int, bit uint8) bool {
			sealed, err := svc.Encrypt(&contactDomain.ContactRecord{Version: 1, Email: "a@b.mx"})
			if err != nil {
				return false
			}
			envelope := sealed.Envelope
			i := pos % len(envelope)
			envelope[i] ^= 1 << (bit % 8)

			_, err = svc.Decrypt(envelope)
			return err != nil && !svc.VerifyHash(envelope, sealed.ContactHash)
		},
		gen.IntRange(0, 1<<16),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}

func TestEncryptionService_LongRecord(t *testing.T) {
	svc := newTestService(t)
	record := &contactDomain.ContactRecord{
		Version: 1,
		Website: "https://example.com/" + strings.Repeat("a", 1500),
	}

	sealed, err := svc.Encrypt(record)
	require.NoError(t, err)
	got, err := svc.Decrypt(sealed.Envelope)
	require.NoError(t, err)
	assert.Equal(t, record.Website, got.Website)
}

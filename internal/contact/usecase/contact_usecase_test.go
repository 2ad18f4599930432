package usecase_test

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	auditRepository "github.com/xambitlan/disclosure/internal/audit/repository"
	auditUsecase "github.com/xambitlan/disclosure/internal/audit/usecase"
	auditMocks "github.com/xambitlan/disclosure/internal/audit/usecase/mocks"
	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	contactRepository "github.com/xambitlan/disclosure/internal/contact/repository"
	contactService "github.com/xambitlan/disclosure/internal/contact/service"
	"github.com/xambitlan/disclosure/internal/contact/usecase"
	usecaseMocks "github.com/xambitlan/disclosure/internal/contact/usecase/mocks"
	cryptoDomain "github.com/xambitlan/disclosure/internal/crypto/domain"
	cryptoService "github.com/xambitlan/disclosure/internal/crypto/service"
	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
)

const providerID = "0xprovider"

func newEncryptionService(t *testing.T) contactService.EncryptionService {
	t.Helper()

	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	rootKey, err := cryptoDomain.NewRootKey(key)
	require.NoError(t, err)

	sealer, err := cryptoService.NewEnvelopeSealer(cryptoService.NewAEADManager(), rootKey, cryptoDomain.ChaCha20)
	require.NoError(t, err)

	return contactService.NewEncryptionService(sealer)
}

func TestContactUseCase_SetContact(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := &usecaseMocks.MockContactRepository{}
		auditTrail := &auditMocks.MockAuditUseCase{}
		encryption := newEncryptionService(t)
		uc := usecase.NewContactUseCase(database.NewLocalTxManager(), repo, auditTrail, encryption)

		var stored *contactDomain.ContactVault
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.ContactVault")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*contactDomain.ContactVault) }).
			Return(nil).Once()

		var appended *auditDomain.AppendInput
		auditTrail.On("Append", mock.Anything, mock.AnythingOfType("*domain.AppendInput")).
			Run(func(args mock.Arguments) { appended = args.Get(1).(*auditDomain.AppendInput) }).
			Return(&auditDomain.AuditEntry{}, nil).Once()

		record := &contactDomain.ContactRecord{WhatsApp: "  +52 55 1234 5678 ", Email: "a@b.mx"}
		vault, err := uc.SetContact(context.Background(), providerID, record)
		require.NoError(t, err)

		assert.Same(t, stored, vault)
		assert.Equal(t, providerID, vault.ProviderID)
		assert.True(t, encryption.VerifyHash(vault.Envelope, vault.ContactHash))
		assert.NotContains(t, string(vault.Envelope), "1234 5678")

		opened, err := encryption.Decrypt(vault.Envelope)
		require.NoError(t, err)
		assert.Equal(t, "+52 55 1234 5678", opened.WhatsApp)
		assert.Equal(t, contactDomain.RecordVersion, opened.Version)

		require.NotNil(t, appended)
		assert.Equal(t, auditDomain.ActionProfileContactUpdate, appended.Action)
		assert.Equal(t, auditDomain.ResourceContact, appended.ResourceType)
		assert.Equal(t, providerID, appended.ResourceID)
		assert.Equal(t, providerID, appended.UserID)
		assert.Equal(t, "whatsapp,email", appended.Details["channels"])
		assert.Equal(t, vault.ContactHash, appended.Details["contact_hash"])
		assert.NotContains(t, appended.Details, "email")

		repo.AssertExpectations(t)
		auditTrail.AssertExpectations(t)
	})

	t.Run("Error_InvalidRecord", func(t *testing.T) {
		repo := &usecaseMocks.MockContactRepository{}
		auditTrail := &auditMocks.MockAuditUseCase{}
		uc := usecase.NewContactUseCase(database.NewLocalTxManager(), repo, auditTrail, newEncryptionService(t))

		_, err := uc.SetContact(context.Background(), providerID, &contactDomain.ContactRecord{Email: "   "})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		auditTrail.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Error_AuditFailure", func(t *testing.T) {
		repo := &usecaseMocks.MockContactRepository{}
		auditTrail := &auditMocks.MockAuditUseCase{}
		uc := usecase.NewContactUseCase(database.NewLocalTxManager(), repo, auditTrail, newEncryptionService(t))

		auditErr := errors.New("audit store down")
		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()
		auditTrail.On("Append", mock.Anything, mock.Anything).Return(nil, auditErr).Once()

		_, err := uc.SetContact(context.Background(), providerID, &contactDomain.ContactRecord{Email: "a@b.mx"})
		assert.ErrorIs(t, err, auditErr)
	})
}

func TestContactUseCase_MemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	auditRepo := auditRepository.NewMemoryAuditRepository()
	uc := usecase.NewContactUseCase(
		database.NewLocalTxManager(),
		contactRepository.NewMemoryContactRepository(),
		auditUsecase.NewAuditUseCase(auditRepo),
		newEncryptionService(t),
	)

	_, err := uc.GetContactHash(ctx, providerID)
	assert.ErrorIs(t, err, contactDomain.ErrContactNotFound)

	first, err := uc.SetContact(ctx, providerID, &contactDomain.ContactRecord{Email: "a@b.mx"})
	require.NoError(t, err)
	second, err := uc.SetContact(ctx, providerID, &contactDomain.ContactRecord{
		Email:     "a@b.mx",
		Instagram: "taller.mx",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ContactHash, second.ContactHash)

	hash, err := uc.GetContactHash(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, second.ContactHash, hash)

	record, err := uc.Open(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, "taller.mx", record.Instagram)
	recordHash, err := record.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, recordHash)

	entries, err := auditRepo.ListByResource(ctx, auditDomain.ResourceContact, providerID, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, auditDomain.GenesisHash, entries[0].PreviousHash)
	assert.Equal(t, entries[0].ChainHash, entries[1].PreviousHash)
}

func TestContactUseCase_Open_TamperedEnvelope(t *testing.T) {
	repo := &usecaseMocks.MockContactRepository{}
	encryption := newEncryptionService(t)
	uc := usecase.NewContactUseCase(database.NewLocalTxManager(), repo, &auditMocks.MockAuditUseCase{}, encryption)

	sealed, err := encryption.Encrypt(&contactDomain.ContactRecord{Version: 1, Email: "a@b.mx"})
	require.NoError(t, err)
	sealed.Envelope[len(sealed.Envelope)-1] ^= 0x80

	repo.On("GetByProviderID", mock.Anything, providerID).
		Return(&contactDomain.ContactVault{ProviderID: providerID, Envelope: sealed.Envelope}, nil).Once()

	_, err = uc.Open(context.Background(), providerID)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
}

func TestContactUseCase_CanReadAudit(t *testing.T) {
	uc := usecase.NewContactUseCase(
		database.NewLocalTxManager(),
		&usecaseMocks.MockContactRepository{},
		&auditMocks.MockAuditUseCase{},
		newEncryptionService(t),
	)
	ctx := context.Background()

	assert.NoError(t, uc.CanReadAudit(ctx, "0xPROVIDER", auditDomain.ResourceContact, providerID))
	assert.ErrorIs(t, uc.CanReadAudit(ctx, "0xother", auditDomain.ResourceContact, providerID), apperrors.ErrForbidden)
	assert.ErrorIs(t, uc.CanReadAudit(ctx, providerID, auditDomain.ResourceIdentity, providerID), apperrors.ErrForbidden)
}

func TestContactUseCase_SetContact_FormatErrorIsInvalidInput(t *testing.T) {
	uc := usecase.NewContactUseCase(
		database.NewLocalTxManager(),
		&usecaseMocks.MockContactRepository{},
		&auditMocks.MockAuditUseCase{},
		newEncryptionService(t),
	)

	_, err := uc.SetContact(context.Background(), providerID, &contactDomain.ContactRecord{Email: "not-an-email"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "email")
}

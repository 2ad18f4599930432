package usecase

import (
	"context"
	"strings"
	"time"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	contactService "github.com/xambitlan/disclosure/internal/contact/service"
	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	customValidation "github.com/xambitlan/disclosure/internal/validation"
)

type contactUseCase struct {
	txManager         database.TxManager
	contactRepo       ContactRepository
	auditTrail        AuditAppender
	encryptionService contactService.EncryptionService
	now               func() time.Time
}

// SetContact normalizes and encrypts the record outside the transaction, then
// upserts the vault entry and appends PROFILE_CONTACT_UPDATE atomically.
func (c *contactUseCase) SetContact(
	ctx context.Context,
	providerID string,
	record *contactDomain.ContactRecord,
) (*contactDomain.ContactVault, error) {
	record.Normalize()
	if err := record.Validate(); err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			return nil, err
		}
		return nil, customValidation.WrapValidationError(err)
	}

	sealed, err := c.encryptionService.Encrypt(record)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	vault := &contactDomain.ContactVault{
		ProviderID:  providerID,
		Envelope:    sealed.Envelope,
		ContactHash: sealed.ContactHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = c.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := c.contactRepo.Upsert(ctx, vault); err != nil {
			return err
		}

		_, err := c.auditTrail.Append(ctx, &auditDomain.AppendInput{
			UserID:       providerID,
			Action:       auditDomain.ActionProfileContactUpdate,
			ResourceType: auditDomain.ResourceContact,
			ResourceID:   providerID,
			Details: map[string]string{
				"channels":     strings.Join(record.Channels(), ","),
				"contact_hash": sealed.ContactHash,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return vault, nil
}

func (c *contactUseCase) GetContactHash(ctx context.Context, providerID string) (string, error) {
	vault, err := c.contactRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		return "", err
	}
	return vault.ContactHash, nil
}

func (c *contactUseCase) Open(ctx context.Context, providerID string) (*contactDomain.ContactRecord, error) {
	vault, err := c.contactRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return c.encryptionService.Decrypt(vault.Envelope)
}

func (c *contactUseCase) CanReadAudit(_ context.Context, actorID, resourceType, resourceID string) error {
	if resourceType != auditDomain.ResourceContact || !strings.EqualFold(actorID, resourceID) {
		return apperrors.Wrap(apperrors.ErrForbidden, "only the provider can read their contact audit chain")
	}
	return nil
}

// NewContactUseCase creates a new ContactUseCase.
func NewContactUseCase(
	txManager database.TxManager,
	contactRepo ContactRepository,
	auditTrail AuditAppender,
	encryptionService contactService.EncryptionService,
) ContactUseCase {
	return &contactUseCase{
		txManager:         txManager,
		contactRepo:       contactRepo,
		auditTrail:        auditTrail,
		encryptionService: encryptionService,
		now:               time.Now,
	}
}

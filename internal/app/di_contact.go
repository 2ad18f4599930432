package app

import (
	"fmt"
	"sync"

	contactHTTP "github.com/xambitlan/disclosure/internal/contact/http"
	contactRepository "github.com/xambitlan/disclosure/internal/contact/repository"
	contactService "github.com/xambitlan/disclosure/internal/contact/service"
	contactUseCase "github.com/xambitlan/disclosure/internal/contact/usecase"
)

type contactComponents struct {
	contactRepo    contactUseCase.ContactRepository
	contactUseCase contactUseCase.ContactUseCase
	contactHandler *contactHTTP.ContactHandler

	contactRepoInit    sync.Once
	contactUseCaseInit sync.Once
	contactHandlerInit sync.Once
}

// ContactRepository returns the contact vault repository.
func (c *Container) ContactRepository() (contactUseCase.ContactRepository, error) {
	var err error
	c.contactRepoInit.Do(func() {
		c.contactRepo, err = c.initContactRepository()
		if err != nil {
			c.initErrors["contactRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["contactRepo"]; exists {
		return nil, storedErr
	}
	return c.contactRepo, nil
}

// ContactUseCase returns the contact vault use case.
func (c *Container) ContactUseCase() (contactUseCase.ContactUseCase, error) {
	var err error
	c.contactUseCaseInit.Do(func() {
		c.contactUseCase, err = c.initContactUseCase()
		if err != nil {
			c.initErrors["contactUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["contactUseCase"]; exists {
		return nil, storedErr
	}
	return c.contactUseCase, nil
}

// ContactHandler returns the contact HTTP handler.
func (c *Container) ContactHandler() (*contactHTTP.ContactHandler, error) {
	var err error
	c.contactHandlerInit.Do(func() {
		var useCase contactUseCase.ContactUseCase
		if useCase, err = c.ContactUseCase(); err != nil {
			return
		}
		c.contactHandler = contactHTTP.NewContactHandler(useCase, c.Logger())
	})
	if err != nil {
		c.initErrors["contactHandler"] = err
		return nil, err
	}
	if storedErr, exists := c.initErrors["contactHandler"]; exists {
		return nil, storedErr
	}
	return c.contactHandler, nil
}

func (c *Container) initContactRepository() (contactUseCase.ContactRepository, error) {
	if c.InMemory() {
		return contactRepository.NewMemoryContactRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for contact repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return contactRepository.NewPostgreSQLContactRepository(db), nil
	case "mysql":
		return contactRepository.NewMySQLContactRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initContactUseCase() (contactUseCase.ContactUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for contact use case: %w", err)
	}

	contactRepo, err := c.ContactRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get contact repository for contact use case: %w", err)
	}

	auditTrail, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail for contact use case: %w", err)
	}

	sealer, err := c.EnvelopeSealer()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope sealer for contact use case: %w", err)
	}

	baseUseCase := contactUseCase.NewContactUseCase(
		txManager,
		contactRepo,
		auditTrail,
		contactService.NewEncryptionService(sealer),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for contact use case: %w", err)
		}
		return contactUseCase.NewContactUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

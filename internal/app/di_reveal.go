package app

import (
	"fmt"
	"sync"

	revealHTTP "github.com/xambitlan/disclosure/internal/reveal/http"
	revealRepository "github.com/xambitlan/disclosure/internal/reveal/repository"
	revealUseCase "github.com/xambitlan/disclosure/internal/reveal/usecase"
)

type revealComponents struct {
	revealRepo       revealUseCase.RevealRequestRepository
	serviceDirectory revealUseCase.ServiceDirectory
	paymentVerifier  revealUseCase.PaymentVerifier
	revealUseCase    revealUseCase.RevealUseCase
	revealHandler    *revealHTTP.RevealHandler

	revealReposInit   sync.Once
	revealUseCaseInit sync.Once
	revealHandlerInit sync.Once
}

// RevealRepositories returns the request repository and the service directory
// and payment ledger the reveal use case reads from.
func (c *Container) RevealRepositories() (
	revealUseCase.RevealRequestRepository,
	revealUseCase.ServiceDirectory,
	revealUseCase.PaymentVerifier,
	error,
) {
	var err error
	c.revealReposInit.Do(func() {
		err = c.initRevealRepositories()
		if err != nil {
			c.initErrors["revealRepos"] = err
		}
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if storedErr, exists := c.initErrors["revealRepos"]; exists {
		return nil, nil, nil, storedErr
	}
	return c.revealRepo, c.serviceDirectory, c.paymentVerifier, nil
}

// RevealUseCase returns the reveal request state machine.
func (c *Container) RevealUseCase() (revealUseCase.RevealUseCase, error) {
	var err error
	c.revealUseCaseInit.Do(func() {
		c.revealUseCase, err = c.initRevealUseCase()
		if err != nil {
			c.initErrors["revealUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["revealUseCase"]; exists {
		return nil, storedErr
	}
	return c.revealUseCase, nil
}

// RevealHandler returns the reveal HTTP handler.
func (c *Container) RevealHandler() (*revealHTTP.RevealHandler, error) {
	var err error
	c.revealHandlerInit.Do(func() {
		var useCase revealUseCase.RevealUseCase
		if useCase, err = c.RevealUseCase(); err != nil {
			return
		}
		c.revealHandler = revealHTTP.NewRevealHandler(useCase, c.Logger())
	})
	if err != nil {
		c.initErrors["revealHandler"] = err
		return nil, err
	}
	if storedErr, exists := c.initErrors["revealHandler"]; exists {
		return nil, storedErr
	}
	return c.revealHandler, nil
}

// initRevealRepositories reads services and payments from tables the marketplace
// owns. The memory driver starts with both empty.
func (c *Container) initRevealRepositories() error {
	if c.InMemory() {
		c.revealRepo = revealRepository.NewMemoryRevealRequestRepository()
		c.serviceDirectory = revealRepository.NewMemoryServiceDirectory()
		c.paymentVerifier = revealRepository.NewMemoryPaymentLedger()
		return nil
	}

	db, err := c.DB()
	if err != nil {
		return fmt.Errorf("failed to get database for reveal repositories: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		c.revealRepo = revealRepository.NewPostgreSQLRevealRequestRepository(db)
		c.serviceDirectory = revealRepository.NewPostgreSQLServiceDirectory(db)
		c.paymentVerifier = revealRepository.NewPostgreSQLPaymentLedger(db)
	case "mysql":
		c.revealRepo = revealRepository.NewMySQLRevealRequestRepository(db)
		c.serviceDirectory = revealRepository.NewMySQLServiceDirectory(db)
		c.paymentVerifier = revealRepository.NewMySQLPaymentLedger(db)
	default:
		return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return nil
}

func (c *Container) initRevealUseCase() (revealUseCase.RevealUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for reveal use case: %w", err)
	}

	requestRepo, directory, payments, err := c.RevealRepositories()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for reveal use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for reveal use case: %w", err)
	}

	auditTrail, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail for reveal use case: %w", err)
	}

	tokens, err := c.AccessTokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get access token service for reveal use case: %w", err)
	}

	contacts, err := c.ContactUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get contact use case for reveal use case: %w", err)
	}

	baseUseCase := revealUseCase.NewRevealUseCase(
		c.config,
		txManager,
		requestRepo,
		outboxRepo,
		auditTrail,
		payments,
		directory,
		tokens,
		contacts,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for reveal use case: %w", err)
		}
		return revealUseCase.NewRevealUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

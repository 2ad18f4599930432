package app

import (
	"fmt"
	"sync"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	auditHTTP "github.com/xambitlan/disclosure/internal/audit/http"
	auditRepository "github.com/xambitlan/disclosure/internal/audit/repository"
	auditUseCase "github.com/xambitlan/disclosure/internal/audit/usecase"
)

type auditComponents struct {
	auditRepo       auditUseCase.AuditRepository
	auditUseCase    auditUseCase.AuditUseCase
	auditAuthorizer auditUseCase.ReadAuthorizer
	auditHandler    *auditHTTP.AuditHandler

	auditRepoInit       sync.Once
	auditUseCaseInit    sync.Once
	auditAuthorizerInit sync.Once
	auditHandlerInit    sync.Once
}

// AuditRepository returns the audit entry repository.
func (c *Container) AuditRepository() (auditUseCase.AuditRepository, error) {
	var err error
	c.auditRepoInit.Do(func() {
		c.auditRepo, err = c.initAuditRepository()
		if err != nil {
			c.initErrors["auditRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// AuditUseCase returns the audit trail.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	var err error
	c.auditUseCaseInit.Do(func() {
		c.auditUseCase, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// AuditReadAuthorizer routes chain reads to the context that owns the resource.
func (c *Container) AuditReadAuthorizer() (auditUseCase.ReadAuthorizer, error) {
	var err error
	c.auditAuthorizerInit.Do(func() {
		c.auditAuthorizer, err = c.initAuditReadAuthorizer()
		if err != nil {
			c.initErrors["auditAuthorizer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditAuthorizer"]; exists {
		return nil, storedErr
	}
	return c.auditAuthorizer, nil
}

// AuditHandler returns the audit HTTP handler.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	var err error
	c.auditHandlerInit.Do(func() {
		var useCase auditUseCase.AuditUseCase
		var authorizer auditUseCase.ReadAuthorizer
		if useCase, err = c.AuditUseCase(); err != nil {
			return
		}
		if authorizer, err = c.AuditReadAuthorizer(); err != nil {
			return
		}
		c.auditHandler = auditHTTP.NewAuditHandler(useCase, authorizer, c.Logger())
	})
	if err != nil {
		c.initErrors["auditHandler"] = err
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditHandler"]; exists {
		return nil, storedErr
	}
	return c.auditHandler, nil
}

func (c *Container) initAuditRepository() (auditUseCase.AuditRepository, error) {
	if c.InMemory() {
		return auditRepository.NewMemoryAuditRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLAuditRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLAuditRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	auditRepo, err := c.AuditRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit repository for audit use case: %w", err)
	}

	baseUseCase := auditUseCase.NewAuditUseCase(auditRepo)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit use case: %w", err)
		}
		return auditUseCase.NewAuditUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditReadAuthorizer leaves identity chains out: they are only read through the CLI.
func (c *Container) initAuditReadAuthorizer() (auditUseCase.ReadAuthorizer, error) {
	revealUseCase, err := c.RevealUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get reveal use case for audit authorizer: %w", err)
	}
	contactUseCase, err := c.ContactUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get contact use case for audit authorizer: %w", err)
	}

	return auditUseCase.NewResourceAuthorizer(map[string]auditUseCase.ReadAuthorizer{
		auditDomain.ResourceRevealRequest: revealUseCase,
		auditDomain.ResourceContact:       contactUseCase,
	}), nil
}

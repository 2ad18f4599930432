package app

import (
	"fmt"
	"sync"

	identityHTTP "github.com/xambitlan/disclosure/internal/identity/http"
	identityRepository "github.com/xambitlan/disclosure/internal/identity/repository"
	identityService "github.com/xambitlan/disclosure/internal/identity/service"
	identityUseCase "github.com/xambitlan/disclosure/internal/identity/usecase"
)

type identityComponents struct {
	challengeRepo       identityUseCase.ChallengeRepository
	sessionRepo         identityUseCase.SessionRepository
	sessionTokenService identityService.TokenService
	identityUseCase     identityUseCase.IdentityUseCase
	identityHandler     *identityHTTP.IdentityHandler

	identityReposInit       sync.Once
	sessionTokenServiceInit sync.Once
	identityUseCaseInit     sync.Once
	identityHandlerInit     sync.Once
}

// IdentityRepositories returns the challenge and session repositories.
func (c *Container) IdentityRepositories() (
	identityUseCase.ChallengeRepository,
	identityUseCase.SessionRepository,
	error,
) {
	var err error
	c.identityReposInit.Do(func() {
		err = c.initIdentityRepositories()
		if err != nil {
			c.initErrors["identityRepos"] = err
		}
	})
	if err != nil {
		return nil, nil, err
	}
	if storedErr, exists := c.initErrors["identityRepos"]; exists {
		return nil, nil, storedErr
	}
	return c.challengeRepo, c.sessionRepo, nil
}

// SessionTokenService returns the session bearer token service.
func (c *Container) SessionTokenService() identityService.TokenService {
	c.sessionTokenServiceInit.Do(func() {
		c.sessionTokenService = identityService.NewTokenService()
	})
	return c.sessionTokenService
}

// IdentityUseCase returns the identity use case.
func (c *Container) IdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	var err error
	c.identityUseCaseInit.Do(func() {
		c.identityUseCase, err = c.initIdentityUseCase()
		if err != nil {
			c.initErrors["identityUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityUseCase"]; exists {
		return nil, storedErr
	}
	return c.identityUseCase, nil
}

// IdentityHandler returns the identity HTTP handler.
func (c *Container) IdentityHandler() (*identityHTTP.IdentityHandler, error) {
	var err error
	c.identityHandlerInit.Do(func() {
		var useCase identityUseCase.IdentityUseCase
		if useCase, err = c.IdentityUseCase(); err != nil {
			return
		}
		c.identityHandler = identityHTTP.NewIdentityHandler(useCase, c.Logger())
	})
	if err != nil {
		c.initErrors["identityHandler"] = err
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityHandler"]; exists {
		return nil, storedErr
	}
	return c.identityHandler, nil
}

func (c *Container) initIdentityRepositories() error {
	if c.InMemory() {
		c.challengeRepo = identityRepository.NewMemoryChallengeRepository()
		c.sessionRepo = identityRepository.NewMemorySessionRepository()
		return nil
	}

	db, err := c.DB()
	if err != nil {
		return fmt.Errorf("failed to get database for identity repositories: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		c.challengeRepo = identityRepository.NewPostgreSQLChallengeRepository(db)
		c.sessionRepo = identityRepository.NewPostgreSQLSessionRepository(db)
	case "mysql":
		c.challengeRepo = identityRepository.NewMySQLChallengeRepository(db)
		c.sessionRepo = identityRepository.NewMySQLSessionRepository(db)
	default:
		return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return nil
}

func (c *Container) initIdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for identity use case: %w", err)
	}

	challengeRepo, sessionRepo, err := c.IdentityRepositories()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for identity use case: %w", err)
	}

	auditTrail, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail for identity use case: %w", err)
	}

	verifier, err := identityService.NewHMACAssertionVerifier(c.config.IdentityAssertionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create assertion verifier: %w", err)
	}

	baseUseCase := identityUseCase.NewIdentityUseCase(
		c.config,
		txManager,
		challengeRepo,
		sessionRepo,
		auditTrail,
		identityService.NewNonceService(),
		c.SessionTokenService(),
		verifier,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for identity use case: %w", err)
		}
		return identityUseCase.NewIdentityUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

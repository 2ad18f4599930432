// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/xambitlan/disclosure/internal/config"
	"github.com/xambitlan/disclosure/internal/database"
	"github.com/xambitlan/disclosure/internal/http"
	"github.com/xambitlan/disclosure/internal/metrics"
	"github.com/xambitlan/disclosure/internal/ratelimit"
)

const driverMemory = "memory"

var errNoDatabase = errors.New("the memory driver has no database connection")

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	redisClient     *redis.Client
	memoryLimiters  []*ratelimit.MemoryLimiter

	// Components grouped by bounded context; see di_*.go
	cryptoComponents
	auditComponents
	identityComponents
	contactComponents
	revealComponents
	outboxComponents

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	limitersInit        sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error

	requestLimiter ratelimit.Limiter
	ipLimiter      ratelimit.Limiter
	revealLimiter  ratelimit.Limiter
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// InMemory reports whether the container runs on in-process stores.
func (c *Container) InMemory() bool {
	return c.config.DBDriver == driverMemory
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// The memory driver gets a process-local manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the use case metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Limiters returns the per-identity, per-IP and reveal creation limiters.
// All three are nil when rate limiting is disabled.
func (c *Container) Limiters() (request, ip, reveal ratelimit.Limiter, err error) {
	c.limitersInit.Do(func() {
		if initErr := c.initLimiters(); initErr != nil {
			c.initErrors["limiters"] = initErr
		}
	})
	if storedErr, exists := c.initErrors["limiters"]; exists {
		return nil, nil, nil, storedErr
	}
	return c.requestLimiter, c.ipLimiter, c.revealLimiter, nil
}

// HTTPServer returns the HTTP server instance with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		var provider *metrics.Provider
		provider, err = c.MetricsProvider()
		if err != nil || provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err != nil {
		c.initErrors["metricsServer"] = err
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.amqpConn != nil {
		if err := c.amqpConn.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("amqp close: %w", err))
		}
	}

	for _, limiter := range c.memoryLimiters {
		limiter.Close()
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.rootKey != nil {
		c.rootKey.Close()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	if c.InMemory() {
		return nil, errNoDatabase
	}

	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	if c.InMemory() {
		return database.NewLocalTxManager(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initBusinessMetrics creates the recorder; a no-op when metrics are disabled.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initLimiters builds token buckets in Redis when REDIS_URL is set so every
// replica shares them, and in process otherwise.
func (c *Container) initLimiters() error {
	if !c.config.RateLimitEnabled {
		return nil
	}

	requestPolicy := ratelimit.Policy{
		Rate:  c.config.RateLimitRequestsPerSec,
		Burst: c.config.RateLimitBurst,
	}
	revealPolicy := ratelimit.PerHour(c.config.RateLimitRevealRequestsPerHour)

	if c.config.RedisURL != "" {
		client, err := ratelimit.NewRedisClient(c.config.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		c.redisClient = client
		c.requestLimiter = ratelimit.NewRedisLimiter(client, "ratelimit:identity:", requestPolicy)
		c.ipLimiter = ratelimit.NewRedisLimiter(client, "ratelimit:ip:", requestPolicy)
		c.revealLimiter = ratelimit.NewRedisLimiter(client, "ratelimit:reveal:", revealPolicy)
		return nil
	}

	request := ratelimit.NewMemoryLimiter(requestPolicy)
	ip := ratelimit.NewMemoryLimiter(requestPolicy)
	reveal := ratelimit.NewMemoryLimiter(revealPolicy)
	c.memoryLimiters = append(c.memoryLimiters, request, ip, reveal)
	c.requestLimiter, c.ipLimiter, c.revealLimiter = request, ip, reveal
	return nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	var db *sql.DB
	if !c.InMemory() {
		var err error
		db, err = c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for http server: %w", err)
		}
	}

	identityHandler, err := c.IdentityHandler()
	if err != nil {
		return nil, err
	}
	contactHandler, err := c.ContactHandler()
	if err != nil {
		return nil, err
	}
	revealHandler, err := c.RevealHandler()
	if err != nil {
		return nil, err
	}
	auditHandler, err := c.AuditHandler()
	if err != nil {
		return nil, err
	}
	identityUseCase, err := c.IdentityUseCase()
	if err != nil {
		return nil, err
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	requestLimiter, ipLimiter, revealLimiter, err := c.Limiters()
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limiters for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(c.config, http.RouterDeps{
		IdentityHandler: identityHandler,
		ContactHandler:  contactHandler,
		RevealHandler:   revealHandler,
		AuditHandler:    auditHandler,
		IdentityUseCase: identityUseCase,
		TokenService:    c.SessionTokenService(),
		MetricsProvider: provider,
		RequestLimiter:  requestLimiter,
		IPLimiter:       ipLimiter,
		RevealLimiter:   revealLimiter,
	})

	return server, nil
}

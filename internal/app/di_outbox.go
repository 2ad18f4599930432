package app

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	outboxRepository "github.com/xambitlan/disclosure/internal/outbox/repository"
	outboxService "github.com/xambitlan/disclosure/internal/outbox/service"
	outboxUseCase "github.com/xambitlan/disclosure/internal/outbox/usecase"
)

type outboxComponents struct {
	outboxRepo     outboxUseCase.OutboxEventRepository
	eventProcessor outboxUseCase.EventProcessor
	outboxUseCase  outboxUseCase.UseCase
	amqpConn       *amqp.Connection

	outboxRepoInit     sync.Once
	eventProcessorInit sync.Once
	outboxUseCaseInit  sync.Once
}

// OutboxRepository returns the outbox event repository instance.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// EventProcessor returns the AMQP publisher when AMQP_URL is set, otherwise
// a processor that only logs the notifications.
func (c *Container) EventProcessor() (outboxUseCase.EventProcessor, error) {
	var err error
	c.eventProcessorInit.Do(func() {
		c.eventProcessor, err = c.initEventProcessor()
		if err != nil {
			c.initErrors["eventProcessor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventProcessor"]; exists {
		return nil, storedErr
	}
	return c.eventProcessor, nil
}

// OutboxUseCase returns the outbox use case instance.
func (c *Container) OutboxUseCase() (outboxUseCase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// initOutboxRepository creates the outbox event repository instance.
func (c *Container) initOutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	if c.InMemory() {
		return outboxRepository.NewMemoryOutboxEventRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initEventProcessor() (outboxUseCase.EventProcessor, error) {
	logger := c.Logger()

	if c.config.AMQPURL == "" {
		return outboxService.NewLoggingProcessor(logger), nil
	}

	conn, channel, err := outboxService.DialAMQP(c.config.AMQPURL)
	if err != nil {
		return nil, err
	}
	c.amqpConn = conn

	publisher, err := outboxService.NewAMQPPublisher(channel, c.config.AMQPExchange, logger)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

// initOutboxUseCase creates the outbox use case with all its dependencies.
func (c *Container) initOutboxUseCase() (outboxUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	processor, err := c.EventProcessor()
	if err != nil {
		return nil, fmt.Errorf("failed to get event processor for outbox use case: %w", err)
	}

	useCaseConfig := outboxUseCase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}

	return outboxUseCase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, processor, c.Logger()), nil
}

package backend

import (
	"context"
	"errors"
	"fmt"

	"ledgerly/internal/amqp"
	"ledgerly/internal/ledger/memory"
	"ledgerly/internal/log"
	"ledgerly/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := f.attachAMQP(ctx, config, result); err != nil {
		_ = result.Cleanup()
		return nil, err
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Store:   memory.New(),
		Ping:    func(context.Context) error { return nil },
		Cleanup: func() error { return nil },
	}
}

// attachAMQP connects the optional broker. An unreachable broker is a
// warning unless the config requires it.
func (f *DefaultFactory) attachAMQP(ctx context.Context, config Config, result *BackendResult) error {
	if config.AMQPURL == "" {
		return nil
	}

	timeout := config.AMQPDialTimeout
	if timeout <= 0 {
		timeout = DefaultAMQPDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := amqp.NewClient(dialCtx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		if config.AMQPRequired {
			return fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		return nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	storeCleanup := result.Cleanup
	result.AMQP = client
	result.Cleanup = func() error {
		return errors.Join(client.Close(), storeCleanup())
	}
	return nil
}

package backend

import (
	"context"
	"time"

	"ledgerly/internal/amqp"
	"ledgerly/internal/ledger"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger store, the optional AMQP client and a
// cleanup function releasing both.
type BackendResult struct {
	Store ledger.Store
	// AMQP is nil when no broker is configured or it could not be reached.
	AMQP    *amqp.Client
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP is optional for every backend
	AMQPURL         string
	AMQPExchange    string
	AMQPQueue       string
	AMQPDialTimeout time.Duration
	// AMQPRequired makes an unreachable broker fatal instead of a warning.
	AMQPRequired bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"errors"
	"fmt"

	"ledgerly/internal/amqp"
	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
	"ledgerly/internal/log"
)

// ErrValidation wraps every input rejected before it reaches the store.
var ErrValidation = errors.New("validation failed")

// Publisher announces ledger changes to downstream consumers.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// Invalidator drops anything cached for a user whose ledger changed.
type Invalidator interface {
	InvalidateUser(userID int64)
}

// LedgerService validates and writes ledger entries, then announces the
// change. Publishing is best effort: the write is already committed.
type LedgerService struct {
	store       ledger.Store
	publisher   Publisher
	invalidator Invalidator
	logger      *log.Logger
}

// NewLedgerService creates the service. publisher and invalidator may be nil.
func NewLedgerService(store ledger.Store, publisher Publisher, invalidator Invalidator, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentLedger),
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, invalid(err)
	}
	id, err := s.store.AddIncome(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("save income: %w", err)
	}
	s.changed(ctx, in.UserID, amqp.KindIncome, id, amqp.OpCreated)
	return id, nil
}

func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, invalid(err)
	}
	id, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	s.changed(ctx, e.UserID, amqp.KindExpense, id, amqp.OpCreated)
	return id, nil
}

// AddInvoice fills a missing total from subtotal and tax before validating.
func (s *LedgerService) AddInvoice(ctx context.Context, inv core.Invoice) (int64, error) {
	inv = inv.WithComputedTotal()
	if inv.Status == "" {
		inv.Status = "unpaid"
	}
	if err := inv.Validate(); err != nil {
		return 0, invalid(err)
	}
	id, err := s.store.AddInvoice(ctx, inv)
	if err != nil {
		return 0, fmt.Errorf("save invoice: %w", err)
	}
	s.changed(ctx, inv.UserID, amqp.KindInvoice, id, amqp.OpCreated)
	return id, nil
}

func (s *LedgerService) AddTransfer(ctx context.Context, t core.Transfer) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, invalid(err)
	}
	id, err := s.store.AddTransfer(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transfer: %w", err)
	}
	s.changed(ctx, t.UserID, amqp.KindTransfer, id, amqp.OpCreated)
	return id, nil
}

func (s *LedgerService) SaveSettings(ctx context.Context, st core.Settings) error {
	if err := st.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.store.SaveSettings(ctx, st); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.changed(ctx, st.UserID, amqp.KindSettings, 0, amqp.OpUpdated)
	return nil
}

func (s *LedgerService) MarkInvoicePaid(ctx context.Context, userID, id int64) error {
	if err := s.store.MarkInvoicePaid(ctx, userID, id); err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	s.changed(ctx, userID, amqp.KindInvoice, id, amqp.OpUpdated)
	return nil
}

// Delete removes an entry of the given kind.
func (s *LedgerService) Delete(ctx context.Context, userID int64, kind string, id int64) error {
	var err error
	switch kind {
	case amqp.KindIncome:
		err = s.store.DeleteIncome(ctx, userID, id)
	case amqp.KindExpense:
		err = s.store.DeleteExpense(ctx, userID, id)
	case amqp.KindInvoice:
		err = s.store.DeleteInvoice(ctx, userID, id)
	case amqp.KindTransfer:
		err = s.store.DeleteTransfer(ctx, userID, id)
	default:
		return fmt.Errorf("delete: unknown entry kind %q", kind)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	s.changed(ctx, userID, kind, id, amqp.OpDeleted)
	return nil
}

func (s *LedgerService) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	return s.store.ListIncomes(ctx, userID)
}

func (s *LedgerService) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

func (s *LedgerService) ListInvoices(ctx context.Context, userID int64) ([]core.Invoice, error) {
	return s.store.ListInvoices(ctx, userID)
}

func (s *LedgerService) ListTransfers(ctx context.Context, userID int64) ([]core.Transfer, error) {
	return s.store.ListTransfers(ctx, userID)
}

func (s *LedgerService) GetSettings(ctx context.Context, userID int64) (core.Settings, error) {
	return s.store.GetSettings(ctx, userID)
}

// changed runs after a committed write. Failures are logged only.
func (s *LedgerService) changed(ctx context.Context, userID int64, kind string, id int64, op string) {
	logger := s.logger.WithUser(userID)
	logger.InfoContext(ctx, "Ledger entry "+op, log.FieldEntryKind, kind, log.FieldEntryID, id)

	if s.invalidator != nil {
		s.invalidator.InvalidateUser(userID)
	}

	if s.publisher == nil {
		logger.DebugContext(ctx, "AMQP client not available, skipping ledger change message")
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, amqp.NewLedgerChangedMessage(userID, kind, id, op)); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ledger change",
			log.FieldEntryKind, kind,
			log.FieldEntryID, id,
			log.FieldError, err)
	}
}

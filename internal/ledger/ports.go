// Package ledger declares the ports through which the application reads and
// writes a user's ledger. Every operation is scoped by user id.
package ledger

import (
	"context"
	"errors"
	"time"

	"ledgerly/internal/core"
)

// ErrNotFound is returned when an entry does not exist for the given user.
var ErrNotFound = errors.New("ledger entry not found")

// Readers used by the summary aggregator.
type (
	IncomeReader interface {
		ListIncomes(ctx context.Context, userID int64) ([]core.Income, error)
	}

	ExpenseReader interface {
		ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
	}

	InvoiceReader interface {
		ListInvoices(ctx context.Context, userID int64) ([]core.Invoice, error)
	}

	TransferReader interface {
		ListTransfers(ctx context.Context, userID int64) ([]core.Transfer, error)
	}

	// SettingsReader returns zero-value settings for users that never saved any.
	SettingsReader interface {
		GetSettings(ctx context.Context, userID int64) (core.Settings, error)
	}

	// Reader bundles every dataset the summary is computed from.
	Reader interface {
		IncomeReader
		ExpenseReader
		InvoiceReader
		TransferReader
		SettingsReader
	}
)

// Writers used by the ledger service.
type (
	Writer interface {
		AddIncome(ctx context.Context, in core.Income) (int64, error)
		AddExpense(ctx context.Context, e core.Expense) (int64, error)
		AddInvoice(ctx context.Context, inv core.Invoice) (int64, error)
		AddTransfer(ctx context.Context, t core.Transfer) (int64, error)
		SaveSettings(ctx context.Context, s core.Settings) error
		MarkInvoicePaid(ctx context.Context, userID, id int64) error
	}

	Deleter interface {
		DeleteIncome(ctx context.Context, userID, id int64) error
		DeleteExpense(ctx context.Context, userID, id int64) error
		DeleteInvoice(ctx context.Context, userID, id int64) error
		DeleteTransfer(ctx context.Context, userID, id int64) error
	}

	// BankDetailsStore persists already-encrypted bank details.
	BankDetailsStore interface {
		GetBankDetails(ctx context.Context, userID int64) (core.BankDetails, error)
		SaveBankDetails(ctx context.Context, b core.BankDetails) error
	}

	// ReminderStore backs the invoice reminder job.
	ReminderStore interface {
		ListOpenInvoicesWithEmail(ctx context.Context) ([]core.Invoice, error)
		MarkInvoiceReminded(ctx context.Context, userID, id int64, at time.Time) error
	}

	// Store is the complete persistence surface of a backend.
	Store interface {
		Reader
		Writer
		Deleter
		BankDetailsStore
		ReminderStore
	}
)

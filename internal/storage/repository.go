package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledgerly/internal/core"
	"ledgerly/internal/ledger"

	_ "modernc.org/sqlite"
)

// Ensure interface conformance
var _ ledger.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) AddIncome(ctx context.Context, in core.Income) (int64, error) {
	id, err := r.queries.CreateIncome(ctx, EntryRow{
		UserID:        in.UserID,
		Date:          core.FormatLedgerDate(in.Date),
		Description:   in.Description,
		Amount:        core.FormatAmount(in.Amount),
		PaymentMethod: in.PaymentMethod,
		Category:      in.Category,
	})
	if err != nil {
		return 0, fmt.Errorf("create income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", id,
		"user_id", in.UserID,
		"amount", in.Amount.String())
	return id, nil
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := r.queries.CreateExpense(ctx, EntryRow{
		UserID:        e.UserID,
		Date:          core.FormatLedgerDate(e.Date),
		Description:   e.Description,
		Amount:        core.FormatAmount(e.Amount),
		PaymentMethod: e.PaymentMethod,
		Category:      e.Category,
	})
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"user_id", e.UserID,
		"amount", e.Amount.String(),
		"category", e.Category)
	return id, nil
}

func (r *SQLiteRepository) AddInvoice(ctx context.Context, inv core.Invoice) (int64, error) {
	id, err := r.queries.CreateInvoice(ctx, InvoiceRow{
		UserID:      inv.UserID,
		Number:      inv.Number,
		ClientName:  inv.ClientName,
		ClientEmail: inv.ClientEmail,
		IssueDate:   core.FormatLedgerDate(inv.IssueDate),
		DueDate:     core.FormatLedgerDate(inv.DueDate),
		Subtotal:    core.FormatAmount(inv.Subtotal),
		TaxAmount:   core.FormatAmount(inv.TaxAmount),
		Total:       core.FormatAmount(inv.Total),
		Status:      inv.Status,
	})
	if err != nil {
		return 0, fmt.Errorf("create invoice: %w", err)
	}

	slog.InfoContext(ctx, "Invoice saved to SQLite", "id", id, "user_id", inv.UserID, "total", inv.Total.String())
	return id, nil
}

func (r *SQLiteRepository) AddTransfer(ctx context.Context, t core.Transfer) (int64, error) {
	id, err := r.queries.CreateTransfer(ctx, TransferRow{
		UserID:      t.UserID,
		Date:        core.FormatLedgerDate(t.Date),
		FromAccount: string(t.From),
		ToAccount:   string(t.To),
		Amount:      core.FormatAmount(t.Amount),
		Note:        t.Note,
	})
	if err != nil {
		return 0, fmt.Errorf("create transfer: %w", err)
	}

	slog.InfoContext(ctx, "Transfer saved to SQLite", "id", id, "user_id", t.UserID, "from", t.From, "to", t.To)
	return id, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	err := r.queries.UpsertSettings(ctx, SettingsRow{
		UserID:       s.UserID,
		BusinessName: s.BusinessName,
		Currency:     s.Currency,
		OpeningCash:  s.OpeningCash.String(),
		TaxRate:      s.TaxRate.String(),
		TaxEnabled:   s.TaxEnabled,
	})
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkInvoicePaid(ctx context.Context, userID, id int64) error {
	n, err := r.queries.MarkInvoicePaid(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	return affected(n)
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	rows, err := r.queries.ListIncomes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	out := make([]core.Income, len(rows))
	for i, row := range rows {
		out[i] = core.Income{
			ID:            row.ID,
			UserID:        row.UserID,
			Date:          core.ParseLedgerDate(row.Date),
			Description:   row.Description,
			Amount:        core.AmountOrZero(row.Amount),
			PaymentMethod: row.PaymentMethod,
			Category:      row.Category,
		}
	}
	return out, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, len(rows))
	for i, row := range rows {
		out[i] = core.Expense{
			ID:            row.ID,
			UserID:        row.UserID,
			Date:          core.ParseLedgerDate(row.Date),
			Description:   row.Description,
			Amount:        core.AmountOrZero(row.Amount),
			PaymentMethod: row.PaymentMethod,
			Category:      row.Category,
		}
	}
	return out, nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context, userID int64) ([]core.Invoice, error) {
	rows, err := r.queries.ListInvoices(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoicesFromRows(rows), nil
}

func (r *SQLiteRepository) ListTransfers(ctx context.Context, userID int64) ([]core.Transfer, error) {
	rows, err := r.queries.ListTransfers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	out := make([]core.Transfer, len(rows))
	for i, row := range rows {
		out[i] = core.Transfer{
			ID:     row.ID,
			UserID: row.UserID,
			Date:   core.ParseLedgerDate(row.Date),
			From:   core.Account(row.FromAccount),
			To:     core.Account(row.ToAccount),
			Amount: core.AmountOrZero(row.Amount),
			Note:   row.Note,
		}
	}
	return out, nil
}

// GetSettings returns zero-value settings for users that never saved any.
func (r *SQLiteRepository) GetSettings(ctx context.Context, userID int64) (core.Settings, error) {
	row, err := r.queries.GetSettings(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{UserID: userID}, nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return core.Settings{
		UserID:       row.UserID,
		BusinessName: row.BusinessName,
		Currency:     row.Currency,
		OpeningCash:  core.AmountOrZero(row.OpeningCash),
		TaxRate:      core.AmountOrZero(row.TaxRate),
		TaxEnabled:   row.TaxEnabled,
	}, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteIncome(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return affected(n)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return affected(n)
}

func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteInvoice(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return affected(n)
}

func (r *SQLiteRepository) DeleteTransfer(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteTransfer(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	return affected(n)
}

// GetBankDetails returns the stored (encrypted) bank details.
func (r *SQLiteRepository) GetBankDetails(ctx context.Context, userID int64) (core.BankDetails, error) {
	row, err := r.queries.GetBankDetails(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BankDetails{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.BankDetails{}, fmt.Errorf("get bank details: %w", err)
	}
	return core.BankDetails{
		UserID:        row.UserID,
		BankName:      row.BankName,
		AccountName:   row.AccountName,
		AccountNumber: row.AccountNumber,
		Branch:        row.Branch,
	}, nil
}

func (r *SQLiteRepository) SaveBankDetails(ctx context.Context, b core.BankDetails) error {
	err := r.queries.UpsertBankDetails(ctx, BankDetailsRow{
		UserID:        b.UserID,
		BankName:      b.BankName,
		AccountName:   b.AccountName,
		AccountNumber: b.AccountNumber,
		Branch:        b.Branch,
	})
	if err != nil {
		return fmt.Errorf("upsert bank details: %w", err)
	}
	return nil
}

// ListOpenInvoicesWithEmail returns unpaid invoices with a client email, across users.
func (r *SQLiteRepository) ListOpenInvoicesWithEmail(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.queries.ListOpenInvoicesWithEmail(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open invoices: %w", err)
	}
	return invoicesFromRows(rows), nil
}

func (r *SQLiteRepository) MarkInvoiceReminded(ctx context.Context, userID, id int64, at time.Time) error {
	n, err := r.queries.MarkInvoiceReminded(ctx, at.UTC().Format(time.RFC3339), userID, id)
	if err != nil {
		return fmt.Errorf("mark invoice reminded: %w", err)
	}
	slog.DebugContext(ctx, "Invoice marked as reminded", "id", id, "user_id", userID)
	return affected(n)
}

func invoicesFromRows(rows []InvoiceRow) []core.Invoice {
	out := make([]core.Invoice, len(rows))
	for i, row := range rows {
		out[i] = core.Invoice{
			ID:          row.ID,
			UserID:      row.UserID,
			Number:      row.Number,
			ClientName:  row.ClientName,
			ClientEmail: row.ClientEmail,
			IssueDate:   core.ParseLedgerDate(row.IssueDate),
			DueDate:     core.ParseLedgerDate(row.DueDate),
			Subtotal:    core.AmountOrZero(row.Subtotal),
			TaxAmount:   core.AmountOrZero(row.TaxAmount),
			Total:       core.AmountOrZero(row.Total),
			Status:      row.Status,
			RemindedAt:  core.ParseLedgerDate(row.RemindedAt),
		}
	}
	return out
}

func affected(n int64) error {
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "ledgerly.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerly.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		repo.Close()
	}

	version, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("run migrations again: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestIncomeRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.AddIncome(ctx, core.Income{
		UserID:        1,
		Date:          core.NewDate(2025, 3, 14),
		Description:   "Website build",
		Amount:        decimal.RequireFromString("1250.5"),
		PaymentMethod: "bank",
		Category:      "Services",
	})
	if err != nil {
		t.Fatalf("add income: %v", err)
	}

	got, err := repo.ListIncomes(ctx, 1)
	if err != nil {
		t.Fatalf("list incomes: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 income, got %d", len(got))
	}
	in := got[0]
	if in.ID != id || in.Description != "Website build" || in.PaymentMethod != "bank" {
		t.Fatalf("unexpected income %+v", in)
	}
	if !in.Amount.Equal(decimal.RequireFromString("1250.50")) {
		t.Errorf("amount = %s", in.Amount)
	}
	if !in.Date.Equal(core.NewDate(2025, 3, 14)) {
		t.Errorf("date = %v", in.Date)
	}

	if other, _ := repo.ListIncomes(ctx, 2); len(other) != 0 {
		t.Errorf("user 2 should see no incomes, got %d", len(other))
	}
}

func TestDirtyRowsDecodeLeniently(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, date, description, amount) VALUES (1, 'yesterday', 'legacy', 'abc')`)
	if err != nil {
		t.Fatalf("insert dirty row: %v", err)
	}

	got, err := repo.ListExpenses(ctx, 1)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(got))
	}
	if !got[0].Amount.IsZero() {
		t.Errorf("non-numeric amount should decode as zero, got %s", got[0].Amount)
	}
	if !got[0].Date.IsZero() {
		t.Errorf("unreadable date should decode as zero time, got %v", got[0].Date)
	}
}

func TestSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	st, err := repo.GetSettings(ctx, 5)
	if err != nil {
		t.Fatalf("get default settings: %v", err)
	}
	if st.UserID != 5 || st.Currency != "" {
		t.Fatalf("unexpected default settings %+v", st)
	}

	want := core.Settings{
		UserID:       5,
		BusinessName: "Kamal Stores",
		Currency:     "LKR",
		OpeningCash:  decimal.RequireFromString("1000"),
		TaxRate:      decimal.RequireFromString("12.5"),
		TaxEnabled:   true,
	}
	if err := repo.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	want.BusinessName = "Kamal Traders"
	if err := repo.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := repo.GetSettings(ctx, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BusinessName != "Kamal Traders" || !got.TaxEnabled || !got.TaxRate.Equal(want.TaxRate) || !got.OpeningCash.Equal(want.OpeningCash) {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.AddInvoice(ctx, core.Invoice{
		UserID:      1,
		Number:      "INV-001",
		ClientName:  "Acme",
		ClientEmail: "billing@acme.test",
		IssueDate:   core.NewDate(2025, 5, 1),
		DueDate:     core.NewDate(2025, 5, 31),
		Subtotal:    decimal.RequireFromString("100"),
		TaxAmount:   decimal.RequireFromString("15"),
		Total:       decimal.RequireFromString("115"),
		Status:      "unpaid",
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if _, err := repo.AddInvoice(ctx, core.Invoice{UserID: 1, ClientName: "NoMail", IssueDate: core.NewDate(2025, 5, 1), Total: decimal.NewFromInt(5), Status: "unpaid"}); err != nil {
		t.Fatalf("add invoice: %v", err)
	}

	open, err := repo.ListOpenInvoicesWithEmail(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].ID != id || !open[0].RemindedAt.IsZero() {
		t.Fatalf("unexpected open invoices %+v", open)
	}

	at := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	if err := repo.MarkInvoiceReminded(ctx, 1, id, at); err != nil {
		t.Fatalf("mark reminded: %v", err)
	}
	open, _ = repo.ListOpenInvoicesWithEmail(ctx)
	if len(open) != 1 || !open[0].RemindedAt.Equal(at) {
		t.Fatalf("reminded_at not stored: %+v", open)
	}

	if err := repo.MarkInvoicePaid(ctx, 2, id); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("foreign user must not settle invoice, got %v", err)
	}
	if err := repo.MarkInvoicePaid(ctx, 1, id); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	open, _ = repo.ListOpenInvoicesWithEmail(ctx)
	if len(open) != 0 {
		t.Fatalf("paid invoice still open: %+v", open)
	}
}

func TestTransfersAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.AddTransfer(ctx, core.Transfer{UserID: 1, Date: core.NewDate(2025, 1, 2), From: core.Cash, To: core.Bank, Amount: decimal.NewFromInt(300)})
	if err != nil {
		t.Fatalf("add transfer: %v", err)
	}
	got, _ := repo.ListTransfers(ctx, 1)
	if len(got) != 1 || got[0].From != core.Cash || got[0].To != core.Bank {
		t.Fatalf("unexpected transfers %+v", got)
	}

	if err := repo.DeleteTransfer(ctx, 2, id); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected not found for foreign delete, got %v", err)
	}
	if err := repo.DeleteTransfer(ctx, 1, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransfer(ctx, 1, id); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestSameAccountTransferRejectedBySchema(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.AddTransfer(context.Background(), core.Transfer{UserID: 1, Date: core.NewDate(2025, 1, 2), From: core.Cash, To: core.Cash, Amount: decimal.NewFromInt(1)})
	if err == nil {
		t.Fatal("expected check constraint failure")
	}
}

func TestBankDetails(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.GetBankDetails(ctx, 1); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	b := core.BankDetails{UserID: 1, BankName: "c1", AccountName: "c2", AccountNumber: "c3", Branch: "c4"}
	if err := repo.SaveBankDetails(ctx, b); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.GetBankDetails(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != b {
		t.Fatalf("got %+v, want %+v", got, b)
	}
}

func TestPing(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

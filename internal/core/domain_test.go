package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseLedgerDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-14", NewDate(2025, 3, 14)},
		{" 2025-03-14 ", NewDate(2025, 3, 14)},
		{"2025-03-14T10:30:00Z", time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)},
		{"2025-03-14 10:30:00", time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"14/03/2025", time.Time{}},
		{"not a date", time.Time{}},
		{"2025-13-01", time.Time{}},
	}
	for _, tc := range cases {
		if got := ParseLedgerDate(tc.in); !got.Equal(tc.want) {
			t.Fatalf("ParseLedgerDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseAccount(t *testing.T) {
	for _, in := range []string{"cash", " Cash ", "BANK"} {
		if _, err := ParseAccount(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	for _, in := range []string{"", "card", "wallet"} {
		if _, err := ParseAccount(in); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
}

func TestIsPaid(t *testing.T) {
	if !IsPaid("paid") || !IsPaid("Paid") || !IsPaid("PAID") {
		t.Fatalf("paid in any case must settle an invoice")
	}
	if IsPaid("unpaid") || IsPaid("") || IsPaid("partially paid") {
		t.Fatalf("only paid settles an invoice")
	}
}

func TestIncomeValidate(t *testing.T) {
	good := Income{
		Date:        NewDate(2025, 1, 1),
		Description: "Consulting",
		Amount:      decimal.NewFromInt(100),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Income{
		{Date: time.Time{}, Description: "a", Amount: decimal.NewFromInt(1)},
		{Date: NewDate(2025, 1, 1), Description: " ", Amount: decimal.NewFromInt(1)},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.Zero},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.NewFromInt(-5)},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:          NewDate(2025, 1, 1),
		Description:   "Hosting",
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "card",
		Category:      "Hosting",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	noCategory := good
	noCategory.Category = ""
	if err := noCategory.Validate(); err != nil {
		t.Fatalf("category is optional, got %v", err)
	}
	bad := good
	bad.Amount = decimal.Zero
	if err := bad.Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransferValidate(t *testing.T) {
	ok := Transfer{Date: NewDate(2025, 1, 1), From: Cash, To: Bank, Amount: decimal.NewFromInt(300)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	same := ok
	same.To = Cash
	if err := same.Validate(); err != ErrSameAccount {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}
	bad := ok
	bad.From = "wallet"
	if err := bad.Validate(); err != ErrInvalidAccount {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
}

func TestInvoiceValidate(t *testing.T) {
	inv := Invoice{
		ClientName: "Acme",
		IssueDate:  NewDate(2025, 1, 1),
		DueDate:    NewDate(2025, 1, 31),
		Subtotal:   decimal.NewFromInt(1000),
		TaxAmount:  decimal.NewFromInt(150),
	}.WithComputedTotal()
	if !inv.Total.Equal(decimal.NewFromInt(1150)) {
		t.Fatalf("total = %s, want 1150", inv.Total)
	}
	if err := inv.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	early := inv
	early.DueDate = NewDate(2024, 12, 1)
	if err := early.Validate(); err == nil {
		t.Fatalf("expected due-date error")
	}
	badMail := inv
	badMail.ClientEmail = "nobody"
	if err := badMail.Validate(); err != ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestSettingsValidateAndCurrency(t *testing.T) {
	s := Settings{TaxRate: decimal.NewFromInt(15)}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if s.CurrencyOrDefault() != DefaultCurrency {
		t.Fatalf("expected default currency, got %q", s.CurrencyOrDefault())
	}
	s.Currency = "  USD "
	if s.CurrencyOrDefault() != "USD" {
		t.Fatalf("expected trimmed USD, got %q", s.CurrencyOrDefault())
	}
	s.TaxRate = decimal.NewFromInt(101)
	if err := s.Validate(); err != ErrInvalidTaxRate {
		t.Fatalf("expected ErrInvalidTaxRate, got %v", err)
	}
}

func TestMaskedAccountNumber(t *testing.T) {
	cases := map[string]string{
		"1234567890": "******7890",
		"1234":       "1234",
		"":           "",
	}
	for in, want := range cases {
		if got := (BankDetails{AccountNumber: in}).MaskedAccountNumber(); got != want {
			t.Fatalf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

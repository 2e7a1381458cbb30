package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used whenever a user has not configured one.
const DefaultCurrency = "LKR"

// DefaultCategory labels expenses recorded without a category.
const DefaultCategory = "Other"

// InvoicePaid is the only invoice status that settles an invoice.
const InvoicePaid = "paid"

const (
	Cash Account = "cash"
	Bank Account = "bank"
)

type (
	// Account is one side of a cash/bank transfer.
	Account string

	Income struct {
		ID            int64
		UserID        int64
		Date          time.Time // zero when the stored date was unreadable
		Description   string
		Amount        decimal.Decimal
		PaymentMethod string
		Category      string
	}

	Expense struct {
		ID            int64
		UserID        int64
		Date          time.Time
		Description   string
		Amount        decimal.Decimal
		PaymentMethod string
		Category      string
	}

	Invoice struct {
		ID          int64
		UserID      int64
		Number      string
		ClientName  string
		ClientEmail string
		IssueDate   time.Time
		DueDate     time.Time
		Subtotal    decimal.Decimal
		TaxAmount   decimal.Decimal
		Total       decimal.Decimal
		Status      string
		RemindedAt  time.Time
	}

	Transfer struct {
		ID     int64
		UserID int64
		Date   time.Time
		From   Account
		To     Account
		Amount decimal.Decimal
		Note   string
	}

	Settings struct {
		UserID       int64
		BusinessName string
		Currency     string
		OpeningCash  decimal.Decimal
		TaxRate      decimal.Decimal // percent
		TaxEnabled   bool
	}

	BankDetails struct {
		UserID        int64
		BankName      string
		AccountName   string
		AccountNumber string
		Branch        string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidAccount   = errors.New("invalid account: must be cash or bank")
	ErrSameAccount      = errors.New("transfer accounts must differ")
	ErrEmptyClient      = errors.New("empty client name")
	ErrInvalidEmail     = errors.New("invalid client email")
	ErrInvalidTaxRate   = errors.New("tax rate must be between 0 and 100")
	ErrInvalidCurrency  = errors.New("invalid currency code")
)

var hundred = decimal.NewFromInt(100)

// NewDate creates a UTC calendar date from year, month, day
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

var ledgerDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseLedgerDate reads a stored date in any of the accepted layouts.
// Unreadable input yields the zero time, which matches no reporting window.
func ParseLedgerDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range ledgerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatLedgerDate renders the calendar date used for storage.
func FormatLedgerDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// ParseAccount validates a transfer account name.
func ParseAccount(s string) (Account, error) {
	switch a := Account(strings.ToLower(strings.TrimSpace(s))); a {
	case Cash, Bank:
		return a, nil
	default:
		return "", ErrInvalidAccount
	}
}

// IsPaid reports whether an invoice status settles the invoice.
func IsPaid(status string) bool {
	return strings.EqualFold(status, InvoicePaid)
}

func validateDescription(s string) error {
	if len(strings.TrimSpace(s)) == 0 {
		return ErrEmptyDescription
	}
	if len(s) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func validateMethod(s string) error {
	if len(s) > 40 {
		return errors.New("payment method too long (max 40 characters)")
	}
	return nil
}

func (i Income) Validate() error {
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := validateDescription(i.Description); err != nil {
		return err
	}
	if !i.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return validateMethod(i.PaymentMethod)
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(e.Category) > 60 {
		return errors.New("category too long (max 60 characters)")
	}
	return validateMethod(e.PaymentMethod)
}

func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.ClientName) == "" {
		return ErrEmptyClient
	}
	if inv.ClientEmail != "" && !strings.Contains(inv.ClientEmail, "@") {
		return ErrInvalidEmail
	}
	if inv.IssueDate.IsZero() {
		return ErrInvalidDate
	}
	if !inv.DueDate.IsZero() && inv.DueDate.Before(inv.IssueDate) {
		return errors.New("due date must not be before issue date")
	}
	if inv.Subtotal.IsNegative() || inv.TaxAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if !inv.Total.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// WithComputedTotal fills Total from Subtotal and TaxAmount when it is unset.
func (inv Invoice) WithComputedTotal() Invoice {
	if inv.Total.IsZero() {
		inv.Total = inv.Subtotal.Add(inv.TaxAmount)
	}
	return inv
}

func (t Transfer) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if _, err := ParseAccount(string(t.From)); err != nil {
		return err
	}
	if _, err := ParseAccount(string(t.To)); err != nil {
		return err
	}
	if t.From == t.To {
		return ErrSameAccount
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (s Settings) Validate() error {
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(hundred) {
		return ErrInvalidTaxRate
	}
	if c := strings.TrimSpace(s.Currency); len(c) > 8 {
		return ErrInvalidCurrency
	}
	if len(s.BusinessName) > 120 {
		return errors.New("business name too long (max 120 characters)")
	}
	return nil
}

// CurrencyOrDefault returns the trimmed configured currency or DefaultCurrency.
func (s Settings) CurrencyOrDefault() string {
	if c := strings.TrimSpace(s.Currency); c != "" {
		return c
	}
	return DefaultCurrency
}

func (b BankDetails) Validate() error {
	if strings.TrimSpace(b.BankName) == "" {
		return errors.New("empty bank name")
	}
	if strings.TrimSpace(b.AccountNumber) == "" {
		return errors.New("empty account number")
	}
	return nil
}

// MaskedAccountNumber hides everything but the last four characters.
func (b BankDetails) MaskedAccountNumber() string {
	n := strings.TrimSpace(b.AccountNumber)
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}

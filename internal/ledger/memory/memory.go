// Package memory is an in-process ledger store used for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
)

// Ensure interface conformance
var _ ledger.Store = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	nextID    int64
	incomes   []core.Income
	expenses  []core.Expense
	invoices  []core.Invoice
	transfers []core.Transfer
	settings  map[int64]core.Settings
	bank      map[int64]core.BankDetails
}

func New() *Store {
	return &Store{
		settings: make(map[int64]core.Settings),
		bank:     make(map[int64]core.BankDetails),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddIncome stores the income and returns its id.
func (s *Store) AddIncome(_ context.Context, in core.Income) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.id()
	s.incomes = append(s.incomes, in)
	return in.ID, nil
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) AddInvoice(_ context.Context, inv core.Invoice) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.id()
	s.invoices = append(s.invoices, inv)
	return inv.ID, nil
}

func (s *Store) AddTransfer(_ context.Context, t core.Transfer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.transfers = append(s.transfers, t)
	return t.ID, nil
}

func (s *Store) SaveSettings(_ context.Context, st core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[st.UserID] = st
	return nil
}

func (s *Store) MarkInvoicePaid(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].UserID == userID && s.invoices[i].ID == id {
			s.invoices[i].Status = core.InvoicePaid
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) ListIncomes(_ context.Context, userID int64) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterByUser(s.incomes, userID, func(v core.Income) int64 { return v.UserID }), nil
}

func (s *Store) ListExpenses(_ context.Context, userID int64) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterByUser(s.expenses, userID, func(v core.Expense) int64 { return v.UserID }), nil
}

func (s *Store) ListInvoices(_ context.Context, userID int64) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterByUser(s.invoices, userID, func(v core.Invoice) int64 { return v.UserID }), nil
}

func (s *Store) ListTransfers(_ context.Context, userID int64) ([]core.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterByUser(s.transfers, userID, func(v core.Transfer) int64 { return v.UserID }), nil
}

func (s *Store) GetSettings(_ context.Context, userID int64) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[userID]
	if !ok {
		return core.Settings{UserID: userID}, nil
	}
	return st, nil
}

func (s *Store) DeleteIncome(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.incomes, ok = removeByID(s.incomes, userID, id, func(v core.Income) (int64, int64) { return v.UserID, v.ID })
	return found(ok)
}

func (s *Store) DeleteExpense(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.expenses, ok = removeByID(s.expenses, userID, id, func(v core.Expense) (int64, int64) { return v.UserID, v.ID })
	return found(ok)
}

func (s *Store) DeleteInvoice(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.invoices, ok = removeByID(s.invoices, userID, id, func(v core.Invoice) (int64, int64) { return v.UserID, v.ID })
	return found(ok)
}

func (s *Store) DeleteTransfer(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.transfers, ok = removeByID(s.transfers, userID, id, func(v core.Transfer) (int64, int64) { return v.UserID, v.ID })
	return found(ok)
}

func (s *Store) GetBankDetails(_ context.Context, userID int64) (core.BankDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bank[userID]
	if !ok {
		return core.BankDetails{}, ledger.ErrNotFound
	}
	return b, nil
}

func (s *Store) SaveBankDetails(_ context.Context, b core.BankDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bank[b.UserID] = b
	return nil
}

// ListOpenInvoicesWithEmail returns unpaid invoices that have a client email, across users.
func (s *Store) ListOpenInvoicesWithEmail(_ context.Context) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Invoice
	for _, inv := range s.invoices {
		if !core.IsPaid(inv.Status) && inv.ClientEmail != "" {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *Store) MarkInvoiceReminded(_ context.Context, userID, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].UserID == userID && s.invoices[i].ID == id {
			s.invoices[i].RemindedAt = at
			return nil
		}
	}
	return ledger.ErrNotFound
}

func filterByUser[T any](in []T, userID int64, owner func(T) int64) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if owner(v) == userID {
			out = append(out, v)
		}
	}
	return out
}

func removeByID[T any](in []T, userID, id int64, key func(T) (int64, int64)) ([]T, bool) {
	for i, v := range in {
		if u, vid := key(v); u == userID && vid == id {
			return append(in[:i], in[i+1:]...), true
		}
	}
	return in, false
}

func found(ok bool) error {
	if !ok {
		return ledger.ErrNotFound
	}
	return nil
}

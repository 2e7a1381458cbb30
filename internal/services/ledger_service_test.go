package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerly/internal/amqp"
	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
	"ledgerly/internal/ledger/memory"
)

type fakePublisher struct {
	msgs []*amqp.LedgerChangedMessage
	err  error
}

func (f *fakePublisher) PublishLedgerChanged(_ context.Context, msg *amqp.LedgerChangedMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

type fakeInvalidator struct{ users []int64 }

func (f *fakeInvalidator) InvalidateUser(userID int64) { f.users = append(f.users, userID) }

func TestLedgerService_AddIncomePublishes(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	inv := &fakeInvalidator{}
	svc := NewLedgerService(memory.New(), pub, inv, discardLogger())

	id, err := svc.AddIncome(ctx, core.Income{
		UserID:      3,
		Date:        core.NewDate(2025, 5, 2),
		Description: "Logo design",
		Amount:      decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, int64(3), pub.msgs[0].UserID)
	assert.Equal(t, amqp.KindIncome, pub.msgs[0].Kind)
	assert.Equal(t, id, pub.msgs[0].EntryID)
	assert.Equal(t, amqp.OpCreated, pub.msgs[0].Op)
	assert.Equal(t, []int64{3}, inv.users)
}

func TestLedgerService_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(), pub, nil, discardLogger())

	_, err := svc.AddExpense(ctx, core.Expense{UserID: 1, Date: core.NewDate(2025, 1, 1), Description: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = svc.AddTransfer(ctx, core.Transfer{UserID: 1, Date: core.NewDate(2025, 1, 1), From: core.Cash, To: core.Cash, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, core.ErrSameAccount)

	err = svc.SaveSettings(ctx, core.Settings{UserID: 1, TaxRate: decimal.NewFromInt(150)})
	assert.ErrorIs(t, err, core.ErrInvalidTaxRate)

	assert.Empty(t, pub.msgs, "rejected input must not be announced")
}

func TestLedgerService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewLedgerService(store, &fakePublisher{err: errors.New("broker down")}, nil, discardLogger())

	_, err := svc.AddTransfer(ctx, core.Transfer{UserID: 1, Date: core.NewDate(2025, 1, 1), From: core.Cash, To: core.Bank, Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)

	got, err := svc.ListTransfers(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLedgerService_WithoutPublisher(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil, nil, discardLogger())
	require.NoError(t, svc.SaveSettings(context.Background(), core.Settings{UserID: 1, Currency: "EUR"}))

	st, err := svc.GetSettings(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "EUR", st.Currency)
}

func TestLedgerService_InvoiceDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil, nil, discardLogger())

	_, err := svc.AddInvoice(ctx, core.Invoice{
		UserID:     1,
		ClientName: "Acme",
		IssueDate:  core.NewDate(2025, 4, 1),
		Subtotal:   decimal.NewFromInt(100),
		TaxAmount:  decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	got, err := svc.ListInvoices(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Total.Equal(decimal.NewFromInt(115)))
	assert.Equal(t, "unpaid", got[0].Status)
}

func TestLedgerService_DeleteAndMarkPaid(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(), pub, nil, discardLogger())

	id, err := svc.AddInvoice(ctx, core.Invoice{UserID: 1, ClientName: "Acme", IssueDate: core.NewDate(2025, 4, 1), Total: decimal.NewFromInt(50)})
	require.NoError(t, err)

	require.NoError(t, svc.MarkInvoicePaid(ctx, 1, id))
	assert.ErrorIs(t, svc.MarkInvoicePaid(ctx, 2, id), ledger.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 2, amqp.KindInvoice, id), ledger.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, 1, amqp.KindInvoice, id))
	assert.Error(t, svc.Delete(ctx, 1, amqp.KindSettings, 1))

	last := pub.msgs[len(pub.msgs)-1]
	assert.Equal(t, amqp.OpDeleted, last.Op)
}

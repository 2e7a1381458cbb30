package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
	"ledgerly/internal/ledger/memory"
)

type failingReader struct {
	ledger.Reader
	err error
}

func (f failingReader) ListInvoices(context.Context, int64) ([]core.Invoice, error) {
	return nil, f.err
}

type slowReader struct {
	ledger.Reader
}

func (s slowReader) GetSettings(ctx context.Context, _ int64) (core.Settings, error) {
	<-ctx.Done()
	return core.Settings{}, ctx.Err()
}

func TestServiceSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SaveSettings(ctx, core.Settings{UserID: 1, OpeningCash: d("1000"), Currency: "USD"}))
	_, err := store.AddIncome(ctx, core.Income{UserID: 1, Amount: d("500"), Date: core.NewDate(2025, 6, 1)})
	require.NoError(t, err)
	_, err = store.AddExpense(ctx, core.Expense{UserID: 1, Amount: d("200"), Date: core.NewDate(2025, 6, 2), PaymentMethod: "cash"})
	require.NoError(t, err)
	_, err = store.AddIncome(ctx, core.Income{UserID: 2, Amount: d("9999"), Date: core.NewDate(2025, 6, 1)})
	require.NoError(t, err)

	s, err := NewService(store, time.Second).Summary(ctx, 1, now)
	require.NoError(t, err)

	assert.Equal(t, "USD", s.Currency)
	assertDec(t, "1300", s.CashInHand, "cashInHand")
	assertDec(t, "500", s.MonthlyIncome, "monthlyIncome")
	assert.Equal(t, 1, s.NumberOfIncomes)
}

func TestServiceReadFailure(t *testing.T) {
	cause := errors.New("database is locked")
	svc := NewService(failingReader{Reader: memory.New(), err: cause}, 0)

	_, err := svc.Summary(context.Background(), 1, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSummaryUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestServiceTimeout(t *testing.T) {
	svc := NewService(slowReader{Reader: memory.New()}, 10*time.Millisecond)

	_, err := svc.Summary(context.Background(), 1, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSummaryUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServiceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(memory.New(), 0).Summary(ctx, 1, now)
	assert.ErrorIs(t, err, ErrSummaryUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

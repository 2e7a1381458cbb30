// Package sheets defines the outbound port for summary snapshots and the
// row layout shared by its adapters.
package sheets

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"ledgerly/internal/summary"
)

// Ports for outbound adapters.
type (
	SnapshotWriter interface {
		AppendSnapshot(ctx context.Context, s Snapshot) (rowRef string, err error)
	}
)

// Snapshot is one exported row: the headline figures of a summary at a
// point in time.
type Snapshot struct {
	Taken           time.Time
	UserID          int64
	Currency        string
	CashInHand      decimal.Decimal
	BankBalance     decimal.Decimal
	TotalLiquid     decimal.Decimal
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	MonthlyProfit   decimal.Decimal
	PendingPayments decimal.Decimal
	RunwayMonths    summary.Ratio
}

// Header is the column layout of a snapshot sheet.
var Header = []string{
	"Taken", "User", "Currency", "Cash", "Bank", "Liquid",
	"Monthly income", "Monthly expenses", "Monthly profit", "Pending", "Runway (months)",
}

// NewSnapshot extracts the exported figures from s.
func NewSnapshot(userID int64, s summary.Summary, taken time.Time) Snapshot {
	return Snapshot{
		Taken:           taken.UTC(),
		UserID:          userID,
		Currency:        s.Currency,
		CashInHand:      s.CashInHand,
		BankBalance:     s.BankBalance,
		TotalLiquid:     s.TotalLiquid,
		MonthlyIncome:   s.MonthlyIncome,
		MonthlyExpenses: s.MonthlyExpenses,
		MonthlyProfit:   s.MonthlyProfit,
		PendingPayments: s.PendingPayments,
		RunwayMonths:    s.RunwayMonths,
	}
}

// Row renders the snapshot in Header order. An unknown runway is an empty cell.
func (s Snapshot) Row() []any {
	runway := ""
	if v, ok := s.RunwayMonths.Value(); ok {
		runway = v.StringFixed(2)
	}
	return []any{
		s.Taken.Format(time.RFC3339),
		strconv.FormatInt(s.UserID, 10),
		s.Currency,
		s.CashInHand.StringFixed(2),
		s.BankBalance.StringFixed(2),
		s.TotalLiquid.StringFixed(2),
		s.MonthlyIncome.StringFixed(2),
		s.MonthlyExpenses.StringFixed(2),
		s.MonthlyProfit.StringFixed(2),
		s.PendingPayments.StringFixed(2),
		runway,
	}
}

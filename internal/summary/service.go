package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerly/internal/ledger"
)

// ErrSummaryUnavailable is returned when any of the ledger reads fails. The
// underlying cause is wrapped.
var ErrSummaryUnavailable = errors.New("summary unavailable")

// Service fetches a user's ledger and computes its summary.
type Service struct {
	reader  ledger.Reader
	timeout time.Duration
}

// NewService creates a summary service. A zero timeout leaves the caller's
// context deadline in charge.
func NewService(reader ledger.Reader, timeout time.Duration) *Service {
	return &Service{reader: reader, timeout: timeout}
}

// Load issues the five ledger reads concurrently and joins them. Any failure
// aborts the whole load; no partial inputs are returned.
func (s *Service) Load(ctx context.Context, userID int64) (Inputs, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var in Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.reader.ListIncomes(gctx, userID)
		if err != nil {
			return fmt.Errorf("list incomes: %w", err)
		}
		in.Incomes = v
		return nil
	})
	g.Go(func() error {
		v, err := s.reader.ListExpenses(gctx, userID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		in.Expenses = v
		return nil
	})
	g.Go(func() error {
		v, err := s.reader.ListInvoices(gctx, userID)
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		in.Invoices = v
		return nil
	})
	g.Go(func() error {
		v, err := s.reader.ListTransfers(gctx, userID)
		if err != nil {
			return fmt.Errorf("list transfers: %w", err)
		}
		in.Transfers = v
		return nil
	})
	g.Go(func() error {
		v, err := s.reader.GetSettings(gctx, userID)
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}
		in.Settings = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return Inputs{}, fmt.Errorf("%w: %w", ErrSummaryUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return Inputs{}, fmt.Errorf("%w: %w", ErrSummaryUnavailable, err)
	}
	return in, nil
}

// Summary loads the user's ledger and computes the snapshot as of now.
func (s *Service) Summary(ctx context.Context, userID int64, now time.Time) (Summary, error) {
	in, err := s.Load(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Compute(in, now), nil
}

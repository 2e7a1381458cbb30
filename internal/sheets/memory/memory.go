// Package memory keeps summary snapshots in process. The worker uses it when
// no spreadsheet is configured, so snapshots are still logged and inspectable.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledgerly/internal/log"
	"ledgerly/internal/sheets"
)

// DefaultCapacity bounds how many snapshots are retained.
const DefaultCapacity = 500

var _ sheets.SnapshotWriter = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	capacity int
	appended int
	items    []sheets.Snapshot
	logger   *log.Logger
}

// New returns a store retaining at most capacity snapshots. logger may be nil.
func New(capacity int, logger *log.Logger) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if logger != nil {
		logger = logger.WithComponent(log.ComponentSheets)
	}
	return &Store{capacity: capacity, logger: logger}
}

// AppendSnapshot stores the snapshot and returns a synthetic row reference.
func (s *Store) AppendSnapshot(ctx context.Context, snap sheets.Snapshot) (string, error) {
	s.mu.Lock()
	s.appended++
	ref := fmt.Sprintf("mem:%d", s.appended)
	s.items = append(s.items, snap)
	if over := len(s.items) - s.capacity; over > 0 {
		s.items = append([]sheets.Snapshot(nil), s.items[over:]...)
	}
	s.mu.Unlock()

	if s.logger != nil {
		runway, _ := snap.RunwayMonths.Value()
		s.logger.InfoContext(ctx, "Summary snapshot",
			log.FieldUserID, snap.UserID,
			log.FieldCurrency, snap.Currency,
			"total_liquid", snap.TotalLiquid.StringFixed(2),
			"monthly_profit", snap.MonthlyProfit.StringFixed(2),
			"pending", snap.PendingPayments.StringFixed(2),
			"runway_known", snap.RunwayMonths.IsKnown(),
			"runway_months", runway.String(),
			"ref", ref)
	}
	return ref, nil
}

// Snapshots returns the retained snapshots, oldest first.
func (s *Store) Snapshots() []sheets.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Snapshot(nil), s.items...)
}

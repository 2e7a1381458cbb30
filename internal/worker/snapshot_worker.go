// Package worker turns ledger-changed events into summary snapshots.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerly/internal/amqp"
	"ledgerly/internal/log"
	"ledgerly/internal/sheets"
	"ledgerly/internal/summary"
)

// SummaryProvider computes a user's current summary.
type SummaryProvider interface {
	Summary(ctx context.Context, userID int64, now time.Time) (summary.Summary, error)
}

// SnapshotWorker recomputes the summary of a user whose ledger changed and
// appends a snapshot row for it.
type SnapshotWorker struct {
	summaries SummaryProvider
	writer    sheets.SnapshotWriter
	logger    *log.Logger
	now       func() time.Time
}

func NewSnapshotWorker(summaries SummaryProvider, writer sheets.SnapshotWriter, logger *log.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		summaries: summaries,
		writer:    writer,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       time.Now,
	}
}

// HandleLedgerChanged processes a single ledger-changed message from AMQP.
// A returned error makes the consumer requeue the message.
func (w *SnapshotWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldUserID, msg.UserID,
		log.FieldEntryKind, msg.Kind,
		log.FieldEntryID, msg.EntryID,
		"op", msg.Op)

	now := w.now()
	s, err := w.summaries.Summary(ctx, msg.UserID, now)
	if err != nil {
		return fmt.Errorf("compute summary: %w", err)
	}

	ref, err := w.writer.AppendSnapshot(ctx, sheets.NewSnapshot(msg.UserID, s, now))
	if err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}

	w.logger.InfoContext(ctx, "Snapshot exported",
		log.FieldUserID, msg.UserID,
		log.FieldOperation, log.OpSnapshot,
		"ref", ref,
		"lag_ms", now.Sub(msg.Timestamp).Milliseconds())
	return nil
}

// Run consumes messages until ctx ends. Cancellation is a clean stop.
func (w *SnapshotWorker) Run(ctx context.Context, client *amqp.Client) error {
	err := client.ConsumeLedgerChanged(ctx, w.HandleLedgerChanged)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

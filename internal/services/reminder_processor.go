package services

import (
	"context"
	"fmt"
	"time"

	"ledgerly/internal/core"
	"ledgerly/internal/ledger"
	"ledgerly/internal/log"
	"ledgerly/internal/notify"
)

// Notifier delivers a reminder for one invoice.
type Notifier interface {
	SendInvoiceReminder(ctx context.Context, n notify.InvoiceNotice) error
}

// ReminderLedger is the part of the store the reminder job needs.
type ReminderLedger interface {
	ledger.ReminderStore
	ledger.SettingsReader
}

// ReminderStats summarizes one reminder run.
type ReminderStats struct {
	Checked int
	Sent    int
	Failed  int
}

// ReminderProcessor emails clients about unpaid invoices that are due soon
// or overdue, at most once per frequency period.
type ReminderProcessor struct {
	store    ReminderLedger
	notifier Notifier
	checker  DuenessChecker
	leadDays int
	logger   *log.Logger
}

// NewReminderProcessor creates a processor for the given frequency.
func NewReminderProcessor(store ReminderLedger, notifier Notifier, frequency string, leadDays int, logger *log.Logger) (*ReminderProcessor, error) {
	checker, err := GetDuenessChecker(frequency)
	if err != nil {
		return nil, err
	}
	if leadDays < 0 {
		return nil, fmt.Errorf("lead days must not be negative: %d", leadDays)
	}
	return &ReminderProcessor{
		store:    store,
		notifier: notifier,
		checker:  checker,
		leadDays: leadDays,
		logger:   logger.WithComponent(log.ComponentReminder),
	}, nil
}

// ProcessDueReminders sends every reminder due at now. A failure on one
// invoice is logged and does not stop the run.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, now time.Time) (ReminderStats, error) {
	var stats ReminderStats

	invoices, err := p.store.ListOpenInvoicesWithEmail(ctx)
	if err != nil {
		return stats, fmt.Errorf("list open invoices: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing invoice reminders",
		"open_invoices", len(invoices),
		"processing_date", now.Format("2006-01-02"))

	settings := make(map[int64]core.Settings)

	for _, inv := range invoices {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Checked++

		due, overdue := p.isDue(inv, now)
		if !due {
			continue
		}

		st, ok := settings[inv.UserID]
		if !ok {
			st, err = p.store.GetSettings(ctx, inv.UserID)
			if err != nil {
				p.logger.ErrorContext(ctx, "Failed to load settings for reminder",
					log.FieldUserID, inv.UserID,
					log.FieldInvoiceID, inv.ID,
					log.FieldError, err)
				stats.Failed++
				continue
			}
			settings[inv.UserID] = st
		}

		notice := notify.InvoiceNotice{
			To:           inv.ClientEmail,
			ClientName:   inv.ClientName,
			Number:       invoiceNumber(inv),
			Total:        inv.Total,
			Currency:     st.CurrencyOrDefault(),
			DueDate:      inv.DueDate,
			BusinessName: st.BusinessName,
			Overdue:      overdue,
		}
		if err := p.notifier.SendInvoiceReminder(ctx, notice); err != nil {
			p.logger.ErrorContext(ctx, "Failed to send invoice reminder",
				log.FieldUserID, inv.UserID,
				log.FieldInvoiceID, inv.ID,
				log.FieldError, err)
			stats.Failed++
			continue
		}

		if err := p.store.MarkInvoiceReminded(ctx, inv.UserID, inv.ID, now); err != nil {
			// the email is out; the next run may send a duplicate
			p.logger.ErrorContext(ctx, "Failed to record reminder",
				log.FieldInvoiceID, inv.ID,
				log.FieldError, err)
		}
		stats.Sent++
	}

	p.logger.InfoContext(ctx, "Invoice reminder processing complete",
		"checked", stats.Checked,
		"sent", stats.Sent,
		"failed", stats.Failed)

	return stats, nil
}

// isDue reports whether inv should be reminded at now, and whether it is
// already overdue. Invoices without a due date are never reminded.
func (p *ReminderProcessor) isDue(inv core.Invoice, now time.Time) (due, overdue bool) {
	if core.IsPaid(inv.Status) || inv.ClientEmail == "" || inv.DueDate.IsZero() {
		return false, false
	}
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	dueDay := core.NewDate(inv.DueDate.Year(), int(inv.DueDate.Month()), inv.DueDate.Day())
	if dueDay.After(today.AddDate(0, 0, p.leadDays)) {
		return false, false
	}
	return p.checker.IsDue(inv.RemindedAt, now), dueDay.Before(today)
}

func invoiceNumber(inv core.Invoice) string {
	if inv.Number != "" {
		return inv.Number
	}
	return fmt.Sprintf("#%d", inv.ID)
}

// Package notify delivers invoice reminders to clients over SMTP.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"

	"ledgerly/internal/log"
)

// InvoiceNotice is everything a reminder email says about one invoice.
type InvoiceNotice struct {
	To           string
	ClientName   string
	Number       string
	Total        decimal.Decimal
	Currency     string
	DueDate      time.Time
	BusinessName string
	Overdue      bool
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// EmailSender sends reminders through an SMTP relay.
type EmailSender struct {
	cfg    SMTPConfig
	logger *log.Logger
	send   sendFunc
}

func NewEmailSender(cfg SMTPConfig, logger *log.Logger) *EmailSender {
	return &EmailSender{
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentReminder),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendInvoiceReminder sends one reminder. The SMTP exchange itself is not
// cancellable; ctx is checked before dialing.
func (s *EmailSender) SendInvoiceReminder(ctx context.Context, n InvoiceNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := buildReminder(s.cfg.From, n)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(e, addr, auth); err != nil {
		return fmt.Errorf("send reminder for invoice %s: %w", n.Number, err)
	}

	s.logger.InfoContext(ctx, "Reminder email sent", "to", n.To, "subject", e.Subject)
	return nil
}

func buildReminder(from string, n InvoiceNotice) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{n.To}

	sender := strings.TrimSpace(n.BusinessName)
	if sender == "" {
		sender = "Accounts"
	}
	if n.Overdue {
		e.Subject = fmt.Sprintf("Overdue invoice %s", n.Number)
	} else {
		e.Subject = fmt.Sprintf("Invoice %s due on %s", n.Number, n.DueDate.Format("2006-01-02"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", n.ClientName)
	if n.Overdue {
		fmt.Fprintf(&b, "Invoice %s for %s %s was due on %s and is now overdue.\n"+
			"Please arrange payment at your earliest convenience.\n",
			n.Number, n.Total.StringFixed(2), n.Currency, n.DueDate.Format("2006-01-02"))
	} else {
		fmt.Fprintf(&b, "This is a friendly reminder that invoice %s for %s %s is due on %s.\n",
			n.Number, n.Total.StringFixed(2), n.Currency, n.DueDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "\nIf you have already paid, please ignore this message.\n\nBest regards,\n%s", sender)
	e.Text = []byte(b.String())
	return e
}

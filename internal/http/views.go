package http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"ledgerly/internal/core"
)

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(core.AmountPlaces))
}

type incomeView struct {
	ID            int64       `json:"id"`
	Date          string      `json:"date"`
	Description   string      `json:"description"`
	Amount        json.Number `json:"amount"`
	PaymentMethod string      `json:"paymentMethod"`
	Category      string      `json:"category"`
}

func incomeViews(in []core.Income) []incomeView {
	out := make([]incomeView, 0, len(in))
	for _, i := range in {
		out = append(out, incomeView{
			ID:            i.ID,
			Date:          core.FormatLedgerDate(i.Date),
			Description:   i.Description,
			Amount:        amount(i.Amount),
			PaymentMethod: i.PaymentMethod,
			Category:      i.Category,
		})
	}
	return out
}

type expenseView struct {
	ID            int64       `json:"id"`
	Date          string      `json:"date"`
	Description   string      `json:"description"`
	Amount        json.Number `json:"amount"`
	PaymentMethod string      `json:"paymentMethod"`
	Category      string      `json:"category"`
}

func expenseViews(in []core.Expense) []expenseView {
	out := make([]expenseView, 0, len(in))
	for _, e := range in {
		out = append(out, expenseView{
			ID:            e.ID,
			Date:          core.FormatLedgerDate(e.Date),
			Description:   e.Description,
			Amount:        amount(e.Amount),
			PaymentMethod: e.PaymentMethod,
			Category:      e.Category,
		})
	}
	return out
}

type invoiceView struct {
	ID          int64       `json:"id"`
	Number      string      `json:"number"`
	ClientName  string      `json:"clientName"`
	ClientEmail string      `json:"clientEmail,omitempty"`
	IssueDate   string      `json:"issueDate"`
	DueDate     string      `json:"dueDate,omitempty"`
	Subtotal    json.Number `json:"subtotal"`
	TaxAmount   json.Number `json:"taxAmount"`
	Total       json.Number `json:"total"`
	Status      string      `json:"status"`
	Paid        bool        `json:"paid"`
}

func invoiceViews(in []core.Invoice) []invoiceView {
	out := make([]invoiceView, 0, len(in))
	for _, inv := range in {
		out = append(out, invoiceView{
			ID:          inv.ID,
			Number:      inv.Number,
			ClientName:  inv.ClientName,
			ClientEmail: inv.ClientEmail,
			IssueDate:   core.FormatLedgerDate(inv.IssueDate),
			DueDate:     core.FormatLedgerDate(inv.DueDate),
			Subtotal:    amount(inv.Subtotal),
			TaxAmount:   amount(inv.TaxAmount),
			Total:       amount(inv.Total),
			Status:      inv.Status,
			Paid:        core.IsPaid(inv.Status),
		})
	}
	return out
}

type transferView struct {
	ID     int64       `json:"id"`
	Date   string      `json:"date"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount json.Number `json:"amount"`
	Note   string      `json:"note,omitempty"`
}

func transferViews(in []core.Transfer) []transferView {
	out := make([]transferView, 0, len(in))
	for _, t := range in {
		out = append(out, transferView{
			ID:     t.ID,
			Date:   core.FormatLedgerDate(t.Date),
			From:   string(t.From),
			To:     string(t.To),
			Amount: amount(t.Amount),
			Note:   t.Note,
		})
	}
	return out
}

type settingsView struct {
	BusinessName string      `json:"businessName"`
	Currency     string      `json:"currency"`
	OpeningCash  json.Number `json:"openingCash"`
	TaxRate      json.Number `json:"taxRate"`
	TaxEnabled   bool        `json:"taxEnabled"`
}

func newSettingsView(s core.Settings) settingsView {
	return settingsView{
		BusinessName: s.BusinessName,
		Currency:     s.CurrencyOrDefault(),
		OpeningCash:  amount(s.OpeningCash),
		TaxRate:      json.Number(s.TaxRate.String()),
		TaxEnabled:   s.TaxEnabled,
	}
}

type bankDetailsView struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	Branch        string `json:"branch"`
}

func newBankDetailsView(b core.BankDetails) bankDetailsView {
	return bankDetailsView{
		BankName:      b.BankName,
		AccountName:   b.AccountName,
		AccountNumber: b.AccountNumber,
		Branch:        b.Branch,
	}
}

type createdView struct {
	ID int64 `json:"id"`
}

// Package summary turns a user's raw ledger into the cash, profitability and
// collections snapshot shown on the dashboard and handed to the advisor.
//
// Compute is a pure function of its inputs and the supplied clock. It never
// fails on data content: unreadable dates fall outside every reporting
// window, unknown payment methods stay out of the cash/bank split, and
// uncategorized expenses are grouped under "Other".
package summary

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerly/internal/core"
)

// Inputs are the five datasets a summary is computed from.
type Inputs struct {
	Incomes   []core.Income
	Expenses  []core.Expense
	Invoices  []core.Invoice
	Transfers []core.Transfer
	Settings  core.Settings
}

// Summary is an immutable financial snapshot in the user's currency.
type Summary struct {
	Currency string

	CashInHand  decimal.Decimal
	BankBalance decimal.Decimal
	TotalLiquid decimal.Decimal

	MonthlyIncome   decimal.Decimal
	YearlyIncome    decimal.Decimal
	MonthlyExpenses decimal.Decimal
	YearlyExpenses  decimal.Decimal
	MonthlyProfit   decimal.Decimal
	YearlyProfit    decimal.Decimal

	LastMonthIncome   decimal.Decimal
	LastMonthExpenses decimal.Decimal
	LastMonthProfit   decimal.Decimal

	ProfitMarginMonthly Ratio
	ProfitMarginYearly  Ratio
	RunwayMonths        Ratio

	PendingPayments     decimal.Decimal
	EstimatedTaxMonthly decimal.Decimal
	EstimatedTaxYearly  decimal.Decimal

	NumberOfIncomes     int
	NumberOfExpenses    int
	UnpaidInvoicesCount int

	ExpenseBreakdown map[string]decimal.Decimal
	UserName         *string
	Formulas         map[string]string
}

// formulas explain each derived figure to downstream readers.
var formulas = map[string]string{
	"cashInHand":          "openingCash + cash incomes - cash expenses - transfers cash→bank + transfers bank→cash",
	"bankBalance":         "bank incomes - bank expenses + transfers cash→bank - transfers bank→cash",
	"totalLiquid":         "cashInHand + bankBalance",
	"monthlyProfit":       "monthlyIncome - monthlyExpenses",
	"yearlyProfit":        "yearlyIncome - yearlyExpenses",
	"lastMonthProfit":     "lastMonthIncome - lastMonthExpenses",
	"profitMarginMonthly": "monthlyProfit / monthlyIncome × 100 (null when monthlyIncome ≤ 0)",
	"profitMarginYearly":  "yearlyProfit / yearlyIncome × 100 (null when yearlyIncome ≤ 0)",
	"runwayMonths":        "totalLiquid / monthlyExpenses (null when monthlyExpenses ≤ 0)",
	"pendingPayments":     "sum of totals of invoices not marked paid",
	"estimatedTaxMonthly": "monthlyProfit × taxRate / 100 when tax is enabled and monthlyProfit > 0, else 0",
	"estimatedTaxYearly":  "yearlyProfit × taxRate / 100 when tax is enabled and yearlyProfit > 0, else 0",
}

// Formulas returns a copy of the formula explanations.
func Formulas() map[string]string {
	out := make(map[string]string, len(formulas))
	for k, v := range formulas {
		out[k] = v
	}
	return out
}

// totals accumulates the reduction pass.
type totals struct {
	monthlyIncome, yearlyIncome, lastMonthIncome       decimal.Decimal
	monthlyExpenses, yearlyExpenses, lastMonthExpenses decimal.Decimal

	incomeCash, incomeBank   decimal.Decimal
	expenseCash, expenseBank decimal.Decimal

	cashToBank, bankToCash decimal.Decimal

	pending     decimal.Decimal
	unpaidCount int
	breakdown   map[string]decimal.Decimal
}

// Compute reduces the inputs into a Summary as of now.
func Compute(in Inputs, now time.Time) Summary {
	p := periodsAt(now)
	t := totals{breakdown: make(map[string]decimal.Decimal)}

	for _, inc := range in.Incomes {
		w := p.classify(inc.Date)
		if w.sameMonth {
			t.monthlyIncome = t.monthlyIncome.Add(inc.Amount)
		}
		if w.sameYear {
			t.yearlyIncome = t.yearlyIncome.Add(inc.Amount)
		}
		if w.lastMonth {
			t.lastMonthIncome = t.lastMonthIncome.Add(inc.Amount)
		}
		switch core.ClassifyPaymentMethod(inc.PaymentMethod).Rail {
		case core.CashRail:
			t.incomeCash = t.incomeCash.Add(inc.Amount)
		case core.BankRail:
			t.incomeBank = t.incomeBank.Add(inc.Amount)
		}
	}

	for _, exp := range in.Expenses {
		w := p.classify(exp.Date)
		if w.sameMonth {
			t.monthlyExpenses = t.monthlyExpenses.Add(exp.Amount)
		}
		if w.sameYear {
			t.yearlyExpenses = t.yearlyExpenses.Add(exp.Amount)
		}
		if w.lastMonth {
			t.lastMonthExpenses = t.lastMonthExpenses.Add(exp.Amount)
		}
		switch core.ClassifyPaymentMethod(exp.PaymentMethod).Rail {
		case core.CashRail:
			t.expenseCash = t.expenseCash.Add(exp.Amount)
		case core.BankRail:
			t.expenseBank = t.expenseBank.Add(exp.Amount)
		}
		cat := strings.TrimSpace(exp.Category)
		if cat == "" {
			cat = core.DefaultCategory
		}
		t.breakdown[cat] = t.breakdown[cat].Add(exp.Amount)
	}

	for _, tr := range in.Transfers {
		switch {
		case tr.From == core.Cash && tr.To == core.Bank:
			t.cashToBank = t.cashToBank.Add(tr.Amount)
		case tr.From == core.Bank && tr.To == core.Cash:
			t.bankToCash = t.bankToCash.Add(tr.Amount)
		}
	}

	for _, inv := range in.Invoices {
		if core.IsPaid(inv.Status) {
			continue
		}
		t.pending = t.pending.Add(inv.Total)
		t.unpaidCount++
	}

	return assemble(in, t)
}

func assemble(in Inputs, t totals) Summary {
	st := in.Settings

	cash := st.OpeningCash.
		Add(t.incomeCash).
		Sub(t.expenseCash).
		Sub(t.cashToBank).
		Add(t.bankToCash)
	bank := t.incomeBank.
		Sub(t.expenseBank).
		Add(t.cashToBank).
		Sub(t.bankToCash)
	liquid := cash.Add(bank)

	monthlyProfit := t.monthlyIncome.Sub(t.monthlyExpenses)
	yearlyProfit := t.yearlyIncome.Sub(t.yearlyExpenses)

	return Summary{
		Currency: st.CurrencyOrDefault(),

		CashInHand:  cash,
		BankBalance: bank,
		TotalLiquid: liquid,

		MonthlyIncome:   t.monthlyIncome,
		YearlyIncome:    t.yearlyIncome,
		MonthlyExpenses: t.monthlyExpenses,
		YearlyExpenses:  t.yearlyExpenses,
		MonthlyProfit:   monthlyProfit,
		YearlyProfit:    yearlyProfit,

		LastMonthIncome:   t.lastMonthIncome,
		LastMonthExpenses: t.lastMonthExpenses,
		LastMonthProfit:   t.lastMonthIncome.Sub(t.lastMonthExpenses),

		ProfitMarginMonthly: percentOf(monthlyProfit, t.monthlyIncome),
		ProfitMarginYearly:  percentOf(yearlyProfit, t.yearlyIncome),
		RunwayMonths:        divide(liquid, t.monthlyExpenses),

		PendingPayments:     t.pending,
		EstimatedTaxMonthly: taxEstimate(monthlyProfit, st.TaxEnabled, st.TaxRate),
		EstimatedTaxYearly:  taxEstimate(yearlyProfit, st.TaxEnabled, st.TaxRate),

		NumberOfIncomes:     len(in.Incomes),
		NumberOfExpenses:    len(in.Expenses),
		UnpaidInvoicesCount: t.unpaidCount,

		ExpenseBreakdown: t.breakdown,
		UserName:         firstName(st.BusinessName),
		Formulas:         Formulas(),
	}
}

// firstName returns the first whitespace-delimited token of the business name.
func firstName(business string) *string {
	fields := strings.Fields(business)
	if len(fields) == 0 {
		return nil
	}
	name := fields[0]
	return &name
}

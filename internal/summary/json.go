package summary

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// summaryJSON is the wire shape of a Summary. Money is emitted as a JSON
// number, never as a quoted string.
type summaryJSON struct {
	Currency            string                 `json:"currency"`
	CashInHand          json.Number            `json:"cashInHand"`
	BankBalance         json.Number            `json:"bankBalance"`
	TotalLiquid         json.Number            `json:"totalLiquid"`
	MonthlyIncome       json.Number            `json:"monthlyIncome"`
	YearlyIncome        json.Number            `json:"yearlyIncome"`
	MonthlyExpenses     json.Number            `json:"monthlyExpenses"`
	YearlyExpenses      json.Number            `json:"yearlyExpenses"`
	MonthlyProfit       json.Number            `json:"monthlyProfit"`
	YearlyProfit        json.Number            `json:"yearlyProfit"`
	LastMonthIncome     json.Number            `json:"lastMonthIncome"`
	LastMonthExpenses   json.Number            `json:"lastMonthExpenses"`
	LastMonthProfit     json.Number            `json:"lastMonthProfit"`
	ProfitMarginMonthly Ratio                  `json:"profitMarginMonthly"`
	ProfitMarginYearly  Ratio                  `json:"profitMarginYearly"`
	RunwayMonths        Ratio                  `json:"runwayMonths"`
	PendingPayments     json.Number            `json:"pendingPayments"`
	EstimatedTaxMonthly json.Number            `json:"estimatedTaxMonthly"`
	EstimatedTaxYearly  json.Number            `json:"estimatedTaxYearly"`
	NumberOfIncomes     int                    `json:"numberOfIncomes"`
	NumberOfExpenses    int                    `json:"numberOfExpenses"`
	UnpaidInvoicesCount int                    `json:"unpaidInvoicesCount"`
	ExpenseBreakdown    map[string]json.Number `json:"expenseBreakdown"`
	UserName            *string                `json:"userName"`
	Formulas            map[string]string      `json:"formulas"`
}

func num(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func (s Summary) MarshalJSON() ([]byte, error) {
	breakdown := make(map[string]json.Number, len(s.ExpenseBreakdown))
	for k, v := range s.ExpenseBreakdown {
		breakdown[k] = num(v)
	}
	formulas := s.Formulas
	if formulas == nil {
		formulas = map[string]string{}
	}
	return json.Marshal(summaryJSON{
		Currency:            s.Currency,
		CashInHand:          num(s.CashInHand),
		BankBalance:         num(s.BankBalance),
		TotalLiquid:         num(s.TotalLiquid),
		MonthlyIncome:       num(s.MonthlyIncome),
		YearlyIncome:        num(s.YearlyIncome),
		MonthlyExpenses:     num(s.MonthlyExpenses),
		YearlyExpenses:      num(s.YearlyExpenses),
		MonthlyProfit:       num(s.MonthlyProfit),
		YearlyProfit:        num(s.YearlyProfit),
		LastMonthIncome:     num(s.LastMonthIncome),
		LastMonthExpenses:   num(s.LastMonthExpenses),
		LastMonthProfit:     num(s.LastMonthProfit),
		ProfitMarginMonthly: s.ProfitMarginMonthly,
		ProfitMarginYearly:  s.ProfitMarginYearly,
		RunwayMonths:        s.RunwayMonths,
		PendingPayments:     num(s.PendingPayments),
		EstimatedTaxMonthly: num(s.EstimatedTaxMonthly),
		EstimatedTaxYearly:  num(s.EstimatedTaxYearly),
		NumberOfIncomes:     s.NumberOfIncomes,
		NumberOfExpenses:    s.NumberOfExpenses,
		UnpaidInvoicesCount: s.UnpaidInvoicesCount,
		ExpenseBreakdown:    breakdown,
		UserName:            s.UserName,
		Formulas:            formulas,
	})
}

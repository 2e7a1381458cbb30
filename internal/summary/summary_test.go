package summary

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerly/internal/core"
)

var now = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func assertRatio(t *testing.T, want string, got Ratio, field string) {
	t.Helper()
	v, ok := got.Value()
	require.Truef(t, ok, "%s: expected known ratio", field)
	assert.Truef(t, d(want).Equal(v), "%s: want %s, got %s", field, want, v)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(Inputs{}, now)

	assert.Equal(t, "LKR", s.Currency)
	for name, v := range map[string]decimal.Decimal{
		"cashInHand":          s.CashInHand,
		"bankBalance":         s.BankBalance,
		"totalLiquid":         s.TotalLiquid,
		"monthlyIncome":       s.MonthlyIncome,
		"yearlyExpenses":      s.YearlyExpenses,
		"pendingPayments":     s.PendingPayments,
		"estimatedTaxMonthly": s.EstimatedTaxMonthly,
		"estimatedTaxYearly":  s.EstimatedTaxYearly,
	} {
		assert.Truef(t, v.IsZero(), "%s should be zero, got %s", name, v)
	}
	assert.False(t, s.ProfitMarginMonthly.IsKnown())
	assert.False(t, s.ProfitMarginYearly.IsKnown())
	assert.False(t, s.RunwayMonths.IsKnown())
	assert.Nil(t, s.UserName)
	assert.Empty(t, s.ExpenseBreakdown)
	assert.Equal(t, 0, s.NumberOfIncomes)
	assert.NotEmpty(t, s.Formulas)
}

func TestScenarioCashOnly(t *testing.T) {
	s := Compute(Inputs{
		Settings: core.Settings{OpeningCash: d("1000")},
		Incomes:  []core.Income{{Amount: d("500"), Date: core.NewDate(2025, 6, 2), PaymentMethod: ""}},
		Expenses: []core.Expense{{Amount: d("200"), Date: core.NewDate(2025, 6, 3), PaymentMethod: "cash", Category: "Rent"}},
	}, now)

	assertDec(t, "1300", s.CashInHand, "cashInHand")
	assertDec(t, "0", s.BankBalance, "bankBalance")
	assertDec(t, "300", s.MonthlyProfit, "monthlyProfit")
	assertRatio(t, "60", s.ProfitMarginMonthly, "profitMarginMonthly")
	assertRatio(t, "6.5", s.RunwayMonths, "runwayMonths")
	assert.Equal(t, 1, s.NumberOfIncomes)
	assert.Equal(t, 1, s.NumberOfExpenses)
}

func TestScenarioNoIncome(t *testing.T) {
	s := Compute(Inputs{
		Settings: core.Settings{TaxEnabled: true, TaxRate: d("10")},
		Expenses: []core.Expense{{Amount: d("100"), Date: core.NewDate(2025, 6, 1)}},
	}, now)

	assert.False(t, s.ProfitMarginMonthly.IsKnown())
	assertDec(t, "-100", s.MonthlyProfit, "monthlyProfit")
	assertDec(t, "0", s.EstimatedTaxMonthly, "estimatedTaxMonthly")
}

func TestScenarioInvoices(t *testing.T) {
	s := Compute(Inputs{
		Invoices: []core.Invoice{
			{Total: d("1000"), Status: "unpaid"},
			{Total: d("500"), Status: "Paid"},
		},
	}, now)

	assertDec(t, "1000", s.PendingPayments, "pendingPayments")
	assert.Equal(t, 1, s.UnpaidInvoicesCount)
}

func TestScenarioTransfer(t *testing.T) {
	s := Compute(Inputs{
		Transfers: []core.Transfer{{From: core.Cash, To: core.Bank, Amount: d("300")}},
	}, now)

	assertDec(t, "-300", s.CashInHand, "cashInHand")
	assertDec(t, "300", s.BankBalance, "bankBalance")
	assertDec(t, "0", s.TotalLiquid, "totalLiquid")
}

func TestScenarioBreakdown(t *testing.T) {
	s := Compute(Inputs{
		Expenses: []core.Expense{
			{Amount: d("50"), Category: "Hosting"},
			{Amount: d("30"), Category: "Hosting"},
			{Amount: d("10"), Category: "Other"},
		},
	}, now)

	require.Len(t, s.ExpenseBreakdown, 2)
	assertDec(t, "80", s.ExpenseBreakdown["Hosting"], "Hosting")
	assertDec(t, "10", s.ExpenseBreakdown["Other"], "Other")
}

func TestBreakdownDefaultsEmptyCategory(t *testing.T) {
	s := Compute(Inputs{
		Expenses: []core.Expense{
			{Amount: d("5"), Category: ""},
			{Amount: d("7"), Category: "   "},
			{Amount: d("1"), Category: "Other"},
		},
	}, now)

	assert.Len(t, s.ExpenseBreakdown, 1)
	assertDec(t, "13", s.ExpenseBreakdown["Other"], "Other")
}

func TestUnclassifiedMethodCountsInTotalsOnly(t *testing.T) {
	// "Bank Transfer" normalizes to bank_transfer, which is not on the allowlist.
	s := Compute(Inputs{
		Incomes: []core.Income{
			{Amount: d("400"), Date: core.NewDate(2025, 6, 10), PaymentMethod: "Bank Transfer"},
			{Amount: d("100"), Date: core.NewDate(2025, 6, 11), PaymentMethod: " Online  Transfer "},
		},
	}, now)

	assertDec(t, "500", s.MonthlyIncome, "monthlyIncome")
	assertDec(t, "500", s.YearlyIncome, "yearlyIncome")
	assertDec(t, "100", s.BankBalance, "bankBalance")
	assertDec(t, "0", s.CashInHand, "cashInHand")
}

func TestMalformedDateMatchesNoWindow(t *testing.T) {
	s := Compute(Inputs{
		Incomes: []core.Income{
			{Amount: d("250"), Date: core.ParseLedgerDate("not a date"), PaymentMethod: "cash"},
		},
	}, now)

	assertDec(t, "0", s.MonthlyIncome, "monthlyIncome")
	assertDec(t, "0", s.YearlyIncome, "yearlyIncome")
	assertDec(t, "0", s.LastMonthIncome, "lastMonthIncome")
	// still part of the all-time cash position
	assertDec(t, "250", s.CashInHand, "cashInHand")
	assert.Equal(t, 1, s.NumberOfIncomes)
}

func TestWindows(t *testing.T) {
	in := Inputs{
		Incomes: []core.Income{
			{Amount: d("10"), Date: core.NewDate(2025, 6, 30)},
			{Amount: d("20"), Date: core.NewDate(2025, 5, 1)},
			{Amount: d("40"), Date: core.NewDate(2025, 1, 1)},
			{Amount: d("80"), Date: core.NewDate(2024, 6, 15)},
		},
		Expenses: []core.Expense{
			{Amount: d("3"), Date: core.NewDate(2025, 5, 31)},
		},
	}
	s := Compute(in, now)

	assertDec(t, "10", s.MonthlyIncome, "monthlyIncome")
	assertDec(t, "20", s.LastMonthIncome, "lastMonthIncome")
	assertDec(t, "70", s.YearlyIncome, "yearlyIncome")
	assertDec(t, "3", s.LastMonthExpenses, "lastMonthExpenses")
	assertDec(t, "17", s.LastMonthProfit, "lastMonthProfit")
}

func TestJanuaryRollsBackToDecember(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	s := Compute(Inputs{
		Incomes: []core.Income{
			{Amount: d("100"), Date: core.NewDate(2025, 12, 20)},
			{Amount: d("1"), Date: core.NewDate(2026, 12, 20)},
			{Amount: d("5"), Date: core.NewDate(2026, 1, 2)},
		},
	}, jan)

	assertDec(t, "100", s.LastMonthIncome, "lastMonthIncome")
	assertDec(t, "5", s.MonthlyIncome, "monthlyIncome")
	assertDec(t, "6", s.YearlyIncome, "yearlyIncome")
}

func TestTaxGate(t *testing.T) {
	cases := []struct {
		name    string
		enabled bool
		income  string
		expense string
		want    string
	}{
		{"disabled", false, "1000", "0", "0"},
		{"loss", true, "100", "300", "0"},
		{"break even", true, "100", "100", "0"},
		{"profit", true, "1000", "250", "112.5"},
		{"rounded", true, "10.01", "0", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Compute(Inputs{
				Settings: core.Settings{TaxEnabled: tc.enabled, TaxRate: d("15")},
				Incomes:  []core.Income{{Amount: d(tc.income), Date: core.NewDate(2025, 6, 1)}},
				Expenses: []core.Expense{{Amount: d(tc.expense), Date: core.NewDate(2025, 6, 1)}},
			}, now)
			assertDec(t, tc.want, s.EstimatedTaxMonthly, "estimatedTaxMonthly")
			assertDec(t, tc.want, s.EstimatedTaxYearly, "estimatedTaxYearly")
		})
	}
}

func TestRunwayUnknownWithoutMonthlyExpenses(t *testing.T) {
	s := Compute(Inputs{
		Settings: core.Settings{OpeningCash: d("500")},
		Expenses: []core.Expense{{Amount: d("50"), Date: core.NewDate(2025, 5, 1)}},
	}, now)
	assert.False(t, s.RunwayMonths.IsKnown())
}

func TestMarginRounding(t *testing.T) {
	s := Compute(Inputs{
		Incomes:  []core.Income{{Amount: d("3"), Date: core.NewDate(2025, 6, 1)}},
		Expenses: []core.Expense{{Amount: d("1"), Date: core.NewDate(2025, 6, 1)}},
	}, now)
	assertRatio(t, "66.67", s.ProfitMarginMonthly, "profitMarginMonthly")
	assertRatio(t, "66.67", s.ProfitMarginYearly, "profitMarginYearly")
}

func TestIdentities(t *testing.T) {
	methods := []string{"", "cash", "CASH ", "bank", "Card", "online payment", "cheque", "Bank Transfer"}
	dates := []time.Time{core.NewDate(2025, 6, 1), core.NewDate(2025, 5, 20), core.NewDate(2024, 12, 1), {}}

	var in Inputs
	in.Settings = core.Settings{OpeningCash: d("123.45")}
	for i := 0; i < 40; i++ {
		amt := decimal.NewFromInt(int64(i*37%101 + 1)).Div(decimal.NewFromInt(4))
		in.Incomes = append(in.Incomes, core.Income{Amount: amt, Date: dates[i%len(dates)], PaymentMethod: methods[i%len(methods)]})
		in.Expenses = append(in.Expenses, core.Expense{Amount: amt.Div(decimal.NewFromInt(3)).Round(2), Date: dates[(i+1)%len(dates)], PaymentMethod: methods[(i+3)%len(methods)]})
		if i%5 == 0 {
			in.Transfers = append(in.Transfers,
				core.Transfer{From: core.Cash, To: core.Bank, Amount: amt},
				core.Transfer{From: core.Bank, To: core.Cash, Amount: amt.Div(decimal.NewFromInt(2))},
			)
		}
	}

	s := Compute(in, now)
	assert.True(t, s.CashInHand.Add(s.BankBalance).Equal(s.TotalLiquid))
	assert.True(t, s.MonthlyIncome.Sub(s.MonthlyExpenses).Equal(s.MonthlyProfit))
	assert.True(t, s.YearlyIncome.Sub(s.YearlyExpenses).Equal(s.YearlyProfit))
	assert.True(t, s.LastMonthIncome.Sub(s.LastMonthExpenses).Equal(s.LastMonthProfit))
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	in := Inputs{Expenses: []core.Expense{{Amount: d("1"), Category: ""}}}
	_ = Compute(in, now)
	assert.Equal(t, "", in.Expenses[0].Category)
}

func TestCurrencyAndUserName(t *testing.T) {
	s := Compute(Inputs{Settings: core.Settings{Currency: "  USD ", BusinessName: "  Nimal   Traders Ltd"}}, now)
	assert.Equal(t, "USD", s.Currency)
	require.NotNil(t, s.UserName)
	assert.Equal(t, "Nimal", *s.UserName)

	s = Compute(Inputs{Settings: core.Settings{Currency: "   "}}, now)
	assert.Equal(t, core.DefaultCurrency, s.Currency)
}

func TestMarshalJSON(t *testing.T) {
	s := Compute(Inputs{
		Settings: core.Settings{OpeningCash: d("1000"), BusinessName: "Acme"},
		Incomes:  []core.Income{{Amount: d("500"), Date: core.NewDate(2025, 6, 2)}},
		Expenses: []core.Expense{{Amount: d("200.50"), Date: core.NewDate(2025, 6, 3), PaymentMethod: "cash", Category: "Rent"}},
	}, now)

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	for _, key := range []string{
		"currency", "cashInHand", "bankBalance", "totalLiquid", "monthlyIncome", "yearlyIncome",
		"monthlyExpenses", "yearlyExpenses", "monthlyProfit", "yearlyProfit", "lastMonthIncome",
		"lastMonthExpenses", "lastMonthProfit", "profitMarginMonthly", "profitMarginYearly",
		"runwayMonths", "pendingPayments", "estimatedTaxMonthly", "estimatedTaxYearly",
		"numberOfIncomes", "numberOfExpenses", "unpaidInvoicesCount", "expenseBreakdown",
		"userName", "formulas",
	} {
		assert.Containsf(t, got, key, "missing %s", key)
	}
	assert.Len(t, got, 25)

	assert.Equal(t, 1299.5, got["cashInHand"])
	assert.Equal(t, 299.5, got["monthlyProfit"])
	assert.Equal(t, 59.9, got["profitMarginMonthly"])
	assert.Equal(t, 59.9, got["profitMarginYearly"])
	assert.Equal(t, 6.48, got["runwayMonths"])
	assert.Equal(t, float64(0), got["lastMonthIncome"])
	assert.Equal(t, "Acme", got["userName"])
	assert.Equal(t, map[string]any{"Rent": 200.5}, got["expenseBreakdown"])
}

func TestMarshalJSONNulls(t *testing.T) {
	raw, err := json.Marshal(Compute(Inputs{}, now))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Nil(t, got["profitMarginMonthly"])
	assert.Nil(t, got["runwayMonths"])
	assert.Nil(t, got["userName"])
	assert.Equal(t, float64(0), got["estimatedTaxMonthly"])
	assert.Equal(t, "LKR", got["currency"])
}

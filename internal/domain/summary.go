package domain

// YearSummary holds income and expense totals for a calendar year.
// Transfers and adjustments never contribute.
type YearSummary struct {
	IncomeTotal  int64 `json:"income_total"`
	ExpenseTotal int64 `json:"expense_total"`
	Net          int64 `json:"net"`
}

// NewYearSummary builds a summary from per-type totals.
func NewYearSummary(totals TypeTotals) YearSummary {
	income := totals.Of(TransactionTypeIncome)
	expense := totals.Of(TransactionTypeExpense)
	return YearSummary{
		IncomeTotal:  income,
		ExpenseTotal: expense,
		Net:          income - expense,
	}
}

// MonthSummary extends YearSummary with the period's opening balance,
// summed across all accounts, and the total of adjustments.
type MonthSummary struct {
	YearSummary

	OpeningBalance int64 `json:"opening_balance"`
	AdjustTotal    int64 `json:"adjust_total"`
}

// NewMonthSummary builds a month summary from per-type totals and the
// portfolio-wide opening balance.
func NewMonthSummary(totals TypeTotals, openingBalance int64) MonthSummary {
	return MonthSummary{
		YearSummary:    NewYearSummary(totals),
		OpeningBalance: openingBalance,
		AdjustTotal:    totals.Of(TransactionTypeAdjust),
	}
}

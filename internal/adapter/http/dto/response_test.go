package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/kakeibo/internal/domain"
)

func TestTransactionFromDomain_JSON(t *testing.T) {
	account := "acc-1"
	tx := &domain.Transaction{
		ID:        "tx-1",
		Type:      domain.TransactionTypeExpense,
		Amount:    1200,
		AccountID: &account,
	}
	tx.SetDate(time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC))

	data, err := json.Marshal(TransactionFromDomain(tx))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2026-03-10", got["date"])
	assert.Equal(t, float64(2026), got["year"])
	assert.Equal(t, float64(3), got["month"])
	assert.Equal(t, "expense", got["type"])
	assert.Equal(t, "acc-1", got["account_id"])
	assert.Contains(t, got, "to_account_id")
	assert.Nil(t, got["to_account_id"])
}

func TestMonthSummaryResponse_Flattens(t *testing.T) {
	resp := MonthSummaryResponse{
		Year:  2026,
		Month: 3,
		MonthSummary: domain.NewMonthSummary(domain.TypeTotals{
			domain.TransactionTypeIncome:  300000,
			domain.TransactionTypeExpense: 120000,
			domain.TransactionTypeAdjust:  5000,
		}, 50000),
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"year": 2026,
		"month": 3,
		"income_total": 300000,
		"expense_total": 120000,
		"net": 180000,
		"opening_balance": 50000,
		"adjust_total": 5000
	}`, string(data))
}

func TestLiabilityFromDomain_Dates(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	resp := LiabilityFromDomain(&domain.Liability{ID: "l1", Name: "Car loan", Balance: 800000, StartDate: &start})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2024-04-01", got["start_date"])
	assert.Nil(t, got["end_date"])
}

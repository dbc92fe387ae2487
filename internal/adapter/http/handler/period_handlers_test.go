package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

type balanceServiceStub struct {
	listFn    func(ctx context.Context, period domain.Period) ([]*domain.MonthlyBalance, error)
	upsertFn  func(ctx context.Context, period domain.Period, input usecase.BalanceInput) (*domain.MonthlyBalance, error)
	saveAllFn func(ctx context.Context, period domain.Period, inputs []usecase.BalanceInput) ([]*domain.MonthlyBalance, error)
}

func (s *balanceServiceStub) ListBalances(ctx context.Context, period domain.Period) ([]*domain.MonthlyBalance, error) {
	return s.listFn(ctx, period)
}

func (s *balanceServiceStub) UpsertBalance(ctx context.Context, period domain.Period, input usecase.BalanceInput) (*domain.MonthlyBalance, error) {
	return s.upsertFn(ctx, period, input)
}

func (s *balanceServiceStub) SaveAll(ctx context.Context, period domain.Period, inputs []usecase.BalanceInput) ([]*domain.MonthlyBalance, error) {
	return s.saveAllFn(ctx, period, inputs)
}

type lockServiceStub struct {
	locked map[domain.Period]bool
}

func (s *lockServiceStub) IsLocked(ctx context.Context, period domain.Period) (bool, error) {
	return s.locked[period], nil
}

func (s *lockServiceStub) SetLock(ctx context.Context, period domain.Period, locked bool) (*domain.MonthlyLock, error) {
	s.locked[period] = locked
	return &domain.MonthlyLock{Year: period.Year, Month: period.Month, IsLocked: locked}, nil
}

type summaryServiceStub struct {
	year  domain.YearSummary
	month domain.MonthSummary
}

func (s *summaryServiceStub) YearSummary(ctx context.Context, year int) (domain.YearSummary, error) {
	return s.year, nil
}

func (s *summaryServiceStub) MonthSummary(ctx context.Context, period domain.Period) (domain.MonthSummary, error) {
	return s.month, nil
}

func periodRequest(method, target, body, year, month string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return withURLParams(req, map[string]string{"year": year, "month": month})
}

func TestBalanceHandler_SaveAll(t *testing.T) {
	var gotPeriod domain.Period
	var gotInputs []usecase.BalanceInput
	handler := NewBalanceHandler(&balanceServiceStub{
		saveAllFn: func(ctx context.Context, period domain.Period, inputs []usecase.BalanceInput) ([]*domain.MonthlyBalance, error) {
			gotPeriod, gotInputs = period, inputs
			out := make([]*domain.MonthlyBalance, len(inputs))
			for i, in := range inputs {
				out[i] = &domain.MonthlyBalance{AccountID: in.AccountID, OpeningBalance: in.OpeningBalance, Year: period.Year, Month: period.Month}
			}
			return out, nil
		},
	})

	body := `{"balances":[{"account_id":"acc-1","opening_balance":10000},{"account_id":"acc-2","opening_balance":-500}]}`
	rec := httptest.NewRecorder()
	handler.SaveAll(rec, periodRequest(http.MethodPost, "/balances/2026/4", body, "2026", "4"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotPeriod != (domain.Period{Year: 2026, Month: 4}) {
		t.Fatalf("unexpected period %+v", gotPeriod)
	}
	if len(gotInputs) != 2 || gotInputs[1].OpeningBalance != -500 {
		t.Fatalf("unexpected inputs %+v", gotInputs)
	}
}

func TestBalanceHandler_Upsert_LockedMonth(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		upsertFn: func(ctx context.Context, period domain.Period, input usecase.BalanceInput) (*domain.MonthlyBalance, error) {
			return nil, domain.PeriodLockedError(period)
		},
	})

	rec := httptest.NewRecorder()
	handler.Upsert(rec, periodRequest(http.MethodPut, "/balances/2026/4", `{"account_id":"acc-1","opening_balance":1}`, "2026", "4"))

	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423, got %d", rec.Code)
	}
}

func TestBalanceHandler_List_InvalidMonth(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{})

	rec := httptest.NewRecorder()
	handler.List(rec, periodRequest(http.MethodGet, "/balances/2026/0", "", "2026", "0"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLockHandler_ToggleRoundTrip(t *testing.T) {
	stub := &lockServiceStub{locked: map[domain.Period]bool{}}
	handler := NewLockHandler(stub)

	rec := httptest.NewRecorder()
	handler.Get(rec, periodRequest(http.MethodGet, "/month-lock/2026/2", "", "2026", "2"))

	var resp dto.MonthLockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.IsLocked {
		t.Fatal("expected a never-toggled month to be unlocked")
	}

	rec = httptest.NewRecorder()
	handler.Set(rec, periodRequest(http.MethodPut, "/month-lock/2026/2", `{"is_locked":true}`, "2026", "2"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.Get(rec, periodRequest(http.MethodGet, "/month-lock/2026/2", "", "2026", "2"))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.IsLocked || resp.Year != 2026 || resp.Month != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSummaryHandler_Month(t *testing.T) {
	handler := NewSummaryHandler(&summaryServiceStub{
		month: domain.MonthSummary{
			YearSummary:    domain.YearSummary{IncomeTotal: 300000, ExpenseTotal: 120000, Net: 180000},
			OpeningBalance: 50000,
			AdjustTotal:    -200,
		},
	})

	rec := httptest.NewRecorder()
	handler.Month(rec, periodRequest(http.MethodGet, "/summary/month/2026/5", "", "2026", "5"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := map[string]float64{
		"year": 2026, "month": 5,
		"income_total": 300000, "expense_total": 120000, "net": 180000,
		"opening_balance": 50000, "adjust_total": -200,
	}
	for k, v := range want {
		if resp[k] != v {
			t.Fatalf("expected %s=%v, got %v", k, v, resp[k])
		}
	}
}

func TestSummaryHandler_Year(t *testing.T) {
	handler := NewSummaryHandler(&summaryServiceStub{
		year: domain.YearSummary{IncomeTotal: 10, ExpenseTotal: 4, Net: 6},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/summary/year/2025", nil), map[string]string{"year": "2025"})
	rec := httptest.NewRecorder()
	handler.Year(rec, req)

	var resp dto.YearSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Year != 2025 || resp.Net != 6 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

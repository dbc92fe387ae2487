package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

type transactionServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	getFn    func(ctx context.Context, id string) (*domain.Transaction, error)
	updateFn func(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return s.createFn(ctx, input)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *transactionServiceStub) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *transactionServiceStub) DeleteTransaction(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.listFn(ctx, input)
}

func sampleTransaction() *domain.Transaction {
	tx := &domain.Transaction{
		ID:        "tx-1",
		Type:      domain.TransactionTypeExpense,
		Amount:    1200,
		AccountID: strPtr("acc-1"),
	}
	tx.SetDate(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	return tx
}

func TestTransactionHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateTransactionInput
	handler := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
			captured = input
			return sampleTransaction(), nil
		},
	})

	body := `{"date":"2026-03-14","type":"expense","amount":1200,"account_id":"acc-1"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Type != domain.TransactionTypeExpense || captured.Amount != 1200 {
		t.Fatalf("unexpected input %+v", captured)
	}
	if !captured.Date.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", captured.Date)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["date"] != "2026-03-14" || resp["year"] != float64(2026) || resp["month"] != float64(3) {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestTransactionHandler_Create_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"bad date", `{"date":"14/03/2026","type":"expense","amount":1}`, nil, http.StatusBadRequest},
		{"rule violation", `{"date":"2026-03-14","type":"transfer","amount":1}`, domain.ErrMissingAccount, http.StatusUnprocessableEntity},
		{"locked month", `{"date":"2026-03-14","type":"expense","amount":1}`, domain.PeriodLockedError(domain.Period{Year: 2026, Month: 3}), http.StatusLocked},
		{"unknown account", `{"date":"2026-03-14","type":"expense","amount":1}`, domain.ErrAccountNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransactionHandler(&transactionServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.Create(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTransactionHandler_List_PassesFilter(t *testing.T) {
	var captured usecase.ListTransactionsInput
	handler := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			captured = input
			return []*domain.Transaction{sampleTransaction()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions?year=2026&month=3&q=coffee&limit=20&offset=40", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	want := usecase.ListTransactionsInput{
		Period: domain.Period{Year: 2026, Month: 3},
		Query:  "coffee",
		Limit:  20,
		Offset: 40,
	}
	if captured != want {
		t.Fatalf("expected %+v, got %+v", want, captured)
	}

	var resp []dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "tx-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTransactionHandler_List_RequiresPeriod(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/transactions?year=2026", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestTransactionHandler_Update_PassesPatch(t *testing.T) {
	var captured domain.TransactionPatch
	handler := NewTransactionHandler(&transactionServiceStub{
		updateFn: func(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
			if id != "tx-1" {
				t.Fatalf("unexpected id %q", id)
			}
			captured = patch
			return sampleTransaction(), nil
		},
	})

	req := withURLParams(
		httptest.NewRequest(http.MethodPatch, "/transactions/tx-1", strings.NewReader(`{"amount":500,"category_id":null}`)),
		map[string]string{"id": "tx-1"},
	)
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Amount == nil || *captured.Amount != 500 {
		t.Fatalf("expected amount 500, got %v", captured.Amount)
	}
	if !captured.CategoryID.Set || captured.CategoryID.Value != nil {
		t.Fatalf("expected category to be cleared, got %+v", captured.CategoryID)
	}
	if captured.Date != nil || captured.Type != nil || captured.Note.Set {
		t.Fatalf("expected absent fields to stay unset, got %+v", captured)
	}
}

func TestTransactionHandler_Delete(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			return domain.ErrTransactionNotFound
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/transactions/tx-9", nil), map[string]string{"id": "tx-9"})
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

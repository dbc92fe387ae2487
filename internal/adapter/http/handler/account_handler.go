package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	UpdateAccount(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	ImportAccountsJSON(ctx context.Context, items []usecase.CreateAccountInput) (int, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, err, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountUC.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err, "failed to get account")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountUC.ListAccounts(r.Context())
	if err != nil {
		respondError(w, err, "failed to list accounts")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Update applies a partial update to an account.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	account, err := h.accountUC.UpdateAccount(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, err, "failed to update account")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Delete removes an account and detaches its transactions.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accountUC.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err, "failed to delete account")
		return
	}

	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// ImportJSON creates accounts from a JSON list, skipping names that exist.
func (h *AccountHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportAccountsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid json payload")
		return
	}

	created, err := h.accountUC.ImportAccountsJSON(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, err, "failed to import accounts")
		return
	}

	writeJSON(w, http.StatusOK, dto.CreatedResponse{Created: created})
}

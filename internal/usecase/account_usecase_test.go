package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name     string
		input    usecase.CreateAccountInput
		wantKind string
		wantErr  error
	}{
		{
			name:     "defaults to kind other",
			input:    usecase.CreateAccountInput{Name: "  財布  "},
			wantKind: domain.AccountKindOther,
		},
		{
			name:     "explicit kind",
			input:    usecase.CreateAccountInput{Name: "楽天カード", Kind: domain.AccountKindCard},
			wantKind: domain.AccountKindCard,
		},
		{
			name:    "blank name",
			input:   usecase.CreateAccountInput{Name: "   "},
			wantErr: domain.ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			account, err := f.accounts.CreateAccount(ownerCtx(t), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, account.Kind)
			assert.True(t, account.IsActive)
			assert.NotContains(t, account.Name, " ")
		})
	}
}

func TestAccountUseCase_NameConflict(t *testing.T) {
	f := newFixture(t)
	f.account(t, "財布")

	_, err := f.accounts.CreateAccount(ownerCtx(t), usecase.CreateAccountInput{Name: "財布"})

	require.ErrorIs(t, err, domain.ErrAccountNameTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAccountUseCase_UpdateAccount(t *testing.T) {
	f := newFixture(t)
	id := f.account(t, "財布")

	inactive := false
	name := "古い財布"
	updated, err := f.accounts.UpdateAccount(ownerCtx(t), id, domain.AccountPatch{
		Name:     &name,
		IsActive: &inactive,
		Note:     domain.Some("closed"),
	})
	require.NoError(t, err)

	assert.Equal(t, "古い財布", updated.Name)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.Note)
	assert.Equal(t, "closed", *updated.Note)
	assert.Equal(t, domain.AccountKindOther, updated.Kind, "fields outside the patch are untouched")

	blank := ""
	_, err = f.accounts.UpdateAccount(ownerCtx(t), id, domain.AccountPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestAccountUseCase_DeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := ownerCtx(t)
	wallet := f.account(t, "財布")
	bank := f.account(t, "銀行")

	transfer := f.create(t, usecase.CreateTransactionInput{
		Date: date(2026, 2, 4), Type: domain.TransactionTypeTransfer, Amount: 100, AccountID: &bank, ToAccountID: &wallet,
	})
	expense := f.create(t, usecase.CreateTransactionInput{
		Date: date(2026, 2, 5), Type: domain.TransactionTypeExpense, Amount: 100, AccountID: &wallet,
	})
	feb := domain.Period{Year: 2026, Month: 2}
	_, err := f.balances.SaveAll(ctx, feb, []usecase.BalanceInput{
		{AccountID: wallet, OpeningBalance: 1000},
		{AccountID: bank, OpeningBalance: 2000},
	})
	require.NoError(t, err)

	require.NoError(t, f.accounts.DeleteAccount(ctx, wallet))

	_, err = f.accounts.GetAccount(ctx, wallet)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	gotTransfer, err := f.txs.GetTransaction(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, bank, *gotTransfer.AccountID)
	assert.Nil(t, gotTransfer.ToAccountID)

	gotExpense, err := f.txs.GetTransaction(ctx, expense.ID)
	require.NoError(t, err)
	assert.Nil(t, gotExpense.AccountID)
	assert.Equal(t, int64(100), gotExpense.Amount)

	balances, err := f.balances.ListBalances(ctx, feb)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, bank, balances[0].AccountID)

	assert.ErrorIs(t, f.accounts.DeleteAccount(ctx, wallet), domain.ErrAccountNotFound)
}

func TestAccountUseCase_ImportAccountsJSON(t *testing.T) {
	f := newFixture(t)
	f.account(t, "財布")

	n, err := f.accounts.ImportAccountsJSON(ownerCtx(t), []usecase.CreateAccountInput{
		{Name: "財布"},
		{Name: "銀行", Kind: domain.AccountKindBank},
		{Name: ""},
		{Name: "銀行"},
		{Name: "カード", Kind: domain.AccountKindCard},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	accounts, err := f.accounts.ListAccounts(ownerCtx(t))
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}

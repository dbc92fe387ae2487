package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/kakeibo/internal/domain"
)

var (
	fixedTime = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	testCtx   = context.Background()
)

func TestTransactionRepository_GetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM transactions t WHERE").
		WithArgs("owner-1", "missing").
		WillReturnError(pgx.ErrNoRows)

	repo := &TransactionRepository{db: mockPool}
	_, err := repo.GetByID(testCtx, "owner-1", "missing")

	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	assertExpectations(t, mockPool)
}

func TestTransactionRepository_GetByID(t *testing.T) {
	mockPool := newMockPool(t)
	accountID := "acc-1"
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "date", "year", "month", "type", "amount",
		"account_id", "to_account_id", "category_id", "category_free", "description", "note",
		"created_at", "updated_at",
	}).AddRow(
		"tx-1", "owner-1", date, 2026, 3, domain.TransactionTypeExpense, int64(1200),
		&accountID, (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
		fixedTime, fixedTime,
	)
	mockPool.ExpectQuery("FROM transactions t WHERE").
		WithArgs("owner-1", "tx-1").
		WillReturnRows(rows)

	repo := &TransactionRepository{db: mockPool}
	got, err := repo.GetByID(testCtx, "owner-1", "tx-1")
	require.NoError(t, err)

	assert.Equal(t, "tx-1", got.ID)
	assert.Equal(t, domain.TransactionTypeExpense, got.Type)
	assert.Equal(t, int64(1200), got.Amount)
	require.NotNil(t, got.AccountID)
	assert.Equal(t, "acc-1", *got.AccountID)
	assert.Nil(t, got.ToAccountID)
	assert.Equal(t, domain.Period{Year: 2026, Month: 3}, got.Period())
	assertExpectations(t, mockPool)
}

func TestTransactionRepository_DeleteMissing(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("DELETE FROM transactions").
		WithArgs("owner-1", "tx-9").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := &TransactionRepository{db: mockPool}
	err := repo.Delete(testCtx, "owner-1", "tx-9")

	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	assertExpectations(t, mockPool)
}

func TestTransactionRepository_ListPassesFilter(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("ORDER BY t.date DESC, t.id DESC").
		WithArgs("owner-1", 2026, 3, "50%", `%50\%%`, 20, 40).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	repo := &TransactionRepository{db: mockPool}
	got, err := repo.List(testCtx, "owner-1", domain.TransactionFilter{
		Year:   2026,
		Month:  3,
		Query:  "50%",
		Limit:  20,
		Offset: 40,
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assertExpectations(t, mockPool)
}

func TestTransactionRepository_CreateDanglingReference(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"account", fkTransactionAccount, domain.ErrAccountNotFound},
		{"destination account", fkTransactionToAccount, domain.ErrAccountNotFound},
		{"category", fkTransactionCategory, domain.ErrCategoryNotFound},
		{"owner", "transactions_user_id_fkey", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			args := make([]any, 15)
			for i := range args {
				args[i] = pgxmock.AnyArg()
			}
			mockPool.ExpectExec("INSERT INTO transactions").
				WithArgs(args...).
				WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation, ConstraintName: tt.constraint})

			repo := &TransactionRepository{db: mockPool}
			err := repo.Create(testCtx, nil, &domain.Transaction{ID: "tx-1", OwnerID: "owner-1"})

			assert.ErrorIs(t, err, tt.want)
			if tt.want != domain.ErrAccountNotFound {
				assert.NotErrorIs(t, err, domain.ErrAccountNotFound)
			}
			assertExpectations(t, mockPool)
		})
	}
}

func TestTransactionRepository_UpdateDanglingCategory(t *testing.T) {
	mockPool := newMockPool(t)
	args := make([]any, 14)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	mockPool.ExpectExec("UPDATE transactions").
		WithArgs(args...).
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation, ConstraintName: fkTransactionCategory})

	repo := &TransactionRepository{db: mockPool}
	err := repo.Update(testCtx, &domain.Transaction{ID: "tx-1", OwnerID: "owner-1"})

	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assertExpectations(t, mockPool)
}

func TestAccountRepository_CreateDuplicateName(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("INSERT INTO accounts").
		WithArgs("acc-1", "owner-1", "Wallet", domain.AccountKindCash, true,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	repo := &AccountRepository{db: mockPool}
	err := repo.Create(testCtx, nil, &domain.Account{
		ID:       "acc-1",
		OwnerID:  "owner-1",
		Name:     "Wallet",
		Kind:     domain.AccountKindCash,
		IsActive: true,
	})

	assert.ErrorIs(t, err, domain.ErrAccountNameTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assertExpectations(t, mockPool)
}

func TestAccountRepository_UpdateMissing(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("UPDATE accounts").
		WithArgs("owner-1", "acc-1", "Wallet", "", false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := &AccountRepository{db: mockPool}
	err := repo.Update(testCtx, &domain.Account{ID: "acc-1", OwnerID: "owner-1", Name: "Wallet"})

	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assertExpectations(t, mockPool)
}

func TestCategoryRepository_GetByNameNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM categories WHERE user_id").
		WithArgs("owner-1", "Food").
		WillReturnError(pgx.ErrNoRows)

	repo := &CategoryRepository{db: mockPool}
	_, err := repo.GetByName(testCtx, nil, "owner-1", "Food")

	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assertExpectations(t, mockPool)
}

func TestMonthLockRepository_GetAbsent(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM monthly_locks").
		WithArgs("owner-1", 2026, 3).
		WillReturnError(pgx.ErrNoRows)

	repo := &MonthLockRepository{db: mockPool}
	lock, err := repo.Get(testCtx, "owner-1", domain.Period{Year: 2026, Month: 3})

	require.NoError(t, err)
	assert.Nil(t, lock)
	assertExpectations(t, mockPool)
}

func TestMonthLockRepository_UpsertKeepsStoredID(t *testing.T) {
	mockPool := newMockPool(t)
	created := fixedTime.Add(-24 * time.Hour)
	mockPool.ExpectQuery("INSERT INTO monthly_locks").
		WithArgs("lock-new", "owner-1", 2026, 3, true, fixedTime, fixedTime).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("lock-old", created, fixedTime))

	repo := &MonthLockRepository{db: mockPool}
	lock := &domain.MonthlyLock{
		ID:        "lock-new",
		OwnerID:   "owner-1",
		Year:      2026,
		Month:     3,
		IsLocked:  true,
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}
	require.NoError(t, repo.Upsert(testCtx, lock))

	assert.Equal(t, "lock-old", lock.ID)
	assert.Equal(t, created, lock.CreatedAt)
	assertExpectations(t, mockPool)
}

func TestMonthlyBalanceRepository_UpsertUnknownAccount(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("INSERT INTO monthly_balances").
		WithArgs("bal-1", "owner-1", "ghost", 2026, 3, int64(0),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})

	repo := &MonthlyBalanceRepository{db: mockPool}
	err := repo.Upsert(testCtx, nil, &domain.MonthlyBalance{
		ID:        "bal-1",
		OwnerID:   "owner-1",
		AccountID: "ghost",
		Year:      2026,
		Month:     3,
	})

	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assertExpectations(t, mockPool)
}

func TestSummaryRepository_TotalsByType(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM transactions").
		WithArgs("owner-1", 2026, 0).
		WillReturnRows(pgxmock.NewRows([]string{"type", "sum"}).
			AddRow(domain.TransactionTypeIncome, int64(300000)).
			AddRow(domain.TransactionTypeExpense, int64(120000)).
			AddRow(domain.TransactionTypeTransfer, int64(50000)))

	repo := &SummaryRepository{db: mockPool}
	totals, err := repo.TotalsByType(testCtx, "owner-1", 2026, 0)
	require.NoError(t, err)

	summary := domain.NewYearSummary(totals)
	assert.Equal(t, domain.YearSummary{IncomeTotal: 300000, ExpenseTotal: 120000, Net: 180000}, summary)
	assert.Zero(t, totals.Of(domain.TransactionTypeAdjust))
	assertExpectations(t, mockPool)
}

func TestSummaryRepository_OpeningBalanceTotal(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM monthly_balances").
		WithArgs("owner-1", 2026, 3).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(50000)))

	repo := &SummaryRepository{db: mockPool}
	total, err := repo.OpeningBalanceTotal(testCtx, "owner-1", domain.Period{Year: 2026, Month: 3})

	require.NoError(t, err)
	assert.Equal(t, int64(50000), total)
	assertExpectations(t, mockPool)
}

func TestLiabilityRepository_DeleteMissing(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("DELETE FROM liabilities").
		WithArgs("owner-1", "loan").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := &LiabilityRepository{db: mockPool}
	err := repo.Delete(testCtx, "owner-1", "loan")

	assert.ErrorIs(t, err, domain.ErrLiabilityNotFound)
	assertExpectations(t, mockPool)
}

func TestUserRepository_GetByName(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM users WHERE name").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "password_hash", "created_at", "updated_at"}).
			AddRow("user-1", "alice", "hash", fixedTime, fixedTime))

	repo := &UserRepository{db: mockPool}
	user, err := repo.GetByName(testCtx, "alice")

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
	assertExpectations(t, mockPool)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%coffee%", containsPattern("coffee"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\tmp%`, containsPattern(`c:\tmp`))
}

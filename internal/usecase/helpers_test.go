package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
	"github.com/iho/kakeibo/internal/usecase/mocks"
)

const testOwner = "owner-1"

var testNow = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store    *mocks.Store
	ids      *mocks.SequentialIDGenerator
	metrics  *mocks.MetricsRecorder
	cache    *mocks.MemoryCache
	locks    *usecase.MonthLockUseCase
	txs      *usecase.TransactionUseCase
	csv      *usecase.CSVUseCase
	summary  *usecase.SummaryUseCase
	accounts *usecase.AccountUseCase
	balances *usecase.MonthlyBalanceUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   mocks.NewStore(),
		ids:     mocks.NewSequentialIDGenerator("id-"),
		metrics: mocks.NewMetricsRecorder(),
		cache:   mocks.NewMemoryCache(),
	}
	clock := mocks.FixedClock{T: testNow}
	summaryCache := usecase.NewSummaryCache(f.cache, time.Minute, f.metrics, zerolog.Nop())

	f.locks = usecase.NewMonthLockUseCase(f.store.Locks(), f.ids, clock, f.metrics)
	f.txs = usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		TransactionRepo: f.store.Transactions(),
		AccountRepo:     f.store.Accounts(),
		CategoryRepo:    f.store.Categories(),
		Locks:           f.locks,
		IDGen:           f.ids,
		Clock:           clock,
		Cache:           summaryCache,
		Metrics:         f.metrics,
	})
	f.csv = usecase.NewCSVUseCase(usecase.CSVUseCaseConfig{
		TxManager:       f.store,
		TransactionRepo: f.store.Transactions(),
		AccountRepo:     f.store.Accounts(),
		CategoryRepo:    f.store.Categories(),
		Locks:           f.locks,
		IDGen:           f.ids,
		Clock:           clock,
		Cache:           summaryCache,
		Metrics:         f.metrics,
		Logger:          zerolog.Nop(),
	})
	f.summary = usecase.NewSummaryUseCase(f.store.Summaries(), summaryCache)
	f.accounts = usecase.NewAccountUseCase(f.store, f.store.Accounts(), f.store.Transactions(), f.store.Balances(), f.ids, summaryCache)
	f.balances = usecase.NewMonthlyBalanceUseCase(f.store, f.store.Balances(), f.store.Accounts(), f.locks, f.ids, nil, summaryCache)

	return f
}

func ownerCtx(t *testing.T) context.Context {
	t.Helper()
	return domain.ContextWithOwner(t.Context(), testOwner)
}

func (f *fixture) account(t *testing.T, name string) string {
	t.Helper()
	a, err := f.accounts.CreateAccount(ownerCtx(t), usecase.CreateAccountInput{Name: name})
	require.NoError(t, err)
	return a.ID
}

func (f *fixture) category(t *testing.T, name string) string {
	t.Helper()
	c, err := f.store.Categories().GetByName(ownerCtx(t), nil, testOwner, name)
	if err == nil {
		return c.ID
	}
	cat := &domain.Category{ID: f.ids.Generate(), OwnerID: testOwner, Name: name, IsActive: true}
	require.NoError(t, f.store.Categories().Create(ownerCtx(t), nil, cat))
	return cat.ID
}

func (f *fixture) create(t *testing.T, input usecase.CreateTransactionInput) *domain.Transaction {
	t.Helper()
	tx, err := f.txs.CreateTransaction(ownerCtx(t), input)
	require.NoError(t, err)
	return tx
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

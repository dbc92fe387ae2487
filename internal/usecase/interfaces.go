package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/kakeibo/internal/domain"
)

// Every repository method takes the owner explicitly; use cases read it from
// the request context with domain.OwnerFromContext. Methods that accept a Tx
// run inside it when tx is non-nil and against the pool otherwise.

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	Update(ctx context.Context, t *domain.Transaction) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	DetachAccount(ctx context.Context, tx Tx, ownerID, accountID string) error
	DetachCategory(ctx context.Context, tx Tx, ownerID, categoryID string) error
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Tx, account *domain.Account) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error)
	GetByName(ctx context.Context, tx Tx, ownerID, name string) (*domain.Account, error)
	List(ctx context.Context, ownerID string) ([]*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, tx Tx, ownerID, id string) error
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, tx Tx, category *domain.Category) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Category, error)
	GetByName(ctx context.Context, tx Tx, ownerID, name string) (*domain.Category, error)
	List(ctx context.Context, ownerID string) ([]*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, tx Tx, ownerID, id string) error
}

// MonthlyBalanceRepository defines data access for opening balances.
type MonthlyBalanceRepository interface {
	List(ctx context.Context, ownerID string, period domain.Period) ([]*domain.MonthlyBalance, error)
	// Upsert inserts or replaces the (owner, period, account) row and fills
	// in ID and timestamps from the stored row.
	Upsert(ctx context.Context, tx Tx, balance *domain.MonthlyBalance) error
	DeleteByAccount(ctx context.Context, tx Tx, ownerID, accountID string) error
}

// MonthLockRepository defines data access for month locks.
type MonthLockRepository interface {
	// Get returns nil without error when no lock row exists.
	Get(ctx context.Context, ownerID string, period domain.Period) (*domain.MonthlyLock, error)
	// Upsert inserts or updates the (owner, period) row and fills in ID and
	// timestamps from the stored row.
	Upsert(ctx context.Context, lock *domain.MonthlyLock) error
}

// SummaryRepository computes exact aggregates in the store.
type SummaryRepository interface {
	// TotalsByType sums amounts per type for a year, or for a single month
	// when month is non-zero.
	TotalsByType(ctx context.Context, ownerID string, year, month int) (domain.TypeTotals, error)
	OpeningBalanceTotal(ctx context.Context, ownerID string, period domain.Period) (int64, error)
}

// LiabilityRepository defines data access for liabilities.
type LiabilityRepository interface {
	Create(ctx context.Context, liability *domain.Liability) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Liability, error)
	List(ctx context.Context, ownerID string) ([]*domain.Liability, error)
	Update(ctx context.Context, liability *domain.Liability) error
	Delete(ctx context.Context, ownerID, id string) error
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
}

// Tx represents a database transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique IDs that sort by creation order.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Retrier re-runs an operation on transient store failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyInFlight is the placeholder CheckAndSet stores when called
// without a response, marking a request still being processed.
const IdempotencyInFlight = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// Metrics records business events.
type Metrics interface {
	TransactionWritten(operation string)
	CSVImported(rows int)
	CSVImportFailed(reason string)
	MonthLockChanged(locked bool)
	SummaryCacheLookup(hit bool)
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// NoRetry runs operations exactly once.
type NoRetry struct{}

// Retry runs the operation once.
func (NoRetry) Retry(_ context.Context, operation func() error) error { return operation() }

// NopMetrics discards every event.
type NopMetrics struct{}

func (NopMetrics) TransactionWritten(string) {}
func (NopMetrics) CSVImported(int)           {}
func (NopMetrics) CSVImportFailed(string)    {}
func (NopMetrics) MonthLockChanged(bool)     {}
func (NopMetrics) SummaryCacheLookup(bool)   {}

package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

// Store is an in-memory implementation of every repository in the usecase
// package. Begin snapshots the data and Rollback restores it, so atomic use
// cases can be tested without a database.
type Store struct {
	mu sync.Mutex

	transactions map[string]*domain.Transaction
	accounts     map[string]*domain.Account
	categories   map[string]*domain.Category
	balances     map[string]*domain.MonthlyBalance
	locks        map[string]*domain.MonthlyLock
	liabilities  map[string]*domain.Liability
	users        map[string]*domain.User

	// CreateTransactionFunc, when set, replaces transaction inserts.
	CreateTransactionFunc func(ctx context.Context, t *domain.Transaction) error
	// BeginFunc, when set, replaces Begin.
	BeginFunc func(ctx context.Context) (usecase.Tx, error)
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string]*domain.Transaction),
		accounts:     make(map[string]*domain.Account),
		categories:   make(map[string]*domain.Category),
		balances:     make(map[string]*domain.MonthlyBalance),
		locks:        make(map[string]*domain.MonthlyLock),
		liabilities:  make(map[string]*domain.Liability),
		users:        make(map[string]*domain.User),
	}
}

// Transactions returns the transaction repository view.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s} }

// Accounts returns the account repository view.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s} }

// Categories returns the category repository view.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s} }

// Balances returns the monthly balance repository view.
func (s *Store) Balances() *BalanceRepo { return &BalanceRepo{s} }

// Locks returns the month lock repository view.
func (s *Store) Locks() *LockRepo { return &LockRepo{s} }

// Summaries returns the summary repository view.
func (s *Store) Summaries() *SummaryRepo { return &SummaryRepo{s} }

// Liabilities returns the liability repository view.
func (s *Store) Liabilities() *LiabilityRepo { return &LiabilityRepo{s} }

// Users returns the user repository view.
func (s *Store) Users() *UserRepo { return &UserRepo{s} }

// TransactionCount returns the number of stored transactions.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// InsertTransaction stores t directly, bypassing CreateTransactionFunc.
func (s *Store) InsertTransaction(t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t.Clone()
	return nil
}

// Begin starts a snapshot transaction.
func (s *Store) Begin(ctx context.Context) (usecase.Tx, error) {
	if s.BeginFunc != nil {
		return s.BeginFunc(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memTx{store: s, snapshot: s.snapshotLocked()}, nil
}

type snapshot struct {
	transactions map[string]*domain.Transaction
	accounts     map[string]*domain.Account
	categories   map[string]*domain.Category
	balances     map[string]*domain.MonthlyBalance
	liabilities  map[string]*domain.Liability
}

func (s *Store) snapshotLocked() snapshot {
	return snapshot{
		transactions: copyMap(s.transactions),
		accounts:     copyMap(s.accounts),
		categories:   copyMap(s.categories),
		balances:     copyMap(s.balances),
		liabilities:  copyMap(s.liabilities),
	}
}

func copyMap[T any](m map[string]*T) map[string]*T {
	c := make(map[string]*T, len(m))
	for k, v := range m {
		cp := *v
		c[k] = &cp
	}
	return c
}

type memTx struct {
	store    *Store
	snapshot snapshot
	done     bool
}

func (t *memTx) Commit(ctx context.Context) error {
	t.done = true
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = t.snapshot.transactions
	s.accounts = t.snapshot.accounts
	s.categories = t.snapshot.categories
	s.balances = t.snapshot.balances
	s.liabilities = t.snapshot.liabilities
	return nil
}

// TransactionRepo implements usecase.TransactionRepository.
type TransactionRepo struct{ s *Store }

func (r *TransactionRepo) Create(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	if r.s.CreateTransactionFunc != nil {
		return r.s.CreateTransactionFunc(ctx, t)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions[t.ID] = t.Clone()
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}
	return t.Clone(), nil
}

func (r *TransactionRepo) Update(ctx context.Context, t *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.transactions[t.ID]
	if !ok || cur.OwnerID != t.OwnerID {
		return domain.ErrTransactionNotFound
	}
	r.s.transactions[t.ID] = t.Clone()
	return nil
}

func (r *TransactionRepo) Delete(ctx context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return domain.ErrTransactionNotFound
	}
	delete(r.s.transactions, id)
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))

	var out []*domain.Transaction
	for _, t := range r.s.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if filter.Year != 0 && t.Year != filter.Year {
			continue
		}
		if filter.Month != 0 && t.Month != filter.Month {
			continue
		}
		if q != "" && !r.matches(t, q) {
			continue
		}
		out = append(out, t.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *TransactionRepo) matches(t *domain.Transaction, q string) bool {
	fields := []*string{t.Description, t.Note, t.CategoryFree}
	if t.AccountID != nil {
		if a, ok := r.s.accounts[*t.AccountID]; ok {
			fields = append(fields, &a.Name)
		}
	}
	if t.CategoryID != nil {
		if c, ok := r.s.categories[*t.CategoryID]; ok {
			fields = append(fields, &c.Name)
		}
	}
	for _, f := range fields {
		if f != nil && strings.Contains(strings.ToLower(*f), q) {
			return true
		}
	}
	return false
}

func (r *TransactionRepo) DetachAccount(ctx context.Context, tx usecase.Tx, ownerID, accountID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if t.AccountID != nil && *t.AccountID == accountID {
			t.AccountID = nil
		}
		if t.ToAccountID != nil && *t.ToAccountID == accountID {
			t.ToAccountID = nil
		}
	}
	return nil
}

func (r *TransactionRepo) DetachCategory(ctx context.Context, tx usecase.Tx, ownerID, categoryID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.OwnerID == ownerID && t.CategoryID != nil && *t.CategoryID == categoryID {
			t.CategoryID = nil
		}
	}
	return nil
}

// AccountRepo implements usecase.AccountRepository.
type AccountRepo struct{ s *Store }

func (r *AccountRepo) Create(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.OwnerID == account.OwnerID && a.Name == account.Name {
			return domain.ErrAccountNameTaken
		}
	}
	cp := *account
	r.s.accounts[account.ID] = &cp
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok || a.OwnerID != ownerID {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *AccountRepo) GetByName(ctx context.Context, tx usecase.Tx, ownerID, name string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.OwnerID == ownerID && a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepo) List(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Account
	for _, a := range r.s.accounts {
		if a.OwnerID == ownerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *AccountRepo) Update(ctx context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.accounts[account.ID]
	if !ok || cur.OwnerID != account.OwnerID {
		return domain.ErrAccountNotFound
	}
	for _, a := range r.s.accounts {
		if a.ID != account.ID && a.OwnerID == account.OwnerID && a.Name == account.Name {
			return domain.ErrAccountNameTaken
		}
	}
	cp := *account
	r.s.accounts[account.ID] = &cp
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, tx usecase.Tx, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok || a.OwnerID != ownerID {
		return domain.ErrAccountNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

// CategoryRepo implements usecase.CategoryRepository.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(ctx context.Context, tx usecase.Tx, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.OwnerID == category.OwnerID && c.Name == category.Name {
			return domain.ErrCategoryNameTaken
		}
	}
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return nil, domain.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) GetByName(ctx context.Context, tx usecase.Tx, ownerID, name string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.OwnerID == ownerID && c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *CategoryRepo) List(ctx context.Context, ownerID string) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Category
	for _, c := range r.s.categories {
		if c.OwnerID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *CategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[category.ID]
	if !ok || cur.OwnerID != category.OwnerID {
		return domain.ErrCategoryNotFound
	}
	for _, c := range r.s.categories {
		if c.ID != category.ID && c.OwnerID == category.OwnerID && c.Name == category.Name {
			return domain.ErrCategoryNameTaken
		}
	}
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, tx usecase.Tx, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return domain.ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	return nil
}

// BalanceRepo implements usecase.MonthlyBalanceRepository.
type BalanceRepo struct{ s *Store }

func balanceKey(ownerID string, year, month int, accountID string) string {
	return fmt.Sprintf("%s/%04d-%02d/%s", ownerID, year, month, accountID)
}

func (r *BalanceRepo) List(ctx context.Context, ownerID string, period domain.Period) ([]*domain.MonthlyBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.MonthlyBalance
	for _, b := range r.s.balances {
		if b.OwnerID == ownerID && b.Period() == period {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (r *BalanceRepo) Upsert(ctx context.Context, tx usecase.Tx, balance *domain.MonthlyBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := balanceKey(balance.OwnerID, balance.Year, balance.Month, balance.AccountID)
	if cur, ok := r.s.balances[key]; ok {
		balance.ID = cur.ID
		balance.CreatedAt = cur.CreatedAt
	}
	cp := *balance
	r.s.balances[key] = &cp
	return nil
}

func (r *BalanceRepo) DeleteByAccount(ctx context.Context, tx usecase.Tx, ownerID, accountID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, b := range r.s.balances {
		if b.OwnerID == ownerID && b.AccountID == accountID {
			delete(r.s.balances, k)
		}
	}
	return nil
}

// LockRepo implements usecase.MonthLockRepository.
type LockRepo struct{ s *Store }

func (r *LockRepo) Get(ctx context.Context, ownerID string, period domain.Period) (*domain.MonthlyLock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locks[ownerID+"/"+period.String()]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *LockRepo) Upsert(ctx context.Context, lock *domain.MonthlyLock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := lock.OwnerID + "/" + lock.Period().String()
	if cur, ok := r.s.locks[key]; ok {
		lock.ID = cur.ID
		lock.CreatedAt = cur.CreatedAt
	}
	cp := *lock
	r.s.locks[key] = &cp
	return nil
}

// SummaryRepo implements usecase.SummaryRepository over the stored rows.
type SummaryRepo struct{ s *Store }

func (r *SummaryRepo) TotalsByType(ctx context.Context, ownerID string, year, month int) (domain.TypeTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := domain.TypeTotals{}
	for _, t := range r.s.transactions {
		if t.OwnerID != ownerID || t.Year != year {
			continue
		}
		if month != 0 && t.Month != month {
			continue
		}
		totals[t.Type] += t.Amount
	}
	return totals, nil
}

func (r *SummaryRepo) OpeningBalanceTotal(ctx context.Context, ownerID string, period domain.Period) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, b := range r.s.balances {
		if b.OwnerID == ownerID && b.Period() == period {
			total += b.OpeningBalance
		}
	}
	return total, nil
}

// LiabilityRepo implements usecase.LiabilityRepository.
type LiabilityRepo struct{ s *Store }

func (r *LiabilityRepo) Create(ctx context.Context, liability *domain.Liability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.liabilities {
		if l.OwnerID == liability.OwnerID && l.Name == liability.Name {
			return domain.ErrLiabilityNameTaken
		}
	}
	cp := *liability
	r.s.liabilities[liability.ID] = &cp
	return nil
}

func (r *LiabilityRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Liability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.liabilities[id]
	if !ok || l.OwnerID != ownerID {
		return nil, domain.ErrLiabilityNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *LiabilityRepo) List(ctx context.Context, ownerID string) ([]*domain.Liability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Liability
	for _, l := range r.s.liabilities {
		if l.OwnerID == ownerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *LiabilityRepo) Update(ctx context.Context, liability *domain.Liability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.liabilities[liability.ID]
	if !ok || cur.OwnerID != liability.OwnerID {
		return domain.ErrLiabilityNotFound
	}
	cp := *liability
	r.s.liabilities[liability.ID] = &cp
	return nil
}

func (r *LiabilityRepo) Delete(ctx context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.liabilities[id]
	if !ok || l.OwnerID != ownerID {
		return domain.ErrLiabilityNotFound
	}
	delete(r.s.liabilities, id)
	return nil
}

// UserRepo implements usecase.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Name == user.Name {
			return domain.ErrUserNameTaken
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Name == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// SequentialIDGenerator returns zero-padded ids that sort in creation order.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a SequentialIDGenerator.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%06d", g.prefix, g.n)
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// MetricsRecorder counts the events it receives.
type MetricsRecorder struct {
	mu           sync.Mutex
	Writes       map[string]int
	ImportedRows int
	ImportFailed map[string]int
	LockChanges  int
	CacheHits    int
	CacheMisses  int
}

// NewMetricsRecorder creates a MetricsRecorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{
		Writes:       make(map[string]int),
		ImportFailed: make(map[string]int),
	}
}

func (m *MetricsRecorder) TransactionWritten(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes[operation]++
}

func (m *MetricsRecorder) CSVImported(rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImportedRows += rows
}

func (m *MetricsRecorder) CSVImportFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImportFailed[reason]++
}

func (m *MetricsRecorder) MonthLockChanged(locked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockChanges++
}

func (m *MetricsRecorder) SummaryCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
}

// MemoryCache is a map-backed usecase.Cache that ignores TTLs.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]byte)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, usecase.ErrCacheMiss
	}
	return v, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

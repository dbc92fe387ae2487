package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/iho/kakeibo/internal/domain"
)

// CSVUseCaseConfig holds the dependencies of CSVUseCase.
type CSVUseCaseConfig struct {
	TxManager       TxManager
	TransactionRepo TransactionRepository
	AccountRepo     AccountRepository
	CategoryRepo    CategoryRepository
	Locks           *MonthLockUseCase
	IDGen           IDGenerator
	Clock           Clock
	Retrier         Retrier
	Cache           *SummaryCache
	Metrics         Metrics
	Logger          zerolog.Logger
}

// CSVUseCase exports transactions to CSV and imports them back.
type CSVUseCase struct {
	txManager    TxManager
	txRepo       TransactionRepository
	accountRepo  AccountRepository
	categoryRepo CategoryRepository
	locks        *MonthLockUseCase
	idGen        IDGenerator
	clock        Clock
	retrier      Retrier
	cache        *SummaryCache
	metrics      Metrics
	logger       zerolog.Logger
}

// NewCSVUseCase creates a new CSVUseCase.
func NewCSVUseCase(cfg CSVUseCaseConfig) *CSVUseCase {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return &CSVUseCase{
		txManager:    cfg.TxManager,
		txRepo:       cfg.TransactionRepo,
		accountRepo:  cfg.AccountRepo,
		categoryRepo: cfg.CategoryRepo,
		locks:        cfg.Locks,
		idGen:        cfg.IDGen,
		clock:        cfg.Clock,
		retrier:      retrierOrDefault(cfg.Retrier),
		cache:        cfg.Cache,
		metrics:      metricsOrDefault(cfg.Metrics),
		logger:       cfg.Logger,
	}
}

// ExportFilter restricts an export to a year, or to a single month of a
// year. Month is ignored without Year.
type ExportFilter struct {
	Year  int
	Month int
}

// Export writes the owner's transactions, newest first.
func (uc *CSVUseCase) Export(ctx context.Context, w io.Writer, filter ExportFilter) error {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return err
	}

	txFilter := domain.TransactionFilter{}
	if filter.Year != 0 {
		txFilter.Year = filter.Year
		if filter.Month != 0 {
			if err := (domain.Period{Year: filter.Year, Month: filter.Month}).Validate(); err != nil {
				return err
			}
			txFilter.Month = filter.Month
		}
	}

	transactions, err := uc.txRepo.List(ctx, ownerID, txFilter)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	accountNames, err := uc.accountNames(ctx, ownerID)
	if err != nil {
		return err
	}
	categoryNames, err := uc.categoryNames(ctx, ownerID)
	if err != nil {
		return err
	}

	records := make([]CSVRecord, 0, len(transactions))
	for _, t := range transactions {
		records = append(records, CSVRecord{
			Date:         t.Date,
			Type:         t.Type,
			Amount:       t.Amount,
			Account:      lookupName(accountNames, t.AccountID),
			ToAccount:    lookupName(accountNames, t.ToAccountID),
			Category:     lookupName(categoryNames, t.CategoryID),
			CategoryFree: deref(t.CategoryFree),
			Description:  deref(t.Description),
			Note:         deref(t.Note),
		})
	}

	return WriteCSV(w, records)
}

// Import creates one transaction per row, resolving account and category
// names and creating missing ones. Either every row is stored or none is.
// Locks are not consulted; see ImportChecked.
func (uc *CSVUseCase) Import(ctx context.Context, r io.Reader) (int, error) {
	records, err := uc.parse(r)
	if err != nil {
		return 0, err
	}
	return uc.importRecords(ctx, records)
}

// ImportChecked is Import preceded by a lock check of every period the file
// touches. Nothing is written when any of them is locked.
func (uc *CSVUseCase) ImportChecked(ctx context.Context, r io.Reader) (int, error) {
	records, err := uc.parse(r)
	if err != nil {
		return 0, err
	}

	periods := make([]domain.Period, 0, len(records))
	for _, rec := range records {
		periods = append(periods, rec.Period())
	}
	if err := uc.locks.EnsureUnlocked(ctx, periods...); err != nil {
		uc.metrics.CSVImportFailed("locked")
		return 0, err
	}

	return uc.importRecords(ctx, records)
}

func (uc *CSVUseCase) parse(r io.Reader) ([]CSVRecord, error) {
	records, err := ParseCSV(r)
	if err != nil {
		uc.metrics.CSVImportFailed("malformed")
		return nil, err
	}
	return records, nil
}

func (uc *CSVUseCase) importRecords(ctx context.Context, records []CSVRecord) (int, error) {
	ownerID, err := domain.OwnerFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	err = uc.retrier.Retry(ctx, func() error {
		return inTx(ctx, uc.txManager, func(tx Tx) error {
			res := &nameResolver{uc: uc, tx: tx, ownerID: ownerID}
			for _, rec := range records {
				t, err := uc.toTransaction(ctx, res, ownerID, rec)
				if err != nil {
					return fmt.Errorf("line %d: %w", rec.Line, err)
				}
				if err := uc.txRepo.Create(ctx, tx, t); err != nil {
					return fmt.Errorf("line %d: %w", rec.Line, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		uc.metrics.CSVImportFailed("store")
		return 0, err
	}

	uc.cache.Invalidate(ctx, ownerID)
	uc.metrics.CSVImported(len(records))

	uc.logger.Info().
		Str("owner_id", ownerID).
		Int("rows", len(records)).
		Msg("csv import committed")

	return len(records), nil
}

func (uc *CSVUseCase) toTransaction(ctx context.Context, res *nameResolver, ownerID string, rec CSVRecord) (*domain.Transaction, error) {
	accountID, err := res.account(ctx, rec.Account)
	if err != nil {
		return nil, err
	}
	toAccountID, err := res.account(ctx, rec.ToAccount)
	if err != nil {
		return nil, err
	}
	categoryID, err := res.category(ctx, rec.Category)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	t := &domain.Transaction{
		ID:           uc.idGen.Generate(),
		OwnerID:      ownerID,
		Type:         rec.Type,
		Amount:       rec.Amount,
		AccountID:    accountID,
		ToAccountID:  toAccountID,
		CategoryID:   categoryID,
		CategoryFree: optional(rec.CategoryFree),
		Description:  optional(rec.Description),
		Note:         optional(rec.Note),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	t.SetDate(rec.Date)

	return t, nil
}

// nameResolver maps names to IDs within one import, creating accounts and
// categories that do not exist yet.
type nameResolver struct {
	uc         *CSVUseCase
	tx         Tx
	ownerID    string
	accounts   map[string]string
	categories map[string]string
}

func (r *nameResolver) account(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	if r.accounts == nil {
		r.accounts = make(map[string]string)
	}
	if id, ok := r.accounts[name]; ok {
		return &id, nil
	}

	existing, err := r.uc.accountRepo.GetByName(ctx, r.tx, r.ownerID, name)
	switch {
	case err == nil:
		r.accounts[name] = existing.ID
		return &existing.ID, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	now := r.uc.clock.Now().UTC()
	account := &domain.Account{
		ID:        r.uc.idGen.Generate(),
		OwnerID:   r.ownerID,
		Name:      name,
		Kind:      domain.AccountKindOther,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := r.uc.accountRepo.Create(ctx, r.tx, account); err != nil {
		return nil, err
	}

	r.accounts[name] = account.ID
	return &account.ID, nil
}

func (r *nameResolver) category(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	if r.categories == nil {
		r.categories = make(map[string]string)
	}
	if id, ok := r.categories[name]; ok {
		return &id, nil
	}

	existing, err := r.uc.categoryRepo.GetByName(ctx, r.tx, r.ownerID, name)
	switch {
	case err == nil:
		r.categories[name] = existing.ID
		return &existing.ID, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	now := r.uc.clock.Now().UTC()
	category := &domain.Category{
		ID:        r.uc.idGen.Generate(),
		OwnerID:   r.ownerID,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := domain.ValidateName(category.Name); err != nil {
		return nil, err
	}
	if err := r.uc.categoryRepo.Create(ctx, r.tx, category); err != nil {
		return nil, err
	}

	r.categories[name] = category.ID
	return &category.ID, nil
}

func (uc *CSVUseCase) accountNames(ctx context.Context, ownerID string) (map[string]string, error) {
	accounts, err := uc.accountRepo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names, nil
}

func (uc *CSVUseCase) categoryNames(ctx context.Context, ownerID string) (map[string]string, error) {
	categories, err := uc.categoryRepo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func lookupName(names map[string]string, id *string) string {
	if id == nil {
		return ""
	}
	return names[*id]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

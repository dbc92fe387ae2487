package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

type indexView struct {
	baseView
	Year        int
	Summary     domain.YearSummary
	Accounts    []*domain.Account
	Liabilities []*domain.Liability
	Months      []int
}

// Index shows the yearly summary and links to every elapsed month.
func (p *Pages) Index(w http.ResponseWriter, r *http.Request) {
	year := p.resolveYear(r.URL.Query().Get("year"))
	ctx := r.Context()

	summary, err := p.cfg.Summary.YearSummary(ctx, year)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	accounts, err := p.cfg.Accounts.ListAccounts(ctx)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	liabilities, err := p.cfg.Liabilities.ListLiabilities(ctx)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	months := make([]int, 0, 12)
	for m := 1; m <= p.maxMonth(year); m++ {
		months = append(months, m)
	}

	p.render(w, r, http.StatusOK, "index.html", indexView{
		baseView:    p.base(year),
		Year:        year,
		Summary:     summary,
		Accounts:    activeAccounts(accounts),
		Liabilities: activeLiabilities(liabilities),
		Months:      months,
	})
}

type txRow struct {
	Tx          *domain.Transaction
	Account     string
	ToAccount   string
	Category    string
	Description string
	Note        string
}

type monthView struct {
	baseView
	Year       int
	Month      int
	Summary    domain.MonthSummary
	Rows       []txRow
	Accounts   []*domain.Account
	Categories []*domain.Category
	IsLocked   bool
	MaxDay     int
	Types      []domain.TransactionType
	Editing    *domain.Transaction
	EditingDay int
}

// Month shows a month's summary, its transactions, the entry form and the
// lock switch. ?edit=<id> loads a transaction into the form.
func (p *Pages) Month(w http.ResponseWriter, r *http.Request) {
	period, err := p.monthParam(r)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	ctx := r.Context()

	summary, err := p.cfg.Summary.MonthSummary(ctx, period)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	txs, err := p.cfg.Transactions.ListTransactions(ctx, usecase.ListTransactionsInput{
		Period: period,
		Limit:  domain.MaxPageSize,
	})
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	accounts, err := p.cfg.Accounts.ListAccounts(ctx)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	categories, err := p.cfg.Categories.ListCategories(ctx)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	locked, err := p.cfg.Locks.IsLocked(ctx, period)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	view := monthView{
		baseView:   p.base(period.Year),
		Year:       period.Year,
		Month:      period.Month,
		Summary:    summary,
		Rows:       transactionRows(txs, accounts, categories),
		Accounts:   activeAccounts(accounts),
		Categories: activeCategories(categories),
		IsLocked:   locked,
		MaxDay:     p.maxDay(period),
		Types:      domain.TransactionTypes,
	}

	if id := r.URL.Query().Get("edit"); id != "" {
		tx, err := p.cfg.Transactions.GetTransaction(ctx, id)
		switch {
		case err == nil:
			view.Editing = tx
			view.EditingDay = tx.Date.Day()
		case !errors.Is(err, domain.ErrNotFound):
			p.renderError(w, r, err)
			return
		}
	}

	p.render(w, r, http.StatusOK, "month.html", view)
}

// maxDay is the last selectable day: today in the current month.
func (p *Pages) maxDay(period domain.Period) int {
	days := period.Days()
	today := p.now()
	if period.Year == today.Year() && period.Month == int(today.Month()) && today.Day() < days {
		return today.Day()
	}
	return days
}

// SetLock toggles the month lock from the form field is_locked (0 or 1).
func (p *Pages) SetLock(w http.ResponseWriter, r *http.Request) {
	period, err := p.monthParam(r)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	locked, err := strconv.Atoi(r.PostFormValue("is_locked"))
	if err != nil {
		p.renderError(w, r, malformed(err))
		return
	}

	if _, err := p.cfg.Locks.SetLock(r.Context(), period, locked != 0); err != nil {
		p.renderError(w, r, err)
		return
	}

	redirect(w, r, monthURL(period))
}

// SaveTransaction creates a transaction, or replaces every field of tx_id.
func (p *Pages) SaveTransaction(w http.ResponseWriter, r *http.Request) {
	period, err := p.monthParam(r)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		p.renderError(w, r, malformed(err))
		return
	}

	form, err := parseTransactionForm(r, period)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	ctx := r.Context()
	if id := r.PostFormValue("tx_id"); id != "" {
		_, err = p.cfg.Transactions.UpdateTransaction(ctx, id, transactionForm(form).patch())
	} else {
		_, err = p.cfg.Transactions.CreateTransaction(ctx, form)
	}
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	redirect(w, r, monthURL(period))
}

// DeleteTransaction removes a transaction of the month.
func (p *Pages) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	period, err := p.monthParam(r)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	err = p.cfg.Transactions.DeleteTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		p.renderError(w, r, err)
		return
	}

	redirect(w, r, monthURL(period))
}

type transactionForm usecase.CreateTransactionInput

func (f transactionForm) patch() domain.TransactionPatch {
	date := f.Date
	typ := f.Type
	amount := f.Amount
	return domain.TransactionPatch{
		Date:         &date,
		Type:         &typ,
		Amount:       &amount,
		AccountID:    domain.Nullable[string]{Set: true, Value: f.AccountID},
		ToAccountID:  domain.Nullable[string]{Set: true, Value: f.ToAccountID},
		CategoryID:   domain.Nullable[string]{Set: true, Value: f.CategoryID},
		CategoryFree: domain.Nullable[string]{Set: true, Value: f.CategoryFree},
		Description:  domain.Nullable[string]{Set: true, Value: f.Description},
		Note:         domain.Nullable[string]{Set: true, Value: f.Note},
	}
}

func parseTransactionForm(r *http.Request, period domain.Period) (usecase.CreateTransactionInput, error) {
	day, err := strconv.Atoi(r.PostFormValue("day"))
	if err != nil || day < 1 || day > period.Days() {
		return usecase.CreateTransactionInput{}, fmt.Errorf("%w: invalid day", domain.ErrValidation)
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("amount")), 10, 64)
	if err != nil {
		return usecase.CreateTransactionInput{}, fmt.Errorf("%w: amount must be an integer", domain.ErrMalformedInput)
	}

	return usecase.CreateTransactionInput{
		Date:         time.Date(period.Year, time.Month(period.Month), day, 0, 0, 0, 0, time.UTC),
		Type:         domain.TransactionType(r.PostFormValue("type")),
		Amount:       amount,
		AccountID:    optionalField(r, "account_id"),
		ToAccountID:  optionalField(r, "to_account_id"),
		CategoryID:   optionalField(r, "category_id"),
		CategoryFree: optionalField(r, "category_free"),
		Description:  optionalField(r, "description"),
		Note:         optionalField(r, "note"),
	}, nil
}

// optionalField returns nil for an empty form value.
func optionalField(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" {
		return nil
	}
	return &v
}

func monthURL(period domain.Period) string {
	return fmt.Sprintf("/month/%d/%d", period.Year, period.Month)
}

func transactionRows(txs []*domain.Transaction, accounts []*domain.Account, categories []*domain.Category) []txRow {
	accountNames := make(map[string]string, len(accounts))
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	lookup := func(names map[string]string, id *string) string {
		if id == nil {
			return ""
		}
		return names[*id]
	}
	text := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	rows := make([]txRow, len(txs))
	for i, t := range txs {
		category := lookup(categoryNames, t.CategoryID)
		if category == "" {
			category = text(t.CategoryFree)
		}
		rows[i] = txRow{
			Tx:          t,
			Account:     lookup(accountNames, t.AccountID),
			ToAccount:   lookup(accountNames, t.ToAccountID),
			Category:    category,
			Description: text(t.Description),
			Note:        text(t.Note),
		}
	}
	return rows
}

func activeAccounts(accounts []*domain.Account) []*domain.Account {
	out := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}

func activeCategories(categories []*domain.Category) []*domain.Category {
	out := make([]*domain.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

func activeLiabilities(liabilities []*domain.Liability) []*domain.Liability {
	out := make([]*domain.Liability, 0, len(liabilities))
	for _, l := range liabilities {
		if l.IsActive {
			out = append(out, l)
		}
	}
	return out
}

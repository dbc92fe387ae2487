// Package web serves the server-rendered HTML pages of the ledger.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/infrastructure/logger"
	"github.com/iho/kakeibo/internal/usecase"
)

// yearOptions is how many years the year selector offers.
const yearOptions = 9

// TransactionService is the transaction behavior the pages use.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// AccountService is the account behavior the pages use.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	ImportAccountsJSON(ctx context.Context, items []usecase.CreateAccountInput) (int, error)
}

// CategoryService is the category behavior the pages use.
type CategoryService interface {
	CreateCategory(ctx context.Context, input usecase.CreateCategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// LiabilityService is the liability behavior the pages use.
type LiabilityService interface {
	CreateLiability(ctx context.Context, input usecase.CreateLiabilityInput) (*domain.Liability, error)
	ListLiabilities(ctx context.Context) ([]*domain.Liability, error)
	DeleteLiability(ctx context.Context, id string) error
}

// BalanceService is the opening balance behavior the pages use.
type BalanceService interface {
	ListBalances(ctx context.Context, period domain.Period) ([]*domain.MonthlyBalance, error)
	SaveAll(ctx context.Context, period domain.Period, inputs []usecase.BalanceInput) ([]*domain.MonthlyBalance, error)
}

// LockService is the month lock behavior the pages use.
type LockService interface {
	IsLocked(ctx context.Context, period domain.Period) (bool, error)
	SetLock(ctx context.Context, period domain.Period, locked bool) (*domain.MonthlyLock, error)
}

// SummaryService is the summary behavior the pages use.
type SummaryService interface {
	YearSummary(ctx context.Context, year int) (domain.YearSummary, error)
	MonthSummary(ctx context.Context, period domain.Period) (domain.MonthSummary, error)
}

// UserService verifies credentials for the login form.
type UserService interface {
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
	TokenDuration() time.Duration
}

// Config holds the dependencies of Pages.
type Config struct {
	Transactions TransactionService
	Accounts     AccountService
	Categories   CategoryService
	Liabilities  LiabilityService
	Balances     BalanceService
	Locks        LockService
	Summary      SummaryService
	Users        UserService
	Tokens       TokenIssuer
	AuthEnabled  bool
	SecureCookie bool
	Logger       zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Pages renders and handles the HTML pages.
type Pages struct {
	cfg       Config
	templates *template.Template
	now       func() time.Time
}

// New parses the embedded templates.
func New(cfg Config) (*Pages, error) {
	tmpl, err := template.New("pages").
		Funcs(templateFuncs(newAmountFormatter(language.Japanese))).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Pages{cfg: cfg, templates: tmpl, now: now}, nil
}

// render executes a template into a buffer first so a failing template never
// leaves a half-written page.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log := logger.WithContext(r.Context(), p.cfg.Logger)
		log.Error().Err(err).Str("template", name).Msg("failed to render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

type errorPage struct {
	Status  int
	Title   string
	Message string
}

// renderError shows an error page with the status the error category maps to.
func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log := logger.WithContext(r.Context(), p.cfg.Logger)
		log.Error().Err(err).Str("path", r.URL.Path).Msg("page request failed")
		message = "予期しないエラーが発生しました。"
	}

	p.render(w, r, status, "error.html", errorPage{
		Status:  status,
		Title:   http.StatusText(status),
		Message: message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPeriodLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

var errFutureMonth = fmt.Errorf("%w: future month is not available", domain.ErrNotFound)

// resolveYear clamps a requested year to the current one. Empty or
// unparsable input selects the current year.
func (p *Pages) resolveYear(raw string) int {
	current := p.now().Year()
	year, err := strconv.Atoi(raw)
	if err != nil || year > current {
		return current
	}
	return year
}

// maxMonth is the last month of year that may be shown: none in the future.
func (p *Pages) maxMonth(year int) int {
	today := p.now()
	switch {
	case year < today.Year():
		return 12
	case year == today.Year():
		return int(today.Month())
	default:
		return 0
	}
}

// monthParam reads the {year}/{month} route and rejects future months.
func (p *Pages) monthParam(r *http.Request) (domain.Period, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return domain.Period{}, fmt.Errorf("%w: year must be an integer", domain.ErrMalformedInput)
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return domain.Period{}, fmt.Errorf("%w: month must be an integer", domain.ErrMalformedInput)
	}

	period, err := domain.NewPeriod(year, month)
	if err != nil {
		return domain.Period{}, err
	}
	if month > p.maxMonth(year) {
		return domain.Period{}, errFutureMonth
	}
	return period, nil
}

type baseView struct {
	SelectedYear int
	YearOptions  []int
	AuthEnabled  bool
}

func (p *Pages) base(selected int) baseView {
	current := p.now().Year()
	years := make([]int, 0, yearOptions)
	for y := current; y > current-yearOptions; y-- {
		years = append(years, y)
	}
	return baseView{SelectedYear: selected, YearOptions: years, AuthEnabled: p.cfg.AuthEnabled}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Register mounts the signed-in pages. The login routes are mounted by the
// caller because they sit outside the page guard.
func (p *Pages) Register(r chi.Router) {
	r.Get("/", p.Index)
	r.Get("/settings", p.Settings)
	r.Post("/settings/accounts", p.CreateAccount)
	r.Post("/settings/accounts/import-json", p.ImportAccounts)
	r.Post("/settings/accounts/delete", p.DeleteAccounts)
	r.Post("/settings/categories", p.CreateCategory)
	r.Post("/settings/categories/delete", p.DeleteCategories)
	r.Post("/settings/liabilities", p.CreateLiability)
	r.Post("/settings/liabilities/delete", p.DeleteLiabilities)

	r.Route("/month/{year}/{month}", func(r chi.Router) {
		r.Get("/", p.Month)
		r.Post("/lock", p.SetLock)
		r.Post("/transactions", p.SaveTransaction)
		r.Post("/transactions/{id}/delete", p.DeleteTransaction)
	})
	r.Get("/opening-balances/{year}/{month}", p.OpeningBalances)
	r.Post("/opening-balances/{year}/{month}", p.SaveOpeningBalances)
}

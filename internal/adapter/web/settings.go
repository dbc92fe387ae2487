package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

type settingsView struct {
	baseView
	Accounts    []*domain.Account
	Categories  []*domain.Category
	Liabilities []*domain.Liability
}

// Settings lists accounts, categories and liabilities with their forms.
func (p *Pages) Settings(w http.ResponseWriter, r *http.Request) {
	year := p.resolveYear(r.URL.Query().Get("year"))
	ctx := r.Context()

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
	liabilities, err := p.cfg.Liabilities.ListLiabilities(ctx)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	p.render(w, r, http.StatusOK, "settings.html", settingsView{
		baseView:    p.base(year),
		Accounts:    accounts,
		Categories:  categories,
		Liabilities: liabilities,
	})
}

// CreateAccount adds an account from the settings form.
func (p *Pages) CreateAccount(w http.ResponseWriter, r *http.Request) {
	_, err := p.cfg.Accounts.CreateAccount(r.Context(), usecase.CreateAccountInput{
		Name: strings.TrimSpace(r.PostFormValue("name")),
		Kind: strings.TrimSpace(r.PostFormValue("kind")),
		Note: optionalField(r, "note"),
	})
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	p.backToSettings(w, r)
}

// ImportAccounts creates accounts from the JSON pasted into the payload
// field.
func (p *Pages) ImportAccounts(w http.ResponseWriter, r *http.Request) {
	items, err := parseAccountsPayload(r.PostFormValue("payload"))
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	if _, err := p.cfg.Accounts.ImportAccountsJSON(r.Context(), items); err != nil {
		p.renderError(w, r, err)
		return
	}
	p.backToSettings(w, r)
}

// DeleteAccounts removes every account checked in account_ids.
func (p *Pages) DeleteAccounts(w http.ResponseWriter, r *http.Request) {
	p.deleteChecked(w, r, "account_ids", p.cfg.Accounts.DeleteAccount)
}

// CreateCategory adds a non-fixed category.
func (p *Pages) CreateCategory(w http.ResponseWriter, r *http.Request) {
	_, err := p.cfg.Categories.CreateCategory(r.Context(), usecase.CreateCategoryInput{
		Name: strings.TrimSpace(r.PostFormValue("name")),
	})
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	p.backToSettings(w, r)
}

// DeleteCategories removes every category checked in category_ids.
func (p *Pages) DeleteCategories(w http.ResponseWriter, r *http.Request) {
	p.deleteChecked(w, r, "category_ids", p.cfg.Categories.DeleteCategory)
}

// CreateLiability adds a liability.
func (p *Pages) CreateLiability(w http.ResponseWriter, r *http.Request) {
	balance, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("balance")), 10, 64)
	if err != nil {
		p.renderError(w, r, fmt.Errorf("%w: balance must be an integer", domain.ErrMalformedInput))
		return
	}

	input := usecase.CreateLiabilityInput{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Balance: balance,
		Note:    optionalField(r, "note"),
	}
	if v := optionalField(r, "monthly_payment"); v != nil {
		n, err := strconv.ParseInt(*v, 10, 64)
		if err != nil {
			p.renderError(w, r, fmt.Errorf("%w: monthly_payment must be an integer", domain.ErrMalformedInput))
			return
		}
		input.MonthlyPayment = &n
	}
	if v := optionalField(r, "payment_day"); v != nil {
		n, err := strconv.Atoi(*v)
		if err != nil {
			p.renderError(w, r, fmt.Errorf("%w: payment_day must be an integer", domain.ErrMalformedInput))
			return
		}
		input.PaymentDay = &n
	}

	if _, err := p.cfg.Liabilities.CreateLiability(r.Context(), input); err != nil {
		p.renderError(w, r, err)
		return
	}
	p.backToSettings(w, r)
}

// DeleteLiabilities removes every liability checked in liability_ids.
func (p *Pages) DeleteLiabilities(w http.ResponseWriter, r *http.Request) {
	p.deleteChecked(w, r, "liability_ids", p.cfg.Liabilities.DeleteLiability)
}

// deleteChecked deletes each id of a checkbox list. Ids that no longer exist
// are skipped.
func (p *Pages) deleteChecked(w http.ResponseWriter, r *http.Request, field string, del func(ctx context.Context, id string) error) {
	if err := r.ParseForm(); err != nil {
		p.renderError(w, r, malformed(err))
		return
	}

	for _, id := range r.PostForm[field] {
		if err := del(r.Context(), id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			p.renderError(w, r, err)
			return
		}
	}
	p.backToSettings(w, r)
}

func (p *Pages) backToSettings(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, fmt.Sprintf("/settings?year=%d", p.resolveYear(r.PostFormValue("year"))))
}

type accountPayload struct {
	Name string  `json:"name"`
	Kind string  `json:"kind"`
	Note *string `json:"note"`
}

// parseAccountsPayload accepts a JSON list of accounts or an object with an
// "accounts" list.
func parseAccountsPayload(raw string) ([]usecase.CreateAccountInput, error) {
	var list []accountPayload
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		var wrapped struct {
			Accounts []accountPayload `json:"accounts"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: invalid json: %w", domain.ErrMalformedInput, err)
		}
		list = wrapped.Accounts
	}

	items := make([]usecase.CreateAccountInput, len(list))
	for i, a := range list {
		items[i] = usecase.CreateAccountInput{Name: a.Name, Kind: a.Kind, Note: a.Note}
	}
	return items, nil
}

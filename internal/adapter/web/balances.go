package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

type balanceRow struct {
	Account        *domain.Account
	OpeningBalance int64
	Note           string
}

type balancesView struct {
	baseView
	Year     int
	Month    int
	Rows     []balanceRow
	IsLocked bool
}

// OpeningBalances shows the opening balance sheet of a month for every
// active non-card account.
func (p *Pages) OpeningBalances(w http.ResponseWriter, r *http.Request) {
	period, err := p.monthParam(r)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	ctx := r.Context()

	accounts, err := p.cfg.Accounts.ListAccounts(ctx)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	balances, err := p.cfg.Balances.ListBalances(ctx, period)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	locked, err := p.cfg.Locks.IsLocked(ctx, period)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	byAccount := make(map[string]*domain.MonthlyBalance, len(balances))
	for _, b := range balances {
		byAccount[b.AccountID] = b
	}

	var rows []balanceRow
	for _, a := range openingAccounts(accounts) {
		row := balanceRow{Account: a}
		if b, ok := byAccount[a.ID]; ok {
			row.OpeningBalance = b.OpeningBalance
			if b.Note != nil {
				row.Note = *b.Note
			}
		}
		rows = append(rows, row)
	}

	p.render(w, r, http.StatusOK, "opening_balances.html", balancesView{
		baseView: p.base(period.Year),
		Year:     period.Year,
		Month:    period.Month,
		Rows:     rows,
		IsLocked: locked,
	})
}

// SaveOpeningBalances stores the sheet in one transaction. Fields are
// opening_balance_<account id> and note_<account id>; a missing balance is 0.
func (p *Pages) SaveOpeningBalances(w http.ResponseWriter, r *http.Request) {
	period, err := p.monthParam(r)
	if err != nil {
		p.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		p.renderError(w, r, malformed(err))
		return
	}
	ctx := r.Context()

	accounts, err := p.cfg.Accounts.ListAccounts(ctx)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	var inputs []usecase.BalanceInput
	for _, a := range openingAccounts(accounts) {
		raw := strings.TrimSpace(r.PostFormValue("opening_balance_" + a.ID))
		if raw == "" {
			raw = "0"
		}
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			p.renderError(w, r, fmt.Errorf("%w: invalid opening balance for account %s", domain.ErrValidation, a.Name))
			return
		}
		inputs = append(inputs, usecase.BalanceInput{
			AccountID:      a.ID,
			OpeningBalance: amount,
			Note:           optionalField(r, "note_"+a.ID),
		})
	}

	if len(inputs) > 0 {
		if _, err := p.cfg.Balances.SaveAll(ctx, period, inputs); err != nil {
			p.renderError(w, r, err)
			return
		}
	}

	redirect(w, r, monthURL(period))
}

func openingAccounts(accounts []*domain.Account) []*domain.Account {
	out := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.HoldsOpeningBalance() {
			out = append(out, a)
		}
	}
	return out
}

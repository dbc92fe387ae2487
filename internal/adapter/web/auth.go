package web

import (
	"fmt"
	"net/http"

	"github.com/iho/kakeibo/internal/adapter/http/middleware"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/infrastructure/auth"
	"github.com/iho/kakeibo/internal/usecase"
)

type loginView struct {
	baseView
	Next  string
	Name  string
	Error string
}

// LoginForm shows the sign-in form. A request that already carries a
// session goes straight to next.
func (p *Pages) LoginForm(w http.ResponseWriter, r *http.Request) {
	if !p.cfg.AuthEnabled {
		redirect(w, r, "/")
		return
	}
	if _, err := domain.OwnerFromContext(r.Context()); err == nil {
		redirect(w, r, middleware.SafeNext(r.URL.Query().Get("next")))
		return
	}

	p.render(w, r, http.StatusOK, "login.html", loginView{
		baseView: p.base(p.now().Year()),
		Next:     middleware.SafeNext(r.URL.Query().Get("next")),
	})
}

// Login verifies the form credentials, sets the session cookie and sends
// the user on to next.
func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	if !p.cfg.AuthEnabled {
		redirect(w, r, "/")
		return
	}
	if err := r.ParseForm(); err != nil {
		p.renderError(w, r, malformed(err))
		return
	}

	next := middleware.SafeNext(r.PostFormValue("next"))
	name := r.PostFormValue("username")

	user, err := p.cfg.Users.Authenticate(r.Context(), usecase.AuthenticateInput{
		Name:     name,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		status := statusFor(err)
		view := loginView{baseView: p.base(p.now().Year()), Next: next, Name: name}
		if status == http.StatusUnauthorized {
			view.Error = "ユーザー名またはパスワードが正しくありません。"
		} else {
			p.renderError(w, r, err)
			return
		}
		p.render(w, r, http.StatusUnauthorized, "login.html", view)
		return
	}

	token, err := p.cfg.Tokens.Generate(user)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	expires := p.now().Add(p.cfg.Tokens.TokenDuration())
	http.SetCookie(w, auth.SessionCookie(token, expires, p.cfg.SecureCookie))
	redirect(w, r, next)
}

// Logout clears the session cookie.
func (p *Pages) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ExpiredSessionCookie(p.cfg.SecureCookie))
	redirect(w, r, "/login")
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
}

package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/infrastructure/auth"
)

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticator resolves the owner of a request and stores it in the
// request context.
type Authenticator struct {
	verifier     TokenVerifier
	defaultOwner string
	loginPath    string
}

// NewAuthenticator creates an Authenticator that requires a valid token.
func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{verifier: verifier, loginPath: "/login"}
}

// NewSingleUserAuthenticator creates an Authenticator that attributes
// every request to ownerID. Used when sign-in is disabled.
func NewSingleUserAuthenticator(ownerID string) *Authenticator {
	return &Authenticator{defaultOwner: ownerID, loginPath: "/login"}
}

// RequireAPI rejects unauthenticated requests with a JSON 401.
func (a *Authenticator) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := a.resolve(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(domain.ContextWithOwner(r.Context(), ownerID)))
	})
}

// RequirePage redirects unauthenticated page requests to the login page,
// remembering where the user was going.
func (a *Authenticator) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := a.resolve(r)
		if err != nil {
			target := a.loginPath + "?next=" + url.QueryEscape(SafeNext(r.URL.RequestURI()))
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(domain.ContextWithOwner(r.Context(), ownerID)))
	})
}

// Optional attaches the owner when the request carries a valid session and
// passes it through untouched otherwise.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ownerID, err := a.resolve(r); err == nil {
			r = r.WithContext(domain.ContextWithOwner(r.Context(), ownerID))
		}
		next.ServeHTTP(w, r)
	})
}

// Enabled reports whether requests must carry a session.
func (a *Authenticator) Enabled() bool {
	return a.verifier != nil
}

func (a *Authenticator) resolve(r *http.Request) (string, error) {
	if a.verifier == nil {
		return a.defaultOwner, nil
	}

	token := tokenFromRequest(r)
	if token == "" {
		return "", domain.ErrUnauthorized
	}

	claims, err := a.verifier.Verify(token)
	if err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", domain.ErrInvalidToken
	}

	return claims.UserID, nil
}

// tokenFromRequest reads a Bearer token, falling back to the session
// cookie.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if c, err := r.Cookie(auth.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// SafeNext returns next when it is a same-site absolute path other than the
// login page and "/" otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "/"
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") || strings.HasPrefix(next, "/login") {
		return "/"
	}
	if strings.ContainsAny(next, "\r\n") {
		return "/"
	}
	return next
}

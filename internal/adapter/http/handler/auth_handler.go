package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/infrastructure/auth"
	"github.com/iho/kakeibo/internal/usecase"
)

// UserService defines the behavior needed by AuthHandler.
type UserService interface {
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
	TokenDuration() time.Duration
}

// AuthRecorder counts sign-in outcomes.
type AuthRecorder interface {
	AuthAttempt(success bool)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userUC       UserService
	tokens       TokenIssuer
	metrics      AuthRecorder
	secureCookie bool
	now          func() time.Time
}

// NewAuthHandler creates a new auth handler. metrics may be nil.
func NewAuthHandler(userUC UserService, tokens TokenIssuer, metrics AuthRecorder, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		userUC:       userUC,
		tokens:       tokens,
		metrics:      metrics,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

// Login verifies credentials, sets the session cookie and returns the token
// for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	user, err := h.userUC.Authenticate(r.Context(), usecase.AuthenticateInput{
		Name:     req.Name,
		Password: req.Password,
	})
	h.record(err == nil)
	if err != nil {
		respondError(w, err, "invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		respondError(w, err, "failed to generate token")
		return
	}

	expiresAt := h.now().Add(h.tokens.TokenDuration())
	http.SetCookie(w, auth.SessionCookie(token, expiresAt, h.secureCookie))

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.UserInfo{ID: user.ID, Name: user.Name},
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ExpiredSessionCookie(h.secureCookie))
	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ownerID, err := domain.OwnerFromContext(r.Context())
	if err != nil {
		respondError(w, err, "unauthorized")
		return
	}

	user, err := h.userUC.GetUser(r.Context(), ownerID)
	if err != nil {
		respondError(w, err, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserInfo{ID: user.ID, Name: user.Name})
}

func (h *AuthHandler) record(success bool) {
	if h.metrics != nil {
		h.metrics.AuthAttempt(success)
	}
}

package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/infrastructure/auth"
	"github.com/iho/kakeibo/internal/infrastructure/config"
	"github.com/iho/kakeibo/internal/usecase"
	"github.com/iho/kakeibo/internal/usecase/mocks"
)

func newTestUsers(store *mocks.Store) *usecase.UserUseCase {
	ids := mocks.NewSequentialIDGenerator("id")
	categories := usecase.NewCategoryUseCase(store, store.Categories(), store.Transactions(), ids)
	return usecase.NewUserUseCase(store.Users(), categories, ids)
}

func TestBootstrapOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("auth enabled without password skips", func(t *testing.T) {
		store := mocks.NewStore()
		cfg := &config.Config{AuthEnabled: true, BootstrapUser: "owner"}

		owner, err := bootstrapOwner(ctx, cfg, newTestUsers(store), zerolog.Nop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner != nil {
			t.Fatalf("expected no owner, got %+v", owner)
		}
		if _, err := store.Users().GetByName(ctx, "owner"); err == nil {
			t.Fatalf("expected user not to be created")
		}
	})

	t.Run("auth disabled creates owner with random password", func(t *testing.T) {
		store := mocks.NewStore()
		cfg := &config.Config{AuthEnabled: false, BootstrapUser: "owner"}

		owner, err := bootstrapOwner(ctx, cfg, newTestUsers(store), zerolog.Nop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner == nil || owner.Name != "owner" {
			t.Fatalf("expected owner to be created, got %+v", owner)
		}
	})

	t.Run("existing user is reused", func(t *testing.T) {
		store := mocks.NewStore()
		users := newTestUsers(store)
		cfg := &config.Config{AuthEnabled: true, BootstrapUser: "owner", BootstrapPassword: "correct-horse"}

		first, err := bootstrapOwner(ctx, cfg, users, zerolog.Nop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := bootstrapOwner(ctx, cfg, users, zerolog.Nop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.ID != second.ID {
			t.Fatalf("expected the same user, got %s and %s", first.ID, second.ID)
		}
	})
}

func TestNewAuthenticator(t *testing.T) {
	tokens := auth.NewJWTManager("secret", time.Hour)
	owner := &domain.User{ID: "owner-1"}

	if a := newAuthenticator(&config.Config{AuthEnabled: true}, tokens, owner); !a.Enabled() {
		t.Fatal("expected token checks when auth is enabled")
	}
	if a := newAuthenticator(&config.Config{AuthEnabled: false}, tokens, owner); a.Enabled() {
		t.Fatal("expected single user mode when auth is disabled")
	}
}

func TestRandomPassword(t *testing.T) {
	a, err := randomPassword()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := randomPassword()
	if a == b {
		t.Fatal("expected distinct passwords")
	}
	if err := domain.ValidatePassword(a); err != nil {
		t.Fatalf("generated password rejected: %v", err)
	}
}

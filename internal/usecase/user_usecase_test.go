package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
	"github.com/iho/kakeibo/internal/usecase/mocks"
)

func newUserUseCase(store *mocks.Store) *usecase.UserUseCase {
	ids := mocks.NewSequentialIDGenerator("u-")
	categories := usecase.NewCategoryUseCase(store, store.Categories(), store.Transactions(), ids)
	return usecase.NewUserUseCase(store.Users(), categories, ids)
}

func TestUserUseCase_CreateUser(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.CreateUserInput
		wantErr error
	}{
		{
			name:  "valid user",
			input: usecase.CreateUserInput{Name: "hanako", Password: "correct horse"},
		},
		{
			name:    "short password",
			input:   usecase.CreateUserInput{Name: "hanako", Password: "short"},
			wantErr: domain.ErrPasswordTooWeak,
		},
		{
			name:    "blank name",
			input:   usecase.CreateUserInput{Name: " ", Password: "correct horse"},
			wantErr: domain.ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewStore()
			uc := newUserUseCase(store)

			user, err := uc.CreateUser(t.Context(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Empty(t, user.PasswordHash)

			categories, err := store.Categories().List(t.Context(), user.ID)
			require.NoError(t, err)
			assert.Len(t, categories, len(domain.DefaultCategories))
			for _, c := range categories {
				assert.True(t, c.IsFixed)
			}
		})
	}
}

func TestUserUseCase_Authenticate(t *testing.T) {
	store := mocks.NewStore()
	uc := newUserUseCase(store)

	created, err := uc.CreateUser(t.Context(), usecase.CreateUserInput{Name: "hanako", Password: "correct horse"})
	require.NoError(t, err)

	user, err := uc.Authenticate(t.Context(), usecase.AuthenticateInput{Name: "hanako", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = uc.Authenticate(t.Context(), usecase.AuthenticateInput{Name: "hanako", Password: "wrong horse"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Authenticate(t.Context(), usecase.AuthenticateInput{Name: "taro", Password: "correct horse"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.CreateUser(t.Context(), usecase.CreateUserInput{Name: "hanako", Password: "another pass"})
	assert.ErrorIs(t, err, domain.ErrUserNameTaken)
}

func TestUserUseCase_EnsureUser(t *testing.T) {
	store := mocks.NewStore()
	uc := newUserUseCase(store)
	input := usecase.CreateUserInput{Name: "admin", Password: "bootstrap-pass"}

	first, err := uc.EnsureUser(t.Context(), input)
	require.NoError(t, err)
	second, err := uc.EnsureUser(t.Context(), input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestCategoryUseCase_SeedDefaultsIsIdempotent(t *testing.T) {
	store := mocks.NewStore()
	uc := usecase.NewCategoryUseCase(store, store.Categories(), store.Transactions(), mocks.NewSequentialIDGenerator("c-"))
	ctx := ownerCtx(t)

	n, err := uc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(domain.DefaultCategories), n)

	n, err = uc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

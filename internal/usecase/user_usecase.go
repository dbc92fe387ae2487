package usecase

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/kakeibo/internal/domain"
)

// UserUseCase handles user management and sign-in.
type UserUseCase struct {
	userRepo   UserRepository
	categories *CategoryUseCase
	idGen      IDGenerator
	clock      Clock
}

// NewUserUseCase creates a new user use case. categories seeds the default
// categories of new users and may be nil.
func NewUserUseCase(userRepo UserRepository, categories *CategoryUseCase, idGen IDGenerator) *UserUseCase {
	return &UserUseCase{
		userRepo:   userRepo,
		categories: categories,
		idGen:      idGen,
		clock:      SystemClock{},
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Name     string
	Password string
}

// CreateUser creates a new user with hashed password and seeds their
// default categories.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByName(ctx, name); err == nil {
		return nil, domain.ErrUserNameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Name:         name,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if uc.categories != nil {
		if _, err := uc.categories.SeedDefaults(domain.ContextWithOwner(ctx, user.ID)); err != nil {
			return nil, err
		}
	}

	// Don't return hashed password
	user.PasswordHash = ""
	return user, nil
}

// EnsureUser returns the named user, creating it when missing.
func (uc *UserUseCase) EnsureUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByName(ctx, strings.TrimSpace(input.Name))
	if err == nil {
		user.PasswordHash = ""
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return uc.CreateUser(ctx, input)
}

// AuthenticateInput represents authentication input
type AuthenticateInput struct {
	Name     string
	Password string
}

// Authenticate verifies user credentials
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByName(ctx, strings.TrimSpace(input.Name))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := verifyPassword(user.PasswordHash, input.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword verifies a password against a hash
func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

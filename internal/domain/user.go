package domain

import (
	"context"
	"time"
)

// User owns every other entity. All reads and writes are scoped to one owner.
type User struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ID           string
	Name         string
	PasswordHash string
}

type ownerKey struct{}

// ContextWithOwner returns a context carrying the owning user's ID.
func ContextWithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owning user's ID or ErrUnauthorized.
func OwnerFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(ownerKey{}).(string)
	if !ok || id == "" {
		return "", ErrUnauthorized
	}
	return id, nil
}

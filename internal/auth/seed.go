package auth

import (
	"context"
	"errors"
	"fmt"
)

// SeedUser is a bootstrap credential pair created at startup if absent.
type SeedUser struct {
	Email    string
	Password string
}

// DefaultSeedUsers mirrors the demo accounts the portal ships with.
var DefaultSeedUsers = []SeedUser{
	{Email: "test@student.com", Password: "password123"},
	{Email: "test1@student.com", Password: "password123"},
}

// EnsureSeedUsers creates the given accounts unless they already exist.
// Returns the number of accounts created.
func EnsureSeedUsers(ctx context.Context, store Store, seeds []SeedUser) (int, error) {
	created := 0
	for _, seed := range seeds {
		_, err := store.FindByEmail(ctx, seed.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return created, fmt.Errorf("lookup seed user %s: %w", seed.Email, err)
		}
		hash, err := HashPassword(seed.Password)
		if err != nil {
			return created, fmt.Errorf("hash seed password: %w", err)
		}
		if err := store.Create(ctx, &User{Email: seed.Email, PasswordHash: hash}); err != nil {
			return created, fmt.Errorf("create seed user %s: %w", seed.Email, err)
		}
		created++
	}
	return created, nil
}

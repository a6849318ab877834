package user

import (
	"context"
)

type Repository interface {
	FetchUserByEmail(ctx context.Context, email string) (*User, error)
	// FetchUserByIdentifier resolves a user by email or username,
	// whichever matches first.
	FetchUserByIdentifier(ctx context.Context, identifier string) (*User, error)
	CreateUser(ctx context.Context, req User) (*User, error)
}

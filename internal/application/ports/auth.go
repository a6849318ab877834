package ports

import (
	"context"

	"fileshare-api/internal/domain/user"
)

type Auth interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, username, email, password string) (*user.User, error)
}

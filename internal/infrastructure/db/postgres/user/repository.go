package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domain "fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/db/postgres"
)

var ErrAlreadyRegistered = errors.New("email or username already registered")

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) domain.Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchOne(ctx, SelectUserByEmail, email)
}

func (r *Repository) FetchUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.fetchOne(ctx, SelectUserByIdentifier, identifier)
}

func (r *Repository) CreateUser(ctx context.Context, req domain.User) (*domain.User, error) {
	u := new(User)

	err := r.db.QueryRow(
		ctx,
		InsertUser,
		req.Username, req.Email, req.PasswordHash, req.Role,
	).Scan(
		&u.UUID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	return fromDBModel(u), err
}

func (r *Repository) fetchOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := new(User)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.UUID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

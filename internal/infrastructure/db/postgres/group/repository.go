package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domain "fileshare-api/internal/domain/group"
	"fileshare-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) domain.Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchGroupByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	g := new(Group)
	err := r.db.QueryRow(ctx, SelectGroupByID, id).Scan(
		&g.UUID,
		&g.Name,
		&g.OwnerUUID,
		&g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(g), nil
}

func (r *Repository) FetchUserGroups(ctx context.Context, userUUID uuid.UUID) (domain.Groups, error) {
	rows, err := r.db.Query(ctx, SelectUserGroups, userUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gs Groups
	for rows.Next() {
		g := new(Group)

		if err = rows.Scan(
			&g.UUID,
			&g.Name,
			&g.OwnerUUID,
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}

		gs = append(gs, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&gs), nil
}

// CreateGroup inserts the group and its creator's admin membership in one
// transaction, so a group can never exist without at least one admin.
func (r *Repository) CreateGroup(ctx context.Context, name string, owner uuid.UUID) (*domain.Group, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create group: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	g := new(Group)
	if err = tx.QueryRow(ctx, InsertGroup, name, owner).Scan(
		&g.UUID,
		&g.Name,
		&g.OwnerUUID,
		&g.CreatedAt,
	); err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, InsertMember, g.UUID, owner, string(domain.RoleAdmin)); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create group: %w", err)
	}

	return fromDBModel(g), nil
}

func (r *Repository) FetchMembers(ctx context.Context, groupUUID uuid.UUID) (domain.Members, error) {
	rows, err := r.db.Query(ctx, SelectMembers, groupUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ms Members
	for rows.Next() {
		m := new(Member)

		if err = rows.Scan(
			&m.UserUUID,
			&m.Username,
			&m.Role,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}

		ms = append(ms, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return membersFromDBModels(&ms), nil
}

func (r *Repository) RoleOf(ctx context.Context, groupUUID, userUUID uuid.UUID) (domain.Role, error) {
	var role string
	err := r.db.QueryRow(ctx, SelectMemberRole, groupUUID, userUUID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoleNone, nil
		}
		return domain.RoleNone, err
	}

	return domain.Role(role), nil
}

func (r *Repository) AddMember(ctx context.Context, groupUUID, userUUID uuid.UUID, role domain.Role) error {
	_, err := r.db.Exec(ctx, InsertMember, groupUUID, userUUID, string(role))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		return err
	}

	return nil
}

package group

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrAlreadyMember = errors.New("user is already a member of this group")

type Repository interface {
	// FetchGroupByID returns (nil, nil) when no group exists.
	FetchGroupByID(ctx context.Context, id uuid.UUID) (*Group, error)
	FetchUserGroups(ctx context.Context, userUUID uuid.UUID) (Groups, error)
	// CreateGroup inserts the group and its creator as admin atomically.
	CreateGroup(ctx context.Context, name string, owner uuid.UUID) (*Group, error)
	FetchMembers(ctx context.Context, groupUUID uuid.UUID) (Members, error)
	// RoleOf reports the user's role in the group, RoleNone when not a member.
	RoleOf(ctx context.Context, groupUUID, userUUID uuid.UUID) (Role, error)
	AddMember(ctx context.Context, groupUUID, userUUID uuid.UUID, role Role) error
}

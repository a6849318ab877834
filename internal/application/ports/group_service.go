package ports

import (
	"context"

	"github.com/google/uuid"

	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/group"
)

type GroupService interface {
	FindUserGroups(ctx context.Context, actor uuid.UUID) (group.Groups, error)
	Create(ctx context.Context, actor uuid.UUID, name string) (*group.Group, error)
	// Details returns the group, its members and its files; the actor must
	// be a member.
	Details(ctx context.Context, actor uuid.UUID, groupUUID uuid.UUID) (*group.Group, group.Members, file.Files, error)
	AddMember(ctx context.Context, actor uuid.UUID, groupUUID uuid.UUID, identifier string, role group.Role) (group.Members, error)
}

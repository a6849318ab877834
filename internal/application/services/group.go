package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/group"
	"fileshare-api/internal/domain/user"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotMember     = errors.New("not a member of this group")
	ErrNotAdmin      = errors.New("only group admins can add members")
	ErrUserNotFound  = errors.New("user not found")
)

type GroupService struct {
	groupRepository group.Repository
	fileRepository  file.Repository
	userRepository  user.Repository
	mCounter        *prometheus.CounterVec
}

func NewGroupService(
	groupRepository group.Repository,
	fileRepository file.Repository,
	userRepository user.Repository,
	mCounter *prometheus.CounterVec,
) ports.GroupService {
	return &GroupService{
		groupRepository: groupRepository,
		fileRepository:  fileRepository,
		userRepository:  userRepository,
		mCounter:        mCounter,
	}
}

func (gs *GroupService) FindUserGroups(ctx context.Context, actor uuid.UUID) (group.Groups, error) {
	groups, err := gs.groupRepository.FetchUserGroups(ctx, actor)
	if err != nil {
		return nil, err
	}

	return groups, nil
}

func (gs *GroupService) Create(ctx context.Context, actor uuid.UUID, name string) (*group.Group, error) {
	g, err := gs.groupRepository.CreateGroup(ctx, name, actor)
	if err != nil {
		return nil, err
	}

	gs.mCounter.WithLabelValues("groups_created_total").Inc()

	return g, nil
}

func (gs *GroupService) Details(
	ctx context.Context,
	actor uuid.UUID,
	groupUUID uuid.UUID,
) (*group.Group, group.Members, file.Files, error) {
	g, err := gs.groupRepository.FetchGroupByID(ctx, groupUUID)
	if err != nil {
		return nil, nil, nil, err
	}
	if g == nil {
		return nil, nil, nil, ErrGroupNotFound
	}

	role, err := gs.groupRepository.RoleOf(ctx, groupUUID, actor)
	if err != nil {
		return nil, nil, nil, err
	}
	if role == group.RoleNone {
		return nil, nil, nil, ErrNotMember
	}

	members, err := gs.groupRepository.FetchMembers(ctx, groupUUID)
	if err != nil {
		return nil, nil, nil, err
	}
	files, err := gs.fileRepository.FetchGroupFiles(ctx, groupUUID)
	if err != nil {
		return nil, nil, nil, err
	}

	return g, members, files, nil
}

// AddMember lets a group admin add a user by email or username. The
// admin gate lives here so the access rules for group files stay
// meaningful: a group always keeps at least its creator as admin.
func (gs *GroupService) AddMember(
	ctx context.Context,
	actor uuid.UUID,
	groupUUID uuid.UUID,
	identifier string,
	role group.Role,
) (group.Members, error) {
	g, err := gs.groupRepository.FetchGroupByID(ctx, groupUUID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	actorRole, err := gs.groupRepository.RoleOf(ctx, groupUUID, actor)
	if err != nil {
		return nil, err
	}
	if actorRole != group.RoleAdmin {
		return nil, ErrNotAdmin
	}

	u, err := gs.userRepository.FetchUserByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if !role.Valid() {
		role = group.RoleMember
	}
	if err = gs.groupRepository.AddMember(ctx, groupUUID, u.UUID, role); err != nil {
		return nil, err
	}

	gs.mCounter.WithLabelValues("group_members_added_total").Inc()

	return gs.groupRepository.FetchMembers(ctx, groupUUID)
}

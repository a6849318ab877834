package group

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	// RoleNone means the user is not a member at all.
	RoleNone Role = ""
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleMember }

type (
	Group struct {
		UUID      uuid.UUID
		Name      string
		OwnerUUID uuid.UUID

		CreatedAt time.Time
	}
	Groups []*Group

	// Member is one (group, user) membership row.
	Member struct {
		UserUUID uuid.UUID
		Username string
		Role     Role

		CreatedAt time.Time
	}
	Members []*Member
)

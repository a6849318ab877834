package services

import (
	"github.com/google/uuid"

	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/group"
)

type Action string

const (
	ActionRead        Action = "read"
	ActionDelete      Action = "delete"
	ActionToggleShare Action = "toggleShare"
)

// Decide reports whether actor may perform action on f. role is the
// actor's role in f's group, RoleNone when the actor is not a member or
// the file is personal. Pure and total: every input maps to allow or
// deny, nothing is consulted beyond the arguments.
//
// Personal files are owner-only for every action. Group files: any member
// may read, admins and the uploader may delete, only the uploader may
// toggle public sharing.
func Decide(actor uuid.UUID, f *file.File, action Action, role group.Role) bool {
	if f == nil {
		return false
	}

	if f.GroupUUID == nil {
		switch action {
		case ActionRead, ActionDelete, ActionToggleShare:
			return actor == f.OwnerUUID
		}
		return false
	}

	switch action {
	case ActionRead:
		return role != group.RoleNone
	case ActionDelete:
		return role == group.RoleAdmin || actor == f.OwnerUUID
	case ActionToggleShare:
		return actor == f.OwnerUUID
	}

	return false
}

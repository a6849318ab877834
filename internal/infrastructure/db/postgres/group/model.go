package group

import (
	"time"

	"github.com/google/uuid"
)

type (
	Group struct {
		UUID      uuid.UUID
		Name      string
		OwnerUUID uuid.UUID

		CreatedAt time.Time
	}
	Groups []*Group

	Member struct {
		UserUUID uuid.UUID
		Username string
		Role     string

		CreatedAt time.Time
	}
	Members []*Member
)

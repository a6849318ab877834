package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	UUID = uuid.UUID
	User struct {
		UUID         UUID
		Username     string
		Email        string
		PasswordHash *string
		Role         string

		CreatedAt time.Time
	}
	Users []*User
)

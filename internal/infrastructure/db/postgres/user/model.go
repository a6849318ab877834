package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		UUID         uuid.UUID
		Username     string
		Email        string
		PasswordHash *string
		Role         string

		CreatedAt time.Time
	}
	Users []*User
)

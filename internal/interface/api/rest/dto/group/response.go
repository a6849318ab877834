package group

import (
	"time"

	"github.com/google/uuid"

	fileDTO "fileshare-api/internal/interface/api/rest/dto/file"
)

type (
	Group struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		OwnerID   uuid.UUID `json:"ownerId"`
		CreatedAt time.Time `json:"createdAt"`
	}
	Groups []Group

	Member struct {
		UserID   uuid.UUID `json:"userId"`
		Username string    `json:"username"`
		Role     string    `json:"role"`
	}
	Members []Member

	DetailsResponse struct {
		Group   Group         `json:"group"`
		Members Members       `json:"members"`
		Files   fileDTO.Files `json:"files"`
	}
	ResponseData struct {
		Data Groups `json:"data"`
	}
)

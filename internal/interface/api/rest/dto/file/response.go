package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID           uuid.UUID  `json:"id"`
		OriginalName string     `json:"originalName"`
		Size         uint64     `json:"size"`
		MimeType     string     `json:"mimeType"`
		GroupID      *uuid.UUID `json:"groupId,omitempty"`
		IsPublic     bool       `json:"isPublic"`
		CreatedAt    time.Time  `json:"createdAt"`
	}
	Files        []File
	ResponseData struct {
		Data Files `json:"data"`
	}
	ShareResponse struct {
		ID       uuid.UUID `json:"id"`
		IsPublic bool      `json:"isPublic"`
	}
)

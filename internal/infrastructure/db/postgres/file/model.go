package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		UUID         uuid.UUID
		StoredName   string
		OriginalName string
		BlobRef      string

		SizeBytes uint64
		MimeType  string

		OwnerUUID uuid.UUID
		GroupUUID *uuid.UUID
		IsPublic  bool

		CreatedAt time.Time
	}
	Files []*File
)

package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	// File is the metadata record for one stored blob.
	//
	// StoredName is the internal, collision-free name the blob was stored
	// under; OriginalName is whatever the client called it and is only used
	// for the download disposition header. BlobRef points into the blob
	// store and is immutable once set.
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

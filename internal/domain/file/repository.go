package file

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// FetchFileByID returns (nil, nil) when no record exists.
	FetchFileByID(ctx context.Context, id uuid.UUID) (*File, error)
	FetchOwnerFiles(ctx context.Context, owner uuid.UUID, page int) (Files, error)
	FetchGroupFiles(ctx context.Context, group uuid.UUID) (Files, error)
	CreateFile(ctx context.Context, req *File) (*File, error)
	// ToggleFileSharing atomically flips is_public and returns the
	// updated record, or (nil, nil) when no record exists.
	ToggleFileSharing(ctx context.Context, id uuid.UUID) (*File, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

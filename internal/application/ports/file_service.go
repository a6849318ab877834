package ports

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/google/uuid"

	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/infrastructure/blob"
)

// DownloadMode selects which authorization path the download pipeline runs.
type DownloadMode int

const (
	// DownloadAuthenticated checks the actor against the record's
	// ownership or group membership.
	DownloadAuthenticated DownloadMode = iota
	// DownloadPublic serves only records with IsPublic set and masks
	// everything else as not found.
	DownloadPublic
)

type FileService interface {
	Upload(ctx context.Context, actor uuid.UUID, groupUUID *uuid.UUID, in *multipart.FileHeader) (*file.File, error)
	Download(ctx context.Context, actor uuid.UUID, fileID uuid.UUID, mode DownloadMode) (io.ReadCloser, *file.File, blob.ObjectInfo, error)
	ToggleSharing(ctx context.Context, actor uuid.UUID, fileID uuid.UUID) (*file.File, error)
	Delete(ctx context.Context, actor uuid.UUID, fileID uuid.UUID) error
	FindOwnerFiles(ctx context.Context, actor uuid.UUID, page int) (file.Files, error)
}

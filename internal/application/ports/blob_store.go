package ports

import (
	"io"

	"fileshare-api/internal/infrastructure/blob"
)

// BlobStore is the durable object store behind the upload/download
// pipelines. Writes become visible only after the returned writer is
// closed; an aborted writer leaves nothing behind. Delete is idempotent.
type BlobStore interface {
	OpenWrite(displayName, contentType string) (blob.Writer, string, error)
	Confirm(id string) (blob.ObjectInfo, error)
	OpenRead(id string) (io.ReadCloser, blob.ObjectInfo, error)
	Delete(id string) error
}

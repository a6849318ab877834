package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/group"
	"fileshare-api/internal/infrastructure/blob"
	"fileshare-api/internal/infrastructure/mq"
)

const maxBaseNameLen = 100

// streamed copy granularity between the request body and the blob store
const copyChunkSize = 256 << 10

var windowsReserved = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

type FileService struct {
	blobs           ports.BlobStore
	fileRepository  file.Repository
	groupRepository group.Repository
	mq              ports.RabbitMQ
	mCounter        *prometheus.CounterVec
	log             *zap.Logger
	maxUploadBytes  int64
}

func NewFileService(
	blobs ports.BlobStore,
	fileRepository file.Repository,
	groupRepository group.Repository,
	mq ports.RabbitMQ,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
	maxUploadBytes int64,
) ports.FileService {
	return &FileService{
		blobs:           blobs,
		fileRepository:  fileRepository,
		groupRepository: groupRepository,
		mq:              mq,
		mCounter:        mCounter,
		log:             logger,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Upload runs the write saga: validate size, check group membership,
// stream to the blob store, confirm, persist metadata. The metadata
// record is written only after the store confirms the blob, so a record
// never points at unconfirmed bytes. If the metadata write fails the blob
// is deleted again as an explicit compensating step.
func (fs *FileService) Upload(
	ctx context.Context,
	actor uuid.UUID,
	groupUUID *uuid.UUID,
	in *multipart.FileHeader,
) (*file.File, error) {
	if in.Size <= 0 {
		return nil, file.ErrEmptyFile
	}
	if in.Size > fs.maxUploadBytes {
		return nil, file.ErrTooLarge
	}

	// membership is settled before a single blob byte is written
	if groupUUID != nil {
		role, err := fs.groupRepository.RoleOf(ctx, *groupUUID, actor)
		if err != nil {
			return nil, err
		}
		if role == group.RoleNone {
			return nil, file.ErrForbidden
		}
	}

	originalName := baseName(in.Filename)
	storedName := genStoredName(originalName)

	src, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	w, objectID, err := fs.blobs.OpenWrite(storedName, in.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("open blob write: %w", err)
	}

	if _, err = copyChunks(ctx, w, src, fs.maxUploadBytes); err != nil {
		fs.abandon(w, objectID, err)
		if errors.Is(err, file.ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("stream to blob store: %w", err)
	}
	if err = w.Close(); err != nil {
		fs.abandon(w, objectID, err)
		return nil, fmt.Errorf("finalize blob: %w", err)
	}

	// length and type come from the store, not from the client
	info, err := fs.blobs.Confirm(objectID)
	if err != nil {
		fs.compensate(objectID, err)
		return nil, fmt.Errorf("confirm blob: %w", err)
	}

	out, err := fs.fileRepository.CreateFile(ctx, &file.File{
		StoredName:   storedName,
		OriginalName: originalName,
		BlobRef:      objectID,
		SizeBytes:    uint64(info.SizeBytes),
		MimeType:     info.ContentType,
		OwnerUUID:    actor,
		GroupUUID:    groupUUID,
		IsPublic:     false,
	})
	if err != nil {
		fs.compensate(objectID, err)
		return nil, fmt.Errorf("persist file metadata: %w", err)
	}

	fs.mCounter.WithLabelValues("files_uploaded_total").Inc()
	fs.emit(mq.ActionUpload, actor, out)

	return out, nil
}

// Download resolves the record, authorizes the actor for the given mode
// and opens the blob stream. In public mode a private file is reported as
// not found, never as forbidden, so its existence is not revealed.
func (fs *FileService) Download(
	ctx context.Context,
	actor uuid.UUID,
	fileID uuid.UUID,
	mode ports.DownloadMode,
) (io.ReadCloser, *file.File, blob.ObjectInfo, error) {
	rec, err := fs.fileRepository.FetchFileByID(ctx, fileID)
	if err != nil {
		return nil, nil, blob.ObjectInfo{}, err
	}
	if rec == nil {
		return nil, nil, blob.ObjectInfo{}, file.ErrNotFound
	}

	switch mode {
	case ports.DownloadPublic:
		if !rec.IsPublic {
			return nil, nil, blob.ObjectInfo{}, file.ErrNotFound
		}
	default:
		role, err := fs.roleFor(ctx, actor, rec)
		if err != nil {
			return nil, nil, blob.ObjectInfo{}, err
		}
		if !Decide(actor, rec, ActionRead, role) {
			return nil, nil, blob.ObjectInfo{}, file.ErrForbidden
		}
	}

	rc, info, err := fs.blobs.OpenRead(rec.BlobRef)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			// metadata exists but the blob does not: a consistency
			// violation, logged for follow-up, masked for the caller
			fs.log.Error("file metadata references a missing blob",
				zap.String("file_uuid", rec.UUID.String()),
				zap.String("blob_ref", rec.BlobRef),
			)
			fs.mCounter.WithLabelValues("consistency_errors_total").Inc()
			return nil, nil, blob.ObjectInfo{}, file.ErrNotFound
		}
		return nil, nil, blob.ObjectInfo{}, fmt.Errorf("open blob read: %w", err)
	}

	fs.mCounter.WithLabelValues("files_downloaded_total").Inc()
	fs.emit(mq.ActionDownload, actor, rec)

	return rc, rec, info, nil
}

func (fs *FileService) ToggleSharing(ctx context.Context, actor uuid.UUID, fileID uuid.UUID) (*file.File, error) {
	rec, err := fs.fileRepository.FetchFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, file.ErrNotFound
	}

	role, err := fs.roleFor(ctx, actor, rec)
	if err != nil {
		return nil, err
	}
	if !Decide(actor, rec, ActionToggleShare, role) {
		return nil, file.ErrForbidden
	}

	// the flip happens in the database so concurrent toggles never lose
	// an update to a stale read
	out, err := fs.fileRepository.ToggleFileSharing(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, file.ErrNotFound
	}

	fs.mCounter.WithLabelValues("files_share_toggled_total").Inc()
	fs.emit(mq.ActionShare, actor, out)

	return out, nil
}

// Delete removes the blob first, then the metadata record. The blob
// delete is idempotent, so retrying after a metadata failure converges.
func (fs *FileService) Delete(ctx context.Context, actor uuid.UUID, fileID uuid.UUID) error {
	rec, err := fs.fileRepository.FetchFileByID(ctx, fileID)
	if err != nil {
		return err
	}
	if rec == nil {
		return file.ErrNotFound
	}

	role, err := fs.roleFor(ctx, actor, rec)
	if err != nil {
		return err
	}
	if !Decide(actor, rec, ActionDelete, role) {
		return file.ErrForbidden
	}

	if err = fs.blobs.Delete(rec.BlobRef); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err = fs.fileRepository.DeleteFile(ctx, fileID); err != nil {
		return err
	}

	fs.mCounter.WithLabelValues("files_deleted_total").Inc()
	fs.emit(mq.ActionDelete, actor, rec)

	return nil
}

func (fs *FileService) FindOwnerFiles(ctx context.Context, actor uuid.UUID, page int) (file.Files, error) {
	fls, err := fs.fileRepository.FetchOwnerFiles(ctx, actor, page)
	if err != nil {
		return nil, err
	}

	return fls, nil
}

func (fs *FileService) roleFor(ctx context.Context, actor uuid.UUID, rec *file.File) (group.Role, error) {
	if rec.GroupUUID == nil {
		return group.RoleNone, nil
	}
	return fs.groupRepository.RoleOf(ctx, *rec.GroupUUID, actor)
}

// abandon drops a blob that was never finalized (stream aborted, client
// disconnected). The writer is aborted so its file handle is released
// without the close-time rename that would publish the object. No
// metadata exists at this point.
func (fs *FileService) abandon(w blob.Writer, objectID string, cause error) {
	if aerr := w.Abort(); aerr != nil {
		fs.log.Error("failed to abort partial blob",
			zap.String("blob_ref", objectID),
			zap.NamedError("cause", cause),
			zap.Error(aerr),
		)
	}
}

// compensate undoes a confirmed blob write after a later saga step
// failed. A failed compensation leaves an orphan blob behind; that is
// logged and counted so operators can act on it, but the original error
// still propagates to the caller.
func (fs *FileService) compensate(objectID string, cause error) {
	if derr := fs.blobs.Delete(objectID); derr != nil {
		fs.log.Error("compensating blob delete failed, orphan blob left behind",
			zap.String("blob_ref", objectID),
			zap.NamedError("cause", cause),
			zap.Error(derr),
		)
		fs.mCounter.WithLabelValues("compensation_failed_total").Inc()
		return
	}

	fs.log.Warn("rolled back blob after failed upload",
		zap.String("blob_ref", objectID),
		zap.NamedError("cause", cause),
	)
}

// emit publishes an interaction event without ever blocking the request.
func (fs *FileService) emit(action string, actor uuid.UUID, rec *file.File) {
	e := mq.Event{
		Id:       uuid.New(),
		TS:       time.Now(),
		Action:   action,
		UserID:   actor.String(),
		FileID:   rec.UUID.String(),
		FileName: rec.OriginalName,
	}

	select {
	case fs.mq.GetInputChan() <- e:
	default:
		fs.log.Warn("interaction event dropped, publisher buffer full",
			zap.String("action", action))
	}
}

// copyChunks streams src into dst through a fixed-size buffer, checking
// for cancellation between chunks and enforcing the byte ceiling even if
// the declared size lied.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, limit int64) (int64, error) {
	buf := make([]byte, copyChunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > limit {
				return written, file.ErrTooLarge
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// baseName strips any client-supplied path components.
func baseName(original string) string {
	s := strings.TrimSpace(strings.ReplaceAll(original, "\\", "/"))
	s = path.Base(s)
	if s == "." || s == ".." || s == "/" || s == "" {
		return "file"
	}
	return s
}

// genStoredName derives the internal, collision-free blob name:
// "<ts-nanosec>-<sanitized original>".
func genStoredName(originalName string) string {
	safe := sanitizeFileName(originalName)
	now := time.Now().UTC()

	return fmt.Sprintf("%s-%s", now.Format("20060102T150405.000000000Z"), safe)
}

// sanitizeFileName makes a file name ASCII standard
func sanitizeFileName(original string) string {
	if original == "" {
		return "file"
	}

	s := baseName(original)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	s, _, _ = transform.String(t, s)

	ext := strings.ToLower(path.Ext(s))
	base := strings.TrimSuffix(s, ext)

	//  [a-z0-9], '-' and '_', dot/space → '-'
	var b strings.Builder
	b.Grow(len(base))
	prevDash := false
	for _, r := range base {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevDash = false
		case r == '-' || r == '_':
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		case r == '.' || unicode.IsSpace(r):
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		default:
		}
	}
	base = strings.Trim(b.String(), "-")

	if base == "" {
		base = "file"
	}
	if _, bad := windowsReserved[base]; bad {
		base = "_" + base
	}

	for utf8.RuneCountInString(base)+len(ext) > maxBaseNameLen {
		_, size := utf8.DecodeLastRuneInString(base)
		if size <= 0 || size > len(base) {
			break
		}
		base = base[:len(base)-size]
	}

	return base + ext
}

func isMn(r rune) bool { return unicode.Is(unicode.Mn, r) }

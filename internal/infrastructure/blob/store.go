package blob

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fileshare-api/config"
)

// ErrNotFound is returned when an object id does not resolve to a
// finalized object.
var ErrNotFound = errors.New("blob not found")

// objects are streamed to disk through a fixed-size buffer
const chunkSize = 256 << 10

const sniffLen = 512

type (
	// ObjectInfo is the authoritative description of a stored object,
	// taken from the store itself rather than from anything the client
	// claimed at upload time.
	ObjectInfo struct {
		SizeBytes   int64
		ContentType string
		DisplayName string
	}

	sidecar struct {
		DisplayName string    `json:"display_name"`
		ContentType string    `json:"content_type"`
		CreatedAt   time.Time `json:"created_at"`
	}

	Store struct {
		log *zap.Logger
		dir string
	}
)

// New prepares the on-disk layout. The returned handle is passed into the
// pipelines by construction; nothing holds it as package state.
func New(logger *zap.Logger, cfg config.Blob) (*Store, error) {
	dir := filepath.Join(cfg.Dir, "objects")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	logger.Info("blob store ready", zap.String("dir", dir))

	return &Store{log: logger, dir: dir}, nil
}

func (s *Store) objectPath(id string) string { return filepath.Join(s.dir, id) }
func (s *Store) partPath(id string) string   { return s.objectPath(id) + ".part" }
func (s *Store) metaPath(id string) string   { return s.objectPath(id) + ".meta" }

// Writer is an in-progress object. Close finalizes the object and makes
// its id resolvable; Abort releases the file handle and discards
// everything written so far.
type Writer interface {
	io.WriteCloser
	Abort() error
}

// OpenWrite begins a new object and returns a writer for its bytes.
// The object stays invisible to OpenWrite's readers until Close finalizes
// it: bytes land in a .part file that is renamed into place on Close.
func (s *Store) OpenWrite(displayName, contentType string) (Writer, string, error) {
	id := uuid.New().String()

	f, err := os.OpenFile(s.partPath(id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("open blob part: %w", err)
	}

	meta, err := json.Marshal(sidecar{
		DisplayName: displayName,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	})
	if err == nil {
		err = os.WriteFile(s.metaPath(id), meta, 0o644)
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(s.partPath(id))
		return nil, "", fmt.Errorf("write blob sidecar: %w", err)
	}

	return &objectWriter{
		store: s,
		id:    id,
		file:  f,
		buf:   bufio.NewWriterSize(f, chunkSize),
	}, id, nil
}

// Confirm returns the stored length and content type of a finalized object.
// The content type falls back to sniffing the leading bytes when the
// declared one is empty.
func (s *Store) Confirm(id string) (ObjectInfo, error) {
	fi, err := os.Stat(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectInfo{}, ErrNotFound
		}
		return ObjectInfo{}, fmt.Errorf("stat blob %s: %w", id, err)
	}

	var meta sidecar
	if raw, err := os.ReadFile(s.metaPath(id)); err == nil {
		_ = json.Unmarshal(raw, &meta)
	}
	if meta.ContentType == "" {
		meta.ContentType, err = s.sniff(id)
		if err != nil {
			return ObjectInfo{}, err
		}
	}

	return ObjectInfo{
		SizeBytes:   fi.Size(),
		ContentType: meta.ContentType,
		DisplayName: meta.DisplayName,
	}, nil
}

// OpenRead opens a finalized object for streaming.
func (s *Store) OpenRead(id string) (io.ReadCloser, ObjectInfo, error) {
	info, err := s.Confirm(id)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	f, err := os.Open(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open blob %s: %w", id, err)
	}

	return f, info, nil
}

// Delete removes the object and its sidecar, the part file included so a
// writer abandoned mid-stream is cleaned up by the same call. Deleting an
// object that is already gone is not an error.
func (s *Store) Delete(id string) error {
	missing := 0
	for _, p := range []string{s.objectPath(id), s.partPath(id), s.metaPath(id)} {
		if err := os.Remove(p); err != nil {
			if os.IsNotExist(err) {
				missing++
				continue
			}
			return fmt.Errorf("delete blob %s: %w", id, err)
		}
	}
	if missing == 3 {
		s.log.Info("blob already absent on delete", zap.String("object_id", id))
	}

	return nil
}

func (s *Store) sniff(id string) (string, error) {
	f, err := os.Open(s.objectPath(id))
	if err != nil {
		return "", fmt.Errorf("open blob for sniffing: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read blob head: %w", err)
	}

	return http.DetectContentType(head[:n]), nil
}

type objectWriter struct {
	store *Store
	id    string
	file  *os.File
	buf   *bufio.Writer
}

func (w *objectWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

// Close flushes, syncs and renames the part file into place. Only after a
// successful Close does the object id resolve.
func (w *objectWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("flush blob %s: %w", w.id, err)
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("sync blob %s: %w", w.id, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close blob %s: %w", w.id, err)
	}
	if err := os.Rename(w.store.partPath(w.id), w.store.objectPath(w.id)); err != nil {
		return fmt.Errorf("finalize blob %s: %w", w.id, err)
	}

	return nil
}

// Abort closes the descriptor without the rename, so nothing becomes
// visible, and removes the part file and sidecar. Safe to call after a
// failed Close.
func (w *objectWriter) Abort() error {
	_ = w.file.Close()
	if err := os.Remove(w.store.partPath(w.id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("abort blob %s: %w", w.id, err)
	}
	if err := os.Remove(w.store.metaPath(w.id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("abort blob sidecar %s: %w", w.id, err)
	}

	return nil
}

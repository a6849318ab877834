package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/group"
	"fileshare-api/internal/infrastructure/blob"
	"fileshare-api/internal/infrastructure/mq"
)

// memBlobStore keeps finalized objects in memory and mimics the store's
// visibility rule: nothing is readable until the writer is closed.
type memBlobStore struct {
	mu      sync.Mutex
	pending map[string]*bytes.Buffer
	objects map[string]memObject
	deleted []string
	aborted []string

	confirmErr  error
	openReadErr error
	deleteErr   error
}

type memObject struct {
	data        []byte
	contentType string
	displayName string
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{
		pending: make(map[string]*bytes.Buffer),
		objects: make(map[string]memObject),
	}
}

type memWriter struct {
	store *memBlobStore
	id    string
	buf   *bytes.Buffer

	contentType string
	displayName string
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Close() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.objects[w.id] = memObject{
		data:        w.buf.Bytes(),
		contentType: w.contentType,
		displayName: w.displayName,
	}
	delete(w.store.pending, w.id)
	return nil
}

func (w *memWriter) Abort() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	delete(w.store.pending, w.id)
	w.store.aborted = append(w.store.aborted, w.id)
	return nil
}

func (s *memBlobStore) OpenWrite(displayName, contentType string) (blob.Writer, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	buf := &bytes.Buffer{}
	s.pending[id] = buf
	return &memWriter{store: s, id: id, buf: buf, contentType: contentType, displayName: displayName}, id, nil
}

func (s *memBlobStore) Confirm(id string) (blob.ObjectInfo, error) {
	if s.confirmErr != nil {
		return blob.ObjectInfo{}, s.confirmErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return blob.ObjectInfo{}, blob.ErrNotFound
	}
	ct := obj.contentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return blob.ObjectInfo{
		SizeBytes:   int64(len(obj.data)),
		ContentType: ct,
		DisplayName: obj.displayName,
	}, nil
}

func (s *memBlobStore) OpenRead(id string) (io.ReadCloser, blob.ObjectInfo, error) {
	if s.openReadErr != nil {
		return nil, blob.ObjectInfo{}, s.openReadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return nil, blob.ObjectInfo{}, blob.ErrNotFound
	}
	info := blob.ObjectInfo{
		SizeBytes:   int64(len(obj.data)),
		ContentType: obj.contentType,
		DisplayName: obj.displayName,
	}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

func (s *memBlobStore) Delete(id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
	delete(s.pending, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type FakeFileRepo struct {
	FetchFileByIDFunc     func(ctx context.Context, id uuid.UUID) (*file.File, error)
	FetchOwnerFilesFunc   func(ctx context.Context, owner uuid.UUID, page int) (file.Files, error)
	FetchGroupFilesFunc   func(ctx context.Context, group uuid.UUID) (file.Files, error)
	CreateFileFunc        func(ctx context.Context, req *file.File) (*file.File, error)
	ToggleFileSharingFunc func(ctx context.Context, id uuid.UUID) (*file.File, error)
	DeleteFileFunc        func(ctx context.Context, id uuid.UUID) error
}

func (f *FakeFileRepo) FetchFileByID(ctx context.Context, id uuid.UUID) (*file.File, error) {
	if f.FetchFileByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchFileByIDFunc(ctx, id)
}
func (f *FakeFileRepo) FetchOwnerFiles(ctx context.Context, owner uuid.UUID, page int) (file.Files, error) {
	if f.FetchOwnerFilesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchOwnerFilesFunc(ctx, owner, page)
}
func (f *FakeFileRepo) FetchGroupFiles(ctx context.Context, g uuid.UUID) (file.Files, error) {
	if f.FetchGroupFilesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchGroupFilesFunc(ctx, g)
}
func (f *FakeFileRepo) CreateFile(ctx context.Context, req *file.File) (*file.File, error) {
	if f.CreateFileFunc == nil {
		return nil, errors.New("not used")
	}
	return f.CreateFileFunc(ctx, req)
}
func (f *FakeFileRepo) ToggleFileSharing(ctx context.Context, id uuid.UUID) (*file.File, error) {
	if f.ToggleFileSharingFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ToggleFileSharingFunc(ctx, id)
}
func (f *FakeFileRepo) DeleteFile(ctx context.Context, id uuid.UUID) error {
	if f.DeleteFileFunc == nil {
		return errors.New("not used")
	}
	return f.DeleteFileFunc(ctx, id)
}

type FakeGroupRepo struct {
	FetchGroupByIDFunc  func(ctx context.Context, id uuid.UUID) (*group.Group, error)
	FetchUserGroupsFunc func(ctx context.Context, userUUID uuid.UUID) (group.Groups, error)
	CreateGroupFunc     func(ctx context.Context, name string, owner uuid.UUID) (*group.Group, error)
	FetchMembersFunc    func(ctx context.Context, groupUUID uuid.UUID) (group.Members, error)
	RoleOfFunc          func(ctx context.Context, groupUUID, userUUID uuid.UUID) (group.Role, error)
	AddMemberFunc       func(ctx context.Context, groupUUID, userUUID uuid.UUID, role group.Role) error
}

func (f *FakeGroupRepo) FetchGroupByID(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	if f.FetchGroupByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchGroupByIDFunc(ctx, id)
}
func (f *FakeGroupRepo) FetchUserGroups(ctx context.Context, userUUID uuid.UUID) (group.Groups, error) {
	if f.FetchUserGroupsFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchUserGroupsFunc(ctx, userUUID)
}
func (f *FakeGroupRepo) CreateGroup(ctx context.Context, name string, owner uuid.UUID) (*group.Group, error) {
	if f.CreateGroupFunc == nil {
		return nil, errors.New("not used")
	}
	return f.CreateGroupFunc(ctx, name, owner)
}
func (f *FakeGroupRepo) FetchMembers(ctx context.Context, groupUUID uuid.UUID) (group.Members, error) {
	if f.FetchMembersFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchMembersFunc(ctx, groupUUID)
}
func (f *FakeGroupRepo) RoleOf(ctx context.Context, groupUUID, userUUID uuid.UUID) (group.Role, error) {
	if f.RoleOfFunc == nil {
		return group.RoleNone, errors.New("not used")
	}
	return f.RoleOfFunc(ctx, groupUUID, userUUID)
}
func (f *FakeGroupRepo) AddMember(ctx context.Context, groupUUID, userUUID uuid.UUID, role group.Role) error {
	if f.AddMemberFunc == nil {
		return errors.New("not used")
	}
	return f.AddMemberFunc(ctx, groupUUID, userUUID, role)
}

type fakeMQ struct {
	in chan mq.Event
}

func newFakeMQ() *fakeMQ { return &fakeMQ{in: make(chan mq.Event, 16)} }

func (f *fakeMQ) Connect(ctx context.Context, dsn string) error { return nil }
func (f *fakeMQ) Init() error                                   { return nil }
func (f *fakeMQ) PublisherWorker(ctx context.Context)           {}
func (f *fakeMQ) GetInputChan() chan mq.Event                   { return f.in }
func (f *fakeMQ) GetConn() *amqp091.Connection                  { return nil }

func testCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "test_general_counters"},
		[]string{"result"},
	)
}

func newTestFileService(
	blobs ports.BlobStore,
	fileRepo *FakeFileRepo,
	groupRepo *FakeGroupRepo,
	rbMQ *fakeMQ,
	maxUploadBytes int64,
) ports.FileService {
	return NewFileService(blobs, fileRepo, groupRepo, rbMQ, testCounter(), zap.NewNop(), maxUploadBytes)
}

// makeFileHeader builds a real multipart.FileHeader whose Open() serves
// the given bytes.
func makeFileHeader(t *testing.T, fileName string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	fhs := form.File["file"]
	require.Len(t, fhs, 1)
	return fhs[0]
}

func drainOne(t *testing.T, ch chan mq.Event) mq.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	default:
		t.Fatal("expected an interaction event, buffer is empty")
		return mq.Event{}
	}
}

func TestFileService_Upload_Success(t *testing.T) {
	owner := uuid.New()
	content := []byte("hello, blob store")

	store := newMemBlobStore()
	rbMQ := newFakeMQ()

	var persisted *file.File
	fileRepo := &FakeFileRepo{
		CreateFileFunc: func(ctx context.Context, req *file.File) (*file.File, error) {
			out := *req
			out.UUID = uuid.New()
			persisted = &out
			return &out, nil
		},
	}

	fs := newTestFileService(store, fileRepo, &FakeGroupRepo{}, rbMQ, 1<<20)

	out, err := fs.Upload(context.Background(), owner, nil, makeFileHeader(t, "report.pdf", content))
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, "report.pdf", out.OriginalName)
	assert.Equal(t, uint64(len(content)), out.SizeBytes)
	assert.Equal(t, owner, out.OwnerUUID)
	assert.Nil(t, out.GroupUUID)
	assert.False(t, out.IsPublic, "new uploads start private")
	assert.NotEmpty(t, out.MimeType)
	require.NotNil(t, persisted)

	// the stored bytes round-trip
	rc, info, err := store.OpenRead(out.BlobRef)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), info.SizeBytes)

	e := drainOne(t, rbMQ.in)
	assert.Equal(t, mq.ActionUpload, e.Action)
	assert.Equal(t, owner.String(), e.UserID)
	assert.Equal(t, "report.pdf", e.FileName)
}

func TestFileService_Upload_RejectsEmptyAndOversized(t *testing.T) {
	owner := uuid.New()
	store := newMemBlobStore()
	fs := newTestFileService(store, &FakeFileRepo{}, &FakeGroupRepo{}, newFakeMQ(), 8)

	_, err := fs.Upload(context.Background(), owner, nil, makeFileHeader(t, "empty.txt", []byte{}))
	assert.ErrorIs(t, err, file.ErrEmptyFile)

	_, err = fs.Upload(context.Background(), owner, nil, makeFileHeader(t, "big.bin", bytes.Repeat([]byte("x"), 16)))
	assert.ErrorIs(t, err, file.ErrTooLarge)

	assert.Empty(t, store.objects, "rejected uploads must not leave blobs behind")
	assert.Empty(t, store.pending)
}

func TestFileService_Upload_GroupMembershipGate(t *testing.T) {
	actor := uuid.New()
	gid := uuid.New()
	store := newMemBlobStore()

	groupRepo := &FakeGroupRepo{
		RoleOfFunc: func(ctx context.Context, groupUUID, userUUID uuid.UUID) (group.Role, error) {
			assert.Equal(t, gid, groupUUID)
			assert.Equal(t, actor, userUUID)
			return group.RoleNone, nil
		},
	}

	fs := newTestFileService(store, &FakeFileRepo{}, groupRepo, newFakeMQ(), 1<<20)

	_, err := fs.Upload(context.Background(), actor, &gid, makeFileHeader(t, "doc.txt", []byte("payload")))
	assert.ErrorIs(t, err, file.ErrForbidden)
	assert.Empty(t, store.objects, "membership is settled before any blob byte is written")
	assert.Empty(t, store.pending)
}

func TestFileService_Upload_CompensatesOnMetadataFailure(t *testing.T) {
	owner := uuid.New()
	store := newMemBlobStore()
	rbMQ := newFakeMQ()

	fileRepo := &FakeFileRepo{
		CreateFileFunc: func(ctx context.Context, req *file.File) (*file.File, error) {
			return nil, errors.New("db down")
		},
	}

	fs := newTestFileService(store, fileRepo, &FakeGroupRepo{}, rbMQ, 1<<20)

	_, err := fs.Upload(context.Background(), owner, nil, makeFileHeader(t, "doc.txt", []byte("payload")))
	require.Error(t, err)

	assert.Empty(t, store.objects, "the confirmed blob must be rolled back")
	require.Len(t, store.deleted, 1)
	assert.Empty(t, rbMQ.in, "no event for a failed upload")
}

func TestFileService_Upload_AbortsWriterOnStreamFailure(t *testing.T) {
	owner := uuid.New()
	store := newMemBlobStore()
	rbMQ := newFakeMQ()

	fs := newTestFileService(store, &FakeFileRepo{}, &FakeGroupRepo{}, rbMQ, 1<<20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.Upload(ctx, owner, nil, makeFileHeader(t, "doc.txt", []byte("payload")))
	require.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, store.objects, "an interrupted stream must never finalize the blob")
	assert.Empty(t, store.pending, "the open writer must be released")
	require.Len(t, store.aborted, 1)
	assert.Empty(t, rbMQ.in, "no event for a failed upload")
}

func TestFileService_Download_Authenticated(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	content := []byte("file body")

	store := newMemBlobStore()
	w, blobID, err := store.OpenWrite("doc.txt", "text/plain")
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := &file.File{
		UUID:         uuid.New(),
		OriginalName: "doc.txt",
		BlobRef:      blobID,
		SizeBytes:    uint64(len(content)),
		MimeType:     "text/plain",
		OwnerUUID:    owner,
	}

	fileRepo := &FakeFileRepo{
		FetchFileByIDFunc: func(ctx context.Context, id uuid.UUID) (*file.File, error) {
			if id == rec.UUID {
				return rec, nil
			}
			return nil, nil
		},
	}
	rbMQ := newFakeMQ()
	fs := newTestFileService(store, fileRepo, &FakeGroupRepo{}, rbMQ, 1<<20)

	rc, got, info, err := fs.Download(context.Background(), owner, rec.UUID, ports.DownloadAuthenticated)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, body)
	assert.Equal(t, rec.UUID, got.UUID)
	assert.Equal(t, int64(len(content)), info.SizeBytes)
	assert.Equal(t, mq.ActionDownload, drainOne(t, rbMQ.in).Action)

	_, _, _, err = fs.Download(context.Background(), stranger, rec.UUID, ports.DownloadAuthenticated)
	assert.ErrorIs(t, err, file.ErrForbidden)

	_, _, _, err = fs.Download(context.Background(), owner, uuid.New(), ports.DownloadAuthenticated)
	assert.ErrorIs(t, err, file.ErrNotFound)
}

func TestFileService_Download_PublicMasksPrivateAsNotFound(t *testing.T) {
	owner := uuid.New()
	store := newMemBlobStore()
	w, blobID, err := store.OpenWrite("doc.txt", "text/plain")
	require.NoError(t, err)
	_, err = w.Write([]byte("secret"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	private := &file.File{UUID: uuid.New(), BlobRef: blobID, OwnerUUID: owner, IsPublic: false}
	public := &file.File{UUID: uuid.New(), BlobRef: blobID, OwnerUUID: owner, IsPublic: true}

	fileRepo := &FakeFileRepo{
		FetchFileByIDFunc: func(ctx context.Context, id uuid.UUID) (*file.File, error) {
			switch id {
			case private.UUID:
				return private, nil
			case public.UUID:
				return public, nil
			}
			return nil, nil
		},
	}
	fs := newTestFileService(store, fileRepo, &FakeGroupRepo{}, newFakeMQ(), 1<<20)

	// a private file must look exactly like a missing one
	_, _, _, err = fs.Download(context.Background(), uuid.Nil, private.UUID, ports.DownloadPublic)
	assert.ErrorIs(t, err, file.ErrNotFound)
	assert.NotErrorIs(t, err, file.ErrForbidden)

	rc, _, _, err := fs.Download(context.Background(), uuid.Nil, public.UUID, ports.DownloadPublic)
	require.NoError(t, err)
	_ = rc.Close()
}

func TestFileService_Download_MissingBlobIsNotFound(t *testing.T) {
	owner := uuid.New()
	rec := &file.File{UUID: uuid.New(), BlobRef: "gone", OwnerUUID: owner}

	fileRepo := &FakeFileRepo{
		FetchFileByIDFunc: func(ctx context.Context, id uuid.UUID) (*file.File, error) {
			return rec, nil
		},
	}
	fs := newTestFileService(newMemBlobStore(), fileRepo, &FakeGroupRepo{}, newFakeMQ(), 1<<20)

	_, _, _, err := fs.Download(context.Background(), owner, rec.UUID, ports.DownloadAuthenticated)
	assert.ErrorIs(t, err, file.ErrNotFound,
		"metadata pointing at a missing blob must surface as not found")
}

func TestFileService_ToggleSharing(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	rec := &file.File{UUID: uuid.New(), OwnerUUID: owner, IsPublic: false}

	toggled := 0
	fileRepo := &FakeFileRepo{
		FetchFileByIDFunc: func(ctx context.Context, id uuid.UUID) (*file.File, error) {
			return rec, nil
		},
		ToggleFileSharingFunc: func(ctx context.Context, id uuid.UUID) (*file.File, error) {
			assert.Equal(t, rec.UUID, id)
			toggled++
			out := *rec
			out.IsPublic = !rec.IsPublic
			return &out, nil
		},
	}
	rbMQ := newFakeMQ()
	fs := newTestFileService(newMemBlobStore(), fileRepo, &FakeGroupRepo{}, rbMQ, 1<<20)

	out, err := fs.ToggleSharing(context.Background(), owner, rec.UUID)
	require.NoError(t, err)
	assert.True(t, out.IsPublic)
	assert.Equal(t, 1, toggled, "the flip is delegated to the repository")
	assert.Equal(t, mq.ActionShare, drainOne(t, rbMQ.in).Action)

	_, err = fs.ToggleSharing(context.Background(), stranger, rec.UUID)
	assert.ErrorIs(t, err, file.ErrForbidden)
}

func TestFileService_Delete(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	store := newMemBlobStore()
	w, blobID, err := store.OpenWrite("doc.txt", "text/plain")
	require.NoError(t, err)
	_, err = w.Write([]byte("bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := &file.File{UUID: uuid.New(), BlobRef: blobID, OwnerUUID: owner}

	metadataDeleted := false
	fileRepo := &FakeFileRepo{
		FetchFileByIDFunc: func(ctx context.Context, id uuid.UUID) (*file.File, error) {
			if metadataDeleted {
				return nil, nil
			}
			return rec, nil
		},
		DeleteFileFunc: func(ctx context.Context, id uuid.UUID) error {
			metadataDeleted = true
			return nil
		},
	}
	rbMQ := newFakeMQ()
	fs := newTestFileService(store, fileRepo, &FakeGroupRepo{}, rbMQ, 1<<20)

	err = fs.Delete(context.Background(), stranger, rec.UUID)
	assert.ErrorIs(t, err, file.ErrForbidden)
	assert.NotEmpty(t, store.objects, "denied delete must not touch the blob")

	require.NoError(t, fs.Delete(context.Background(), owner, rec.UUID))
	assert.Empty(t, store.objects)
	assert.True(t, metadataDeleted)
	assert.Equal(t, mq.ActionDelete, drainOne(t, rbMQ.in).Action)

	// the record is gone for every later operation
	err = fs.Delete(context.Background(), owner, rec.UUID)
	assert.ErrorIs(t, err, file.ErrNotFound)
	_, _, _, err = fs.Download(context.Background(), owner, rec.UUID, ports.DownloadAuthenticated)
	assert.ErrorIs(t, err, file.ErrNotFound)
}

func TestSanitizeFileName_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"uppercase and spaces", "My Report Final.PDF", "my-report-final.pdf"},
		{"path components stripped", "../../etc/passwd", "passwd"},
		{"windows path stripped", `C:\Users\me\doc.txt`, "doc.txt"},
		{"diacritics folded", "résumé.pdf", "resume.pdf"},
		{"windows reserved base", "con.txt", "_con.txt"},
		{"empty becomes file", "", "file"},
		{"only junk becomes file", "???!!!", "file"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFileName(tt.in))
		})
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "doc.txt", baseName("a/b/doc.txt"))
	assert.Equal(t, "doc.txt", baseName(`a\b\doc.txt`))
	assert.Equal(t, "file", baseName(""))
	assert.Equal(t, "file", baseName(".."))
}

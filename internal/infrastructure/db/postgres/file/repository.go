package file

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domain "fileshare-api/internal/domain/file"
	"fileshare-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) domain.Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchFileByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	f := new(File)
	err := r.db.QueryRow(ctx, SelectFileByID, id).Scan(
		&f.UUID,
		&f.StoredName,
		&f.OriginalName,
		&f.BlobRef,

		&f.SizeBytes,
		&f.MimeType,

		&f.OwnerUUID,
		&f.GroupUUID,
		&f.IsPublic,

		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) FetchOwnerFiles(ctx context.Context, owner uuid.UUID, page int) (domain.Files, error) {
	rows, err := r.db.Query(ctx, SelectOwnerFiles, owner, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (r *Repository) FetchGroupFiles(ctx context.Context, group uuid.UUID) (domain.Files, error) {
	rows, err := r.db.Query(ctx, SelectGroupFiles, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (r *Repository) CreateFile(ctx context.Context, req *domain.File) (*domain.File, error) {
	f := new(File)

	err := r.db.QueryRow(
		ctx,
		InsertFile,
		req.StoredName, req.OriginalName, req.BlobRef, req.SizeBytes, req.MimeType, req.OwnerUUID, req.GroupUUID, req.IsPublic,
	).Scan(
		&f.UUID,
		&f.StoredName,
		&f.OriginalName,
		&f.BlobRef,

		&f.SizeBytes,
		&f.MimeType,

		&f.OwnerUUID,
		&f.GroupUUID,
		&f.IsPublic,

		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return fromDBModel(f), err
}

func (r *Repository) ToggleFileSharing(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	f := new(File)

	err := r.db.QueryRow(ctx, ToggleFileSharing, id).Scan(
		&f.UUID,
		&f.StoredName,
		&f.OriginalName,
		&f.BlobRef,

		&f.SizeBytes,
		&f.MimeType,

		&f.OwnerUUID,
		&f.GroupUUID,
		&f.IsPublic,

		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, DeleteFileByID, id)
	return err
}

func scanFiles(rows pgx.Rows) (domain.Files, error) {
	var fs Files
	for rows.Next() {
		f := new(File)

		if err := rows.Scan(
			&f.UUID,
			&f.StoredName,
			&f.OriginalName,
			&f.BlobRef,

			&f.SizeBytes,
			&f.MimeType,

			&f.OwnerUUID,
			&f.GroupUUID,
			&f.IsPublic,

			&f.CreatedAt,
		); err != nil {
			return nil, err
		}

		fs = append(fs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&fs), nil
}

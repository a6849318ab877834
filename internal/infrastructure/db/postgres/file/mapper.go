package file

import (
	domain "fileshare-api/internal/domain/file"
)

func fromDBModel(model *File) *domain.File {
	var f = &domain.File{
		UUID:         model.UUID,
		StoredName:   model.StoredName,
		OriginalName: model.OriginalName,
		BlobRef:      model.BlobRef,

		SizeBytes: model.SizeBytes,
		MimeType:  model.MimeType,

		OwnerUUID: model.OwnerUUID,
		GroupUUID: model.GroupUUID,
		IsPublic:  model.IsPublic,

		CreatedAt: model.CreatedAt,
	}

	return f
}

func fromDBModels(models *Files) domain.Files {
	fs := make(domain.Files, len(*models))
	for idx, f := range *models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}

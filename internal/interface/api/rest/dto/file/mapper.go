package file

import (
	"fileshare-api/internal/domain/file"
)

func ToResponseFile(fDomain file.File) File {
	var f = File{
		ID:           fDomain.UUID,
		OriginalName: fDomain.OriginalName,
		Size:         fDomain.SizeBytes,
		MimeType:     fDomain.MimeType,
		GroupID:      fDomain.GroupUUID,
		IsPublic:     fDomain.IsPublic,
		CreatedAt:    fDomain.CreatedAt,
	}

	return f
}

func ToResponseFiles(fDomain file.Files) Files {
	fs := make(Files, len(fDomain))
	for idx, f := range fDomain {
		fs[idx] = ToResponseFile(*f)
	}

	return fs
}

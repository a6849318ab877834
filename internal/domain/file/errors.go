package file

import "errors"

var (
	ErrNotFound  = errors.New("file not found")
	ErrForbidden = errors.New("not allowed")
	ErrEmptyFile = errors.New("file is empty")
	ErrTooLarge  = errors.New("file exceeds the upload size limit")
)

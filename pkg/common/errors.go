package common

import "errors"

var (
	ErrInvalidSource     = errors.New("source is not a regular file or directory")
	ErrInvalidName       = errors.New("invalid entry name")
	ErrNameTooLong       = errors.New("file name exceeds header name field")
	ErrEntryTooLarge     = errors.New("file size exceeds header size field")
	ErrArchiveNotFound   = errors.New("archive not found")
	ErrArchiveIO         = errors.New("archive i/o error")
	ErrCorruptArchive    = errors.New("corrupt archive")
	ErrPathTraversal     = errors.New("entry name escapes destination directory")
	ErrArchiveLocked     = errors.New("archive is locked by another writer")
	ErrWriteTooLong      = errors.New("write exceeds size declared in header")
	ErrPayloadIncomplete = errors.New("payload shorter than size declared in header")
)

// EntryError is a failure scoped to a single source path or archive entry.
// It does not abort the surrounding operation.
type EntryError struct {
	Path string
	Err  error
}

func (e *EntryError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

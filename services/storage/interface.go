package storage

import (
	"context"
	"errors"
	"io"

	"estuary/models"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("file type is not accepted")
	ErrEmptyFile       = errors.New("file is empty")
	ErrLinkHasNoFile   = errors.New("link resources take an external url, not a file")

	ErrUploadTarget   = errors.New("could not obtain an upload target")
	ErrUploadTransfer = errors.New("file transfer to storage failed")
	ErrUploadConfirm  = errors.New("upload confirmation failed")
)

// File is an incoming upload. Body must be rewindable so it can be sniffed
// before it is sent.
type File struct {
	Name string
	Size int64
	Body io.ReadSeeker
}

// Storage persists a validated file and reports where it ended up.
type Storage interface {
	Upload(ctx context.Context, f *File, contentType string, kind models.UploadKind) (*models.UploadedFile, error)
}

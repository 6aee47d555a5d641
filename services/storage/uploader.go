package storage

import (
	"context"

	"go.uber.org/zap"

	"estuary/models"
)

// Uploader validates a file and hands it to the configured backend.
// Nothing leaves the process until validation has passed.
type Uploader struct {
	backend Storage
	limits  Limits
	logger  *zap.Logger
}

func NewUploader(backend Storage, limits Limits, logger *zap.Logger) *Uploader {
	return &Uploader{backend: backend, limits: limits, logger: logger}
}

func (u *Uploader) Limits() Limits { return u.limits }

func (u *Uploader) Upload(ctx context.Context, f *File, kind models.UploadKind, rt models.ResourceType) (*models.UploadedFile, error) {
	contentType, err := Validate(f, kind, rt, u.limits)
	if err != nil {
		u.logger.Info("Uploader: rejected file", zap.String("name", fileName(f)), zap.Error(err))
		return nil, err
	}
	return u.backend.Upload(ctx, f, contentType, kind)
}

func fileName(f *File) string {
	if f == nil {
		return ""
	}
	return f.Name
}

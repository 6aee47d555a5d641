package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"estuary/models"
)

// CloudinaryStorage uploads straight to Cloudinary, bypassing the media API.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

func NewCloudinaryStorage(cld *cloudinary.Cloudinary, folder string, logger *zap.Logger) *CloudinaryStorage {
	return &CloudinaryStorage{cld: cld, folder: folder, logger: logger}
}

func (s *CloudinaryStorage) Upload(ctx context.Context, f *File, contentType string, kind models.UploadKind) (*models.UploadedFile, error) {
	params := uploader.UploadParams{
		Folder:       s.destFolder(kind),
		ResourceType: "auto",
	}
	result, err := s.cld.Upload.Upload(ctx, f.Body, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadTransfer, err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("%w: %s", ErrUploadTransfer, result.Error.Message)
	}
	if result.PublicID == "" || result.SecureURL == "" {
		return nil, fmt.Errorf("%w: no public ID returned", ErrUploadTransfer)
	}
	s.logger.Info("CloudinaryStorage: uploaded", zap.String("publicID", result.PublicID), zap.String("folder", params.Folder))
	return &models.UploadedFile{
		MediaID:     result.PublicID,
		URL:         result.SecureURL,
		ContentType: contentType,
		Size:        f.Size,
	}, nil
}

func (s *CloudinaryStorage) destFolder(kind models.UploadKind) string {
	if kind == models.UploadImage {
		return s.folder + "/images"
	}
	return s.folder + "/resources"
}

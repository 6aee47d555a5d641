package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"estuary/models"
	"estuary/services/estuary"
)

// MediaAPI is the origin half of the upload handshake.
type MediaAPI interface {
	RequestUploadURL(ctx context.Context, req estuary.UploadURLRequest) (*models.UploadTarget, error)
	ConfirmUpload(ctx context.Context, mediaID string) (*models.UploadedFile, error)
}

// PresignedStorage uploads in three steps: ask the API for a target, PUT
// the bytes to it, confirm with the API. A failed step stops the upload;
// orphaned objects are left for the storage side to collect.
type PresignedStorage struct {
	api        MediaAPI
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPresignedStorage(api MediaAPI, httpClient *http.Client, logger *zap.Logger) *PresignedStorage {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PresignedStorage{api: api, httpClient: httpClient, logger: logger}
}

func (s *PresignedStorage) Upload(ctx context.Context, f *File, contentType string, kind models.UploadKind) (*models.UploadedFile, error) {
	target, err := s.api.RequestUploadURL(ctx, estuary.UploadURLRequest{
		Filename:    f.Name,
		ContentType: contentType,
		Size:        f.Size,
		EntityType:  entityType(kind),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadTarget, err)
	}

	if err := s.transfer(ctx, target, f, contentType); err != nil {
		s.logger.Warn("PresignedStorage: transfer failed", zap.String("mediaID", target.MediaID), zap.Error(err))
		return nil, err
	}

	uploaded, err := s.api.ConfirmUpload(ctx, target.MediaID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadConfirm, err)
	}
	if uploaded.URL == "" {
		uploaded.URL = stripQuery(target.UploadURL)
	}
	if uploaded.ContentType == "" {
		uploaded.ContentType = contentType
	}
	if uploaded.Size == 0 {
		uploaded.Size = f.Size
	}
	s.logger.Info("PresignedStorage: upload confirmed", zap.String("mediaID", target.MediaID), zap.Int64("size", f.Size))
	return uploaded, nil
}

func (s *PresignedStorage) transfer(ctx context.Context, target *models.UploadTarget, f *File, contentType string) error {
	method := target.Method
	if method == "" {
		method = http.MethodPut
	}
	req, err := http.NewRequestWithContext(ctx, method, target.UploadURL, f.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadTransfer, err)
	}
	req.ContentLength = f.Size
	req.Header.Set("Content-Type", contentType)
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadTransfer, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: storage answered %d", ErrUploadTransfer, resp.StatusCode)
	}
	return nil
}

func entityType(kind models.UploadKind) string {
	if kind == models.UploadImage {
		return "service_image"
	}
	return "service_resource"
}

func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}

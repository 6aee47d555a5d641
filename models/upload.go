package models

// UploadKind distinguishes the cover image from generic resource files.
type UploadKind string

const (
	UploadImage    UploadKind = "image"
	UploadResource UploadKind = "resource"
)

// UploadTarget is a pre-signed destination handed out by the media API.
type UploadTarget struct {
	MediaID   string            `json:"media_id"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// UploadedFile describes a file after the storage backend accepted it.
type UploadedFile struct {
	MediaID     string `json:"mediaId,omitempty"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

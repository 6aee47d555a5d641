package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"estuary/config"
	"estuary/models"
)

const megabyte = 1 << 20

type Limits struct {
	MaxImageBytes    int64
	MaxResourceBytes int64
}

func DefaultLimits() Limits {
	return Limits{MaxImageBytes: 10 * megabyte, MaxResourceBytes: 100 * megabyte}
}

func LimitsFromConfig(cfg config.Config) Limits {
	l := DefaultLimits()
	if cfg.MaxImageUploadMB > 0 {
		l.MaxImageBytes = cfg.MaxImageUploadMB * megabyte
	}
	if cfg.MaxResourceUploadMB > 0 {
		l.MaxResourceBytes = cfg.MaxResourceUploadMB * megabyte
	}
	return l
}

var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/rtf",
	"application/vnd.ms-",
	"application/vnd.openxmlformats-officedocument.",
	"application/vnd.oasis.opendocument.",
	"text/",
}

// accepts reports whether a sniffed MIME type fits the declared upload.
func accepts(kind models.UploadKind, rt models.ResourceType, mimeType string) bool {
	if kind == models.UploadImage {
		return strings.HasPrefix(mimeType, "image/")
	}
	switch rt {
	case models.ResourceDocument:
		for _, prefix := range documentTypes {
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
		return false
	case models.ResourceVideo:
		return strings.HasPrefix(mimeType, "video/")
	case models.ResourceAudio:
		return strings.HasPrefix(mimeType, "audio/")
	case models.ResourceOther:
		return true
	}
	return false
}

// Validate checks size and content type without touching the network.
// It returns the sniffed MIME type and leaves f.Body rewound.
func Validate(f *File, kind models.UploadKind, rt models.ResourceType, limits Limits) (string, error) {
	if kind == models.UploadResource && rt == models.ResourceLink {
		return "", ErrLinkHasNoFile
	}
	if f == nil || f.Body == nil || f.Size <= 0 {
		return "", ErrEmptyFile
	}

	max := limits.MaxResourceBytes
	if kind == models.UploadImage {
		max = limits.MaxImageBytes
	}
	if f.Size > max {
		return "", fmt.Errorf("%w: %s is %.1fMB, limit is %dMB", ErrFileTooLarge, f.Name, float64(f.Size)/megabyte, max/megabyte)
	}

	mt, err := mimetype.DetectReader(f.Body)
	if err != nil {
		return "", fmt.Errorf("sniff %s: %w", f.Name, err)
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind %s: %w", f.Name, err)
	}

	base := strings.TrimSpace(strings.SplitN(mt.String(), ";", 2)[0])
	if !accepts(kind, rt, base) {
		return "", fmt.Errorf("%w: %s for %s", ErrUnsupportedType, base, describe(kind, rt))
	}
	return base, nil
}

func describe(kind models.UploadKind, rt models.ResourceType) string {
	if kind == models.UploadImage {
		return "cover image"
	}
	return string(rt) + " resource"
}

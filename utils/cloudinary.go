package utils

import (
	"fmt"

	"estuary/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// InitCloudinary builds a Cloudinary client from the CLOUDINARY_* settings.
func InitCloudinary() (*cloudinary.Cloudinary, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("utils.InitCloudinary: failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return cld, nil
}

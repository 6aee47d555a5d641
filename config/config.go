package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	JWTTTLHours       int    `mapstructure:"JWT_TTL_HOURS"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowedOrigin string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// MongoDB holds wizard sessions.
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DatabaseName  string `mapstructure:"DATABASE_NAME"`
	DraftTTLHours int    `mapstructure:"DRAFT_TTL_HOURS"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB          int    `mapstructure:"REDIS_AUTH_DB"`
	QueryCacheTTLSeconds int    `mapstructure:"QUERY_CACHE_TTL_SECONDS"`

	// Estuary REST API.
	EstuaryAPIURL            string `mapstructure:"ESTUARY_API_URL"`
	EstuaryAPITimeoutSeconds int    `mapstructure:"ESTUARY_API_TIMEOUT_SECONDS"`

	// Uploads. StorageDriver is "presigned" or "cloudinary".
	StorageDriver       string `mapstructure:"STORAGE_DRIVER"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`
	MaxImageUploadMB    int64  `mapstructure:"MAX_IMAGE_UPLOAD_MB"`
	MaxResourceUploadMB int64  `mapstructure:"MAX_RESOURCE_UPLOAD_MB"`

	// When true, switching service type keeps bundle/package/schedule sub-state
	// so that switching back restores it.
	WizardKeepStaleSubstate bool `mapstructure:"WIZARD_KEEP_STALE_SUBSTATE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "estuary")
	v.SetDefault("DRAFT_TTL_HOURS", 72)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_AUTH_DB", 1)
	v.SetDefault("QUERY_CACHE_TTL_SECONDS", 300)
	v.SetDefault("ESTUARY_API_URL", "http://localhost:8000")
	v.SetDefault("ESTUARY_API_TIMEOUT_SECONDS", 15)
	v.SetDefault("STORAGE_DRIVER", "presigned")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_FOLDER", "estuary")
	v.SetDefault("MAX_IMAGE_UPLOAD_MB", 10)
	v.SetDefault("MAX_RESOURCE_UPLOAD_MB", 100)
	v.SetDefault("WIZARD_KEEP_STALE_SUBSTATE", false)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// AllowedOrigins splits the comma separated CORS origin list.
func AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(AppConfig.CORSAllowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

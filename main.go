// File: estuary/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estuary/config"
	"estuary/database"
	draftRepo "estuary/database/repository/draft"
	"estuary/handlers"
	"estuary/middleware"
	"estuary/routes"
	"estuary/services/estuary"
	"estuary/services/notify"
	"estuary/services/storage"
	"estuary/services/wizard"
	"estuary/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func newStorage(api storage.MediaAPI, logger *zap.Logger) storage.Storage {
	cfg := config.AppConfig
	if cfg.StorageDriver == "cloudinary" {
		cld, err := utils.InitCloudinary()
		if err != nil {
			logger.Fatal("main: failed to initialize cloudinary storage", zap.Error(err))
		}
		return storage.NewCloudinaryStorage(cld, cfg.CloudinaryFolder, logger)
	}
	return storage.NewPresignedStorage(api, &http.Client{Timeout: 5 * time.Minute}, logger)
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		if config.IsProduction() {
			logger.Fatal("main: JWT_SECRET must be set in production")
		}
		logger.Warn("main: JWT_SECRET not set, using development secret")
	}

	if err := database.InitDB(); err != nil {
		logger.Fatal("main: database unavailable", zap.Error(err))
	}
	utils.InitRedis()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartHealthMonitor(rootCtx, []*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient)

	// repositories.
	drafts, err := draftRepo.NewMongoDraftRepo(database.Database(), time.Duration(cfg.DraftTTLHours)*time.Hour)
	if err != nil {
		logger.Fatal("main: failed to prepare draft repository", zap.Error(err))
	}

	// services.
	api := estuary.NewClient(cfg.EstuaryAPIURL, time.Duration(cfg.EstuaryAPITimeoutSeconds)*time.Second, logger)
	catalog := estuary.NewCachedCatalog(api,
		estuary.NewRedisQueryCache(utils.GetCacheClient(), utils.QueryCachePrefix),
		time.Duration(cfg.QueryCacheTTLSeconds)*time.Second, logger)
	uploader := storage.NewUploader(newStorage(api, logger), storage.LimitsFromConfig(cfg), logger)
	notifier := notify.NewRequestNotifier(logger)

	wizardSvc := wizard.NewService(drafts, api, catalog, uploader, notifier, logger, wizard.Options{
		KeepStaleSubstate: cfg.WizardKeepStaleSubstate,
	})

	tokenTTL := time.Duration(cfg.JWTTTLHours) * time.Hour
	authSessions := utils.NewRedisAuthSessions(utils.GetAuthCacheClient(), tokenTTL)

	handlerBundle := &handlers.HandlerBundle{
		Sessions:          authSessions,
		Auth:              handlers.NewAuthHandler(api, authSessions, tokenTTL),
		Catalog:           handlers.NewCatalogHandler(catalog),
		Wizard:            handlers.NewWizardHandler(wizardSvc),
		Questions:         handlers.NewQuestionsHandler(api),
		RequestsPerMinute: cfg.MaxRequestsPerMin,
		AllowedOrigins:    config.AllowedOrigins(),
	}

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Error("main: failed to close MongoDB", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}

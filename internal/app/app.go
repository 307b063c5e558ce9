package app

import (
	"context"
	"fmt"
	"net/http"

	"imgrelay/internal/config"
	"imgrelay/internal/handlers"
	"imgrelay/internal/imageprocessor"
	"imgrelay/internal/logger"
	"imgrelay/internal/metrics"
	"imgrelay/internal/middleware"
	"imgrelay/internal/providers"
	"imgrelay/internal/routes"
	"imgrelay/internal/services"
	"imgrelay/internal/storage"
	"imgrelay/internal/validator"
	"imgrelay/internal/workers"

	"github.com/gin-gonic/gin"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ginRouter := SetupRouter(ctx, cfg)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает приложение и завершает процесс при ошибке конфигурации
func SetupRouter(ctx context.Context, cfg *config.Config) *gin.Engine {
	ginRouter, err := NewRouter(ctx, cfg, http.DefaultClient)
	if err != nil {
		logger.Fatal("Failed to set up application", "error", err)
	}
	return ginRouter
}

// NewRouter собирает сервисы, хэндлеры и маршруты. client используется
// для всех исходящих загрузок; фоновые задачи живут, пока жив ctx.
func NewRouter(ctx context.Context, cfg *config.Config, client *http.Client) (*gin.Engine, error) {
	// 1. Провайдеры
	registry, err := initializeProviders(cfg, client)
	if err != nil {
		return nil, err
	}

	// 2. Метрики
	recorder := metrics.NewRecorder()

	// 3. Scratch-каталог и его очистка
	scratch, err := storage.NewLocalStorage(storage.Config{
		Type:     "local",
		BasePath: cfg.Relay.ScratchDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scratch directory: %w", err)
	}
	logger.Info("Scratch directory ready", "path", scratch.BasePath())
	workers.NewScratchWorker(scratch, cfg.Relay.ScratchSweepInterval, cfg.Relay.ScratchMaxAge).Start(ctx)

	// 4. Сервисы
	relayService, err := initializeServices(cfg, registry, scratch, recorder)
	if err != nil {
		return nil, err
	}

	// 5. Хэндлеры
	appHandlers := initializeHandlers(relayService)

	// 6. Gin
	ginRouter := initializeGinRouter(cfg)

	// 7. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers, recorder.Handler())

	return ginRouter, nil
}

func initializeProviders(cfg *config.Config, client *http.Client) (*providers.Registry, error) {
	descriptors := providers.Merge(providers.BuiltinDescriptors(), toOverrides(cfg.Providers))

	registry, err := providers.BuildRegistry(descriptors, client)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}

	if storage.IsBucket(cfg.Storage.Type) {
		bucket, err := storage.NewStorage(storage.Config{
			Type:       cfg.Storage.Type,
			BaseURL:    cfg.Storage.BaseURL,
			Bucket:     cfg.Storage.Bucket,
			Region:     cfg.Storage.Region,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			Endpoint:   cfg.Storage.Endpoint,
			UseSSL:     cfg.Storage.UseSSL,
			PublicRead: cfg.Storage.PublicRead,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize bucket storage: %w", err)
		}
		registry.Register(providers.NewBucketProvider(cfg.Storage.Provider, bucket))
		logger.Info("Bucket provider registered", "name", cfg.Storage.Provider, "type", cfg.Storage.Type, "bucket", cfg.Storage.Bucket)
	}

	logger.Info("Providers initialized", "providers", registry.Names())
	return registry, nil
}

func toOverrides(list []config.ProviderConfig) []providers.Override {
	overrides := make([]providers.Override, 0, len(list))
	for _, p := range list {
		overrides = append(overrides, providers.Override{
			Name:              p.Name,
			Kind:              providers.Kind(p.Kind),
			Endpoint:          p.Endpoint,
			FieldName:         p.FieldName,
			Headers:           p.Headers,
			Stage:             p.Stage,
			Timeout:           p.Timeout,
			DirectURLTemplate: p.DirectURLTemplate,
			Response:          p.Response,
		})
	}
	return overrides
}

func initializeServices(cfg *config.Config, registry *providers.Registry, scratch *storage.LocalStorage, recorder *metrics.Recorder) (services.RelayService, error) {
	if _, err := registry.Get(cfg.Relay.DefaultProvider); err != nil {
		return nil, fmt.Errorf("default provider %q is not registered", cfg.Relay.DefaultProvider)
	}

	return services.NewRelayService(services.RelayConfig{
		Registry:        registry,
		Scratch:         scratch,
		Processor:       imageprocessor.NewProcessor(cfg.Relay.ImageQuality, cfg.Relay.MaxDimension),
		Recorder:        services.MultiRecorder{services.NewLogRecorder(), recorder},
		DefaultProvider: cfg.Relay.DefaultProvider,
	}), nil
}

func initializeHandlers(relayService services.RelayService) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		RelayHandler:  handlers.NewRelayHandler(baseHandler, relayService),
		HealthHandler: handlers.NewHealthHandler(),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.BodyLimitMiddleware(cfg.Relay.MaxBodyBytes))
	return router
}

package routes

import (
	"net/http"

	"imgrelay/internal/handlers"
	"imgrelay/internal/logger"
	"imgrelay/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers, // <-- Принимаем ГОТОВЫЕ хэндлеры
	metricsHandler http.Handler,
) {
	api := ginRouter.Group("/api")
	{
		appHandlers.RelayHandler.RegisterRoutes(api)
	}

	ginRouter.GET("/healthz", appHandlers.HealthHandler.Health)
	if metricsHandler != nil {
		ginRouter.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// Любой другой метод на известном пути -> 405 в формате relay
	ginRouter.HandleMethodNotAllowed = true
	ginRouter.NoMethod(func(c *gin.Context) {
		apperrors.HandleError(c, apperrors.ErrMethodNotAllowed)
	})
	ginRouter.NoRoute(func(c *gin.Context) {
		apperrors.HandleError(c, apperrors.ErrRouteNotFound)
	})

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}

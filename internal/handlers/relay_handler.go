package handlers

import (
	"net/http"

	"imgrelay/internal/services"
	"imgrelay/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ============================================
// RELAY HANDLER
// ============================================

type RelayHandler struct {
	*BaseHandler
	relayService services.RelayService
}

func NewRelayHandler(base *BaseHandler, relayService services.RelayService) *RelayHandler {
	return &RelayHandler{
		BaseHandler:  base,
		relayService: relayService,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *RelayHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload", h.Upload)
	r.POST("/upload/:provider", h.UploadTo)
	r.GET("/providers", h.ListProviders)
}

// ============================================
// HANDLERS
// ============================================

// Upload - POST /api/upload, провайдер по умолчанию
func (h *RelayHandler) Upload(c *gin.Context) {
	h.relay(c, h.relayService.DefaultProvider())
}

// UploadTo - POST /api/upload/:provider
func (h *RelayHandler) UploadTo(c *gin.Context) {
	h.relay(c, c.Param("provider"))
}

func (h *RelayHandler) relay(c *gin.Context, provider string) {
	var req dto.RelayRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.relayService.Relay(c.Request.Context(), provider, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListProviders - GET /api/providers
func (h *RelayHandler) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, h.relayService.Providers())
}

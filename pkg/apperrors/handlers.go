package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Code    ErrorCode `json:"code"`
	Details string    `json:"details,omitempty"`
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

// HandleGinError - основная логика обработки ошибок для Gin
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = UnexpectedError(err)
		if !h.Debug {
			// В продакшене скрываем детали
			appErr.Details = ""
		}
	}

	if appErr.HTTPCode >= 500 {
		slog.ErrorContext(c.Request.Context(), "Server error",
			"code", appErr.Code,
			"details", appErr.Details,
			"cause", appErr.Unwrap(),
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, NewErrorResponse(appErr))
}

// NewErrorResponse собирает тело ответа из AppError
func NewErrorResponse(appErr *AppError) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}
}

// HandleError - быстрая функция-помощник для Gin.
// Детали ошибок провайдера клиенту нужны, поэтому Debug включён.
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: true}
	handler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

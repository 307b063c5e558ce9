package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"imgrelay/internal/logger"
	"imgrelay/internal/validator"
	"imgrelay/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// ============================================================================
// 2. Привязка и валидация (с контекстным логгированием)
// ============================================================================

// BindAndValidate_JSON читает JSON-тело в obj и проверяет его.
// Ошибки переводятся в коды relay:
//   - тело больше лимита -> FILE_TOO_LARGE
//   - тело не JSON-объект или поле пустое -> MISSING_INPUT
//   - поле не того типа или не data URI -> INVALID_FORMAT
func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, bindError(err))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, validationError(vErr))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

func bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.ErrFileTooLarge
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "file" {
		return apperrors.ErrInvalidFormat
	}
	return apperrors.ErrMissingInput
}

func validationError(vErr *validator.ValidationError) error {
	for _, tag := range vErr.Tags {
		if tag == "required" {
			return apperrors.ErrMissingInput
		}
	}
	return apperrors.ErrInvalidFormat
}

// ============================================================================
// 3. Обработчики ошибок (с контекстным логгированием)
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"code", appErr.Code,
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Unexpected service error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.UnexpectedError(err))
	}
}
